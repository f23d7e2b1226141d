package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Purchase order statuses.
const (
	POStatusDraft           = "draft"
	POStatusPendingApproval = "pending_approval"
	POStatusApproved        = "approved"
	POStatusReceived        = "received"
	POStatusCancelled       = "cancelled"
)

type PurchaseOrder struct {
	gorm.Model
	PONumber     string              `json:"po_number" gorm:"uniqueIndex;size:32"`
	Supplier     string              `json:"supplier" gorm:"not null"`
	OrderDate    string              `json:"order_date"`
	Status       string              `json:"status" gorm:"size:32;not null;index"`
	Notes        string              `json:"notes" gorm:"type:text"`
	TotalAmount  float64             `json:"total_amount"`
	Items        []PurchaseOrderItem `json:"items" gorm:"foreignKey:PurchaseOrderID"`
}

type PurchaseOrderItem struct {
	gorm.Model
	PurchaseOrderID uint    `json:"purchase_order_id" gorm:"not null;index"`
	InventoryItemID uint    `json:"inventory_item_id" gorm:"index"`
	ItemName        string  `json:"item_name" gorm:"not null"`
	Quantity        int     `json:"quantity" gorm:"not null"`
	UnitPrice       float64 `json:"unit_price" gorm:"not null"`
}

// LineTotal is quantity times unit price for one line.
func (i PurchaseOrderItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// TotalOf sums the line totals of a purchase order's items. The stored
// TotalAmount is always recomputed server-side from the items, never trusted
// from the request payload.
func TotalOf(items []PurchaseOrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// POSequence tracks the last issued purchase order number per year.
type POSequence struct {
	gorm.Model
	Year   int    `json:"year" gorm:"uniqueIndex"`
	Number int    `json:"number"`
	Code   string `json:"code" gorm:"size:32"`
}

// NextPONumber issues the next PO-YYYY-NNNN number, creating the sequence row
// for the year on first use.
func NextPONumber(db *gorm.DB, now time.Time) (string, error) {
	year := now.Year()
	var seq POSequence
	err := db.Where("year = ?", year).First(&seq).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return "", err
	}
	seq.Year = year
	seq.Number++
	seq.Code = fmt.Sprintf("PO-%d-%04d", year, seq.Number)
	if err := db.Save(&seq).Error; err != nil {
		return "", err
	}
	return seq.Code, nil
}

// ValidPOTransition reports whether a purchase order may move between two
// statuses. Cancellation is allowed from any non-terminal state.
func ValidPOTransition(from, to string) bool {
	switch to {
	case POStatusPendingApproval:
		return from == POStatusDraft
	case POStatusApproved:
		return from == POStatusPendingApproval
	case POStatusReceived:
		return from == POStatusApproved
	case POStatusCancelled:
		return from != POStatusReceived && from != POStatusCancelled
	default:
		return false
	}
}
