package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTotalOf(t *testing.T) {
	items := []PurchaseOrderItem{
		{ItemName: "Zirconia disc", Quantity: 4, UnitPrice: 89.50},
		{ItemName: "PMMA puck", Quantity: 10, UnitPrice: 23.00},
	}
	assert.InDelta(t, 4*89.50+10*23.00, TotalOf(items), 0.001)
	assert.Zero(t, TotalOf(nil))
}

func TestNextPONumber_Sequence(t *testing.T) {
	db := setupTestDB(t, "po_seq", &POSequence{})
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	first, err := NextPONumber(db, now)
	assert.NoError(t, err)
	assert.Equal(t, "PO-2025-0001", first)

	second, err := NextPONumber(db, now)
	assert.NoError(t, err)
	assert.Equal(t, "PO-2025-0002", second)
}

func TestPurchaseOrder_CreateWithItems(t *testing.T) {
	db := setupTestDB(t, "po_create", &PurchaseOrder{}, &PurchaseOrderItem{})

	order := PurchaseOrder{
		PONumber: "PO-2025-0001",
		Supplier: "Arctic Dental Supply",
		Status:   POStatusDraft,
		Items: []PurchaseOrderItem{
			{ItemName: "Zirconia disc", Quantity: 2, UnitPrice: 89.50},
		},
	}
	order.TotalAmount = TotalOf(order.Items)
	assert.NoError(t, db.Create(&order).Error)

	var fetched PurchaseOrder
	assert.NoError(t, db.Preload("Items").First(&fetched, order.ID).Error)
	assert.Len(t, fetched.Items, 1)
	assert.InDelta(t, 179.0, fetched.TotalAmount, 0.001)
}

func TestValidPOTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{POStatusDraft, POStatusPendingApproval, true},
		{POStatusPendingApproval, POStatusApproved, true},
		{POStatusApproved, POStatusReceived, true},
		{POStatusDraft, POStatusApproved, false},
		{POStatusDraft, POStatusReceived, false},
		{POStatusDraft, POStatusCancelled, true},
		{POStatusApproved, POStatusCancelled, true},
		{POStatusReceived, POStatusCancelled, false},
		{POStatusCancelled, POStatusCancelled, false},
		{POStatusReceived, POStatusDraft, false},
		{POStatusDraft, "shipped", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, ValidPOTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
