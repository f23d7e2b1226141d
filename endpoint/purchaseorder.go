package endpoint

import (
	"fmt"
	"time"

	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListPurchaseOrders godoc
// @Summary      List purchase orders
// @Tags         PurchaseOrder
// @Produce      json
// @Param        status query string false "Filter by status"
// @Router       /purchase-order [get]
func ListPurchaseOrders(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	q := parseListQuery(c)

	var orders []model.PurchaseOrder
	var total int64

	query := db.Model(&model.PurchaseOrder{}).Preload("Items").Order("created_at DESC")
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("po_number LIKE ? OR supplier LIKE ?", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve purchase orders", Err: err})
		return
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if err := query.Find(&orders).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve purchase orders", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Purchase orders retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(orders), "purchase_orders": orders},
	})
}

type purchaseOrderItemRequest struct {
	InventoryItemID uint    `json:"inventory_item_id"`
	ItemName        string  `json:"item_name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
}

type createPurchaseOrderRequest struct {
	Supplier  string                     `json:"supplier"`
	OrderDate string                     `json:"order_date"`
	Notes     string                     `json:"notes"`
	Items     []purchaseOrderItemRequest `json:"items"`
}

// CreatePurchaseOrder godoc
// @Summary      Create a purchase order
// @Description  The PO number comes from the yearly sequence and the total is recomputed from the items server-side
// @Tags         PurchaseOrder
// @Accept       json
// @Produce      json
// @Router       /purchase-order [post]
func CreatePurchaseOrder(c *gin.Context) {
	var req createPurchaseOrderRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if req.Supplier == "" || len(req.Items) == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Supplier and at least one item are required",
			Err: fmt.Errorf("missing supplier or items"),
		})
		return
	}

	items := make([]model.PurchaseOrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		if item.ItemName == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			util.CallUserError(c, util.APIErrorParams{
				Msg: fmt.Sprintf("Item %d is invalid", i+1),
				Err: fmt.Errorf("item requires a name, positive quantity and non-negative unit price"),
			})
			return
		}
		items = append(items, model.PurchaseOrderItem{
			InventoryItemID: item.InventoryItemID,
			ItemName:        item.ItemName,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
		})
	}

	order := model.PurchaseOrder{
		Supplier:    req.Supplier,
		OrderDate:   req.OrderDate,
		Status:      model.POStatusDraft,
		Notes:       req.Notes,
		Items:       items,
		TotalAmount: model.TotalOf(items),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		number, err := model.NextPONumber(tx, time.Now())
		if err != nil {
			return err
		}
		order.PONumber = number
		return tx.Create(&order).Error
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create purchase order", Err: err})
		return
	}

	_ = util.PublishChange("purchase_orders", util.ChangeInsert, order.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Purchase order created successfully", Data: order})
}

type poStatusRequest struct {
	Status string `json:"status"`
}

// TransitionPurchaseOrderStatus godoc
// @Summary      Move a purchase order through its approval flow
// @Description  draft -> pending_approval -> approved -> received; cancellable until received. Receiving restocks the linked inventory items.
// @Tags         PurchaseOrder
// @Accept       json
// @Produce      json
// @Router       /purchase-order/{id}/status [post]
func TransitionPurchaseOrderStatus(c *gin.Context) {
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req poStatusRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var order model.PurchaseOrder
	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Purchase order not found", Err: err})
		return
	}

	if !model.ValidPOTransition(order.Status, req.Status) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid purchase order status transition",
			Err: fmt.Errorf("cannot move purchase order from %s to %s", order.Status, req.Status),
		})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
			return err
		}
		if req.Status != model.POStatusReceived {
			return nil
		}
		// Receiving the order restocks every linked inventory item.
		for _, item := range order.Items {
			if item.InventoryItemID == 0 {
				continue
			}
			err := tx.Model(&model.InventoryItem{}).
				Where("id = ?", item.InventoryItemID).
				Update("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update purchase order status", Err: err})
		return
	}

	_ = util.PublishChange("purchase_orders", util.ChangeUpdate, order.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Purchase order status updated", Data: order})
}
