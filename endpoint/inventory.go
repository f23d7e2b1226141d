package endpoint

import (
	"fmt"

	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func fetchInventoryItems(db *gorm.DB, q listQuery, lowStockOnly bool) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	query := db.Model(&model.InventoryItem{}).Order("name ASC")
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("name LIKE ? OR category LIKE ? OR supplier LIKE ?", kw, kw, kw)
	}
	if lowStockOnly {
		query = query.Where("quantity_in_stock < minimum_stock")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListInventoryItems godoc
// @Summary      List inventory items
// @Tags         Inventory
// @Produce      json
// @Param        low_stock query bool false "Only items below minimum stock"
// @Router       /inventory [get]
func ListInventoryItems(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	items, total, err := fetchInventoryItems(db, parseListQuery(c), c.Query("low_stock") == "true")
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve inventory", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Inventory retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(items), "items": items},
	})
}

type inventoryItemRequest struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Unit            string  `json:"unit"`
	QuantityInStock int     `json:"quantity_in_stock"`
	MinimumStock    int     `json:"minimum_stock"`
	UnitPrice       float64 `json:"unit_price"`
	Supplier        string  `json:"supplier"`
}

// CreateInventoryItem godoc
// @Summary      Create an inventory item
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Router       /inventory [post]
func CreateInventoryItem(c *gin.Context) {
	var req inventoryItemRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	req.Name = util.NormalizeName(req.Name)
	if req.Name == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "Item name is required", Err: fmt.Errorf("missing item name")})
		return
	}

	var count int64
	db.Model(&model.InventoryItem{}).Where("name = ? AND supplier = ?", req.Name, req.Supplier).Count(&count)
	if count > 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "An item with this name already exists for this supplier",
			Err: fmt.Errorf("duplicate inventory item"),
		})
		return
	}

	item := model.InventoryItem{
		Name:            req.Name,
		Category:        req.Category,
		Unit:            req.Unit,
		QuantityInStock: req.QuantityInStock,
		MinimumStock:    req.MinimumStock,
		UnitPrice:       req.UnitPrice,
		Supplier:        req.Supplier,
	}
	if err := db.Create(&item).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create inventory item", Err: err})
		return
	}

	_ = util.PublishChange("inventory_items", util.ChangeInsert, item.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Inventory item created successfully", Data: item})
}

// UpdateInventoryItem godoc
// @Summary      Update an inventory item
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Router       /inventory/{id} [patch]
func UpdateInventoryItem(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req inventoryItemRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var existing model.InventoryItem
	if err := db.First(&existing, itemID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Inventory item not found", Err: err})
		return
	}

	updates := model.InventoryItem{
		Name:            util.NormalizeName(req.Name),
		Category:        req.Category,
		Unit:            req.Unit,
		QuantityInStock: req.QuantityInStock,
		MinimumStock:    req.MinimumStock,
		UnitPrice:       req.UnitPrice,
		Supplier:        req.Supplier,
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update inventory item", Err: err})
		return
	}

	_ = util.PublishChange("inventory_items", util.ChangeUpdate, existing.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Inventory item updated successfully", Data: existing})
}

type adjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// AdjustInventoryStock godoc
// @Summary      Adjust an item's stock level by a signed delta
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Router       /inventory/{id}/adjust [post]
func AdjustInventoryStock(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req adjustStockRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var item model.InventoryItem
	if err := db.First(&item, itemID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Inventory item not found", Err: err})
		return
	}

	if item.QuantityInStock+req.Delta < 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Stock cannot go negative",
			Err: fmt.Errorf("adjustment of %d exceeds stock of %d", req.Delta, item.QuantityInStock),
		})
		return
	}

	if err := db.Model(&item).Update("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", req.Delta)).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to adjust stock", Err: err})
		return
	}

	_ = util.PublishChange("inventory_items", util.ChangeUpdate, item.ID)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Stock adjusted successfully",
		Data: map[string]interface{}{"item": item, "reason": req.Reason},
	})
}
