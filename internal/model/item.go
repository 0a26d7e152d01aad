package model

import "github.com/google/uuid"

// InventoryItem is a stocked SKU within one project. Quantities change only
// through ledger movements; there is no direct "set quantity" path.
type InventoryItem struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_items_project_sku;index" json:"project_id" validate:"uuid_required"`
	SKU       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_items_project_sku" json:"sku" validate:"required"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Location  string    `gorm:"type:varchar(100)" json:"location"`

	QuantityAvailable int `gorm:"default:0" json:"quantity_available"`
	QuantityReserved  int `gorm:"default:0" json:"quantity_reserved"`
	QuantityOnOrder   int `gorm:"default:0" json:"quantity_on_order"`

	ReorderLevel    *int `json:"reorder_level,omitempty"`
	ReorderQuantity *int `json:"reorder_quantity,omitempty"`

	// Costs in minor currency units
	UnitCost    int64 `gorm:"default:0" json:"unit_cost"`
	LastCost    int64 `gorm:"default:0" json:"last_cost"`
	AverageCost int64 `gorm:"default:0" json:"average_cost"`

	// When set, outbound movements may drive the balance negative.
	AllowBackorder bool `gorm:"default:false" json:"allow_backorder"`
}

// LowStock reports whether the item has reached its reorder level.
func (i *InventoryItem) LowStock() bool {
	return i.ReorderLevel != nil && i.QuantityAvailable <= *i.ReorderLevel
}

// SuggestReorderQuantity returns the replenishment quantity for a low-stock
// item: the configured reorder quantity, or the shortfall below the reorder
// level, whichever is larger.
func (i *InventoryItem) SuggestReorderQuantity() int {
	if i.ReorderLevel == nil {
		return 0
	}
	shortfall := *i.ReorderLevel - i.QuantityAvailable
	if shortfall < 0 {
		shortfall = 0
	}
	if i.ReorderQuantity != nil && *i.ReorderQuantity > shortfall {
		return *i.ReorderQuantity
	}
	return shortfall
}
