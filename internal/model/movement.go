package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementTransfer   MovementType = "transfer"
)

// Reference types linking a movement back to the document that caused it.
const (
	ReferencePurchaseOrder = "purchase_order"
	ReferenceInitialStock  = "initial_stock"
)

// InventoryMovement is one row of the append-only stock ledger. Rows are
// never updated or deleted; the current balance of an item equals the sum of
// its movement deltas in creation order.
type InventoryMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	Type MovementType `gorm:"type:varchar(20);not null" json:"type"`

	// Quantity is the unsigned magnitude; QuantityDelta is the signed effect
	// on quantity_available (zero for transfers) used for reconstruction.
	Quantity      int `gorm:"not null" json:"quantity"`
	QuantityDelta int `gorm:"not null" json:"quantity_delta"`

	UnitCost  int64 `gorm:"default:0" json:"unit_cost"`
	TotalCost int64 `gorm:"default:0" json:"total_cost"`

	// Transfer metadata
	FromLocation string `gorm:"type:varchar(100)" json:"from_location,omitempty"`
	ToLocation   string `gorm:"type:varchar(100)" json:"to_location,omitempty"`

	ReferenceType string     `gorm:"type:varchar(50);index" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid;index" json:"reference_id,omitempty"`

	Note string `gorm:"type:text" json:"note,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *InventoryMovement) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
