package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderPending   OrderStatus = "pending"
	OrderOrdered   OrderStatus = "ordered"
	OrderPartial   OrderStatus = "partial"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the allowed forward edges of the status machine.
// Cancellation is terminal and only reachable before the supplier has the
// order.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderDraft:   {OrderPending, OrderCancelled},
	OrderPending: {OrderOrdered, OrderCancelled},
	OrderOrdered: {OrderPartial, OrderReceived},
	OrderPartial: {OrderPartial, OrderReceived},
}

// CanTransitionTo reports whether the status machine permits moving from s
// to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PurchaseOrder is a project-scoped order placed with one supplier.
type PurchaseOrder struct {
	BaseModel
	ProjectID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"project_id"`
	SupplierID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"supplier_id" validate:"uuid_required"`
	OrderNumber string      `gorm:"type:varchar(30);not null;uniqueIndex" json:"order_number"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	OrderDate   time.Time   `gorm:"not null" json:"order_date"`
	TotalAmount int64       `gorm:"default:0" json:"total_amount"` // Derived: sum of item total costs
	Notes       string      `gorm:"type:text" json:"notes,omitempty"`

	Supplier *Supplier           `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items    []PurchaseOrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// Editable reports whether order items may still be freely changed.
func (o *PurchaseOrder) Editable() bool {
	return o.Status == OrderDraft
}

// Deletable reports whether the order may be deleted or cancelled.
func (o *PurchaseOrder) Deletable() bool {
	return o.Status == OrderDraft || o.Status == OrderPending
}

// FullyReceived reports whether every line has its full ordered quantity.
func (o *PurchaseOrder) FullyReceived() bool {
	for i := range o.Items {
		if o.Items[i].QuantityReceived < o.Items[i].QuantityOrdered {
			return false
		}
	}
	return len(o.Items) > 0
}

// AnyReceived reports whether any quantity at all has arrived.
func (o *PurchaseOrder) AnyReceived() bool {
	for i := range o.Items {
		if o.Items[i].QuantityReceived > 0 {
			return true
		}
	}
	return false
}

// RecomputeTotal refreshes TotalAmount from the line totals.
func (o *PurchaseOrder) RecomputeTotal() {
	var total int64
	for i := range o.Items {
		total += o.Items[i].TotalCost
	}
	o.TotalAmount = total
}

// PurchaseOrderItem is one line of a purchase order, linked to the inventory
// item it replenishes. quantity_received never exceeds quantity_ordered.
type PurchaseOrderItem struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ItemID  uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Variant string    `gorm:"type:varchar(100)" json:"variant,omitempty"`

	QuantityOrdered  int   `gorm:"not null" json:"quantity_ordered" validate:"required,gt=0"`
	QuantityReceived int   `gorm:"default:0" json:"quantity_received"`
	UnitCost         int64 `gorm:"default:0" json:"unit_cost"`
	TotalCost        int64 `gorm:"default:0" json:"total_cost"`

	Item *InventoryItem `gorm:"foreignKey:ItemID" json:"item,omitempty" validate:"-"`
}

// Remaining is the quantity still expected from the supplier.
func (i *PurchaseOrderItem) Remaining() int {
	return i.QuantityOrdered - i.QuantityReceived
}
