package repository

import (
	"go-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows purchase order listings and searches.
type OrderFilter struct {
	Status     model.OrderStatus
	SupplierID *uuid.UUID
	Term       string
}

type PurchaseOrderRepository interface {
	Create(order *model.PurchaseOrder) error
	FindByID(projectID, id uuid.UUID) (*model.PurchaseOrder, error)
	FindAll(projectID uuid.UUID, filter OrderFilter) ([]model.PurchaseOrder, error)

	LockByID(tx *gorm.DB, projectID, id uuid.UUID) (*model.PurchaseOrder, error)
	SaveTx(tx *gorm.DB, order *model.PurchaseOrder) error
	SaveItemTx(tx *gorm.DB, item *model.PurchaseOrderItem) error
	ReplaceItems(tx *gorm.DB, order *model.PurchaseOrder, items []model.PurchaseOrderItem) error
	Delete(order *model.PurchaseOrder) error

	CountBySupplier(projectID, supplierID uuid.UUID) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(order *model.PurchaseOrder) error {
	return r.db.Create(order).Error
}

func (r *orderRepo) FindByID(projectID, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.Preload("Items").Preload("Supplier").
		First(&order, "id = ? AND project_id = ?", id, projectID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindAll(projectID uuid.UUID, filter OrderFilter) ([]model.PurchaseOrder, error) {
	q := r.db.Preload("Items").Preload("Supplier").Where("project_id = ?", projectID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		q = q.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Term != "" {
		q = q.Where("order_number LIKE ?", "%"+filter.Term+"%")
	}
	var orders []model.PurchaseOrder
	err := q.Order("order_date DESC").Find(&orders).Error
	return orders, err
}

// LockByID loads the order and its items under a write lock on the order
// row. The order row is the serialization point for the whole aggregate.
func (r *orderRepo) LockByID(tx *gorm.DB, projectID, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := lockForUpdate(tx).Preload("Items").
		First(&order, "id = ? AND project_id = ?", id, projectID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) SaveTx(tx *gorm.DB, order *model.PurchaseOrder) error {
	return tx.Omit("Items", "Supplier").Save(order).Error
}

func (r *orderRepo) SaveItemTx(tx *gorm.DB, item *model.PurchaseOrderItem) error {
	return tx.Omit("Item").Save(item).Error
}

// ReplaceItems swaps the order's line items wholesale. Only meaningful while
// the order is editable.
func (r *orderRepo) ReplaceItems(tx *gorm.DB, order *model.PurchaseOrder, items []model.PurchaseOrderItem) error {
	if err := tx.Unscoped().Where("order_id = ?", order.ID).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// Delete removes the order and cascades to its items.
func (r *orderRepo) Delete(order *model.PurchaseOrder) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}

func (r *orderRepo) CountBySupplier(projectID, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.PurchaseOrder{}).
		Where("project_id = ? AND supplier_id = ?", projectID, supplierID).
		Count(&count).Error
	return count, err
}
