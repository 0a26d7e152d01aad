package repository

import (
	"time"

	"go-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementFilter narrows movement searches.
type MovementFilter struct {
	Type          model.MovementType
	ReferenceType string
	ReferenceID   *uuid.UUID
}

// MovementSummaryRow aggregates one day of inbound/outbound quantities.
type MovementSummaryRow struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type InventoryRepository interface {
	Create(item *model.InventoryItem) error
	FindByID(projectID, id uuid.UUID) (*model.InventoryItem, error)
	FindBySKU(projectID uuid.UUID, sku string) (*model.InventoryItem, error)
	FindAll(projectID uuid.UUID) ([]model.InventoryItem, error)
	Update(item *model.InventoryItem) error
	Delete(id uuid.UUID) error

	LockByID(tx *gorm.DB, projectID, id uuid.UUID) (*model.InventoryItem, error)
	SaveTx(tx *gorm.DB, item *model.InventoryItem) error
	CreateMovement(tx *gorm.DB, movement *model.InventoryMovement) error

	MovementsByItem(itemID uuid.UUID) ([]model.InventoryMovement, error)
	CountMovements(itemID uuid.UUID) (int64, error)
	SumMovementDeltas(itemID uuid.UUID) (int, error)

	LowStockItems(projectID uuid.UUID) ([]model.InventoryItem, error)
	SearchItems(projectID uuid.UUID, term string) ([]model.InventoryItem, error)
	SearchMovements(projectID uuid.UUID, filter MovementFilter) ([]model.InventoryMovement, error)
	MovementSummary(projectID uuid.UUID, startDate, endDate time.Time) ([]MovementSummaryRow, error)
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) Create(item *model.InventoryItem) error {
	return r.db.Create(item).Error
}

func (r *inventoryRepo) FindByID(projectID, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.First(&item, "id = ? AND project_id = ?", id, projectID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepo) FindBySKU(projectID uuid.UUID, sku string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.First(&item, "project_id = ? AND sku = ?", projectID, sku).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepo) FindAll(projectID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.Where("project_id = ?", projectID).Order("sku ASC").Find(&items).Error
	return items, err
}

func (r *inventoryRepo) Update(item *model.InventoryItem) error {
	return r.db.Save(item).Error
}

// Delete removes the item row outright. Only movement-free items may be
// deleted, so there is no ledger history to preserve, and a soft-deleted row
// would keep holding the (project_id, sku) unique slot against re-creation.
func (r *inventoryRepo) Delete(id uuid.UUID) error {
	return r.db.Unscoped().Delete(&model.InventoryItem{}, "id = ?", id).Error
}

// LockByID loads the item row under a write lock inside tx. Callers mutate
// the returned struct and persist it with SaveTx before the transaction
// commits.
func (r *inventoryRepo) LockByID(tx *gorm.DB, projectID, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := lockForUpdate(tx).First(&item, "id = ? AND project_id = ?", id, projectID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepo) SaveTx(tx *gorm.DB, item *model.InventoryItem) error {
	return tx.Save(item).Error
}

func (r *inventoryRepo) CreateMovement(tx *gorm.DB, movement *model.InventoryMovement) error {
	return tx.Create(movement).Error
}

func (r *inventoryRepo) MovementsByItem(itemID uuid.UUID) ([]model.InventoryMovement, error) {
	var movements []model.InventoryMovement
	err := r.db.Where("item_id = ?", itemID).Order("created_at ASC, id ASC").Find(&movements).Error
	return movements, err
}

func (r *inventoryRepo) CountMovements(itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.InventoryMovement{}).Where("item_id = ?", itemID).Count(&count).Error
	return count, err
}

// SumMovementDeltas folds the signed ledger effects for one item. The result
// must equal the item's stored quantity_available.
func (r *inventoryRepo) SumMovementDeltas(itemID uuid.UUID) (int, error) {
	var sum int
	err := r.db.Model(&model.InventoryMovement{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(quantity_delta), 0)").
		Scan(&sum).Error
	return sum, err
}

// LowStockItems returns items at or below their reorder level, most critical
// first.
func (r *inventoryRepo) LowStockItems(projectID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.Where("project_id = ? AND reorder_level IS NOT NULL AND quantity_available <= reorder_level", projectID).
		Order("(quantity_available - reorder_level) ASC").
		Find(&items).Error
	return items, err
}

func (r *inventoryRepo) SearchItems(projectID uuid.UUID, term string) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	pattern := "%" + term + "%"
	err := r.db.Where("project_id = ?", projectID).
		Where("sku LIKE ? OR name LIKE ? OR location LIKE ?", pattern, pattern, pattern).
		Order("sku ASC").
		Find(&items).Error
	return items, err
}

func (r *inventoryRepo) SearchMovements(projectID uuid.UUID, filter MovementFilter) ([]model.InventoryMovement, error) {
	q := r.db.Where("project_id = ?", projectID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.ReferenceType != "" {
		q = q.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		q = q.Where("reference_id = ?", *filter.ReferenceID)
	}
	var movements []model.InventoryMovement
	err := q.Order("created_at DESC").Find(&movements).Error
	return movements, err
}

// MovementSummary aggregates in/out quantities per day for dashboard charts.
func (r *inventoryRepo) MovementSummary(projectID uuid.UUID, startDate, endDate time.Time) ([]MovementSummaryRow, error) {
	var results []MovementSummaryRow

	rows, err := r.db.Model(&model.InventoryMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'in' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'out' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("project_id = ? AND created_at BETWEEN ? AND ?", projectID, startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row MovementSummaryRow
		if err := rows.Scan(&row.Date, &row.Inbound, &row.Outbound); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, nil
}
