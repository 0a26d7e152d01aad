package service

import (
	"errors"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"
	"go-backoffice/internal/ws"
	"go-backoffice/pkg/database"
	"go-backoffice/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService owns inventory items and the append-only movement ledger.
// Balances change only through movements; every mutation runs inside one
// transaction with the item row locked.
type LedgerService interface {
	CreateItem(userID, projectID uuid.UUID, req *CreateItemRequest) (*model.InventoryItem, error)
	UpdateItem(userID, projectID, itemID uuid.UUID, req *UpdateItemRequest) (*model.InventoryItem, error)
	DeleteItem(userID, projectID, itemID uuid.UUID) error
	GetItem(userID, projectID, itemID uuid.UUID) (*model.InventoryItem, error)
	ListItems(userID, projectID uuid.UUID) ([]model.InventoryItem, error)

	PostMovement(userID, projectID, itemID uuid.UUID, req *MovementRequest) (*model.InventoryItem, error)
	ListMovements(userID, projectID, itemID uuid.UUID) ([]model.InventoryMovement, error)
	ReconstructBalance(userID, projectID, itemID uuid.UUID) (int, error)

	// ApplyMovementTx posts a movement against an item row the caller has
	// already locked inside tx. Used by the purchase order workflow so a
	// receipt and its ledger movement commit together.
	ApplyMovementTx(tx *gorm.DB, userID uuid.UUID, item *model.InventoryItem, req *MovementRequest) (*model.InventoryMovement, error)
}

type CreateItemRequest struct {
	SKU             string `json:"sku" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Location        string `json:"location"`
	InitialQuantity int    `json:"initial_quantity" validate:"gte=0"`
	ReorderLevel    *int   `json:"reorder_level,omitempty"`
	ReorderQuantity *int   `json:"reorder_quantity,omitempty"`
	UnitCost        int64  `json:"unit_cost" validate:"gte=0"`
	AllowBackorder  bool   `json:"allow_backorder"`
}

type UpdateItemRequest struct {
	Name            *string `json:"name,omitempty"`
	Location        *string `json:"location,omitempty"`
	ReorderLevel    *int    `json:"reorder_level,omitempty"`
	ReorderQuantity *int    `json:"reorder_quantity,omitempty"`
	UnitCost        *int64  `json:"unit_cost,omitempty"`
	AllowBackorder  *bool   `json:"allow_backorder,omitempty"`
}

type MovementRequest struct {
	Type model.MovementType `json:"type" validate:"required,oneof=in out adjustment transfer"`

	// Quantity is the unsigned magnitude for in/out/transfer movements.
	Quantity int `json:"quantity"`

	// TargetQuantity is the balance an adjustment sets; the stored magnitude
	// is the distance from the current balance.
	TargetQuantity *int `json:"target_quantity,omitempty"`

	// NewLocation is where a transfer moves the stock.
	NewLocation string `json:"new_location,omitempty"`

	UnitCost      *int64     `json:"unit_cost,omitempty"`
	ReferenceType string     `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	Note          string     `json:"note,omitempty"`
}

type ledgerService struct {
	tenancy       TenancyService
	inventoryRepo repository.InventoryRepository
	db            *gorm.DB
	hub           *ws.Hub
}

func NewLedgerService(tenancy TenancyService, inventoryRepo repository.InventoryRepository, db *gorm.DB, hub *ws.Hub) LedgerService {
	return &ledgerService{
		tenancy:       tenancy,
		inventoryRepo: inventoryRepo,
		db:            db,
		hub:           hub,
	}
}

func (s *ledgerService) CreateItem(userID, projectID uuid.UUID, req *CreateItemRequest) (*model.InventoryItem, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionItemWrite); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if existing, _ := s.inventoryRepo.FindBySKU(projectID, req.SKU); existing != nil && existing.ID != uuid.Nil {
		return nil, apperr.Newf(apperr.KindValidation, "SKU '%s' already exists in this project", req.SKU)
	}
	if req.ReorderLevel != nil && *req.ReorderLevel < 0 {
		return nil, apperr.Validation("reorder_level must not be negative")
	}
	if req.ReorderQuantity != nil && *req.ReorderQuantity < 0 {
		return nil, apperr.Validation("reorder_quantity must not be negative")
	}

	item := &model.InventoryItem{
		ProjectID:       projectID,
		SKU:             req.SKU,
		Name:            req.Name,
		Location:        req.Location,
		ReorderLevel:    req.ReorderLevel,
		ReorderQuantity: req.ReorderQuantity,
		UnitCost:        req.UnitCost,
		AllowBackorder:  req.AllowBackorder,
	}
	item.CreatedBy = userID.String()
	item.UpdatedBy = userID.String()

	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		// Opening stock enters through the ledger so the balance stays
		// reconstructable from movements alone.
		if req.InitialQuantity > 0 {
			_, err := s.ApplyMovementTx(tx, userID, item, &MovementRequest{
				Type:          model.MovementIn,
				Quantity:      req.InitialQuantity,
				UnitCost:      &req.UnitCost,
				ReferenceType: model.ReferenceInitialStock,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to create item")
	}

	s.publish("stock_update", "item_created", projectID, item)
	return item, nil
}

func (s *ledgerService) UpdateItem(userID, projectID, itemID uuid.UUID, req *UpdateItemRequest) (*model.InventoryItem, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionItemWrite); err != nil {
		return nil, err
	}

	item, err := s.inventoryRepo.FindByID(projectID, itemID)
	if err != nil {
		return nil, itemNotFound(err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		item.Name = *req.Name
	}
	if req.Location != nil {
		item.Location = *req.Location
	}
	if req.ReorderLevel != nil {
		if *req.ReorderLevel < 0 {
			return nil, apperr.Validation("reorder_level must not be negative")
		}
		item.ReorderLevel = req.ReorderLevel
	}
	if req.ReorderQuantity != nil {
		if *req.ReorderQuantity < 0 {
			return nil, apperr.Validation("reorder_quantity must not be negative")
		}
		item.ReorderQuantity = req.ReorderQuantity
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.AllowBackorder != nil {
		item.AllowBackorder = *req.AllowBackorder
	}
	item.UpdatedBy = userID.String()

	if err := s.inventoryRepo.Update(item); err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to update item", err)
	}

	s.publish("stock_update", "item_updated", projectID, item)
	return item, nil
}

// DeleteItem removes an item that has never moved. Items with ledger history
// are immutable records and cannot be deleted.
func (s *ledgerService) DeleteItem(userID, projectID, itemID uuid.UUID) error {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionItemDelete); err != nil {
		return err
	}

	item, err := s.inventoryRepo.FindByID(projectID, itemID)
	if err != nil {
		return itemNotFound(err)
	}

	count, err := s.inventoryRepo.CountMovements(item.ID)
	if err != nil {
		return apperr.Wrap(apperr.KindInfrastructure, "failed to count movements", err)
	}
	if count > 0 {
		return apperr.Validation("item has ledger movements and cannot be deleted")
	}

	if err := s.inventoryRepo.Delete(item.ID); err != nil {
		return apperr.Wrap(apperr.KindInfrastructure, "failed to delete item", err)
	}

	s.publish("stock_update", "item_deleted", projectID, item)
	return nil
}

func (s *ledgerService) GetItem(userID, projectID, itemID uuid.UUID) (*model.InventoryItem, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}
	item, err := s.inventoryRepo.FindByID(projectID, itemID)
	if err != nil {
		return nil, itemNotFound(err)
	}
	return item, nil
}

func (s *ledgerService) ListItems(userID, projectID uuid.UUID) ([]model.InventoryItem, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}
	items, err := s.inventoryRepo.FindAll(projectID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to list items", err)
	}
	return items, nil
}

// PostMovement applies one typed movement to an item: lock the row, compute
// the new balance, persist the item and the movement together.
func (s *ledgerService) PostMovement(userID, projectID, itemID uuid.UUID, req *MovementRequest) (*model.InventoryItem, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionMovementCreate); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	var updated *model.InventoryItem
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		item, err := s.inventoryRepo.LockByID(tx, projectID, itemID)
		if err != nil {
			return itemNotFound(err)
		}
		if _, err := s.ApplyMovementTx(tx, userID, item, req); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to post movement")
	}

	s.publish("stock_update", "movement_posted", projectID, updated)
	return updated, nil
}

// ApplyMovementTx computes and persists the balance effect of one movement.
// The item must already be locked inside tx; the item row and the movement
// row are written together or not at all.
func (s *ledgerService) ApplyMovementTx(tx *gorm.DB, userID uuid.UUID, item *model.InventoryItem, req *MovementRequest) (*model.InventoryMovement, error) {
	var (
		magnitude int
		delta     int
	)

	movement := &model.InventoryMovement{
		ItemID:        item.ID,
		ProjectID:     item.ProjectID,
		Type:          req.Type,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Note:          req.Note,
		CreatedBy:     userID.String(),
	}

	switch req.Type {
	case model.MovementIn:
		if req.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be greater than zero")
		}
		magnitude = req.Quantity
		delta = req.Quantity

	case model.MovementOut:
		if req.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be greater than zero")
		}
		if item.QuantityAvailable-req.Quantity < 0 && !item.AllowBackorder {
			return nil, apperr.Newf(apperr.KindInsufficientStock,
				"insufficient stock for '%s': available %d, requested %d",
				item.SKU, item.QuantityAvailable, req.Quantity)
		}
		magnitude = req.Quantity
		delta = -req.Quantity

	case model.MovementAdjustment:
		if req.TargetQuantity == nil {
			return nil, apperr.Validation("adjustment requires target_quantity")
		}
		if *req.TargetQuantity < 0 {
			return nil, apperr.Validation("target_quantity must not be negative")
		}
		delta = *req.TargetQuantity - item.QuantityAvailable
		if delta == 0 {
			return nil, apperr.Validation("adjustment target equals current balance")
		}
		magnitude = delta
		if magnitude < 0 {
			magnitude = -magnitude
		}

	case model.MovementTransfer:
		if req.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be greater than zero")
		}
		if req.NewLocation == "" {
			return nil, apperr.Validation("transfer requires new_location")
		}
		magnitude = req.Quantity
		delta = 0
		movement.FromLocation = item.Location
		movement.ToLocation = req.NewLocation
		item.Location = req.NewLocation

	default:
		return nil, apperr.Newf(apperr.KindValidation, "unknown movement type '%s'", req.Type)
	}

	movement.Quantity = magnitude
	movement.QuantityDelta = delta
	if req.UnitCost != nil {
		movement.UnitCost = *req.UnitCost
		movement.TotalCost = int64(magnitude) * *req.UnitCost
	}

	item.QuantityAvailable += delta
	if req.Type == model.MovementIn && req.UnitCost != nil && *req.UnitCost > 0 {
		s.applyCost(item, magnitude, *req.UnitCost)
	}
	item.UpdatedBy = userID.String()

	if err := s.inventoryRepo.SaveTx(tx, item); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.CreateMovement(tx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// applyCost updates last and weighted-average cost after a costed inbound
// movement. The balance already includes the received quantity.
func (s *ledgerService) applyCost(item *model.InventoryItem, quantity int, unitCost int64) {
	item.LastCost = unitCost
	onHandAfter := item.QuantityAvailable
	previous := onHandAfter - quantity
	if previous <= 0 || item.AverageCost == 0 {
		item.AverageCost = unitCost
		return
	}
	item.AverageCost = (item.AverageCost*int64(previous) + unitCost*int64(quantity)) / int64(onHandAfter)
}

func (s *ledgerService) ListMovements(userID, projectID, itemID uuid.UUID) ([]model.InventoryMovement, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}
	if _, err := s.inventoryRepo.FindByID(projectID, itemID); err != nil {
		return nil, itemNotFound(err)
	}
	movements, err := s.inventoryRepo.MovementsByItem(itemID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to list movements", err)
	}
	return movements, nil
}

// ReconstructBalance folds the signed ledger deltas for an item. Always
// equals the stored quantity_available.
func (s *ledgerService) ReconstructBalance(userID, projectID, itemID uuid.UUID) (int, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return 0, err
	}
	if _, err := s.inventoryRepo.FindByID(projectID, itemID); err != nil {
		return 0, itemNotFound(err)
	}
	sum, err := s.inventoryRepo.SumMovementDeltas(itemID)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInfrastructure, "failed to sum movements", err)
	}
	return sum, nil
}

func (s *ledgerService) publish(eventType, action string, projectID uuid.UUID, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(ws.Event{
		Type:      eventType,
		Action:    action,
		ProjectID: projectID.String(),
		Data:      data,
	})
}

// itemNotFound maps a repository miss to NotFound, passing structured errors
// through untouched.
func itemNotFound(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("item not found")
	}
	return apperr.Wrap(apperr.KindInfrastructure, "failed to load item", err)
}

// wrapStoreErr keeps structured errors intact and classifies anything else
// as a conflict (after retries) or an infrastructure failure.
func wrapStoreErr(err error, message string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if database.IsSerializationFailure(err) {
		return apperr.Wrap(apperr.KindConcurrencyConflict, message, err)
	}
	return apperr.Wrap(apperr.KindInfrastructure, message, err)
}
