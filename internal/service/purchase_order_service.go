package service

import (
	"errors"
	"strings"
	"time"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"
	"go-backoffice/internal/ws"
	"go-backoffice/pkg/database"
	"go-backoffice/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseOrderService owns the purchase order state machine:
// draft → pending → ordered → partial → received, with cancellation allowed
// only from draft/pending. Receiving posts inbound ledger movements in the
// same transaction as the receipt bookkeeping.
type PurchaseOrderService interface {
	CreateOrder(userID, projectID uuid.UUID, req *CreateOrderRequest) (*model.PurchaseOrder, error)
	UpdateOrder(userID, projectID, orderID uuid.UUID, req *UpdateOrderRequest) (*model.PurchaseOrder, error)
	GetOrder(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error)
	ListOrders(userID, projectID uuid.UUID, filter repository.OrderFilter) ([]model.PurchaseOrder, error)

	SubmitOrder(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error)
	MarkOrdered(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error)
	ReceiveItems(userID, projectID, orderID uuid.UUID, receipts []ReceiptRequest) (*model.PurchaseOrder, error)
	CancelOrder(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error)
	DeleteOrder(userID, projectID, orderID uuid.UUID) error
}

type OrderItemRequest struct {
	ItemID          uuid.UUID `json:"item_id" validate:"uuid_required"`
	Variant         string    `json:"variant"`
	QuantityOrdered int       `json:"quantity_ordered" validate:"required,gt=0"`
	UnitCost        int64     `json:"unit_cost" validate:"gte=0"`
}

type CreateOrderRequest struct {
	SupplierID uuid.UUID          `json:"supplier_id" validate:"uuid_required"`
	Notes      string             `json:"notes"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	SupplierID *uuid.UUID         `json:"supplier_id,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	Items      []OrderItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// ReceiptRequest records a delivery against one order line, keyed by the
// inventory item the line replenishes.
type ReceiptRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"uuid_required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

type purchaseOrderService struct {
	tenancy       TenancyService
	ledger        LedgerService
	orderRepo     repository.PurchaseOrderRepository
	supplierRepo  repository.SupplierRepository
	inventoryRepo repository.InventoryRepository
	db            *gorm.DB
	hub           *ws.Hub
}

func NewPurchaseOrderService(
	tenancy TenancyService,
	ledger LedgerService,
	orderRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	inventoryRepo repository.InventoryRepository,
	db *gorm.DB,
	hub *ws.Hub,
) PurchaseOrderService {
	return &purchaseOrderService{
		tenancy:       tenancy,
		ledger:        ledger,
		orderRepo:     orderRepo,
		supplierRepo:  supplierRepo,
		inventoryRepo: inventoryRepo,
		db:            db,
		hub:           hub,
	}
}

func (s *purchaseOrderService) CreateOrder(userID, projectID uuid.UUID, req *CreateOrderRequest) (*model.PurchaseOrder, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionOrderWrite); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if _, err := s.supplierRepo.FindByID(projectID, req.SupplierID); err != nil {
		return nil, supplierNotFound(err)
	}

	items, err := s.buildItems(projectID, req.Items)
	if err != nil {
		return nil, err
	}

	order := &model.PurchaseOrder{
		ProjectID:   projectID,
		SupplierID:  req.SupplierID,
		OrderNumber: newOrderNumber(),
		Status:      model.OrderDraft,
		OrderDate:   time.Now(),
		Notes:       req.Notes,
		Items:       items,
	}
	order.RecomputeTotal()
	order.CreatedBy = userID.String()
	order.UpdatedBy = userID.String()

	if err := s.orderRepo.Create(order); err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to create order", err)
	}

	s.publish("order_update", "order_created", projectID, order)
	return order, nil
}

// buildItems validates every requested line against the project's inventory
// and computes line totals.
func (s *purchaseOrderService) buildItems(projectID uuid.UUID, reqs []OrderItemRequest) ([]model.PurchaseOrderItem, error) {
	items := make([]model.PurchaseOrderItem, 0, len(reqs))
	seen := make(map[uuid.UUID]bool, len(reqs))
	for _, req := range reqs {
		if seen[req.ItemID] {
			return nil, apperr.Validation("duplicate inventory item in order lines")
		}
		seen[req.ItemID] = true

		if _, err := s.inventoryRepo.FindByID(projectID, req.ItemID); err != nil {
			return nil, itemNotFound(err)
		}
		items = append(items, model.PurchaseOrderItem{
			ItemID:          req.ItemID,
			Variant:         req.Variant,
			QuantityOrdered: req.QuantityOrdered,
			UnitCost:        req.UnitCost,
			TotalCost:       int64(req.QuantityOrdered) * req.UnitCost,
		})
	}
	return items, nil
}

// UpdateOrder edits a draft order. Once submitted, lines are frozen and only
// the state machine moves the order forward.
func (s *purchaseOrderService) UpdateOrder(userID, projectID, orderID uuid.UUID, req *UpdateOrderRequest) (*model.PurchaseOrder, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionOrderWrite); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	var updated *model.PurchaseOrder
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		order, err := s.orderRepo.LockByID(tx, projectID, orderID)
		if err != nil {
			return orderNotFound(err)
		}
		if !order.Editable() {
			return apperr.Newf(apperr.KindInvalidStateTransition,
				"order %s is '%s' and no longer editable", order.OrderNumber, order.Status)
		}

		if req.SupplierID != nil {
			if _, err := s.supplierRepo.FindByID(projectID, *req.SupplierID); err != nil {
				return supplierNotFound(err)
			}
			order.SupplierID = *req.SupplierID
		}
		if req.Notes != nil {
			order.Notes = *req.Notes
		}
		if req.Items != nil {
			items, err := s.buildItems(projectID, req.Items)
			if err != nil {
				return err
			}
			if err := s.orderRepo.ReplaceItems(tx, order, items); err != nil {
				return err
			}
		}
		order.RecomputeTotal()
		order.UpdatedBy = userID.String()

		if err := s.orderRepo.SaveTx(tx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to update order")
	}

	s.publish("order_update", "order_updated", projectID, updated)
	return updated, nil
}

func (s *purchaseOrderService) GetOrder(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(projectID, orderID)
	if err != nil {
		return nil, orderNotFound(err)
	}
	return order, nil
}

func (s *purchaseOrderService) ListOrders(userID, projectID uuid.UUID, filter repository.OrderFilter) ([]model.PurchaseOrder, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindAll(projectID, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to list orders", err)
	}
	return orders, nil
}

// SubmitOrder moves draft → pending after checking every line carries a
// positive quantity and a unit cost.
func (s *purchaseOrderService) SubmitOrder(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	return s.transition(userID, projectID, orderID, model.OrderPending, func(tx *gorm.DB, order *model.PurchaseOrder) error {
		if len(order.Items) == 0 {
			return apperr.Validation("order has no items")
		}
		for i := range order.Items {
			if order.Items[i].QuantityOrdered <= 0 {
				return apperr.Validation("every line needs a positive quantity")
			}
			if order.Items[i].UnitCost <= 0 {
				return apperr.Validation("every line needs a unit cost before submission")
			}
		}
		return nil
	})
}

// MarkOrdered moves pending → ordered and books the ordered quantities onto
// each inventory item's quantity_on_order.
func (s *purchaseOrderService) MarkOrdered(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	return s.transition(userID, projectID, orderID, model.OrderOrdered, func(tx *gorm.DB, order *model.PurchaseOrder) error {
		for i := range order.Items {
			item, err := s.inventoryRepo.LockByID(tx, projectID, order.Items[i].ItemID)
			if err != nil {
				return itemNotFound(err)
			}
			item.QuantityOnOrder += order.Items[i].QuantityOrdered
			item.UpdatedBy = userID.String()
			if err := s.inventoryRepo.SaveTx(tx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// CancelOrder is terminal and only reachable from draft/pending.
func (s *purchaseOrderService) CancelOrder(userID, projectID, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	return s.transition(userID, projectID, orderID, model.OrderCancelled, nil)
}

// transition applies one state machine edge inside a transaction, running
// prepare (if any) before the status flips.
func (s *purchaseOrderService) transition(
	userID, projectID, orderID uuid.UUID,
	next model.OrderStatus,
	prepare func(tx *gorm.DB, order *model.PurchaseOrder) error,
) (*model.PurchaseOrder, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionOrderLifecycle); err != nil {
		return nil, err
	}

	var updated *model.PurchaseOrder
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		order, err := s.orderRepo.LockByID(tx, projectID, orderID)
		if err != nil {
			return orderNotFound(err)
		}
		if !order.Status.CanTransitionTo(next) {
			return apperr.Newf(apperr.KindInvalidStateTransition,
				"cannot move order %s from '%s' to '%s'", order.OrderNumber, order.Status, next)
		}
		if prepare != nil {
			if err := prepare(tx, order); err != nil {
				return err
			}
		}
		order.Status = next
		order.UpdatedBy = userID.String()
		if err := s.orderRepo.SaveTx(tx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to update order status")
	}

	s.publish("order_update", "order_"+string(next), projectID, updated)
	return updated, nil
}

// ReceiveItems reconciles a delivery against the order. Every receipt is
// validated against the remaining quantity first; one excess receipt rejects
// the whole call with nothing applied. Accepted receipts update the order
// line, release quantity_on_order, and post an inbound ledger movement, all
// in one transaction spanning both aggregates.
func (s *purchaseOrderService) ReceiveItems(userID, projectID, orderID uuid.UUID, receipts []ReceiptRequest) (*model.PurchaseOrder, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionOrderLifecycle); err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, apperr.Validation("no receipts given")
	}
	for _, receipt := range receipts {
		if err := validator.ValidateStruct(&receipt); err != nil {
			return nil, apperr.Validation(err.Error())
		}
	}

	var updated *model.PurchaseOrder
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		order, err := s.orderRepo.LockByID(tx, projectID, orderID)
		if err != nil {
			return orderNotFound(err)
		}
		if order.Status != model.OrderOrdered && order.Status != model.OrderPartial {
			return apperr.Newf(apperr.KindInvalidStateTransition,
				"order %s is '%s'; receipts require 'ordered' or 'partial'", order.OrderNumber, order.Status)
		}

		lines := make(map[uuid.UUID]*model.PurchaseOrderItem, len(order.Items))
		for i := range order.Items {
			lines[order.Items[i].ItemID] = &order.Items[i]
		}

		// Validate everything before touching state.
		planned := make(map[uuid.UUID]int, len(receipts))
		for _, receipt := range receipts {
			line, ok := lines[receipt.ItemID]
			if !ok {
				return apperr.NotFound("order has no line for the given item")
			}
			planned[receipt.ItemID] += receipt.Quantity
			if planned[receipt.ItemID] > line.Remaining() {
				return apperr.Newf(apperr.KindExcessReceipt,
					"receipt of %d exceeds remaining %d on order %s",
					planned[receipt.ItemID], line.Remaining(), order.OrderNumber)
			}
		}

		for _, receipt := range receipts {
			line := lines[receipt.ItemID]
			line.QuantityReceived += receipt.Quantity
			line.UpdatedBy = userID.String()
			if err := s.orderRepo.SaveItemTx(tx, line); err != nil {
				return err
			}

			item, err := s.inventoryRepo.LockByID(tx, projectID, line.ItemID)
			if err != nil {
				return itemNotFound(err)
			}
			item.QuantityOnOrder -= receipt.Quantity
			if item.QuantityOnOrder < 0 {
				item.QuantityOnOrder = 0
			}

			if _, err := s.ledger.ApplyMovementTx(tx, userID, item, &MovementRequest{
				Type:          model.MovementIn,
				Quantity:      receipt.Quantity,
				UnitCost:      &line.UnitCost,
				ReferenceType: model.ReferencePurchaseOrder,
				ReferenceID:   &order.ID,
			}); err != nil {
				return err
			}
		}

		switch {
		case order.FullyReceived():
			order.Status = model.OrderReceived
		case order.AnyReceived():
			order.Status = model.OrderPartial
		}
		order.UpdatedBy = userID.String()
		if err := s.orderRepo.SaveTx(tx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to receive items")
	}

	s.publish("order_update", "order_received_items", projectID, updated)
	return updated, nil
}

// DeleteOrder removes a draft/pending order and its lines.
func (s *purchaseOrderService) DeleteOrder(userID, projectID, orderID uuid.UUID) error {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionOrderLifecycle); err != nil {
		return err
	}

	order, err := s.orderRepo.FindByID(projectID, orderID)
	if err != nil {
		return orderNotFound(err)
	}
	if !order.Deletable() {
		return apperr.Newf(apperr.KindInvalidStateTransition,
			"order %s is '%s' and cannot be deleted", order.OrderNumber, order.Status)
	}

	if err := s.orderRepo.Delete(order); err != nil {
		return apperr.Wrap(apperr.KindInfrastructure, "failed to delete order", err)
	}

	s.publish("order_update", "order_deleted", projectID, order)
	return nil
}

func (s *purchaseOrderService) publish(eventType, action string, projectID uuid.UUID, data interface{}) {
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

// newOrderNumber generates a short human-readable order reference.
func newOrderNumber() string {
	return "PO-" + strings.ToUpper(uuid.NewString()[:8])
}

func orderNotFound(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("purchase order not found")
	}
	return apperr.Wrap(apperr.KindInfrastructure, "failed to load order", err)
}

func supplierNotFound(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("supplier not found")
	}
	return apperr.Wrap(apperr.KindInfrastructure, "failed to load supplier", err)
}
