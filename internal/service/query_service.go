package service

import (
	"time"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"

	"github.com/google/uuid"
)

// QueryService is the read-only search surface over items, movements, and
// orders. Authorized like everything else, but lock-free: snapshot reads are
// sufficient.
type QueryService interface {
	Search(userID, projectID uuid.UUID, term string, filter SearchFilter) (*SearchResults, error)
	MovementSummary(userID, projectID uuid.UUID, days int) ([]repository.MovementSummaryRow, error)
}

type SearchFilter struct {
	MovementType model.MovementType `json:"movement_type,omitempty"`
	OrderStatus  model.OrderStatus  `json:"order_status,omitempty"`
	SupplierID   *uuid.UUID         `json:"supplier_id,omitempty"`
}

type SearchResults struct {
	Items     []model.InventoryItem     `json:"items"`
	Movements []model.InventoryMovement `json:"movements"`
	Orders    []model.PurchaseOrder     `json:"orders"`
}

type queryService struct {
	tenancy       TenancyService
	inventoryRepo repository.InventoryRepository
	orderRepo     repository.PurchaseOrderRepository
}

func NewQueryService(tenancy TenancyService, inventoryRepo repository.InventoryRepository, orderRepo repository.PurchaseOrderRepository) QueryService {
	return &queryService{
		tenancy:       tenancy,
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
	}
}

func (s *queryService) Search(userID, projectID uuid.UUID, term string, filter SearchFilter) (*SearchResults, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}

	results := &SearchResults{}

	items, err := s.inventoryRepo.SearchItems(projectID, term)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "item search failed", err)
	}
	results.Items = items

	movements, err := s.inventoryRepo.SearchMovements(projectID, repository.MovementFilter{
		Type: filter.MovementType,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "movement search failed", err)
	}
	results.Movements = movements

	orders, err := s.orderRepo.FindAll(projectID, repository.OrderFilter{
		Status:     filter.OrderStatus,
		SupplierID: filter.SupplierID,
		Term:       term,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "order search failed", err)
	}
	results.Orders = orders

	return results, nil
}

// MovementSummary aggregates daily in/out quantities over the trailing
// window for the back-office movement chart.
func (s *queryService) MovementSummary(userID, projectID uuid.UUID, days int) ([]repository.MovementSummaryRow, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	rows, err := s.inventoryRepo.MovementSummary(projectID, startDate, endDate)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to aggregate movements", err)
	}
	return rows, nil
}
