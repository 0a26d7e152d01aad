package service

import (
	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"

	"github.com/google/uuid"
)

// ReorderService is a read-only scan over the ledger for replenishment
// signals. It takes no locks and mutates nothing.
type ReorderService interface {
	Scan(userID, projectID uuid.UUID) ([]ReorderSuggestion, error)
}

// ReorderSuggestion pairs a low-stock item with the quantity to reorder.
type ReorderSuggestion struct {
	Item              model.InventoryItem `json:"item"`
	SuggestedQuantity int                 `json:"suggested_quantity"`
}

type reorderService struct {
	tenancy       TenancyService
	inventoryRepo repository.InventoryRepository
}

func NewReorderService(tenancy TenancyService, inventoryRepo repository.InventoryRepository) ReorderService {
	return &reorderService{tenancy: tenancy, inventoryRepo: inventoryRepo}
}

// Scan returns the project's low-stock items, most critical first (largest
// shortfall below the reorder level).
func (s *reorderService) Scan(userID, projectID uuid.UUID) ([]ReorderSuggestion, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}

	items, err := s.inventoryRepo.LowStockItems(projectID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to scan for low stock", err)
	}

	suggestions := make([]ReorderSuggestion, 0, len(items))
	for _, item := range items {
		suggestions = append(suggestions, ReorderSuggestion{
			Item:              item,
			SuggestedQuantity: item.SuggestReorderQuantity(),
		})
	}
	return suggestions, nil
}
