package service

import (
	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"
	"go-backoffice/pkg/validator"

	"github.com/google/uuid"
)

// SupplierService manages the project-scoped vendor records purchase orders
// reference. Deletion is an explicit invariant check here, not a UI-side
// query: a supplier with orders cannot be removed.
type SupplierService interface {
	CreateSupplier(userID, projectID uuid.UUID, req *SupplierRequest) (*model.Supplier, error)
	UpdateSupplier(userID, projectID, supplierID uuid.UUID, req *SupplierRequest) (*model.Supplier, error)
	DeleteSupplier(userID, projectID, supplierID uuid.UUID) error
	ListSuppliers(userID, projectID uuid.UUID) ([]model.Supplier, error)
}

type SupplierRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type supplierService struct {
	tenancy      TenancyService
	supplierRepo repository.SupplierRepository
	orderRepo    repository.PurchaseOrderRepository
}

func NewSupplierService(tenancy TenancyService, supplierRepo repository.SupplierRepository, orderRepo repository.PurchaseOrderRepository) SupplierService {
	return &supplierService{
		tenancy:      tenancy,
		supplierRepo: supplierRepo,
		orderRepo:    orderRepo,
	}
}

func (s *supplierService) CreateSupplier(userID, projectID uuid.UUID, req *SupplierRequest) (*model.Supplier, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionSupplierWrite); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	supplier := &model.Supplier{
		ProjectID: projectID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
	}
	supplier.CreatedBy = userID.String()
	supplier.UpdatedBy = userID.String()

	if err := s.supplierRepo.Create(supplier); err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to create supplier", err)
	}
	return supplier, nil
}

func (s *supplierService) UpdateSupplier(userID, projectID, supplierID uuid.UUID, req *SupplierRequest) (*model.Supplier, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionSupplierWrite); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	supplier, err := s.supplierRepo.FindByID(projectID, supplierID)
	if err != nil {
		return nil, supplierNotFound(err)
	}

	supplier.Name = req.Name
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Notes = req.Notes
	supplier.UpdatedBy = userID.String()

	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to update supplier", err)
	}
	return supplier, nil
}

func (s *supplierService) DeleteSupplier(userID, projectID, supplierID uuid.UUID) error {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionSupplierDelete); err != nil {
		return err
	}

	supplier, err := s.supplierRepo.FindByID(projectID, supplierID)
	if err != nil {
		return supplierNotFound(err)
	}

	count, err := s.orderRepo.CountBySupplier(projectID, supplierID)
	if err != nil {
		return apperr.Wrap(apperr.KindInfrastructure, "failed to check supplier orders", err)
	}
	if count > 0 {
		return apperr.Newf(apperr.KindValidation,
			"supplier '%s' has purchase orders and cannot be deleted", supplier.Name)
	}

	if err := s.supplierRepo.Delete(supplier.ID); err != nil {
		return apperr.Wrap(apperr.KindInfrastructure, "failed to delete supplier", err)
	}
	return nil
}

func (s *supplierService) ListSuppliers(userID, projectID uuid.UUID) ([]model.Supplier, error) {
	if err := s.tenancy.Authorize(userID, projectID, model.ActionRead); err != nil {
		return nil, err
	}
	suppliers, err := s.supplierRepo.FindAll(projectID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInfrastructure, "failed to list suppliers", err)
	}
	return suppliers, nil
}
