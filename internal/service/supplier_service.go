package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
)

type SupplierRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	ContactInfo string `json:"contact_info" validate:"max=255"`
	Address     string `json:"address"`
}

type SupplierService interface {
	Create(ctx context.Context, actor Actor, req *SupplierRequest) (*model.Supplier, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *SupplierRequest) (*model.Supplier, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context) ([]model.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, actor Actor, req *SupplierRequest) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	supplier := &model.Supplier{Name: req.Name, ContactInfo: req.ContactInfo, Address: req.Address}
	supplier.CreatedBy = actor.auditID()
	supplier.UpdatedBy = actor.auditID()
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *SupplierRequest) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	supplier, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = req.Name
	supplier.ContactInfo = req.ContactInfo
	supplier.Address = req.Address
	supplier.UpdatedAt = time.Now()
	supplier.UpdatedBy = actor.auditID()
	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// Delete soft deletes the supplier. Past transactions keep their reference;
// new purchases and returns against it fail with not found.
func (s *supplierService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id, actor.auditID())
}

func (s *supplierService) List(ctx context.Context) ([]model.Supplier, error) {
	return s.repo.FindAll(ctx)
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	return s.repo.Get(ctx, id)
}
