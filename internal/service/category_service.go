package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CategoryService interface {
	Create(ctx context.Context, actor Actor, req *CategoryRequest) (*model.Category, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Category, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, actor Actor, req *CategoryRequest) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	category := &model.Category{Name: req.Name}
	category.CreatedBy = actor.auditID()
	category.UpdatedBy = actor.auditID()
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *CategoryRequest) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	category.UpdatedAt = time.Now()
	category.UpdatedBy = actor.auditID()
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete soft deletes the category; its products become uncategorised.
func (s *categoryService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id, actor.auditID())
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.FindAll(ctx)
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return s.repo.Get(ctx, id)
}
