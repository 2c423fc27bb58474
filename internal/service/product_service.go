package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	SKU         string          `json:"sku" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Unit        string          `json:"unit" validate:"max=20"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	// StockQuantity is the opening stock; edits never change stock.
	StockQuantity int        `json:"stock_quantity" validate:"gte=0"`
	CategoryID    *uuid.UUID `json:"category_id"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, actor Actor, req *ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req *ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error
	GetProducts(ctx context.Context, search string) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

type productService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	notifier   Notifier
	now        func() time.Time
}

func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository, notifier Notifier) ProductService {
	return &productService{
		products:   products,
		categories: categories,
		notifier:   notifierOrNoop(notifier),
		now:        time.Now,
	}
}

func (s *productService) CreateProduct(ctx context.Context, actor Actor, req *ProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.checkSKU(ctx, req.SKU, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &model.Product{
		SKU:             req.SKU,
		Name:            req.Name,
		Description:     req.Description,
		Unit:            req.Unit,
		Price:           req.Price,
		StockQuantity:   req.StockQuantity,
		CategoryID:      req.CategoryID,
		CreatedByUserID: actor.userRef(),
		UpdatedByUserID: actor.userRef(),
	}
	product.CreatedBy = actor.auditID()
	product.UpdatedBy = actor.auditID()
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.notifier.Publish(map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_created",
		"product": productPayload(product),
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
	})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req *ProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	existing, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSKU(ctx, req.SKU, id); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	existing.SKU = req.SKU
	existing.Name = req.Name
	existing.Description = req.Description
	existing.Unit = req.Unit
	existing.Price = req.Price
	existing.CategoryID = req.CategoryID
	existing.UpdatedAt = s.now()
	existing.UpdatedBy = actor.auditID()
	existing.UpdatedByUserID = actor.userRef()
	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.notifier.Publish(map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_updated",
		"product": productPayload(existing),
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s updated product '%s'", actor.Name, existing.Name),
	})
	return existing, nil
}

func (s *productService) DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.SoftDelete(ctx, id, actor.auditID()); err != nil {
		return err
	}

	s.notifier.Publish(map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_deleted",
		"product": productPayload(product),
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s deleted product '%s'", actor.Name, product.Name),
	})
	return nil
}

func (s *productService) GetProducts(ctx context.Context, search string) ([]model.Product, error) {
	return s.products.FindAll(ctx, search)
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.products.Get(ctx, id)
}

// checkSKU fails with ErrConflict when another live product uses sku.
func (s *productService) checkSKU(ctx context.Context, sku string, self uuid.UUID) error {
	existing, err := s.products.FindBySKU(ctx, sku)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return fmt.Errorf("%w: SKU %s already exists", model.ErrConflict, sku)
	}
	return nil
}

func (s *productService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	exists, err := s.categories.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: category %s", model.ErrNotFound, *id)
	}
	return nil
}
