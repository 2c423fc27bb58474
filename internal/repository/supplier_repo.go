package repository

import (
	"context"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindAll(ctx context.Context) ([]model.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, supplier *model.Supplier) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return translate(r.db.WithContext(ctx).Create(supplier).Error, "create supplier")
}

func (r *supplierRepo) FindAll(ctx context.Context) ([]model.Supplier, error) {
	suppliers := []model.Supplier{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error
	return suppliers, translate(err, "list suppliers")
}

func (r *supplierRepo) Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, translate(err, "supplier "+id.String())
	}
	return &supplier, nil
}

func (r *supplierRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translate(err, "supplier exists")
}

func (r *supplierRepo) Update(ctx context.Context, supplier *model.Supplier) error {
	res := r.db.WithContext(ctx).Model(supplier).
		Select("name", "contact_info", "address", "updated_at", "updated_by").
		Updates(supplier)
	if res.Error != nil {
		return translate(res.Error, "update supplier")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "supplier "+supplier.ID.String())
	}
	return nil
}

func (r *supplierRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
		"deleted_by": deletedBy,
	})
	if res.Error != nil {
		return translate(res.Error, "delete supplier")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "supplier "+id.String())
	}
	return nil
}
