package repository

import (
	"context"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindAll(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, category *model.Category) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error, "create category")
}

func (r *categoryRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, translate(err, "list categories")
}

func (r *categoryRepo) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category "+id.String())
	}
	return &category, nil
}

func (r *categoryRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translate(err, "category exists")
}

func (r *categoryRepo) Update(ctx context.Context, category *model.Category) error {
	res := r.db.WithContext(ctx).Model(category).Select("name", "updated_at", "updated_by").Updates(category)
	if res.Error != nil {
		return translate(res.Error, "update category")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "category "+category.ID.String())
	}
	return nil
}

// SoftDelete hides the category and detaches it from active products.
func (r *categoryRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Category{}).Where("id = ?", id).Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("NOW()"),
			"deleted_by": deletedBy,
		})
		if res.Error != nil {
			return translate(res.Error, "delete category")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "category "+id.String())
		}
		err := tx.Model(&model.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error
		return translate(err, "detach category")
	})
}
