package repository

import (
	"context"
	"strings"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, search string) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, product *model.Product) error
	ConditionalUpdateQuantity(ctx context.Context, id uuid.UUID, expected, next int) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error
	GetStats(ctx context.Context, lowStockThreshold int) (*ProductStats, error)
}

// ProductStats backs the dashboard overview.
type ProductStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

// productColumns are the fields a catalog edit may write. Stock is moved by
// ConditionalUpdateQuantity only.
var productColumns = []string{"sku", "name", "description", "unit", "price", "category_id", "updated_at", "updated_by", "updated_by_user_id"}

type productRepo struct {
	db        *gorm.DB
	forUpdate bool
}

// NewProductRepo returns a repository over db. Every read goes through gorm's
// soft delete scope, so deleted products behave as absent.
func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

// NewProductRepoForUpdate is NewProductRepo for use inside a database
// transaction: Get takes a row lock (SELECT ... FOR UPDATE) so the read sees
// the latest committed stock under any isolation level.
func NewProductRepoForUpdate(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx, forUpdate: true}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error, "create product")
}

func (r *productRepo) FindAll(ctx context.Context, search string) ([]model.Product, error) {
	products := []model.Product{}
	q := r.db.WithContext(ctx).Order("name ASC")
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	err := q.Find(&products).Error
	return products, translate(err, "list products")
}

func (r *productRepo) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	q := r.db.WithContext(ctx)
	if r.forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product "+id.String())
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, translate(err, "product sku "+sku)
	}
	return &product, nil
}

func (r *productRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translate(err, "product exists")
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select(productColumns).Updates(product)
	if res.Error != nil {
		return translate(res.Error, "update product")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "product "+product.ID.String())
	}
	return nil
}

// ConditionalUpdateQuantity writes next only while the stored quantity still
// equals expected. false means another writer got there first, or the product
// was deleted in between.
func (r *productRepo) ConditionalUpdateQuantity(ctx context.Context, id uuid.UUID, expected, next int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock_quantity = ?", id, expected).
		Update("stock_quantity", next)
	if res.Error != nil {
		return false, translate(res.Error, "update stock")
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
		"deleted_by": deletedBy,
	})
	if res.Error != nil {
		return translate(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "product "+id.String())
	}
	return nil
}

func (r *productRepo) GetStats(ctx context.Context, lowStockThreshold int) (*ProductStats, error) {
	var stats ProductStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, translate(err, "count products")
	}
	if err := db.Model(&model.Product{}).Where("stock_quantity < ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, translate(err, "count low stock")
	}

	var row struct{ Valuation decimal.Decimal }
	if err := db.Model(&model.Product{}).Select("COALESCE(SUM(stock_quantity * price), 0) AS valuation").Scan(&row).Error; err != nil {
		return nil, translate(err, "stock valuation")
	}
	stats.TotalValuation = row.Valuation
	return &stats, nil
}
