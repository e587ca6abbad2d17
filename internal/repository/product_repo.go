package repository

import (
	"context"
	"time"

	"billing/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductQuery filters the product list
type ProductQuery struct {
	Search   string
	Category string
	Offset   int
	Limit    int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, q ProductQuery) ([]model.Product, int64, error)
	ListLowStock(ctx context.Context, limit int) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	// FindByIDForUpdate also returns soft-deleted products so reversals can restore their stock.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, at time.Time) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Save(product).Error
}

// Delete soft-deletes the product and releases its SKU for reuse.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Product{}).Where("id = ?", id).Update("sku", nil).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Product{}).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, q ProductQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			like := containsPattern(q.Search)
			db = db.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\'`, like, like)
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Product{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := db.Model(&model.Product{}).Scopes(filter).Order("name ASC")
	if q.Limit > 0 {
		fetch = fetch.Offset(q.Offset).Limit(q.Limit)
	}
	if err := fetch.Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) ListLowStock(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	query := GetDB(ctx, r.db).Where("quantity <= low_stock_alert").Order("quantity ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Product{}).Where("quantity <= low_stock_alert").Count(&count).Error
	return count, err
}

func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := forUpdate(GetDB(ctx, r.db)).Unscoped().
		Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal, at time.Time) error {
	return GetDB(ctx, r.db).Unscoped().Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": at}).Error
}
