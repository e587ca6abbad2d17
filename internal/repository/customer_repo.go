package repository

import (
	"context"
	"time"

	"billing/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	// FindByIDForUpdate also returns soft-deleted customers so reversals can settle their balance.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, search string, offset, limit int) ([]model.Customer, int64, error)
	ListAll(ctx context.Context) ([]model.Customer, error)
	Count(ctx context.Context) (int64, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, at time.Time) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Customer{}).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := forUpdate(GetDB(ctx, r.db)).Unscoped().
		Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, search string, offset, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			like := containsPattern(search)
			db = db.Where(`LOWER(name) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, like, like, like)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Customer{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := db.Model(&model.Customer{}).Scopes(filter).Order("name ASC")
	if limit > 0 {
		fetch = fetch.Offset(offset).Limit(limit)
	}
	if err := fetch.Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

// ListAll returns every customer, including soft-deleted ones
func (r *customerRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := GetDB(ctx, r.db).Unscoped().Order("name ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Customer{}).Count(&count).Error
	return count, err
}

func (r *customerRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, at time.Time) error {
	return GetDB(ctx, r.db).Unscoped().Model(&model.Customer{}).Where("id = ?", id).
		Updates(map[string]interface{}{"balance": balance, "updated_at": at}).Error
}
