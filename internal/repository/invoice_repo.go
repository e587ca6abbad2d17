package repository

import (
	"context"
	"time"

	"billing/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceQuery filters the invoice list. From is inclusive and To exclusive.
type InvoiceQuery struct {
	Search     string
	Status     string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	CreateItem(ctx context.Context, item *model.InvoiceItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindItems(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error)
	List(ctx context.Context, q InvoiceQuery) ([]model.Invoice, int64, error)
	ListOutstanding(ctx context.Context, from, to *time.Time) ([]model.Invoice, error)
	ListAll(ctx context.Context) ([]model.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts the header only; items are inserted one by one with CreateItem.
func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(invoice).Error
}

func (r *invoiceRepository) CreateItem(ctx context.Context, item *model.InvoiceItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Preload("Items", orderItems).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindItems(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem
	if err := orderItems(GetDB(ctx, r.db)).Where("invoice_id = ?", invoiceID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *invoiceRepository) List(ctx context.Context, q InvoiceQuery) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			like := containsPattern(q.Search)
			db = db.Where(`LOWER(invoice_number) LIKE ? ESCAPE '\' OR LOWER(customer_name) LIKE ? ESCAPE '\'`, like, like)
		}
		if q.Status != "" {
			db = db.Where("payment_status = ?", q.Status)
		}
		if q.CustomerID != nil {
			db = db.Where("customer_id = ?", *q.CustomerID)
		}
		return createdBetween(db, "created_at", q.From, q.To)
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Invoice{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := db.Model(&model.Invoice{}).Scopes(filter).Order("created_at DESC").Order("invoice_number DESC")
	if q.Limit > 0 {
		fetch = fetch.Offset(q.Offset).Limit(q.Limit)
	}
	if err := fetch.Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

// ListOutstanding returns invoices that still have an amount due, newest first
func (r *invoiceRepository) ListOutstanding(ctx context.Context, from, to *time.Time) ([]model.Invoice, error) {
	var invoices []model.Invoice
	query := createdBetween(GetDB(ctx, r.db), "created_at", from, to).
		Where("total_amount - amount_paid > 0").
		Order("created_at DESC")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) ListAll(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := GetDB(ctx, r.db).Order("created_at ASC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Delete removes the items first, then the header.
func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Invoice{}).Error
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

func createdBetween(db *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		db = db.Where(column+" >= ?", *from)
	}
	if to != nil {
		db = db.Where(column+" < ?", *to)
	}
	return db
}
