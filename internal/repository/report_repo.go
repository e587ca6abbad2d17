package repository

import (
	"context"
	"fmt"
	"time"

	"billing/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerDueRow is the amount still due on one customer's invoices
type CustomerDueRow struct {
	CustomerID string          `gorm:"column:customer_id"`
	Due        decimal.Decimal `gorm:"column:due"`
}

type ReportRepository interface {
	Summary(ctx context.Context, from, to *time.Time) (model.SalesSummary, error)
	PaymentMethods(ctx context.Context, from, to *time.Time) ([]model.PaymentMethodTotal, error)
	Daily(ctx context.Context, from, to *time.Time) ([]model.DailySales, error)
	TopProducts(ctx context.Context, from, to *time.Time, orderBy string, limit int) ([]model.ProductSales, error)
	TopCustomers(ctx context.Context, from, to *time.Time, limit int) ([]model.CustomerSales, error)
	DueByCustomer(ctx context.Context) ([]CustomerDueRow, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Summary(ctx context.Context, from, to *time.Time) (model.SalesSummary, error) {
	var summary model.SalesSummary
	err := createdBetween(GetDB(ctx, r.db).Model(&model.Invoice{}), "created_at", from, to).
		Select("COUNT(*) AS total_invoices, " +
			"COALESCE(SUM(total_amount), 0) AS total_sales, " +
			"COALESCE(SUM(gst_amount), 0) AS total_gst, " +
			"COALESCE(SUM(discount_amount), 0) AS total_discount").
		Scan(&summary).Error
	if err != nil {
		return summary, fmt.Errorf("failed to query sales summary: %w", err)
	}
	return summary, nil
}

func (r *reportRepository) PaymentMethods(ctx context.Context, from, to *time.Time) ([]model.PaymentMethodTotal, error) {
	var rows []model.PaymentMethodTotal
	err := createdBetween(GetDB(ctx, r.db).Model(&model.Invoice{}), "created_at", from, to).
		Select("payment_method, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total").
		Group("payment_method").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query payment methods: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) Daily(ctx context.Context, from, to *time.Time) ([]model.DailySales, error) {
	var rows []model.DailySales
	db := GetDB(ctx, r.db)
	day := dayExpr(db, "created_at")
	err := createdBetween(db.Model(&model.Invoice{}), "created_at", from, to).
		Select(day + " AS day, COUNT(*) AS invoice_count, " +
			"COALESCE(SUM(total_amount), 0) AS total_sales, " +
			"COALESCE(SUM(gst_amount), 0) AS total_gst, " +
			"COALESCE(SUM(discount_amount), 0) AS total_discount").
		Group(day).
		Order("day DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query daily sales: %w", err)
	}
	return rows, nil
}

// TopProducts groups sold lines by product name. orderBy is "revenue" or "quantity".
func (r *reportRepository) TopProducts(ctx context.Context, from, to *time.Time, orderBy string, limit int) ([]model.ProductSales, error) {
	order := "total_revenue DESC"
	if orderBy == "quantity" {
		order = "total_quantity DESC"
	}

	var rows []model.ProductSales
	query := createdBetween(GetDB(ctx, r.db).Table("invoice_items"), "invoices.created_at", from, to).
		Select("invoice_items.product_name AS product_name, " +
			"COALESCE(SUM(invoice_items.quantity), 0) AS total_quantity, " +
			"COALESCE(SUM(invoice_items.total), 0) AS total_revenue, " +
			"COUNT(DISTINCT invoice_items.invoice_id) AS invoice_count").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Group("invoice_items.product_name").
		Order(order)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) TopCustomers(ctx context.Context, from, to *time.Time, limit int) ([]model.CustomerSales, error) {
	var rows []model.CustomerSales
	query := createdBetween(GetDB(ctx, r.db).Model(&model.Invoice{}), "created_at", from, to).
		Select("customer_name, COUNT(*) AS invoice_count, COALESCE(SUM(total_amount), 0) AS total_spent").
		Group("customer_name").
		Order("total_spent DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query top customers: %w", err)
	}
	return rows, nil
}

// DueByCustomer sums total_amount - amount_paid over each customer's invoices
func (r *reportRepository) DueByCustomer(ctx context.Context) ([]CustomerDueRow, error) {
	var rows []CustomerDueRow
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Select("customer_id, COALESCE(SUM(total_amount - amount_paid), 0) AS due").
		Where("customer_id IS NOT NULL").
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query customer dues: %w", err)
	}
	return rows, nil
}

// dayExpr renders the UTC calendar day of a timestamp column as YYYY-MM-DD.
// sqlite keeps timestamps as text beginning with the date.
func dayExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return "TO_CHAR(" + column + " AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	}
	return "SUBSTR(" + column + ", 1, 10)"
}
