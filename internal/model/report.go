package model

import "github.com/shopspring/decimal"

// SalesSummary aggregates invoice totals over a date range
type SalesSummary struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalInvoices int64           `json:"total_invoices"`
	TotalGST      decimal.Decimal `json:"total_gst"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	AverageBill   decimal.Decimal `json:"average_bill"`
}

// PaymentMethodTotal is the share of sales settled with one payment method
type PaymentMethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	Count         int64           `json:"count"`
	Total         decimal.Decimal `json:"total"`
}

// ProductSales ranks products by what was sold, keyed by the snapshotted name
type ProductSales struct {
	ProductName   string          `json:"product_name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	InvoiceCount  int64           `json:"invoice_count"`
}

// CustomerSales ranks customers by spend, keyed by the snapshotted name
type CustomerSales struct {
	CustomerName string          `json:"customer_name"`
	InvoiceCount int64           `json:"invoice_count"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
}

// DailySales is one day of invoice activity
type DailySales struct {
	Date          string          `gorm:"column:day" json:"date"`
	InvoiceCount  int64           `json:"invoice_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalGST      decimal.Decimal `json:"total_gst"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

// CustomerOutstanding pairs a customer's running balance with the amount
// still due on the invoices that reference it.
type CustomerOutstanding struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Balance      decimal.Decimal `json:"balance"`
	InvoiceDue   decimal.Decimal `json:"invoice_due"`
}
