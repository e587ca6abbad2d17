package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"billing/internal/model"
	"billing/internal/repository"

	"github.com/shopspring/decimal"
)

// Report types accepted by GetReport
const (
	ReportSummary     = "summary"
	ReportDaily       = "daily"
	ReportProducts    = "products"
	ReportCustomers   = "customers"
	ReportInvoiceList = "invoicelist"
	ReportOutstanding = "outstanding"
)

const (
	dashboardRecentInvoices = 5
	dashboardTopProducts    = 5
	dashboardLowStockItems  = 10
	dashboardTrendDays      = 7
)

// --- DTOs ---

type ReportFilter struct {
	Type string
	From string // YYYY-MM-DD, inclusive
	To   string // YYYY-MM-DD, inclusive
}

type PaymentMethodRow struct {
	PaymentMethod string `json:"payment_method"`
	Count         int64  `json:"count"`
	Total         string `json:"total"`
}

type SummaryReport struct {
	TotalSales     string             `json:"total_sales"`
	TotalInvoices  int64              `json:"total_invoices"`
	TotalGST       string             `json:"total_gst"`
	TotalDiscount  string             `json:"total_discount"`
	AverageBill    string             `json:"average_bill"`
	PaymentMethods []PaymentMethodRow `json:"payment_methods"`
}

type DailyRow struct {
	Date          string `json:"date"`
	InvoiceCount  int64  `json:"invoice_count"`
	TotalSales    string `json:"total_sales"`
	TotalGST      string `json:"total_gst"`
	TotalDiscount string `json:"total_discount"`
}

type ProductSalesRow struct {
	ProductName   string `json:"product_name"`
	TotalQuantity string `json:"total_quantity"`
	TotalRevenue  string `json:"total_revenue"`
	InvoiceCount  int64  `json:"invoice_count"`
}

type CustomerSalesRow struct {
	CustomerName string `json:"customer_name"`
	InvoiceCount int64  `json:"invoice_count"`
	TotalSpent   string `json:"total_spent"`
}

type TrendPoint struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

type DashboardStats struct {
	TodaySales       string `json:"today_sales"`
	TodayInvoices    int64  `json:"today_invoices"`
	WeekSales        string `json:"week_sales"`
	MonthSales       string `json:"month_sales"`
	TotalProducts    int64  `json:"total_products"`
	LowStockProducts int64  `json:"low_stock_products"`
	TotalCustomers   int64  `json:"total_customers"`
}

type DashboardResponse struct {
	Stats          DashboardStats    `json:"stats"`
	RecentInvoices []InvoiceResponse `json:"recent_invoices"`
	TopProducts    []ProductSalesRow `json:"top_products"`
	SalesTrend     []TrendPoint      `json:"sales_trend"`
	LowStockItems  []ProductResponse `json:"low_stock_items"`
}

// --- Interface ---

type ReportService interface {
	// GetReport dispatches on filter.Type (summary when empty).
	GetReport(ctx context.Context, filter ReportFilter) (interface{}, error)
	Summary(ctx context.Context, from, to string) (SummaryReport, error)
	Daily(ctx context.Context, from, to string) ([]DailyRow, error)
	Products(ctx context.Context, from, to string) ([]ProductSalesRow, error)
	Customers(ctx context.Context, from, to string) ([]CustomerSalesRow, error)
	InvoiceList(ctx context.Context, from, to string, outstandingOnly bool) ([]InvoiceResponse, error)
	Dashboard(ctx context.Context) (DashboardResponse, error)
}

type reportService struct {
	reportRepo   repository.ReportRepository
	invoiceRepo  repository.InvoiceRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	now          func() time.Time
}

func NewReportService(
	reportRepo repository.ReportRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) ReportService {
	return &reportService{
		reportRepo:   reportRepo,
		invoiceRepo:  invoiceRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// --- Implementation ---

func (s *reportService) GetReport(ctx context.Context, filter ReportFilter) (interface{}, error) {
	switch strings.ToLower(strings.TrimSpace(filter.Type)) {
	case "", ReportSummary:
		return s.Summary(ctx, filter.From, filter.To)
	case ReportDaily:
		return s.Daily(ctx, filter.From, filter.To)
	case ReportProducts:
		return s.Products(ctx, filter.From, filter.To)
	case ReportCustomers:
		return s.Customers(ctx, filter.From, filter.To)
	case ReportInvoiceList:
		return s.InvoiceList(ctx, filter.From, filter.To, false)
	case ReportOutstanding:
		return s.InvoiceList(ctx, filter.From, filter.To, true)
	}
	return nil, invalid("type", "unknown report type %q", filter.Type)
}

func (s *reportService) Summary(ctx context.Context, from, to string) (SummaryReport, error) {
	start, end, err := parseDateRange(from, to)
	if err != nil {
		return SummaryReport{}, err
	}
	return s.summary(ctx, start, end)
}

func (s *reportService) summary(ctx context.Context, start, end *time.Time) (SummaryReport, error) {
	sum, err := s.reportRepo.Summary(ctx, start, end)
	if err != nil {
		return SummaryReport{}, err
	}
	methods, err := s.reportRepo.PaymentMethods(ctx, start, end)
	if err != nil {
		return SummaryReport{}, err
	}

	average := decimal.Zero
	if sum.TotalInvoices > 0 {
		average = sum.TotalSales.Div(decimal.NewFromInt(sum.TotalInvoices))
	}

	resp := SummaryReport{
		TotalSales:     money(sum.TotalSales),
		TotalInvoices:  sum.TotalInvoices,
		TotalGST:       money(sum.TotalGST),
		TotalDiscount:  money(sum.TotalDiscount),
		AverageBill:    money(average),
		PaymentMethods: make([]PaymentMethodRow, 0, len(methods)),
	}
	for _, m := range methods {
		resp.PaymentMethods = append(resp.PaymentMethods, PaymentMethodRow{
			PaymentMethod: m.PaymentMethod,
			Count:         m.Count,
			Total:         money(m.Total),
		})
	}
	return resp, nil
}

func (s *reportService) Daily(ctx context.Context, from, to string) ([]DailyRow, error) {
	start, end, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRepo.Daily(ctx, start, end)
	if err != nil {
		return nil, err
	}
	resp := make([]DailyRow, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, DailyRow{
			Date:          r.Date,
			InvoiceCount:  r.InvoiceCount,
			TotalSales:    money(r.TotalSales),
			TotalGST:      money(r.TotalGST),
			TotalDiscount: money(r.TotalDiscount),
		})
	}
	return resp, nil
}

func (s *reportService) Products(ctx context.Context, from, to string) ([]ProductSalesRow, error) {
	start, end, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.topProducts(ctx, start, end, "revenue", 0)
}

func (s *reportService) topProducts(ctx context.Context, start, end *time.Time, orderBy string, limit int) ([]ProductSalesRow, error) {
	rows, err := s.reportRepo.TopProducts(ctx, start, end, orderBy, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]ProductSalesRow, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, ProductSalesRow{
			ProductName:   r.ProductName,
			TotalQuantity: quantity(r.TotalQuantity),
			TotalRevenue:  money(r.TotalRevenue),
			InvoiceCount:  r.InvoiceCount,
		})
	}
	return resp, nil
}

func (s *reportService) Customers(ctx context.Context, from, to string) ([]CustomerSalesRow, error) {
	start, end, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRepo.TopCustomers(ctx, start, end, 0)
	if err != nil {
		return nil, err
	}
	resp := make([]CustomerSalesRow, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, CustomerSalesRow{
			CustomerName: r.CustomerName,
			InvoiceCount: r.InvoiceCount,
			TotalSpent:   money(r.TotalSpent),
		})
	}
	return resp, nil
}

func (s *reportService) InvoiceList(ctx context.Context, from, to string, outstandingOnly bool) ([]InvoiceResponse, error) {
	start, end, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}

	var invoices []model.Invoice
	if outstandingOnly {
		invoices, err = s.invoiceRepo.ListOutstanding(ctx, start, end)
	} else {
		invoices, _, err = s.invoiceRepo.List(ctx, repository.InvoiceQuery{From: start, To: end})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	resp := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, toInvoiceResponse(inv))
	}
	return resp, nil
}

func (s *reportService) Dashboard(ctx context.Context) (DashboardResponse, error) {
	today := startOfDay(s.now())
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -(dashboardTrendDays - 1))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	var resp DashboardResponse

	todaySum, err := s.reportRepo.Summary(ctx, &today, &tomorrow)
	if err != nil {
		return resp, err
	}
	weekSum, err := s.reportRepo.Summary(ctx, &weekStart, &tomorrow)
	if err != nil {
		return resp, err
	}
	monthSum, err := s.reportRepo.Summary(ctx, &monthStart, &tomorrow)
	if err != nil {
		return resp, err
	}

	totalProducts, err := s.productRepo.Count(ctx)
	if err != nil {
		return resp, fmt.Errorf("failed to count products: %w", err)
	}
	lowStockCount, err := s.productRepo.CountLowStock(ctx)
	if err != nil {
		return resp, fmt.Errorf("failed to count low stock products: %w", err)
	}
	totalCustomers, err := s.customerRepo.Count(ctx)
	if err != nil {
		return resp, fmt.Errorf("failed to count customers: %w", err)
	}

	resp.Stats = DashboardStats{
		TodaySales:       money(todaySum.TotalSales),
		TodayInvoices:    todaySum.TotalInvoices,
		WeekSales:        money(weekSum.TotalSales),
		MonthSales:       money(monthSum.TotalSales),
		TotalProducts:    totalProducts,
		LowStockProducts: lowStockCount,
		TotalCustomers:   totalCustomers,
	}

	recent, _, err := s.invoiceRepo.List(ctx, repository.InvoiceQuery{Limit: dashboardRecentInvoices})
	if err != nil {
		return resp, fmt.Errorf("failed to load recent invoices: %w", err)
	}
	resp.RecentInvoices = make([]InvoiceResponse, 0, len(recent))
	for _, inv := range recent {
		resp.RecentInvoices = append(resp.RecentInvoices, toInvoiceResponse(inv))
	}

	if resp.TopProducts, err = s.topProducts(ctx, nil, nil, "quantity", dashboardTopProducts); err != nil {
		return resp, err
	}

	daily, err := s.reportRepo.Daily(ctx, &weekStart, &tomorrow)
	if err != nil {
		return resp, err
	}
	resp.SalesTrend = fillTrend(weekStart, dashboardTrendDays, daily)

	lowStock, err := s.productRepo.ListLowStock(ctx, dashboardLowStockItems)
	if err != nil {
		return resp, fmt.Errorf("failed to list low stock products: %w", err)
	}
	resp.LowStockItems = make([]ProductResponse, 0, len(lowStock))
	for _, p := range lowStock {
		resp.LowStockItems = append(resp.LowStockItems, toProductResponse(p))
	}

	return resp, nil
}

// fillTrend returns one point per day starting at start, zero for days without sales.
func fillTrend(start time.Time, days int, rows []model.DailySales) []TrendPoint {
	byDay := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		byDay[r.Date] = r.TotalSales
	}
	points := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format(dateLayout)
		points = append(points, TrendPoint{Date: day, Amount: money(byDay[day])})
	}
	return points
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func quantity(d decimal.Decimal) string {
	return d.Round(4).String()
}
