package service

import (
	"context"
	"sync"
	"testing"

	"billing/internal/model"
	"billing/internal/repository"
	"billing/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type publishedEvent struct {
	Event string
	Data  interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *recordingNotifier) Publish(event string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{Event: event, Data: data})
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Event)
	}
	return out
}

// ledger wires every service against one in-memory database.
type ledger struct {
	db        *gorm.DB
	notifier  *recordingNotifier
	invoices  InvoiceService
	customers CustomerService
	products  ProductService
	settings  SettingsService
	reports   ReportService
	verify    VerifyService
}

func newLedger(t *testing.T) *ledger {
	t.Helper()

	db := testutil.NewDB(t)
	notifier := &recordingNotifier{}

	txManager := repository.NewTransactionManager(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	reportRepo := repository.NewReportRepository(db)

	customers := NewCustomerService(customerRepo, invoiceRepo, txManager, notifier)
	return &ledger{
		db:        db,
		notifier:  notifier,
		customers: customers,
		products:  NewProductService(productRepo, txManager),
		settings:  NewSettingsService(settingsRepo, txManager),
		reports:   NewReportService(reportRepo, invoiceRepo, productRepo, customerRepo),
		verify:    NewVerifyService(invoiceRepo, customerRepo, reportRepo),
		invoices: NewInvoiceService(
			invoiceRepo,
			productRepo,
			customerRepo,
			NewSequenceAllocator(settingsRepo),
			NewStockAdjuster(productRepo, txManager),
			customers,
			txManager,
			notifier,
		),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (l *ledger) createProduct(t *testing.T, name, qty, price string) ProductResponse {
	t.Helper()
	p, err := l.products.CreateProduct(context.Background(), ProductRequest{
		Name:         name,
		SellingPrice: decimal.NewNullDecimal(dec(price)),
		Quantity:     dec(qty),
		Unit:         "pcs",
	})
	require.NoError(t, err)
	return p
}

func (l *ledger) createCustomer(t *testing.T, name string) CustomerResponse {
	t.Helper()
	c, err := l.customers.CreateCustomer(context.Background(), CustomerRequest{Name: name, Phone: "9800000000"})
	require.NoError(t, err)
	return c
}

func (l *ledger) product(t *testing.T, id string) model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, l.db.Unscoped().First(&p, "id = ?", id).Error)
	return p
}

func (l *ledger) customer(t *testing.T, id string) model.Customer {
	t.Helper()
	var c model.Customer
	require.NoError(t, l.db.Unscoped().First(&c, "id = ?", id).Error)
	return c
}

func (l *ledger) setting(t *testing.T, key string) string {
	t.Helper()
	var s model.Setting
	require.NoError(t, l.db.First(&s, "key = ?", key).Error)
	return s.Value
}

func (l *ledger) countInvoices(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, l.db.Model(&model.Invoice{}).Count(&n).Error)
	return n
}

func (l *ledger) countItems(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, l.db.Model(&model.InvoiceItem{}).Count(&n).Error)
	return n
}

// sale builds a single-line product sale of qty at price.
func sale(productID, qty, price string) CreateInvoiceRequest {
	q, p := dec(qty), dec(price)
	total := q.Mul(p)
	return CreateInvoiceRequest{
		Items: []InvoiceItemRequest{{
			ProductID: productID,
			Quantity:  q,
			Price:     p,
		}},
		Subtotal:    total,
		TotalAmount: total,
	}
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
