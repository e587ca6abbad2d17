package service

import (
	"context"
	"errors"
	"testing"

	"billing/internal/model"
	"billing/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBalanceStore = errors.New("balance store unavailable")

// failingBalances fails every balance update, which is the last write of both
// invoice creation and reversal.
type failingBalances struct {
	calls int
}

func (f *failingBalances) ApplyBalance(context.Context, uuid.UUID, decimal.Decimal) (*model.Customer, error) {
	f.calls++
	return nil, errBalanceStore
}

// invoicesWithBalances builds an invoice service over l's database with a
// different balance step.
func (l *ledger) invoicesWithBalances(balances BalanceApplier, notifier Notifier) InvoiceService {
	txManager := repository.NewTransactionManager(l.db)
	productRepo := repository.NewProductRepository(l.db)
	return NewInvoiceService(
		repository.NewInvoiceRepository(l.db),
		productRepo,
		repository.NewCustomerRepository(l.db),
		NewSequenceAllocator(repository.NewSettingsRepository(l.db)),
		NewStockAdjuster(productRepo, txManager),
		balances,
		txManager,
		notifier,
	)
}

func TestCreateInvoice_LateFailureRollsBackEverything(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Toor Dal 1kg", "50", "140")
	c := l.createCustomer(t, "Meena")

	balances := &failingBalances{}
	notifier := &recordingNotifier{}
	invoices := l.invoicesWithBalances(balances, notifier)

	req := sale(p.ID, "5", "140")
	req.CustomerID = c.ID
	req.PaymentStatus = "unpaid"
	_, err := invoices.CreateInvoice(ctx, req)
	require.ErrorIs(t, err, errBalanceStore)
	assert.Equal(t, 1, balances.calls, "header, items, stock and counter were written before the failure")

	assert.Equal(t, int64(0), l.countInvoices(t))
	assert.Equal(t, int64(0), l.countItems(t))
	assert.Equal(t, "1", l.setting(t, model.SettingInvoiceCounter))
	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("50")))
	assert.True(t, l.customer(t, c.ID).Balance.IsZero())
	assert.Empty(t, notifier.names())

	// the next successful sale still takes the first number
	inv, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "1", "140"))
	require.NoError(t, err)
	assert.Equal(t, "GKS-00001", inv.InvoiceNumber)
}

func TestDeleteInvoice_LateFailureRollsBackEverything(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Toor Dal 1kg", "50", "140")
	c := l.createCustomer(t, "Meena")

	req := sale(p.ID, "5", "140")
	req.CustomerID = c.ID
	req.PaymentStatus = "unpaid"
	inv, err := l.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)

	balances := &failingBalances{}
	notifier := &recordingNotifier{}
	invoices := l.invoicesWithBalances(balances, notifier)

	err = invoices.DeleteInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, errBalanceStore)
	assert.Equal(t, 1, balances.calls, "stock was restored before the failure")

	assert.Equal(t, int64(1), l.countInvoices(t))
	assert.Equal(t, int64(1), l.countItems(t))
	assert.Equal(t, "2", l.setting(t, model.SettingInvoiceCounter))
	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("45")))
	assert.True(t, l.customer(t, c.ID).Balance.Equal(dec("700")))
	assert.Empty(t, notifier.names())

	// the untouched invoice can still be reversed normally
	require.NoError(t, l.invoices.DeleteInvoice(ctx, inv.ID))
	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("50")))
	assert.True(t, l.customer(t, c.ID).Balance.IsZero())
}
