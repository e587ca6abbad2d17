package service

import (
	"context"
	"testing"
	"time"

	"billing/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoice_PartialCreditSale(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Basmati Rice 1kg", "50", "10")
	c := l.createCustomer(t, "Ramesh")

	req := sale(p.ID, "5", "10")
	req.Subtotal = decimal.Zero
	req.CustomerID = c.ID
	req.PaymentStatus = "partial"
	req.AmountPaid = decimal.NewNullDecimal(dec("20"))
	req.TotalAmount = dec("50")

	inv, err := l.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "GKS-00001", inv.InvoiceNumber)
	assert.Equal(t, "Ramesh", inv.CustomerName)
	assert.Equal(t, "50.00", inv.Subtotal)
	assert.Equal(t, "50.00", inv.TotalAmount)
	assert.Equal(t, "20.00", inv.AmountPaid)
	assert.Equal(t, "30.00", inv.BalanceDue)
	assert.Equal(t, model.PaymentPartial, inv.PaymentStatus)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Basmati Rice 1kg", inv.Items[0].ProductName)
	assert.Equal(t, "pcs", inv.Items[0].Unit)
	assert.Equal(t, "50.00", inv.Items[0].Total)

	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("45")))
	assert.True(t, l.customer(t, c.ID).Balance.Equal(dec("30")))
	assert.Equal(t, "2", l.setting(t, model.SettingInvoiceCounter))
	assert.Equal(t, []string{EventInvoiceCreated}, l.notifier.names())

	require.NoError(t, l.invoices.DeleteInvoice(ctx, inv.ID))

	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("50")))
	assert.True(t, l.customer(t, c.ID).Balance.IsZero())
	assert.Equal(t, int64(0), l.countInvoices(t))
	assert.Equal(t, int64(0), l.countItems(t))
	assert.Equal(t, "2", l.setting(t, model.SettingInvoiceCounter))
	assert.Contains(t, l.notifier.names(), EventInvoiceDeleted)
}

func TestCreateInvoice_NumbersKeepIncreasingAcrossDeletes(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Sugar", "100", "40")

	first, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "1", "40"))
	require.NoError(t, err)
	second, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "1", "40"))
	require.NoError(t, err)

	require.NoError(t, l.invoices.DeleteInvoice(ctx, second.ID))

	third, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "1", "40"))
	require.NoError(t, err)

	assert.Equal(t, "GKS-00001", first.InvoiceNumber)
	assert.Equal(t, "GKS-00002", second.InvoiceNumber)
	assert.Equal(t, "GKS-00003", third.InvoiceNumber)
}

func TestCreateInvoice_UsesConfiguredPrefixAndCounter(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Tea", "10", "120")

	_, err := l.settings.UpdateSettings(ctx, map[string]string{
		model.SettingInvoicePrefix:  "SHOP",
		model.SettingInvoiceCounter: "99999",
	})
	require.NoError(t, err)

	a, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "1", "120"))
	require.NoError(t, err)
	b, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "1", "120"))
	require.NoError(t, err)

	assert.Equal(t, "SHOP-99999", a.InvoiceNumber)
	assert.Equal(t, "SHOP-100000", b.InvoiceNumber)
}

func TestCreateInvoice_ValidationLeavesLedgerUntouched(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Milk 500ml", "20", "28")
	c := l.createCustomer(t, "Sita")

	tests := []struct {
		name  string
		req   CreateInvoiceRequest
		field string
	}{
		{
			name:  "no items",
			req:   CreateInvoiceRequest{CustomerID: c.ID, TotalAmount: dec("10")},
			field: "items",
		},
		{
			name: "unknown product",
			req: func() CreateInvoiceRequest {
				r := sale(uuid.NewString(), "1", "28")
				r.CustomerID = c.ID
				return r
			}(),
			field: "items[0].product_id",
		},
		{
			name:  "zero quantity",
			req:   sale(p.ID, "0", "28"),
			field: "items[0].quantity",
		},
		{
			name:  "product item without price",
			req:   sale(p.ID, "2", "0"),
			field: "items[0].price",
		},
		{
			name: "custom item without name",
			req: CreateInvoiceRequest{
				Items: []InvoiceItemRequest{{Quantity: dec("1"), Price: dec("5")}},
			},
			field: "items[0].product_name",
		},
		{
			name: "bad payment status",
			req: func() CreateInvoiceRequest {
				r := sale(p.ID, "1", "28")
				r.PaymentStatus = "credit"
				return r
			}(),
			field: "payment_status",
		},
		{
			name: "unknown customer",
			req: func() CreateInvoiceRequest {
				r := sale(p.ID, "1", "28")
				r.CustomerID = uuid.NewString()
				return r
			}(),
			field: "customer_id",
		},
		{
			name: "total disagrees with components",
			req: func() CreateInvoiceRequest {
				r := sale(p.ID, "2", "28")
				r.DiscountAmount = dec("6")
				return r
			}(),
			field: "total_amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.invoices.CreateInvoice(ctx, tt.req)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			assert.Equal(t, int64(0), l.countInvoices(t))
			assert.Equal(t, int64(0), l.countItems(t))
			assert.Equal(t, "1", l.setting(t, model.SettingInvoiceCounter))
			assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("20")))
			assert.True(t, l.customer(t, c.ID).Balance.IsZero())
		})
	}
	assert.Empty(t, l.notifier.names())
}

func TestCreateInvoice_AmountPaidResolution(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Atta 5kg", "100", "250")

	tests := []struct {
		name       string
		status     string
		amountPaid decimal.NullDecimal
		wantPaid   string
		wantDelta  string
	}{
		{"paid defaults to total", "paid", decimal.NullDecimal{}, "250.00", "0"},
		{"empty status means paid", "", decimal.NullDecimal{}, "250.00", "0"},
		{"unpaid defaults to zero", "unpaid", decimal.NullDecimal{}, "0.00", "250"},
		{"explicit value wins", "unpaid", decimal.NewNullDecimal(dec("100")), "100.00", "150"},
		{"partial uses explicit value", "partial", decimal.NewNullDecimal(dec("75.5")), "75.50", "174.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := l.createCustomer(t, "Customer "+tt.name)

			req := sale(p.ID, "1", "250")
			req.CustomerID = c.ID
			req.PaymentStatus = tt.status
			req.AmountPaid = tt.amountPaid

			inv, err := l.invoices.CreateInvoice(ctx, req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPaid, inv.AmountPaid)
			assert.True(t, l.customer(t, c.ID).Balance.Equal(dec(tt.wantDelta)),
				"balance %s", l.customer(t, c.ID).Balance)
		})
	}
}

func TestCreateInvoice_ComputesTotalsAndDefaults(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Toor Dal", "10", "150")

	inv, err := l.invoices.CreateInvoice(ctx, CreateInvoiceRequest{
		Items: []InvoiceItemRequest{
			{ProductID: p.ID, Quantity: dec("2"), Price: dec("150"), Discount: dec("10"), Total: dec("1")},
			{ProductName: "Carry bag", Quantity: dec("1"), Price: dec("0")},
		},
		DiscountAmount: dec("20"),
		GSTEnabled:     true,
		GSTRate:        dec("5"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.WalkInCustomerName, inv.CustomerName)
	assert.Nil(t, inv.CustomerID)
	assert.Equal(t, model.DefaultPaymentMethod, inv.PaymentMethod)
	assert.Equal(t, model.PaymentPaid, inv.PaymentStatus)
	assert.Equal(t, "290.00", inv.Subtotal)
	assert.Equal(t, "13.50", inv.GSTAmount)
	assert.Equal(t, "283.50", inv.TotalAmount)
	assert.Equal(t, "283.50", inv.AmountPaid)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "290.00", inv.Items[0].Total)
	assert.Equal(t, "Carry bag", inv.Items[1].ProductName)
	assert.Nil(t, inv.Items[1].ProductID)

	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("8")))
}

func TestCreateInvoice_FractionalQuantityRoundTrip(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Loose Sugar", "12.5", "42")
	c := l.createCustomer(t, "Meena")

	req := sale(p.ID, "2.75", "42")
	req.CustomerID = c.ID
	req.PaymentStatus = "unpaid"

	inv, err := l.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)
	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("9.75")))
	assert.True(t, l.customer(t, c.ID).Balance.Equal(dec("115.5")))

	require.NoError(t, l.invoices.DeleteInvoice(ctx, inv.ID))
	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("12.5")))
	assert.True(t, l.customer(t, c.ID).Balance.IsZero())
}

func TestCreateInvoice_OversellLeavesNegativeStock(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Eggs", "3", "6")

	_, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "5", "6"))
	require.NoError(t, err)

	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("-2")))
	assert.Contains(t, l.notifier.names(), EventStockLow)
}

func TestCreateInvoice_SameProductOnTwoLines(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Soap", "10", "30")

	_, err := l.invoices.CreateInvoice(ctx, CreateInvoiceRequest{
		Items: []InvoiceItemRequest{
			{ProductID: p.ID, Quantity: dec("2"), Price: dec("30")},
			{ProductID: p.ID, Quantity: dec("3"), Price: dec("30")},
		},
	})
	require.NoError(t, err)

	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("5")))
}

func TestDeleteInvoice_Idempotent(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Salt", "10", "20")

	inv, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "2", "20"))
	require.NoError(t, err)

	require.NoError(t, l.invoices.DeleteInvoice(ctx, inv.ID))
	require.NoError(t, l.invoices.DeleteInvoice(ctx, inv.ID))
	require.NoError(t, l.invoices.DeleteInvoice(ctx, uuid.NewString()))

	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("10")))

	var deletes int
	for _, name := range l.notifier.names() {
		if name == EventInvoiceDeleted {
			deletes++
		}
	}
	assert.Equal(t, 1, deletes)
}

func TestDeleteInvoice_MalformedIDIsNoop(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Salt", "10", "20")

	_, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "2", "20"))
	require.NoError(t, err)

	for _, id := range []string{"123", "not-a-uuid", ""} {
		assert.NoError(t, l.invoices.DeleteInvoice(ctx, id), id)
	}
	assert.Equal(t, int64(1), l.countInvoices(t))
	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("8")))
	assert.NotContains(t, l.notifier.names(), EventInvoiceDeleted)
}

func TestDeleteInvoice_AfterProductAndCustomerRemoved(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Ghee 1L", "10", "600")
	c := l.createCustomer(t, "Gopal")

	req := sale(p.ID, "1", "600")
	req.CustomerID = c.ID
	req.PaymentStatus = "unpaid"
	inv, err := l.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)

	require.NoError(t, l.products.DeleteProduct(ctx, p.ID))
	require.NoError(t, l.customers.DeleteCustomer(ctx, c.ID))

	require.NoError(t, l.invoices.DeleteInvoice(ctx, inv.ID))

	assert.True(t, l.product(t, p.ID).Quantity.Equal(dec("10")))
	assert.True(t, l.customer(t, c.ID).Balance.IsZero())
	assert.Equal(t, int64(0), l.countInvoices(t))
}

func TestDeleteInvoice_ProductRowGone(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Biscuits", "10", "10")

	inv, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "1", "10"))
	require.NoError(t, err)

	require.NoError(t, l.db.Unscoped().Where("id = ?", p.ID).Delete(&model.Product{}).Error)

	require.NoError(t, l.invoices.DeleteInvoice(ctx, inv.ID))
	assert.Equal(t, int64(0), l.countInvoices(t))
}

func TestGetInvoice(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Coffee", "5", "200")

	created, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "1", "200"))
	require.NoError(t, err)

	got, err := l.invoices.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.InvoiceNumber, got.InvoiceNumber)
	assert.Len(t, got.Items, 1)

	_, err = l.invoices.GetInvoice(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListInvoices_Filters(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p := l.createProduct(t, "Oil", "100", "150")
	c := l.createCustomer(t, "Anita Sharma")

	credit := sale(p.ID, "1", "150")
	credit.CustomerID = c.ID
	credit.PaymentStatus = "unpaid"
	a, err := l.invoices.CreateInvoice(ctx, credit)
	require.NoError(t, err)
	b, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "2", "150"))
	require.NoError(t, err)
	d, err := l.invoices.CreateInvoice(ctx, sale(p.ID, "3", "150"))
	require.NoError(t, err)

	backdate := func(id string, day time.Time) {
		require.NoError(t, l.db.Model(&model.Invoice{}).Where("id = ?", id).Update("created_at", day).Error)
	}
	backdate(a.ID, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	backdate(b.ID, time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC))
	backdate(d.ID, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))

	t.Run("search by customer name", func(t *testing.T) {
		got, total, err := l.invoices.ListInvoices(ctx, InvoiceFilter{Search: "anita"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, a.ID, got[0].ID)
	})

	t.Run("search by number", func(t *testing.T) {
		got, total, err := l.invoices.ListInvoices(ctx, InvoiceFilter{Search: "gks-00002"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, b.ID, got[0].ID)
	})

	t.Run("status", func(t *testing.T) {
		_, total, err := l.invoices.ListInvoices(ctx, InvoiceFilter{Status: "paid"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		got, total, err := l.invoices.ListInvoices(ctx, InvoiceFilter{From: "2026-03-01", To: "2026-03-02"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, b.ID, got[0].ID, "newest first")
		assert.Equal(t, a.ID, got[1].ID)
	})

	t.Run("customer", func(t *testing.T) {
		_, total, err := l.invoices.ListInvoices(ctx, InvoiceFilter{CustomerID: c.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("pagination", func(t *testing.T) {
		got, total, err := l.invoices.ListInvoices(ctx, InvoiceFilter{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, got, 1)
		assert.Equal(t, a.ID, got[0].ID)
	})

	t.Run("bad date", func(t *testing.T) {
		_, _, err := l.invoices.ListInvoices(ctx, InvoiceFilter{From: "03/01/2026"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
