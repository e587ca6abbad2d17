package repository

import (
	"context"
	"testing"

	"billing/internal/model"
	"billing/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%rice%", containsPattern("Rice"))
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}

func TestProductList_WildcardsMatchLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Basmati Rice", "Salt_Lite", "Soap 100%"} {
		require.NoError(t, repo.Create(ctx, &model.Product{
			Name:          name,
			Unit:          model.DefaultUnit,
			SellingPrice:  decimal.NewFromInt(10),
			LowStockAlert: model.DefaultLowStockAlert,
		}))
	}

	products, total, err := repo.List(ctx, ProductQuery{Search: "_"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Salt_Lite", products[0].Name)

	products, _, err = repo.List(ctx, ProductQuery{Search: "%"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Soap 100%", products[0].Name)
}

func TestCustomerList_WildcardsMatchLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Customer{Name: "Ravi", Phone: "98000"}))
	require.NoError(t, repo.Create(ctx, &model.Customer{Name: "Anil", Email: "anil_k@example.com"}))

	customers, total, err := repo.List(ctx, "_", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, customers, 1)
	assert.Equal(t, "Anil", customers[0].Name)
}

func TestInvoiceList_WildcardsMatchLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	for _, number := range []string{"GKS-00001", "GKS-00002"} {
		require.NoError(t, repo.Create(ctx, &model.Invoice{
			InvoiceNumber: number,
			CustomerName:  model.WalkInCustomerName,
			PaymentMethod: model.DefaultPaymentMethod,
			PaymentStatus: model.PaymentPaid,
		}))
	}

	_, total, err := repo.List(ctx, InvoiceQuery{Search: "_"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, total, err = repo.List(ctx, InvoiceQuery{Search: "gks-0000"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
