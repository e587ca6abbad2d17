package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_Defaults(t *testing.T) {
	l := newLedger(t)

	p, err := l.products.CreateProduct(context.Background(), ProductRequest{
		Name:         "Mustard Oil 1L",
		SellingPrice: decimal.NewNullDecimal(dec("180")),
		Quantity:     dec("24"),
	})
	require.NoError(t, err)

	assert.Equal(t, "pcs", p.Unit)
	assert.Equal(t, "10", p.LowStockAlert)
	assert.Nil(t, p.SKU)
	assert.Equal(t, "180.00", p.SellingPrice)
	assert.False(t, p.IsLowStock)
}

func TestCreateProduct_Validation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.products.CreateProduct(ctx, ProductRequest{SellingPrice: decimal.NewNullDecimal(dec("1"))})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = l.products.CreateProduct(ctx, ProductRequest{Name: "No price"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = l.products.CreateProduct(ctx, ProductRequest{Name: "Negative", SellingPrice: decimal.NewNullDecimal(dec("-1"))})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProduct_SKUUniqueUntilDeleted(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	req := ProductRequest{Name: "Cola 2L", SKU: "COLA2", SellingPrice: decimal.NewNullDecimal(dec("95"))}

	first, err := l.products.CreateProduct(ctx, req)
	require.NoError(t, err)

	_, err = l.products.CreateProduct(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)

	// saving a product with its own sku is fine
	_, err = l.products.UpdateProduct(ctx, first.ID, req)
	require.NoError(t, err)

	require.NoError(t, l.products.DeleteProduct(ctx, first.ID))
	_, err = l.products.GetProduct(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.products.CreateProduct(ctx, req)
	assert.NoError(t, err)
}

func TestListProducts_FiltersAndLowStock(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	mk := func(name, sku, category, qty string) {
		_, err := l.products.CreateProduct(ctx, ProductRequest{
			Name:          name,
			SKU:           sku,
			Category:      category,
			SellingPrice:  decimal.NewNullDecimal(dec("10")),
			Quantity:      dec(qty),
			LowStockAlert: decimal.NewNullDecimal(dec("5")),
		})
		require.NoError(t, err)
	}
	mk("Amul Butter", "AMB100", "Dairy", "4")
	mk("Amul Cheese", "AMC200", "Dairy", "30")
	mk("Haldi Powder", "HLD", "Spices", "5")

	got, total, err := l.products.ListProducts(ctx, ProductFilter{Search: "amul"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Amul Butter", got[0].Name)

	_, total, err = l.products.ListProducts(ctx, ProductFilter{Search: "hld"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = l.products.ListProducts(ctx, ProductFilter{Category: "Dairy"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	low, err := l.products.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Amul Butter", low[0].Name, "lowest quantity first")
	assert.Equal(t, "Haldi Powder", low[1].Name)
	assert.True(t, low[0].IsLowStock)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	l := newLedger(t)

	_, err := l.products.UpdateProduct(context.Background(), "5f0d4a5e-8a55-4a3c-9d55-1d2c3b4a5e6f", ProductRequest{
		Name:         "Ghost",
		SellingPrice: decimal.NewNullDecimal(dec("1")),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
