package service

import (
	"context"
	"fmt"
	"time"

	"billing/internal/logger"
	"billing/internal/model"
	"billing/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockAdjuster applies signed quantity deltas to products.
type StockAdjuster interface {
	// AdjustStock sets quantity += delta and touches updated_at. It joins the
	// transaction carried by ctx when there is one. There is no floor: a sale
	// may leave the quantity negative.
	AdjustStock(ctx context.Context, productID uuid.UUID, delta decimal.Decimal) (*model.Product, error)
}

type stockAdjuster struct {
	productRepo repository.ProductRepository
	txManager   repository.TransactionManager
}

func NewStockAdjuster(productRepo repository.ProductRepository, txManager repository.TransactionManager) StockAdjuster {
	return &stockAdjuster{
		productRepo: productRepo,
		txManager:   txManager,
	}
}

func (s *stockAdjuster) AdjustStock(ctx context.Context, productID uuid.UUID, delta decimal.Decimal) (*model.Product, error) {
	var product *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.productRepo.FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return lookupErr("product", err)
		}

		now := time.Now().UTC()
		p.Quantity = p.Quantity.Add(delta)
		p.UpdatedAt = now
		if err := s.productRepo.UpdateQuantity(txCtx, p.ID, p.Quantity, now); err != nil {
			return fmt.Errorf("failed to update stock for %s: %w", p.Name, err)
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if delta.IsNegative() {
		warnLowStock(product)
	}
	return product, nil
}

func warnLowStock(p *model.Product) {
	log := logger.WithComponent("stock")
	switch {
	case p.Quantity.IsNegative():
		log.Warn().Str("product_id", p.ID.String()).Str("product", p.Name).
			Str("quantity", p.Quantity.String()).Msg("product oversold")
	case p.IsLowStock():
		log.Warn().Str("product_id", p.ID.String()).Str("product", p.Name).
			Str("quantity", p.Quantity.String()).Str("threshold", p.LowStockAlert.String()).Msg("product low on stock")
	}
}
