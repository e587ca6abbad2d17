package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"billing/internal/model"
	"billing/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type ProductRequest struct {
	Name          string              `json:"name"`
	SKU           string              `json:"sku"`
	Category      string              `json:"category"`
	HSNCode       string              `json:"hsn_code"`
	PurchasePrice decimal.Decimal     `json:"purchase_price" swaggertype:"number"`
	SellingPrice  decimal.NullDecimal `json:"selling_price" swaggertype:"number"`
	Quantity      decimal.Decimal     `json:"quantity" swaggertype:"number"`
	Unit          string              `json:"unit"`
	LowStockAlert decimal.NullDecimal `json:"low_stock_alert" swaggertype:"number"`
	GSTRate       decimal.Decimal     `json:"gst_rate" swaggertype:"number"`
	Description   string              `json:"description"`
}

type ProductFilter struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

type ProductResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	SKU           *string `json:"sku"`
	Category      string  `json:"category"`
	HSNCode       string  `json:"hsn_code"`
	PurchasePrice string  `json:"purchase_price"`
	SellingPrice  string  `json:"selling_price"`
	Quantity      string  `json:"quantity"`
	Unit          string  `json:"unit"`
	LowStockAlert string  `json:"low_stock_alert"`
	GSTRate       string  `json:"gst_rate"`
	Description   string  `json:"description"`
	IsLowStock    bool    `json:"is_low_stock"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, req ProductRequest) (ProductResponse, error)
	GetProduct(ctx context.Context, id string) (ProductResponse, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]ProductResponse, int64, error)
	UpdateProduct(ctx context.Context, id string, req ProductRequest) (ProductResponse, error)
	// DeleteProduct hides the product from the catalog. Invoice items keep
	// their snapshots and reversals still restore its stock.
	DeleteProduct(ctx context.Context, id string) error
	ListLowStock(ctx context.Context) ([]ProductResponse, error)
}

type productService struct {
	productRepo repository.ProductRepository
	txManager   repository.TransactionManager
}

func NewProductService(productRepo repository.ProductRepository, txManager repository.TransactionManager) ProductService {
	return &productService{
		productRepo: productRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *productService) CreateProduct(ctx context.Context, req ProductRequest) (ProductResponse, error) {
	var product model.Product
	if err := applyProductRequest(&product, req); err != nil {
		return ProductResponse{}, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureUniqueSKU(txCtx, product.SKU, uuid.Nil); err != nil {
			return err
		}
		if err := s.productRepo.Create(txCtx, &product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return ProductResponse{}, err
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return ProductResponse{}, lookupErr("product", err)
	}
	return toProductResponse(*product), nil
}

func (s *productService) ListProducts(ctx context.Context, filter ProductFilter) ([]ProductResponse, int64, error) {
	q := repository.ProductQuery{
		Search:   strings.TrimSpace(filter.Search),
		Category: strings.TrimSpace(filter.Category),
	}
	if filter.Limit > 0 {
		p := pageOf(filter.Page, filter.Limit)
		q.Offset, q.Limit = p.Offset, p.Limit
	}

	products, total, err := s.productRepo.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return resp, total, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req ProductRequest) (ProductResponse, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return ProductResponse{}, err
	}

	var updated model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByID(txCtx, productID)
		if err != nil {
			return lookupErr("product", err)
		}
		if err := applyProductRequest(product, req); err != nil {
			return err
		}
		if err := s.ensureUniqueSKU(txCtx, product.SKU, product.ID); err != nil {
			return err
		}
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		updated = *product
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(updated), nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	productID, err := parseID("id", id)
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.productRepo.FindByID(txCtx, productID); err != nil {
			return lookupErr("product", err)
		}
		if err := s.productRepo.Delete(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

func (s *productService) ListLowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.ListLowStock(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return resp, nil
}

func (s *productService) ensureUniqueSKU(ctx context.Context, sku *string, self uuid.UUID) error {
	if sku == nil {
		return nil
	}
	existing, err := s.productRepo.FindBySKU(ctx, *sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check sku: %w", err)
	}
	if existing.ID != self {
		return invalid("sku", "sku %q is already used by %s", *sku, existing.Name)
	}
	return nil
}

// applyProductRequest validates req and copies it onto p, filling defaults.
func applyProductRequest(p *model.Product, req ProductRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalid("name", "name is required")
	}
	if !req.SellingPrice.Valid {
		return invalid("selling_price", "selling_price is required")
	}
	if req.SellingPrice.Decimal.IsNegative() {
		return invalid("selling_price", "selling_price must not be negative")
	}

	p.Name = name
	p.SKU = nil
	if sku := strings.TrimSpace(req.SKU); sku != "" {
		p.SKU = &sku
	}
	p.Category = strings.TrimSpace(req.Category)
	p.HSNCode = strings.TrimSpace(req.HSNCode)
	p.PurchasePrice = req.PurchasePrice
	p.SellingPrice = req.SellingPrice.Decimal
	p.Quantity = req.Quantity
	p.Unit = strings.TrimSpace(req.Unit)
	if p.Unit == "" {
		p.Unit = model.DefaultUnit
	}
	p.LowStockAlert = model.DefaultLowStockAlert
	if req.LowStockAlert.Valid {
		p.LowStockAlert = req.LowStockAlert.Decimal
	}
	p.GSTRate = req.GSTRate
	p.Description = strings.TrimSpace(req.Description)
	return nil
}

func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		SKU:           p.SKU,
		Category:      p.Category,
		HSNCode:       p.HSNCode,
		PurchasePrice: p.PurchasePrice.StringFixed(2),
		SellingPrice:  p.SellingPrice.StringFixed(2),
		Quantity:      p.Quantity.String(),
		Unit:          p.Unit,
		LowStockAlert: p.LowStockAlert.String(),
		GSTRate:       p.GSTRate.StringFixed(2),
		Description:   p.Description,
		IsLowStock:    p.IsLowStock(),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}
