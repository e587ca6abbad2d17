package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"billing/internal/logger"
	"billing/internal/model"
	"billing/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type InvoiceItemRequest struct {
	ProductID   string          `json:"product_id"` // empty for a custom item
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"number"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Discount    decimal.Decimal `json:"discount" swaggertype:"number"`
	Total       decimal.Decimal `json:"total" swaggertype:"number"` // ignored, recomputed as quantity * price - discount
}

type CreateInvoiceRequest struct {
	CustomerID     string               `json:"customer_id"`
	CustomerName   string               `json:"customer_name"`
	CustomerPhone  string               `json:"customer_phone"`
	Items          []InvoiceItemRequest `json:"items"`
	Subtotal       decimal.Decimal      `json:"subtotal" swaggertype:"number"`
	DiscountAmount decimal.Decimal      `json:"discount_amount" swaggertype:"number"`
	GSTEnabled     bool                 `json:"gst_enabled"`
	GSTRate        decimal.Decimal      `json:"gst_rate" swaggertype:"number"`
	GSTAmount      decimal.Decimal      `json:"gst_amount" swaggertype:"number"`
	TotalAmount    decimal.Decimal      `json:"total_amount" swaggertype:"number"`
	PaymentMethod  string               `json:"payment_method"`
	PaymentStatus  string               `json:"payment_status"` // paid, unpaid, partial
	AmountPaid     decimal.NullDecimal  `json:"amount_paid" swaggertype:"number"`
	Notes          string               `json:"notes"`
}

type InvoiceFilter struct {
	Search     string // partial match on invoice_number or customer_name
	Status     string // paid, unpaid, partial or empty for all
	From       string // YYYY-MM-DD, inclusive
	To         string // YYYY-MM-DD, inclusive
	CustomerID string
	Page       int
	Limit      int
}

type InvoiceItemResponse struct {
	ID          string  `json:"id"`
	ProductID   *string `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    string  `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       string  `json:"price"`
	Discount    string  `json:"discount"`
	Total       string  `json:"total"`
}

type InvoiceResponse struct {
	ID             string                `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	CustomerID     *string               `json:"customer_id"`
	CustomerName   string                `json:"customer_name"`
	CustomerPhone  string                `json:"customer_phone"`
	Subtotal       string                `json:"subtotal"`
	DiscountAmount string                `json:"discount_amount"`
	GSTEnabled     bool                  `json:"gst_enabled"`
	GSTRate        string                `json:"gst_rate"`
	GSTAmount      string                `json:"gst_amount"`
	TotalAmount    string                `json:"total_amount"`
	AmountPaid     string                `json:"amount_paid"`
	BalanceDue     string                `json:"balance_due"`
	PaymentMethod  string                `json:"payment_method"`
	PaymentStatus  string                `json:"payment_status"`
	Notes          string                `json:"notes"`
	CreatedAt      string                `json:"created_at"`
	Items          []InvoiceItemResponse `json:"items,omitempty"`
}

// --- Interface ---

// BalanceApplier adjusts a customer's running balance inside the caller's transaction.
type BalanceApplier interface {
	ApplyBalance(ctx context.Context, customerID uuid.UUID, delta decimal.Decimal) (*model.Customer, error)
}

type InvoiceService interface {
	// CreateInvoice numbers the invoice, stores it with its items, takes the
	// sold quantities out of stock and books the unpaid part on the customer,
	// all in one transaction.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (InvoiceResponse, error)
	// DeleteInvoice undoes every effect of CreateInvoice except the counter
	// advance. Deleting an unknown invoice is a no-op.
	DeleteInvoice(ctx context.Context, id string) error
	GetInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	sequence     SequenceAllocator
	stock        StockAdjuster
	balances     BalanceApplier
	txManager    repository.TransactionManager
	notifier     Notifier
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	sequence SequenceAllocator,
	stock StockAdjuster,
	balances BalanceApplier,
	txManager repository.TransactionManager,
	notifier Notifier,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		sequence:     sequence,
		stock:        stock,
		balances:     balances,
		txManager:    txManager,
		notifier:     notifierOrNoop(notifier),
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (InvoiceResponse, error) {
	status, err := normalizePaymentStatus(req.PaymentStatus)
	if err != nil {
		return InvoiceResponse{}, err
	}
	if len(req.Items) == 0 {
		return InvoiceResponse{}, invalid("items", "at least one item is required")
	}
	customerID, err := parseOptionalID("customer_id", req.CustomerID)
	if err != nil {
		return InvoiceResponse{}, err
	}

	var invoiceID uuid.UUID
	var lowStock []model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		items, err := s.resolveItems(txCtx, req.Items)
		if err != nil {
			return err
		}

		invoice, err := s.buildHeader(txCtx, req, status, customerID, items)
		if err != nil {
			return err
		}

		number, counter, err := s.sequence.Allocate(txCtx)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice %s: %w", number, err)
		}

		for i := range items {
			item := &items[i]
			item.InvoiceID = invoice.ID
			item.LineNo = i + 1
			if err := s.invoiceRepo.CreateItem(txCtx, item); err != nil {
				return fmt.Errorf("failed to create invoice item %d: %w", i+1, err)
			}
			if item.ProductID == nil {
				continue
			}
			product, err := s.stock.AdjustStock(txCtx, *item.ProductID, item.Quantity.Neg())
			if err != nil {
				return err
			}
			if product.IsLowStock() {
				lowStock = append(lowStock, *product)
			}
		}

		if err := s.sequence.Commit(txCtx, counter); err != nil {
			return err
		}

		if invoice.CustomerID != nil {
			if due := invoice.BalanceDue(); !due.IsZero() {
				if _, err := s.balances.ApplyBalance(txCtx, *invoice.CustomerID, due); err != nil {
					return err
				}
			}
		}

		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	stored, err := s.invoiceRepo.FindByIDWithItems(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, lookupErr("invoice", err)
	}
	resp := toInvoiceResponse(*stored)

	logger.WithComponent("invoice").Info().
		Str("invoice_number", resp.InvoiceNumber).
		Str("total_amount", resp.TotalAmount).
		Str("balance_due", resp.BalanceDue).
		Int("items", len(resp.Items)).
		Msg("invoice created")
	s.notifier.Publish(EventInvoiceCreated, resp)
	for _, p := range lowStock {
		s.notifier.Publish(EventStockLow, toProductResponse(p))
	}
	return resp, nil
}

// resolveItems validates the requested lines and fills name/unit snapshots from
// the referenced products.
func (s *invoiceService) resolveItems(ctx context.Context, reqItems []InvoiceItemRequest) ([]model.InvoiceItem, error) {
	items := make([]model.InvoiceItem, 0, len(reqItems))
	for i, it := range reqItems {
		field := fmt.Sprintf("items[%d]", i)
		if !it.Quantity.IsPositive() {
			return nil, invalid(field+".quantity", "quantity must be greater than 0")
		}

		productID, err := parseOptionalID(field+".product_id", it.ProductID)
		if err != nil {
			return nil, err
		}

		item := model.InvoiceItem{
			ProductID:   productID,
			ProductName: strings.TrimSpace(it.ProductName),
			Quantity:    it.Quantity,
			Unit:        strings.TrimSpace(it.Unit),
			Price:       it.Price,
			Discount:    it.Discount,
		}

		if productID != nil {
			product, err := s.productRepo.FindByID(ctx, *productID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, invalid(field+".product_id", "product %s not found", productID)
			}
			if err != nil {
				return nil, fmt.Errorf("failed to load product: %w", err)
			}
			if item.ProductName == "" {
				item.ProductName = product.Name
			}
			if item.Unit == "" {
				item.Unit = product.Unit
			}
			if !item.Price.IsPositive() {
				return nil, invalid(field+".price", "price must be greater than 0")
			}
		} else if item.ProductName == "" {
			return nil, invalid(field+".product_name", "product_name is required for a custom item")
		}

		if item.Unit == "" {
			item.Unit = model.DefaultUnit
		}
		item.Total = model.LineTotal(item.Quantity, item.Price, item.Discount)
		items = append(items, item)
	}
	return items, nil
}

// buildHeader resolves the customer snapshot and the money columns.
func (s *invoiceService) buildHeader(
	ctx context.Context,
	req CreateInvoiceRequest,
	status string,
	customerID *uuid.UUID,
	items []model.InvoiceItem,
) (*model.Invoice, error) {
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.CustomerPhone)
	if customerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, *customerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("customer_id", "customer %s not found", customerID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
		if name == "" {
			name = customer.Name
		}
		if phone == "" {
			phone = customer.Phone
		}
	}
	if name == "" {
		name = model.WalkInCustomerName
	}

	subtotal := req.Subtotal
	if subtotal.IsZero() {
		for _, it := range items {
			subtotal = subtotal.Add(it.Total)
		}
	}

	gstAmount := req.GSTAmount
	if req.GSTEnabled && gstAmount.IsZero() && req.GSTRate.IsPositive() {
		gstAmount = subtotal.Sub(req.DiscountAmount).Mul(req.GSTRate).Div(decimal.NewFromInt(100)).Round(2)
	}

	expected := subtotal.Sub(req.DiscountAmount).Add(gstAmount)
	total := req.TotalAmount
	if total.IsZero() {
		total = expected
	} else if !total.Equal(expected) {
		return nil, invalid("total_amount", "total_amount %s does not equal subtotal - discount_amount + gst_amount (%s)",
			total.String(), expected.String())
	}

	// an explicit amount_paid wins over the status default
	amountPaid := total
	switch {
	case req.AmountPaid.Valid:
		amountPaid = req.AmountPaid.Decimal
	case status == model.PaymentUnpaid:
		amountPaid = decimal.Zero
	}
	if amountPaid.IsNegative() {
		return nil, invalid("amount_paid", "amount_paid must not be negative")
	}

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = model.DefaultPaymentMethod
	}

	return &model.Invoice{
		CustomerID:     customerID,
		CustomerName:   name,
		CustomerPhone:  phone,
		Subtotal:       subtotal,
		DiscountAmount: req.DiscountAmount,
		GSTEnabled:     req.GSTEnabled,
		GSTRate:        req.GSTRate,
		GSTAmount:      gstAmount,
		TotalAmount:    total,
		AmountPaid:     amountPaid,
		PaymentMethod:  method,
		PaymentStatus:  status,
		Notes:          strings.TrimSpace(req.Notes),
	}, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	log := logger.WithComponent("invoice")

	// An id that does not parse names no invoice, which is the same no-op as an unknown one.
	invoiceID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		log.Debug().Str("id", id).Msg("delete of malformed invoice id ignored")
		return nil
	}

	var deleted *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}

		items, err := s.invoiceRepo.FindItems(txCtx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to load invoice items: %w", err)
		}

		for _, item := range items {
			if item.ProductID == nil {
				continue
			}
			_, err := s.stock.AdjustStock(txCtx, *item.ProductID, item.Quantity)
			if errors.Is(err, ErrNotFound) {
				log.Warn().Str("invoice_number", invoice.InvoiceNumber).
					Str("product_id", item.ProductID.String()).
					Msg("product no longer exists, stock not restored")
				continue
			}
			if err != nil {
				return err
			}
		}

		if invoice.CustomerID != nil {
			if due := invoice.BalanceDue(); !due.IsZero() {
				_, err := s.balances.ApplyBalance(txCtx, *invoice.CustomerID, due.Neg())
				if errors.Is(err, ErrNotFound) {
					log.Warn().Str("invoice_number", invoice.InvoiceNumber).
						Str("customer_id", invoice.CustomerID.String()).
						Msg("customer no longer exists, balance not reversed")
				} else if err != nil {
					return err
				}
			}
		}

		if err := s.invoiceRepo.Delete(txCtx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete invoice %s: %w", invoice.InvoiceNumber, err)
		}
		invoice.Items = items
		deleted = invoice
		return nil
	})
	if err != nil {
		return err
	}

	if deleted != nil {
		log.Info().Str("invoice_number", deleted.InvoiceNumber).Msg("invoice deleted")
		s.notifier.Publish(EventInvoiceDeleted, toInvoiceResponse(*deleted))
	}
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := parseID("id", id)
	if err != nil {
		return InvoiceResponse{}, err
	}
	invoice, err := s.invoiceRepo.FindByIDWithItems(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, lookupErr("invoice", err)
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	var status string
	if strings.TrimSpace(filter.Status) != "" {
		var err error
		if status, err = normalizePaymentStatus(filter.Status); err != nil {
			return nil, 0, err
		}
	}
	from, to, err := parseDateRange(filter.From, filter.To)
	if err != nil {
		return nil, 0, err
	}
	customerID, err := parseOptionalID("customer_id", filter.CustomerID)
	if err != nil {
		return nil, 0, err
	}

	p := pageOf(filter.Page, filter.Limit)
	invoices, total, err := s.invoiceRepo.List(ctx, repository.InvoiceQuery{
		Search:     strings.TrimSpace(filter.Search),
		Status:     status,
		CustomerID: customerID,
		From:       from,
		To:         to,
		Offset:     p.Offset,
		Limit:      p.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	resp := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, toInvoiceResponse(inv))
	}
	return resp, total, nil
}

func normalizePaymentStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case "":
		return model.PaymentPaid, nil
	case model.PaymentPaid, model.PaymentUnpaid, model.PaymentPartial:
		return status, nil
	}
	return "", invalid("payment_status", "payment_status must be one of paid, unpaid, partial")
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:             inv.ID.String(),
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerName:   inv.CustomerName,
		CustomerPhone:  inv.CustomerPhone,
		Subtotal:       inv.Subtotal.StringFixed(2),
		DiscountAmount: inv.DiscountAmount.StringFixed(2),
		GSTEnabled:     inv.GSTEnabled,
		GSTRate:        inv.GSTRate.StringFixed(2),
		GSTAmount:      inv.GSTAmount.StringFixed(2),
		TotalAmount:    inv.TotalAmount.StringFixed(2),
		AmountPaid:     inv.AmountPaid.StringFixed(2),
		BalanceDue:     inv.BalanceDue().StringFixed(2),
		PaymentMethod:  inv.PaymentMethod,
		PaymentStatus:  inv.PaymentStatus,
		Notes:          inv.Notes,
		CreatedAt:      inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.CustomerID != nil {
		id := inv.CustomerID.String()
		resp.CustomerID = &id
	}
	for _, it := range inv.Items {
		item := InvoiceItemResponse{
			ID:          it.ID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity.String(),
			Unit:        it.Unit,
			Price:       it.Price.StringFixed(2),
			Discount:    it.Discount.StringFixed(2),
			Total:       it.Total.StringFixed(2),
		}
		if it.ProductID != nil {
			id := it.ProductID.String()
			item.ProductID = &id
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
