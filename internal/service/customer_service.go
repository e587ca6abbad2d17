package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"billing/internal/logger"
	"billing/internal/model"
	"billing/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number"`
}

type CustomerFilter struct {
	Search string
	Page   int
	Limit  int
}

type CustomerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	GSTIN     string `json:"gstin"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CustomerHistoryResponse is a customer together with its invoices, newest first
type CustomerHistoryResponse struct {
	Customer CustomerResponse  `json:"customer"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// --- Interface ---

type CustomerService interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (CustomerResponse, error)
	GetCustomerHistory(ctx context.Context, id string) (CustomerHistoryResponse, error)
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]CustomerResponse, int64, error)
	UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string) error

	// SettlePayment records money received outside an invoice: balance -= amount.
	// The balance may go negative (store owes the customer).
	SettlePayment(ctx context.Context, id string, amount decimal.Decimal) (CustomerResponse, error)
	// ApplyBalance adds delta to the balance inside the caller's transaction.
	// Soft-deleted customers are still adjusted.
	ApplyBalance(ctx context.Context, customerID uuid.UUID, delta decimal.Decimal) (*model.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	txManager    repository.TransactionManager
	notifier     Notifier
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		txManager:    txManager,
		notifier:     notifierOrNoop(notifier),
	}
}

// --- Implementation ---

func (s *customerService) CreateCustomer(ctx context.Context, req CustomerRequest) (CustomerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CustomerResponse{}, invalid("name", "name is required")
	}

	customer := model.Customer{
		Name:    name,
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
		Address: strings.TrimSpace(req.Address),
		GSTIN:   strings.TrimSpace(req.GSTIN),
		Balance: decimal.Zero,
	}
	if err := s.customerRepo.Create(ctx, &customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to create customer: %w", err)
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (CustomerResponse, error) {
	customerID, err := parseID("id", id)
	if err != nil {
		return CustomerResponse{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return CustomerResponse{}, lookupErr("customer", err)
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) GetCustomerHistory(ctx context.Context, id string) (CustomerHistoryResponse, error) {
	customerID, err := parseID("id", id)
	if err != nil {
		return CustomerHistoryResponse{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return CustomerHistoryResponse{}, lookupErr("customer", err)
	}

	invoices, _, err := s.invoiceRepo.List(ctx, repository.InvoiceQuery{CustomerID: &customerID})
	if err != nil {
		return CustomerHistoryResponse{}, fmt.Errorf("failed to load customer invoices: %w", err)
	}

	resp := CustomerHistoryResponse{
		Customer: toCustomerResponse(*customer),
		Invoices: make([]InvoiceResponse, 0, len(invoices)),
	}
	for _, inv := range invoices {
		resp.Invoices = append(resp.Invoices, toInvoiceResponse(inv))
	}
	return resp, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter CustomerFilter) ([]CustomerResponse, int64, error) {
	var offset, limit int
	if filter.Limit > 0 {
		p := pageOf(filter.Page, filter.Limit)
		offset, limit = p.Offset, p.Limit
	}

	customers, total, err := s.customerRepo.List(ctx, strings.TrimSpace(filter.Search), offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	resp := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, toCustomerResponse(c))
	}
	return resp, total, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (CustomerResponse, error) {
	customerID, err := parseID("id", id)
	if err != nil {
		return CustomerResponse{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CustomerResponse{}, invalid("name", "name is required")
	}

	var updated model.Customer
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := s.customerRepo.FindByID(txCtx, customerID)
		if err != nil {
			return lookupErr("customer", err)
		}

		// balance is owned by the ledger and is never taken from the request
		customer.Name = name
		customer.Phone = strings.TrimSpace(req.Phone)
		customer.Email = strings.TrimSpace(req.Email)
		customer.Address = strings.TrimSpace(req.Address)
		customer.GSTIN = strings.TrimSpace(req.GSTIN)
		if err := s.customerRepo.Update(txCtx, customer); err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		updated = *customer
		return nil
	})
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(updated), nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	customerID, err := parseID("id", id)
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.customerRepo.FindByID(txCtx, customerID); err != nil {
			return lookupErr("customer", err)
		}
		if err := s.customerRepo.Delete(txCtx, customerID); err != nil {
			return fmt.Errorf("failed to delete customer: %w", err)
		}
		return nil
	})
}

func (s *customerService) SettlePayment(ctx context.Context, id string, amount decimal.Decimal) (CustomerResponse, error) {
	customerID, err := parseID("id", id)
	if err != nil {
		return CustomerResponse{}, err
	}
	if !amount.IsPositive() {
		return CustomerResponse{}, invalid("amount", "amount must be greater than 0")
	}

	var settled *model.Customer
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.customerRepo.FindByID(txCtx, customerID); err != nil {
			return lookupErr("customer", err)
		}
		settled, err = s.ApplyBalance(txCtx, customerID, amount.Neg())
		return err
	})
	if err != nil {
		return CustomerResponse{}, err
	}

	resp := toCustomerResponse(*settled)
	logger.WithComponent("customer").Info().
		Str("customer_id", resp.ID).
		Str("amount", amount.StringFixed(2)).
		Str("balance", resp.Balance).
		Msg("payment settled")
	s.notifier.Publish(EventCustomerPayment, map[string]interface{}{
		"customer": resp,
		"amount":   amount.StringFixed(2),
	})
	return resp, nil
}

func (s *customerService) ApplyBalance(ctx context.Context, customerID uuid.UUID, delta decimal.Decimal) (*model.Customer, error) {
	var customer *model.Customer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.customerRepo.FindByIDForUpdate(txCtx, customerID)
		if err != nil {
			return lookupErr("customer", err)
		}

		now := time.Now().UTC()
		c.Balance = c.Balance.Add(delta)
		c.UpdatedAt = now
		if err := s.customerRepo.UpdateBalance(txCtx, c.ID, c.Balance, now); err != nil {
			return fmt.Errorf("failed to update balance for %s: %w", c.Name, err)
		}
		customer = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		GSTIN:     c.GSTIN,
		Balance:   c.Balance.StringFixed(2),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
