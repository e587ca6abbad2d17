package service

import (
	"context"
	"fmt"

	"billing/internal/repository"

	"github.com/shopspring/decimal"
)

// InvoiceMismatch is a stored invoice whose total breaks
// total_amount = subtotal - discount_amount + gst_amount.
type InvoiceMismatch struct {
	InvoiceNumber string `json:"invoice_number"`
	TotalAmount   string `json:"total_amount"`
	Expected      string `json:"expected"`
}

// CustomerBalanceCheck sets a customer's running balance beside the amount still
// due on its invoices. The difference is what manual settlements account for.
type CustomerBalanceCheck struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Deleted    bool   `json:"deleted"`
	Balance    string `json:"balance"`
	InvoiceDue string `json:"invoice_due"`
	Settled    string `json:"settled"`
}

type VerifyReport struct {
	InvoicesChecked int                    `json:"invoices_checked"`
	Mismatches      []InvoiceMismatch      `json:"mismatches"`
	Customers       []CustomerBalanceCheck `json:"customers"`
}

// OK reports whether every invoice satisfies the total invariant.
func (r VerifyReport) OK() bool {
	return len(r.Mismatches) == 0
}

// VerifyService checks the stored ledger without writing to it.
type VerifyService interface {
	Verify(ctx context.Context) (VerifyReport, error)
}

type verifyService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	reportRepo   repository.ReportRepository
}

func NewVerifyService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	reportRepo repository.ReportRepository,
) VerifyService {
	return &verifyService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		reportRepo:   reportRepo,
	}
}

func (s *verifyService) Verify(ctx context.Context) (VerifyReport, error) {
	var report VerifyReport

	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load invoices: %w", err)
	}
	report.InvoicesChecked = len(invoices)
	for _, inv := range invoices {
		expected := inv.Subtotal.Sub(inv.DiscountAmount).Add(inv.GSTAmount)
		if !inv.TotalAmount.Round(4).Equal(expected.Round(4)) {
			report.Mismatches = append(report.Mismatches, InvoiceMismatch{
				InvoiceNumber: inv.InvoiceNumber,
				TotalAmount:   money(inv.TotalAmount),
				Expected:      money(expected),
			})
		}
	}

	dues, err := s.reportRepo.DueByCustomer(ctx)
	if err != nil {
		return report, err
	}
	dueByID := make(map[string]decimal.Decimal, len(dues))
	for _, d := range dues {
		dueByID[d.CustomerID] = d.Due
	}

	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load customers: %w", err)
	}
	for _, c := range customers {
		due := dueByID[c.ID.String()]
		report.Customers = append(report.Customers, CustomerBalanceCheck{
			CustomerID: c.ID.String(),
			Name:       c.Name,
			Deleted:    c.DeletedAt.Valid,
			Balance:    money(c.Balance),
			InvoiceDue: money(due),
			Settled:    money(due.Sub(c.Balance)),
		})
	}
	return report, nil
}
