package service

import (
	"context"
	"testing"

	"billing/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_CleanLedger(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	custID := seedReportData(t, l)

	_, err := l.customers.SettlePayment(ctx, custID, dec("40"))
	require.NoError(t, err)

	report, err := l.verify.Verify(ctx)
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, 2, report.InvoicesChecked)
	require.Len(t, report.Customers, 1)
	assert.Equal(t, "60.00", report.Customers[0].Balance)
	assert.Equal(t, "100.00", report.Customers[0].InvoiceDue)
	assert.Equal(t, "40.00", report.Customers[0].Settled)
}

func TestVerify_FlagsBrokenTotal(t *testing.T) {
	l := newLedger(t)
	seedReportData(t, l)

	require.NoError(t, l.db.Model(&model.Invoice{}).Where("invoice_number = ?", "GKS-00001").
		Update("total_amount", dec("999")).Error)

	report, err := l.verify.Verify(context.Background())
	require.NoError(t, err)

	assert.False(t, report.OK())
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "GKS-00001", report.Mismatches[0].InvoiceNumber)
	assert.Equal(t, "120.00", report.Mismatches[0].Expected)
}
