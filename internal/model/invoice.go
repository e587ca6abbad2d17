package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus enum constants
const (
	PaymentPaid    = "paid"
	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
)

const (
	DefaultPaymentMethod = "cash"
	WalkInCustomerName   = "Walk-in Customer"
)

// Invoice is an issued bill. Customer name/phone are copied at sale time so the
// document stays unchanged when the customer record is edited or removed.
// Invoices are created with their items and only ever removed by reversal.
type Invoice struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber  string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id"` // nil for walk-in sales
	CustomerName   string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone  string          `gorm:"type:varchar(50)" json:"customer_phone"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"discount_amount"`
	GSTEnabled     bool            `gorm:"not null" json:"gst_enabled"`
	GSTAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"gst_amount"`
	GSTRate        decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"gst_rate"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"` // subtotal - discount_amount + gst_amount
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount_paid"`
	PaymentMethod  string          `gorm:"type:varchar(30);not null" json:"payment_method"`
	PaymentStatus  string          `gorm:"type:varchar(20);not null;index" json:"payment_status"` // paid, unpaid, partial
	Notes          string          `gorm:"type:text" json:"notes"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// BalanceDue is the part of the total the customer has not paid yet.
func (i Invoice) BalanceDue() decimal.Decimal {
	return i.TotalAmount.Sub(i.AmountPaid)
}

// InvoiceItem is a line of an invoice. Name, unit and price are snapshots
// taken at sale time; ProductID is nil for ad-hoc items.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	LineNo      int             `gorm:"not null" json:"line_no"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(20);not null" json:"unit"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"discount"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"` // quantity * price - discount
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&it.ID)
	return nil
}

// LineTotal computes quantity * price - discount.
func LineTotal(quantity, price, discount decimal.Decimal) decimal.Decimal {
	return quantity.Mul(price).Sub(discount)
}
