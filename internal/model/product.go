package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultUnit is the unit label used when neither the product nor the line item names one.
const DefaultUnit = "pcs"

// DefaultLowStockAlert is the threshold assigned to products created without one.
var DefaultLowStockAlert = decimal.NewFromInt(10)

// Category groups products for filtering. Products reference it by name.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Product is a stocked item. Quantity is fractional (kg, litre) and has no
// floor: sales may drive it below zero.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name"`
	SKU           *string         `gorm:"type:varchar(100);uniqueIndex" json:"sku"` // NULL when the product has no code
	Category      string          `gorm:"type:varchar(100);index" json:"category"`
	HSNCode       string          `gorm:"type:varchar(20)" json:"hsn_code"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"purchase_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"selling_price"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit          string          `gorm:"type:varchar(20);not null" json:"unit"`
	LowStockAlert decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"low_stock_alert"`
	GSTRate       decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"gst_rate"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// IsLowStock reports whether the product is at or below its alert level.
func (p Product) IsLowStock() bool {
	return p.Quantity.LessThanOrEqual(p.LowStockAlert)
}
