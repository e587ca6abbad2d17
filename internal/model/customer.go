package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is a named buyer with a running credit balance.
//
// Balance is signed: positive means the customer owes the store, negative
// means the store owes the customer. It is maintained eagerly by invoice
// creation, invoice reversal and manual settlements and is never recomputed
// from invoice history.
type Customer struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone     string          `gorm:"type:varchar(50)" json:"phone"`
	Email     string          `gorm:"type:varchar(255)" json:"email"`
	Address   string          `gorm:"type:text" json:"address"`
	GSTIN     string          `gorm:"column:gstin;type:varchar(20)" json:"gstin"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
