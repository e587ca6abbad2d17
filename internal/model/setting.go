package model

// Setting keys read by the invoice engine
const (
	SettingInvoicePrefix  = "invoice_prefix"
	SettingInvoiceCounter = "invoice_counter"
)

const (
	DefaultInvoicePrefix  = "GKS"
	DefaultInvoiceCounter = int64(1)
)

// Setting is a flat key/value pair holding store profile data and the invoice
// numbering state.
type Setting struct {
	Key   string `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value string `gorm:"type:text;not null" json:"value"`
}

// DefaultSettings are inserted on first start. Existing keys are left alone.
var DefaultSettings = []Setting{
	{Key: "store_name", Value: "Gajraj Kirana Stores"},
	{Key: "store_address", Value: ""},
	{Key: "store_phone", Value: ""},
	{Key: "store_email", Value: ""},
	{Key: "store_gstin", Value: ""},
	{Key: "gmail_user", Value: ""},
	{Key: "gmail_app_password", Value: ""},
	{Key: "low_stock_email", Value: ""},
	{Key: SettingInvoicePrefix, Value: DefaultInvoicePrefix},
	{Key: SettingInvoiceCounter, Value: "1"},
}

// DefaultCategories are inserted on first start.
var DefaultCategories = []string{
	"Grocery", "Dairy", "Beverages", "Snacks", "Personal Care",
	"Household", "Spices", "Pulses", "Rice & Flour", "Oil & Ghee",
}
