package response

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int32           `json:"quantity"`
	SelectedSize   *string         `json:"selected_size"`
	Customizations map[string]any  `json:"customizations"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          *int64          `json:"user_id"`
	SessionID       *string         `json:"session_id"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentMethod   *string         `json:"payment_method"`
	ShippingAddress map[string]any  `json:"shipping_address"`
	BillingAddress  map[string]any  `json:"billing_address"`
	Notes           *string         `json:"notes"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}
