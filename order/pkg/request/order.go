package request

import "github.com/shopspring/decimal"

type Checkout struct {
	SessionID       string          `json:"session_id"`
	TotalAmount     decimal.Decimal `json:"total_amount" validate:"required"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount" validate:"required"`
	PaymentMethod   *string         `json:"payment_method"`
	ShippingAddress map[string]any  `json:"shipping_address"`
	BillingAddress  map[string]any  `json:"billing_address"`
	Notes           *string         `json:"notes"`
}
