package response

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItemCategory struct {
	Name *string `json:"name"`
}

type CartItemProduct struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	ImageUrl    *string          `json:"image_url"`
	RetailPrice decimal.Decimal  `json:"retail_price"`
	Category    CartItemCategory `json:"category"`
}

type CartItem struct {
	ID             int64           `json:"id"`
	CartID         int64           `json:"cart_id"`
	ProductID      int64           `json:"product_id"`
	Quantity       int32           `json:"quantity"`
	SelectedSize   *string         `json:"selected_size"`
	Customizations map[string]any  `json:"customizations"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Product        CartItemProduct `json:"product"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Cart struct {
	CartID      int64           `json:"cart_id"`
	UserID      int64           `json:"user_id"`
	SessionID   *string         `json:"session_id"`
	Items       []CartItem      `json:"items"`
	TotalItems  int32           `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
