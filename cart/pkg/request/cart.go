package request

type AddCartItem struct {
	ProductID      int64          `json:"product_id" validate:"required,min=1"`
	Quantity       int32          `json:"quantity" validate:"required,min=1"`
	SelectedSize   *string        `json:"selected_size"`
	Customizations map[string]any `json:"customizations"`
	SessionID      string         `json:"session_id"`
}

type UpdateCartItem struct {
	Quantity int32 `json:"quantity" validate:"min=0"`
}
