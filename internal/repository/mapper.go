package repository

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	cartResponse "github.com/brewhouse/storefront/cart/pkg/response"
	orderResponse "github.com/brewhouse/storefront/order/pkg/response"
	productResponse "github.com/brewhouse/storefront/product/pkg/response"
	userResponse "github.com/brewhouse/storefront/user/pkg/response"
)

func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func int8Ptr(i pgtype.Int8) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}

func jsonMap(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed unmarshaling jsonb with error=%w", err)
	}
	return m, nil
}

func (c Category) Response() productResponse.Category {
	return productResponse.Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: textPtr(c.Description),
	}
}

func (p FindProductsRow) Response() productResponse.Product {
	var category *productResponse.Category
	if p.CategoryID.Valid && p.CategoryName != nil {
		category = &productResponse.Category{
			ID:          p.CategoryID.Int64,
			Name:        *p.CategoryName,
			Description: p.CategoryDescription,
		}
	}
	return productResponse.Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   textPtr(p.Description),
		ImageUrl:      textPtr(p.ImageUrl),
		RetailPrice:   NumericToDecimal(p.RetailPrice),
		UnitOfMeasure: textPtr(p.UnitOfMeasure),
		IsPopular:     p.IsPopular,
		IsActive:      p.IsActive,
		Category:      category,
		CreatedAt:     p.CreatedAt.Time,
		UpdatedAt:     p.UpdatedAt.Time,
	}
}

func (f FindCartItemsWithProductRow) Response() (cartResponse.CartItem, error) {
	customizations, err := jsonMap(f.Customizations)
	if err != nil {
		return cartResponse.CartItem{}, err
	}
	return cartResponse.CartItem{
		ID:             f.ID,
		CartID:         f.CartID,
		ProductID:      f.ProductID,
		Quantity:       f.Quantity,
		SelectedSize:   textPtr(f.SelectedSize),
		Customizations: customizations,
		UnitPrice:      NumericToDecimal(f.UnitPrice),
		TotalPrice:     NumericToDecimal(f.TotalPrice),
		Product: cartResponse.CartItemProduct{
			ID:          f.ProductID,
			Name:        f.ProductName,
			Description: f.ProductDescription,
			ImageUrl:    f.ProductImage,
			RetailPrice: NumericToDecimal(f.ProductPrice),
			Category:    cartResponse.CartItemCategory{Name: f.CategoryName},
		},
		CreatedAt: f.CreatedAt.Time,
	}, nil
}

func (c Cart) Response(items []cartResponse.CartItem) cartResponse.Cart {
	return cartResponse.Cart{
		CartID:      c.ID,
		UserID:      c.UserID,
		SessionID:   textPtr(c.SessionID),
		Items:       items,
		TotalItems:  c.TotalItems,
		TotalAmount: NumericToDecimal(c.TotalAmount),
		UpdatedAt:   c.UpdatedAt.Time,
	}
}

func (o Order) Response(items []orderResponse.OrderItem) (orderResponse.Order, error) {
	shipping, err := jsonMap(o.ShippingAddress)
	if err != nil {
		return orderResponse.Order{}, err
	}
	billing, err := jsonMap(o.BillingAddress)
	if err != nil {
		return orderResponse.Order{}, err
	}
	return orderResponse.Order{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          int8Ptr(o.UserID),
		SessionID:       textPtr(o.SessionID),
		Status:          o.Status,
		TotalAmount:     NumericToDecimal(o.TotalAmount),
		TaxAmount:       NumericToDecimal(o.TaxAmount),
		DiscountAmount:  NumericToDecimal(o.DiscountAmount),
		FinalAmount:     NumericToDecimal(o.FinalAmount),
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   textPtr(o.PaymentMethod),
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Notes:           textPtr(o.Notes),
		Items:           items,
		CreatedAt:       o.CreatedAt.Time,
	}, nil
}

func (f FindOrderItemsWithProductRow) Response() (orderResponse.OrderItem, error) {
	customizations, err := jsonMap(f.Customizations)
	if err != nil {
		return orderResponse.OrderItem{}, err
	}
	return orderResponse.OrderItem{
		ID:             f.ID,
		ProductID:      f.ProductID,
		ProductName:    f.ProductName,
		Quantity:       f.Quantity,
		SelectedSize:   textPtr(f.SelectedSize),
		Customizations: customizations,
		UnitPrice:      NumericToDecimal(f.UnitPrice),
		TotalPrice:     NumericToDecimal(f.TotalPrice),
	}, nil
}

func (u User) Name() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u User) AuthResponse(accessToken string) userResponse.Auth {
	return userResponse.Auth{
		AccessToken: accessToken,
		TokenType:   "bearer",
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name(),
	}
}
