package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Category struct {
	ID          int64
	Name        string
	Description pgtype.Text
	ParentID    pgtype.Int8
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type Product struct {
	ID            int64
	Name          string
	Description   pgtype.Text
	ImageUrl      pgtype.Text
	RetailPrice   pgtype.Numeric
	UnitOfMeasure pgtype.Text
	CategoryID    pgtype.Int8
	IsPopular     bool
	IsActive      bool
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        pgtype.Text
	IsActive     bool
	IsAdmin      bool
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type PasswordResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt pgtype.Timestamptz
	Used      bool
	CreatedAt pgtype.Timestamptz
}

type Cart struct {
	ID          int64
	UserID      int64
	SessionID   pgtype.Text
	Status      string
	TotalItems  int32
	TotalAmount pgtype.Numeric
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type CartItem struct {
	ID             int64
	CartID         int64
	ProductID      int64
	Quantity       int32
	SelectedSize   pgtype.Text
	Customizations []byte
	UnitPrice      pgtype.Numeric
	TotalPrice     pgtype.Numeric
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type Order struct {
	ID              int64
	OrderNumber     string
	UserID          pgtype.Int8
	SessionID       pgtype.Text
	Status          string
	TotalAmount     pgtype.Numeric
	TaxAmount       pgtype.Numeric
	DiscountAmount  pgtype.Numeric
	FinalAmount     pgtype.Numeric
	PaymentStatus   string
	PaymentMethod   pgtype.Text
	ShippingAddress []byte
	BillingAddress  []byte
	Notes           pgtype.Text
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

type OrderItem struct {
	ID             int64
	OrderID        int64
	ProductID      int64
	Quantity       int32
	UnitPrice      pgtype.Numeric
	TotalPrice     pgtype.Numeric
	SelectedSize   pgtype.Text
	Customizations []byte
	Notes          pgtype.Text
	CreatedAt      pgtype.Timestamptz
}

type ChatSession struct {
	ID        int64
	SessionID string
	UserID    pgtype.Int8
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type ChatMessage struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	Intent    pgtype.Text
	Agent     pgtype.Text
	CreatedAt pgtype.Timestamptz
}
