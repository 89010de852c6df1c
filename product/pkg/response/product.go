package response

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	ImageUrl      *string         `json:"image_url"`
	RetailPrice   decimal.Decimal `json:"retail_price"`
	UnitOfMeasure *string         `json:"unit_of_measure"`
	IsPopular     bool            `json:"is_popular"`
	IsActive      bool            `json:"is_active"`
	Category      *Category       `json:"category"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProductPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int32     `json:"page"`
	PerPage  int32     `json:"per_page"`
}
