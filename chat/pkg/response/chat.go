package response

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	BuyLink       string          `json:"buy_link"`
	ImageUrl      *string         `json:"image_url"`
	Description   *string         `json:"description"`
	UnitOfMeasure *string         `json:"unit_of_measure"`
	Category      *string         `json:"category"`
}

type OrderActionItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	Size      string `json:"size"`
}

type CartResult struct {
	Success     bool     `json:"success"`
	CartUpdated bool     `json:"cart_updated"`
	Message     string   `json:"message"`
	ItemsAdded  []string `json:"items_added"`
}

type OrderProcessing struct {
	HasOrderAction bool              `json:"has_order_action"`
	ActionType     string            `json:"action_type"`
	Items          []OrderActionItem `json:"items"`
	CartResult     *CartResult       `json:"cart_result"`
}

type Chat struct {
	Reply           string           `json:"reply"`
	SessionID       string           `json:"session_id"`
	Intent          string           `json:"intent"`
	Agent           string           `json:"agent"`
	Products        []Product        `json:"products"`
	OrderProcessing *OrderProcessing `json:"order_processing,omitempty"`
}

type HistoryMessage struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	IsBot     bool      `json:"isBot"`
	Role      string    `json:"role"`
	Intent    *string   `json:"intent"`
	Agent     *string   `json:"agent"`
	Timestamp time.Time `json:"timestamp"`
}

type History struct {
	SessionID     string           `json:"session_id"`
	Messages      []HistoryMessage `json:"messages"`
	TotalMessages int              `json:"total_messages"`
}
