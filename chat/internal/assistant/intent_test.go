package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "given explicit order phrasing should return order_taking",
			query:    "I want two bags of the house blend",
			expected: "order_taking",
		},
		{
			name:     "given add to cart phrasing should return order_taking",
			query:    "please add to cart the espresso roast",
			expected: "order_taking",
		},
		{
			name:     "given short confirmation should return confirmation",
			query:    "yes",
			expected: "confirmation",
		},
		{
			name:     "given confirmation keyword in long sentence should not return confirmation",
			query:    "yes I was wondering about your delivery hours",
			expected: "support",
		},
		{
			name:     "given checkout phrasing should return checkout",
			query:    "I'm ready to proceed to checkout",
			expected: "checkout",
		},
		{
			name:     "given payment phrasing should return payment_method",
			query:    "can I pay with credit card",
			expected: "payment_method",
		},
		{
			name:     "given cart phrasing should return cart_management",
			query:    "show my cart",
			expected: "cart_management",
		},
		{
			name:     "given order status phrasing should return order_status",
			query:    "track order 1234 please",
			expected: "order_status",
		},
		{
			name:     "given my order phrasing should prefer cart_management",
			query:    "what is my order status",
			expected: "cart_management",
		},
		{
			name:     "given product question should return sales",
			query:    "what kind of coffee do you have",
			expected: "sales",
		},
		{
			name:     "given refund phrasing should return refund",
			query:    "the bag arrived damaged",
			expected: "refund",
		},
		{
			name:     "given unrelated message should return general",
			query:    "good morning",
			expected: "general",
		},
		{
			name:     "given uppercase query should match case insensitively",
			query:    "I WANT THE DARK ROAST",
			expected: "order_taking",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ClassifyIntent(test.query))
		})
	}
}

func TestAgentName(t *testing.T) {
	assert.Equal(t, "Order Taking Specialist", AgentName("order_taking"))
	assert.Equal(t, "Product Specialist", AgentName("sales"))
	assert.Equal(t, "BrewMaster Assistant", AgentName("general"))
	assert.Equal(t, "BrewMaster Assistant", AgentName("unknown_intent"))
}
