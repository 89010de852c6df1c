package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOrderActions(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected OrderActions
	}{
		{
			name:     "given plain reply should return no action",
			reply:    "We have a lovely Ethiopian roast you might enjoy.",
			expected: OrderActions{Items: []OrderActionItem{}},
		},
		{
			name:  "given emoji marker should extract item",
			reply: "Great choice!\n🛒 **ADD TO CART**: Product ID 12, Size: Large, Quantity: 2\n",
			expected: OrderActions{
				HasOrderAction: true,
				ActionType:     "add_to_cart",
				Items:          []OrderActionItem{{ProductID: 12, Quantity: 2, Size: "Large"}},
			},
		},
		{
			name:  "given plain marker should extract item",
			reply: "ADD TO CART: Product ID 7, Size: Small, Quantity: 1",
			expected: OrderActions{
				HasOrderAction: true,
				ActionType:     "add_to_cart",
				Items:          []OrderActionItem{{ProductID: 7, Quantity: 1, Size: "Small"}},
			},
		},
		{
			name:  "given marker without size and quantity should default quantity to one",
			reply: "ADD TO CART: Product ID 3",
			expected: OrderActions{
				HasOrderAction: true,
				ActionType:     "add_to_cart",
				Items:          []OrderActionItem{{ProductID: 3, Quantity: 1}},
			},
		},
		{
			name:  "given multiple markers should extract all items",
			reply: "🛒 **ADD TO CART**: Product ID 1, Size: Medium, Quantity: 1\n🛒 **ADD TO CART**: Product ID 2, Size: Large, Quantity: 3\n",
			expected: OrderActions{
				HasOrderAction: true,
				ActionType:     "add_to_cart",
				Items: []OrderActionItem{
					{ProductID: 1, Quantity: 1, Size: "Medium"},
					{ProductID: 2, Quantity: 3, Size: "Large"},
				},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ExtractOrderActions(test.reply))
		})
	}
}

func TestMentionedProductIds(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected []int64
	}{
		{
			name:     "given no mention should return empty",
			reply:    "We open at eight every morning.",
			expected: []int64{},
		},
		{
			name:     "given mentions should preserve order",
			reply:    "Try **House Blend** (ID: 4) or **Dark Roast** (ID: 9).",
			expected: []int64{4, 9},
		},
		{
			name:     "given duplicate mentions should deduplicate",
			reply:    "**House Blend** (ID: 4) pairs well with **House Blend** (ID: 4).",
			expected: []int64{4},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, MentionedProductIds(test.reply))
		})
	}
}
