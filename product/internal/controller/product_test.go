package controller

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brewhouse/storefront/product/pkg/request"
)

func TestParseFindProductsQuery(t *testing.T) {
	categoryId := int64(3)
	popular := true
	inactive := false
	tests := []struct {
		name     string
		query    url.Values
		expected request.FindProducts
		wantErr  bool
	}{
		{
			name:     "given empty query should return zero filters",
			query:    url.Values{},
			expected: request.FindProducts{},
		},
		{
			name: "given all filters should parse each",
			query: url.Values{
				"category_id": {"3"},
				"is_popular":  {"true"},
				"is_active":   {"false"},
				"search":      {"roast"},
				"skip":        {"40"},
				"limit":       {"20"},
			},
			expected: request.FindProducts{
				CategoryID: &categoryId,
				IsPopular:  &popular,
				IsActive:   &inactive,
				Search:     "roast",
				Skip:       40,
				Limit:      20,
			},
		},
		{
			name:  "given numeric boolean should parse as true",
			query: url.Values{"is_popular": {"1"}},
			expected: request.FindProducts{
				IsPopular: &popular,
			},
		},
		{
			name:    "given malformed category_id should fail",
			query:   url.Values{"category_id": {"abc"}},
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			param, err := parseFindProductsQuery(test.query)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expected, param)
		})
	}
}
