package assistant

import (
	"regexp"
	"strconv"
	"strings"
)

type OrderActionItem struct {
	ProductID int64
	Name      string
	Quantity  int32
	Size      string
}

type OrderActions struct {
	HasOrderAction bool
	ActionType     string
	Items          []OrderActionItem
}

var (
	addToCartPattern = regexp.MustCompile(
		`(?i)🛒\s*\*\*ADD TO CART\*\*:\s*Product ID\s*(\d+)(?:,\s*Size:\s*([^,\n]+?))?(?:,\s*Quantity:\s*(\d+))?(?:\n|$)`,
	)
	addToCartAltPattern = regexp.MustCompile(
		`(?i)ADD TO CART:\s*Product ID\s*(\d+)(?:,\s*Size:\s*([^,\n]+?))?(?:,\s*Quantity:\s*(\d+))?(?:\n|$)`,
	)
	productMentionPattern = regexp.MustCompile(
		`\*\*([^*]+)\*\*\s*\(ID:\s*(\d+)\)`,
	)
)

// ExtractOrderActions scans an assistant reply for explicit cart
// instructions. The assistant is prompted to emit
// "ADD TO CART: Product ID <id>, Size: <size>, Quantity: <n>" lines
// whenever the customer confirms an item.
func ExtractOrderActions(reply string) OrderActions {
	actions := OrderActions{Items: []OrderActionItem{}}

	matches := addToCartPattern.FindAllStringSubmatch(reply, -1)
	if len(matches) == 0 {
		matches = addToCartAltPattern.FindAllStringSubmatch(reply, -1)
	}
	for _, match := range matches {
		productId, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		quantity := int32(1)
		if match[3] != "" {
			parsed, err := strconv.ParseInt(match[3], 10, 32)
			if err == nil && parsed > 0 {
				quantity = int32(parsed)
			}
		}
		actions.HasOrderAction = true
		actions.ActionType = "add_to_cart"
		actions.Items = append(actions.Items, OrderActionItem{
			ProductID: productId,
			Quantity:  quantity,
			Size:      strings.TrimSpace(match[2]),
		})
	}
	return actions
}

// MentionedProductIds returns the ids of products referenced in a reply
// as "**Name** (ID: n)", preserving mention order without duplicates.
func MentionedProductIds(reply string) []int64 {
	seen := map[int64]bool{}
	ids := []int64{}
	for _, match := range productMentionPattern.FindAllStringSubmatch(reply, -1) {
		id, err := strconv.ParseInt(match[2], 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
