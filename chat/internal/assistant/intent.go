package assistant

import "strings"

const defaultAgent = "BrewMaster Assistant"

var orderTakingKeywords = []string{
	"i want", "i'd like", "can i get", "can i have", "i'll take", "i'll have",
	"place order", "make order", "order for me", "i need", "give me",
	"add to cart", "put in cart", "add to my order", "also add",
	"i'll order", "let me order", "order now",
	"yes add it", "yes add that", "add it", "add that", "yes please add",
	"take it", "i'll take that", "yes please", "sounds good",
	"yes to cart", "add to my cart", "put it in cart", "yes add to cart",
}

var confirmationKeywords = []string{
	"yes", "yeah", "yep", "sure", "okay", "ok", "that one", "the first one",
	"the second one", "correct", "right", "exactly",
}

var checkoutKeywords = []string{
	"checkout", "complete order", "place my order", "finalize order",
	"proceed to checkout", "ready to order", "confirm order", "finish order",
	"complete my order", "submit order", "process order",
}

var paymentKeywords = []string{
	"pay with", "payment method", "i'll pay", "cash payment", "card payment",
	"upi payment", "digital wallet", "credit card", "debit card", "cash", "card", "upi",
}

var cartKeywords = []string{
	"cart", "basket", "my order", "what's in my", "show my", "remove from",
	"delete from", "change quantity", "update my", "clear cart", "empty cart",
	"view cart", "check cart", "modify order", "edit order",
}

var orderStatusKeywords = []string{
	"order status", "track order", "where is my", "delivery status",
	"order confirmation", "receipt", "order number", "my orders",
}

var salesKeywords = []string{
	"price", "cost", "available", "stock", "catalog", "shop", "store",
	"discount", "offer", "promo", "recommendation", "suggest",
	"tell me about", "what do you have", "show me", "browse", "menu",
	"do you have", "do you sell", "which", "what kind", "what type",
	"coffee", "tea", "beans", "drink", "beverage",
	"flavors", "sizes", "options", "varieties", "selection",
}

var refundKeywords = []string{
	"refund", "return", "exchange", "cancel", "money back", "replacement",
	"damaged", "defective", "wrong", "mistake", "complaint", "issue",
}

var supportKeywords = []string{
	"help", "support", "contact", "hours", "location", "delivery",
	"shipping", "account", "login", "register",
}

func containsAny(query string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(query, keyword) {
			return true
		}
	}
	return false
}

// ClassifyIntent buckets a user message by keyword matching. Order taking
// wins over everything else so explicit cart additions are never missed.
func ClassifyIntent(query string) string {
	lowered := strings.ToLower(query)
	switch {
	case containsAny(lowered, orderTakingKeywords):
		return "order_taking"
	case containsAny(lowered, confirmationKeywords) && len(strings.Fields(query)) <= 2:
		return "confirmation"
	case containsAny(lowered, checkoutKeywords):
		return "checkout"
	case containsAny(lowered, paymentKeywords):
		return "payment_method"
	case containsAny(lowered, cartKeywords):
		return "cart_management"
	case containsAny(lowered, orderStatusKeywords):
		return "order_status"
	case containsAny(lowered, salesKeywords):
		return "sales"
	case containsAny(lowered, refundKeywords):
		return "refund"
	case containsAny(lowered, supportKeywords):
		return "support"
	default:
		return "general"
	}
}

var agentNames = map[string]string{
	"order_taking":    "Order Taking Specialist",
	"confirmation":    "Product Specialist",
	"cart_management": "Cart Management Specialist",
	"order_status":    "Order Status Specialist",
	"checkout":        "Checkout Specialist",
	"payment_method":  "Payment Specialist",
	"sales":           "Product Specialist",
	"refund":          "Customer Service Agent",
	"support":         "Support Agent",
	"general":         defaultAgent,
}

func AgentName(intent string) string {
	if name, ok := agentNames[intent]; ok {
		return name
	}
	return defaultAgent
}
