package log

const (
	KeyAppName            = "app"
	KeyTag                = "tag"
	KeyProcess            = "process"
	KeyRequestID          = "requestId"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyConfig             = "config"
	KeyEmail              = "email"
	KeyToken              = "token"
	KeyUserID             = "userId"
	KeySessionID          = "sessionId"
	KeyCart               = "cart"
	KeyCartID             = "cartId"
	KeyCartItemID         = "cartItemId"
	KeyCartItems          = "cartItems"
	KeyProductID          = "productId"
	KeyQuantity           = "quantity"
	KeyOrderID            = "orderId"
	KeyOrderNumber        = "orderNumber"
	KeyMessageID          = "messageId"
	KeyIntent             = "intent"
	KeyAgent              = "agent"
	KeyCacheKey           = "cacheKey"
	KeyDbURL              = "dbURL"
	KeyPathValues         = "pathValues"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyRequestProcessedAt = "requestProcessedAt"
)
