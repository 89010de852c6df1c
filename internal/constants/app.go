package constants

const (
	APP_MAIN_STOREFRONT   = "storefront"
	APP_STOREFRONT_SERVER = "storefront-server"
)
