package types

// CreateConnectionRequest represents the request body for connecting a store
type CreateConnectionRequest struct {
	Provider    string `json:"provider"`     // Store platform, one of shopify, woocommerce, bigcommerce
	ShopDomain  string `json:"shop_domain"`  // Shop domain, or store hash for BigCommerce
	AccessToken string `json:"access_token"` // Platform API credential
}
