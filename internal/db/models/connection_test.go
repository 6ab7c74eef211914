package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStoreProvider(t *testing.T) {
	tests := []struct {
		name        string
		stringValue string
		provider    StoreProvider
		valid       bool
	}{
		{name: "Shopify provider", stringValue: "shopify", provider: StoreProviderShopify, valid: true},
		{name: "WooCommerce provider", stringValue: "woocommerce", provider: StoreProviderWooCommerce, valid: true},
		{name: "BigCommerce provider", stringValue: "bigcommerce", provider: StoreProviderBigCommerce, valid: true},
		{name: "Invalid provider", stringValue: "etsy", valid: false},
		{name: "Empty provider", stringValue: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseStoreProvider(tt.stringValue)
			if tt.valid {
				assert.NoError(t, err)
				assert.Equal(t, tt.provider, parsed)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStoreConnectionValidate(t *testing.T) {
	valid := StoreConnection{
		TenantID:    "tenant-a",
		Provider:    StoreProviderShopify,
		ShopDomain:  "demo.myshopify.com",
		AccessToken: "shpat_test",
	}
	assert.NoError(t, valid.Validate())

	noTenant := valid
	noTenant.TenantID = ""
	assert.Error(t, noTenant.Validate())

	badProvider := valid
	badProvider.Provider = "etsy"
	assert.Error(t, badProvider.Validate())

	noDomain := valid
	noDomain.ShopDomain = ""
	assert.Error(t, noDomain.Validate())
}

func TestStoreConnectionBeforeCreate(t *testing.T) {
	conn := StoreConnection{
		TenantID:   "tenant-a",
		Provider:   StoreProviderWooCommerce,
		ShopDomain: "shop.example.com",
	}
	assert.NoError(t, conn.BeforeCreate(nil))
	assert.NotEmpty(t, conn.ID)
}
