package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreProvider identifies the e-commerce platform behind a connection
type StoreProvider string

// Store provider constants
const (
	// StoreProviderShopify is a Shopify store connection
	StoreProviderShopify StoreProvider = "shopify"
	// StoreProviderWooCommerce is a WooCommerce store connection
	StoreProviderWooCommerce StoreProvider = "woocommerce"
	// StoreProviderBigCommerce is a BigCommerce store connection
	StoreProviderBigCommerce StoreProvider = "bigcommerce"
)

// ParseStoreProvider converts a string to a StoreProvider type
func ParseStoreProvider(str string) (StoreProvider, error) {
	switch str {
	case string(StoreProviderShopify):
		return StoreProviderShopify, nil
	case string(StoreProviderWooCommerce):
		return StoreProviderWooCommerce, nil
	case string(StoreProviderBigCommerce):
		return StoreProviderBigCommerce, nil
	default:
		return "", fmt.Errorf("invalid store provider: %s", str)
	}
}

// StoreConnection holds the credentials and endpoint of a tenant's
// connected e-commerce store. Sync jobs reference a connection by id.
type StoreConnection struct {
	ID           string        `json:"id" gorm:"primaryKey;size:36"`
	TenantID     string        `json:"tenant_id" gorm:"not null;size:64;index"`
	Provider     StoreProvider `json:"provider" gorm:"not null;size:16"`
	ShopDomain   string        `json:"shop_domain" gorm:"not null"`
	AccessToken  string        `json:"-" gorm:"not null"`
	Active       bool          `json:"active" gorm:"not null;default:true"`
	LastSyncedAt *time.Time    `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Validate ensures that the connection data is valid
func (c *StoreConnection) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("connection tenant id cannot be empty")
	}
	if _, err := ParseStoreProvider(string(c.Provider)); err != nil {
		return err
	}
	if c.ShopDomain == "" {
		return fmt.Errorf("connection shop domain cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new connection
func (c *StoreConnection) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return c.Validate()
}
