package models

import (
	"fmt"
	"time"
)

// AssetKind distinguishes generated image assets from video assets
type AssetKind string

// Asset kind constants
const (
	// AssetKindImage is a generated or edited still image
	AssetKindImage AssetKind = "image"
	// AssetKindVideo is a generated turntable video
	AssetKindVideo AssetKind = "video"
)

// Asset is a generated output stored by a handler. Generated assets use
// deterministic ids derived from the producing job so re-execution after a
// reclaim overwrites the same rows instead of creating duplicates.
type Asset struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	TenantID  string    `json:"tenant_id" gorm:"not null;size:64;index"`
	ProductID *uint     `json:"product_id,omitempty" gorm:"index"`
	JobID     *string   `json:"job_id,omitempty" gorm:"size:36;index"`
	Kind      AssetKind `json:"kind" gorm:"not null;size:16"`
	URL       string    `json:"url" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures that the asset data is valid
func (a *Asset) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("asset id cannot be empty")
	}
	if a.TenantID == "" {
		return fmt.Errorf("asset tenant id cannot be empty")
	}
	if a.URL == "" {
		return fmt.Errorf("asset url cannot be empty")
	}
	return nil
}
