// Package types provides type definitions for the application
package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shlior7/scenergy/internal/db/models"
)

const maxPayloadSize = 64 * 1024 // 64KB

// Closed sets accepted by the generation providers
var (
	validAspectRatios = map[string]bool{
		"1:1": true, "4:5": true, "3:4": true, "16:9": true, "9:16": true,
	}
	validQualityTiers = map[string]bool{
		"low": true, "standard": true, "high": true,
	}
	validResolutions = map[string]bool{
		"720p": true, "1080p": true,
	}
)

// JobPayload is implemented by every payload variant
type JobPayload interface {
	Validate() error
}

// ProductImageRef points at a product and the subset of its images a
// generation should be grounded on
type ProductImageRef struct {
	ProductID uint     `json:"product_id"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// ImageGenerationPayload carries the parameters for rendering new product imagery
type ImageGenerationPayload struct {
	Prompt              string            `json:"prompt"`
	Products            []ProductImageRef `json:"products"`
	AspectRatio         string            `json:"aspect_ratio"`
	Quality             string            `json:"quality"`
	VariantCount        int               `json:"variant_count"`
	StyleContext        string            `json:"style_context,omitempty"`
	InspirationAssetIDs []string          `json:"inspiration_asset_ids,omitempty"`
}

// Validate ensures the image generation parameters are complete and in range
func (p *ImageGenerationPayload) Validate() error {
	if p.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if len(p.Products) == 0 {
		return fmt.Errorf("at least one product reference is required")
	}
	for i, ref := range p.Products {
		if ref.ProductID == 0 {
			return fmt.Errorf("invalid product reference at index %d: product_id is required", i)
		}
	}
	if !validAspectRatios[p.AspectRatio] {
		return fmt.Errorf("invalid aspect ratio: %s", p.AspectRatio)
	}
	if !validQualityTiers[p.Quality] {
		return fmt.Errorf("invalid quality tier: %s", p.Quality)
	}
	if p.VariantCount < 1 || p.VariantCount > 8 {
		return fmt.Errorf("variant_count must be between 1 and 8")
	}
	return nil
}

// ImageEditPayload carries an edit instruction against an existing asset
type ImageEditPayload struct {
	SourceAssetID     string   `json:"source_asset_id"`
	Instruction       string   `json:"instruction"`
	ReferenceAssetIDs []string `json:"reference_asset_ids,omitempty"`
	Quality           string   `json:"quality,omitempty"`
	PreviewOnly       bool     `json:"preview_only,omitempty"`
}

// Validate ensures the edit parameters are complete
func (p *ImageEditPayload) Validate() error {
	if p.SourceAssetID == "" {
		return fmt.Errorf("source_asset_id is required")
	}
	if p.Instruction == "" {
		return fmt.Errorf("instruction is required")
	}
	if p.Quality != "" && !validQualityTiers[p.Quality] {
		return fmt.Errorf("invalid quality tier: %s", p.Quality)
	}
	return nil
}

// VideoGenerationPayload carries the parameters for rendering a turntable video
type VideoGenerationPayload struct {
	SourceAssetID string `json:"source_asset_id"`
	Prompt        string `json:"prompt"`
	AspectRatio   string `json:"aspect_ratio"`
	Resolution    string `json:"resolution"`
	Model         string `json:"model"`
}

// Validate ensures the video generation parameters are complete and in range
func (p *VideoGenerationPayload) Validate() error {
	if p.SourceAssetID == "" {
		return fmt.Errorf("source_asset_id is required")
	}
	if p.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if !validAspectRatios[p.AspectRatio] {
		return fmt.Errorf("invalid aspect ratio: %s", p.AspectRatio)
	}
	if !validResolutions[p.Resolution] {
		return fmt.Errorf("invalid resolution: %s", p.Resolution)
	}
	if p.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// SyncPayload carries the parameters for catalog sync jobs. Both sync job
// types share this shape; sync_product additionally requires an explicit
// product subset while sync_all_products ignores it.
type SyncPayload struct {
	ConnectionID string   `json:"connection_id"`
	ProductIDs   []string `json:"product_ids,omitempty"`
	Force        bool     `json:"force,omitempty"`
}

// Validate ensures the sync parameters are complete
func (p *SyncPayload) Validate() error {
	if p.ConnectionID == "" {
		return fmt.Errorf("connection_id is required")
	}
	return nil
}

// DecodeJobPayload parses raw payload JSON into the variant declared by the
// job type and validates it. Unknown fields are rejected so a payload of the
// wrong shape fails even when its required fields happen to overlap.
func DecodeJobPayload(jobType models.JobType, raw json.RawMessage) (JobPayload, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("payload is required")
	}
	if len(raw) > maxPayloadSize {
		return nil, fmt.Errorf("payload exceeds maximum size of %d bytes", maxPayloadSize)
	}

	var payload JobPayload
	switch jobType {
	case models.JobTypeImageGeneration:
		payload = &ImageGenerationPayload{}
	case models.JobTypeImageEdit:
		payload = &ImageEditPayload{}
	case models.JobTypeVideoGeneration:
		payload = &VideoGenerationPayload{}
	case models.JobTypeSyncProduct, models.JobTypeSyncAllProducts:
		payload = &SyncPayload{}
	default:
		return nil, fmt.Errorf("invalid job type: %s", jobType)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("payload does not match type %s: %w", jobType, err)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	if jobType == models.JobTypeSyncProduct {
		if sync, ok := payload.(*SyncPayload); ok && len(sync.ProductIDs) == 0 {
			return nil, fmt.Errorf("product_ids is required for %s", models.JobTypeSyncProduct)
		}
	}

	return payload, nil
}

// MarshalJobPayload validates a typed payload and serializes it for storage
func MarshalJobPayload(payload JobPayload) (json.RawMessage, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload is required")
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return raw, nil
}
