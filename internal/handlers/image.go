package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/genai"
	"github.com/shlior7/scenergy/internal/queue"
	"github.com/shlior7/scenergy/internal/types"
)

// ImageGenerationHandler renders new product scene imagery. Variants are
// generated one at a time so progress tracks real provider work; each
// finished variant is persisted before the next starts.
type ImageGenerationHandler struct {
	products *repos.ProductRepository
	assets   *repos.AssetRepository
	genai    imageProvider
}

// Execute implements queue.Handler
func (h *ImageGenerationHandler) Execute(ctx context.Context, job *queue.JobContext) (json.RawMessage, error) {
	payload, ok := job.Payload().(*types.ImageGenerationPayload)
	if !ok {
		return nil, queue.Permanent(fmt.Errorf("unexpected payload type %T", job.Payload()))
	}
	start := time.Now()

	productURLs, productID, err := h.resolveProducts(ctx, job.TenantID(), payload.Products)
	if err != nil {
		return nil, err
	}

	inspirationURLs, err := resolveAssetURLs(ctx, h.assets, job.TenantID(), payload.InspirationAssetIDs)
	if err != nil {
		return nil, err
	}
	job.ReportProgress(ctx, 5)

	refs := make([]types.AssetRef, 0, payload.VariantCount)
	for i := 0; i < payload.VariantCount; i++ {
		if i > 0 && job.Cancelled(ctx) {
			return nil, fmt.Errorf("stopping after %d variants, job no longer owned by this worker", i)
		}
		generated, err := h.genai.GenerateImages(ctx, genai.GenerateImagesRequest{
			Prompt:           payload.Prompt,
			ProductImageURLs: productURLs,
			AspectRatio:      payload.AspectRatio,
			Quality:          payload.Quality,
			VariantCount:     1,
			StyleContext:     payload.StyleContext,
			InspirationURLs:  inspirationURLs,
		})
		if err != nil {
			if !genai.IsTemporary(err) {
				return nil, queue.Permanent(err)
			}
			return nil, err
		}

		asset := &models.Asset{
			ID:        assetID(job.Job.ID, i),
			TenantID:  job.TenantID(),
			ProductID: productID,
			JobID:     &job.Job.ID,
			Kind:      models.AssetKindImage,
			URL:       generated[0].URL,
		}
		if err := h.assets.Upsert(ctx, asset); err != nil {
			return nil, fmt.Errorf("failed to store asset: %w", err)
		}
		refs = append(refs, types.AssetRef{ID: asset.ID, URL: asset.URL, Kind: asset.Kind})

		job.ReportProgress(ctx, 5+(i+1)*90/payload.VariantCount)
	}

	result := types.JobResult{
		Assets:     refs,
		DurationMS: time.Since(start).Milliseconds(),
	}
	return result.Marshal()
}

// resolveProducts collects the grounding image URLs for the referenced
// products, reading stored catalog images for refs that do not pin a
// subset. Returns the product id to attribute assets to when the job
// targets a single product.
func (h *ImageGenerationHandler) resolveProducts(ctx context.Context, tenantID string, refs []types.ProductImageRef) ([]string, *uint, error) {
	var urls []string
	for _, ref := range refs {
		if len(ref.ImageURLs) > 0 {
			urls = append(urls, ref.ImageURLs...)
			continue
		}

		product, err := h.products.GetByID(ctx, tenantID, ref.ProductID)
		if err != nil {
			if errors.Is(err, repos.ErrProductNotFound) {
				return nil, nil, queue.Permanent(fmt.Errorf("product %d not found", ref.ProductID))
			}
			return nil, nil, fmt.Errorf("failed to load product %d: %w", ref.ProductID, err)
		}
		urls = append(urls, product.ImageURLs...)
	}
	if len(urls) == 0 {
		return nil, nil, queue.Permanent(fmt.Errorf("referenced products have no images to ground on"))
	}

	var productID *uint
	if len(refs) == 1 {
		productID = &refs[0].ProductID
	}
	return urls, productID, nil
}

// resolveAssetURLs maps stored asset ids to their URLs. A dangling id is a
// permanent failure since retrying cannot bring the asset back.
func resolveAssetURLs(ctx context.Context, assets *repos.AssetRepository, tenantID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		asset, err := assets.GetByID(ctx, tenantID, id)
		if err != nil {
			if errors.Is(err, repos.ErrAssetNotFound) {
				return nil, queue.Permanent(fmt.Errorf("asset %s not found", id))
			}
			return nil, fmt.Errorf("failed to load asset %s: %w", id, err)
		}
		urls = append(urls, asset.URL)
	}
	return urls, nil
}

// ImageEditHandler applies an instruction-based edit to an existing asset.
// Preview edits return the provider URL without persisting a new asset row.
type ImageEditHandler struct {
	assets *repos.AssetRepository
	genai  imageProvider
}

// Execute implements queue.Handler
func (h *ImageEditHandler) Execute(ctx context.Context, job *queue.JobContext) (json.RawMessage, error) {
	payload, ok := job.Payload().(*types.ImageEditPayload)
	if !ok {
		return nil, queue.Permanent(fmt.Errorf("unexpected payload type %T", job.Payload()))
	}
	start := time.Now()

	source, err := h.assets.GetByID(ctx, job.TenantID(), payload.SourceAssetID)
	if err != nil {
		if errors.Is(err, repos.ErrAssetNotFound) {
			return nil, queue.Permanent(fmt.Errorf("source asset %s not found", payload.SourceAssetID))
		}
		return nil, fmt.Errorf("failed to load source asset: %w", err)
	}

	referenceURLs, err := resolveAssetURLs(ctx, h.assets, job.TenantID(), payload.ReferenceAssetIDs)
	if err != nil {
		return nil, err
	}
	job.ReportProgress(ctx, 10)

	edited, err := h.genai.EditImage(ctx, genai.EditImageRequest{
		SourceURL:     source.URL,
		Instruction:   payload.Instruction,
		ReferenceURLs: referenceURLs,
		Quality:       payload.Quality,
	})
	if err != nil {
		if !genai.IsTemporary(err) {
			return nil, queue.Permanent(err)
		}
		return nil, err
	}
	job.ReportProgress(ctx, 85)

	ref := types.AssetRef{URL: edited.URL, Kind: models.AssetKindImage}
	if !payload.PreviewOnly {
		asset := &models.Asset{
			ID:        assetID(job.Job.ID, 0),
			TenantID:  job.TenantID(),
			ProductID: source.ProductID,
			JobID:     &job.Job.ID,
			Kind:      models.AssetKindImage,
			URL:       edited.URL,
		}
		if err := h.assets.Upsert(ctx, asset); err != nil {
			return nil, fmt.Errorf("failed to store asset: %w", err)
		}
		ref.ID = asset.ID
	}

	result := types.JobResult{
		Asset:      &ref,
		DurationMS: time.Since(start).Milliseconds(),
	}
	return result.Marshal()
}
