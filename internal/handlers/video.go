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

// VideoGenerationHandler animates an existing image asset into a short
// video. The provider operation is long-running; its reported progress is
// forwarded to the job while it polls.
type VideoGenerationHandler struct {
	assets *repos.AssetRepository
	genai  imageProvider
}

// Execute implements queue.Handler
func (h *VideoGenerationHandler) Execute(ctx context.Context, job *queue.JobContext) (json.RawMessage, error) {
	payload, ok := job.Payload().(*types.VideoGenerationPayload)
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
	job.ReportProgress(ctx, 5)

	generated, err := h.genai.GenerateVideo(ctx, genai.GenerateVideoRequest{
		SourceURL:   source.URL,
		Prompt:      payload.Prompt,
		AspectRatio: payload.AspectRatio,
		Resolution:  payload.Resolution,
		Model:       payload.Model,
	}, func(providerProgress int) {
		// Scale the provider's 0-100 into the band between resolution and
		// persistence.
		job.ReportProgress(ctx, 5+providerProgress*85/100)
	})
	if err != nil {
		if !genai.IsTemporary(err) {
			return nil, queue.Permanent(err)
		}
		return nil, err
	}

	asset := &models.Asset{
		ID:        assetID(job.Job.ID, 0),
		TenantID:  job.TenantID(),
		ProductID: source.ProductID,
		JobID:     &job.Job.ID,
		Kind:      models.AssetKindVideo,
		URL:       generated.URL,
	}
	if err := h.assets.Upsert(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to store asset: %w", err)
	}

	result := types.JobResult{
		Asset:      &types.AssetRef{ID: asset.ID, URL: asset.URL, Kind: asset.Kind},
		DurationMS: time.Since(start).Milliseconds(),
	}
	return result.Marshal()
}
