// Package handlers implements the execution logic behind each job type.
// Handlers receive a claimed job from the queue, do the provider and
// database work, and return either a result or an error classified as
// retryable or permanent.
package handlers

import (
	"context"
	"fmt"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/genai"
	"github.com/shlior7/scenergy/internal/queue"
	"github.com/shlior7/scenergy/internal/storesync"
)

// imageProvider is the slice of the generation API the image and video
// handlers consume, implemented by genai.Client
type imageProvider interface {
	GenerateImages(ctx context.Context, req genai.GenerateImagesRequest) ([]genai.Asset, error)
	EditImage(ctx context.Context, req genai.EditImageRequest) (genai.Asset, error)
	GenerateVideo(ctx context.Context, req genai.GenerateVideoRequest, onProgress func(int)) (genai.Asset, error)
}

// catalogSource is the slice of the store API the sync handler consumes,
// implemented by storesync.Client
type catalogSource interface {
	FetchProducts(ctx context.Context, conn *models.StoreConnection, externalIDs []string) ([]storesync.ExternalProduct, error)
	ForEachProduct(ctx context.Context, conn *models.StoreConnection, fn func([]storesync.ExternalProduct) error) error
}

// Deps carries the shared dependencies injected into every handler
type Deps struct {
	Products    *repos.ProductRepository
	Assets      *repos.AssetRepository
	Connections *repos.StoreConnectionRepository
	GenAI       *genai.Client
	Store       *storesync.Client
}

// RegisterAll binds every job type to its handler
func RegisterAll(registry *queue.Registry, deps Deps) {
	registry.Register(models.JobTypeImageGeneration, &ImageGenerationHandler{
		products: deps.Products,
		assets:   deps.Assets,
		genai:    deps.GenAI,
	})
	registry.Register(models.JobTypeImageEdit, &ImageEditHandler{
		assets: deps.Assets,
		genai:  deps.GenAI,
	})
	registry.Register(models.JobTypeVideoGeneration, &VideoGenerationHandler{
		assets: deps.Assets,
		genai:  deps.GenAI,
	})

	syncHandler := &SyncHandler{
		connections: deps.Connections,
		products:    deps.Products,
		store:       deps.Store,
	}
	registry.Register(models.JobTypeSyncProduct, syncHandler)
	registry.Register(models.JobTypeSyncAllProducts, syncHandler)
}

// assetID derives the deterministic id for the nth asset a job produces.
// Re-execution after a reclaim regenerates the same ids, so the upsert
// overwrites the earlier rows instead of duplicating them.
func assetID(jobID string, index int) string {
	return fmt.Sprintf("%s-%d", jobID, index)
}
