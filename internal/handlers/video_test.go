package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/genai"
	"github.com/shlior7/scenergy/internal/queue"
)

func TestVideoGenerationPersistsAsset(t *testing.T) {
	env := newHandlerEnv(t)
	provider := &fakeProvider{videoProgress: []int{20, 60, 100}}
	handler := &VideoGenerationHandler{assets: env.assets, genai: provider}

	productID := uint(7)
	env.createAsset(t, "prior-0", &productID)
	job := env.makeJob(t, models.JobTypeVideoGeneration, `{
		"source_asset_id": "prior-0",
		"prompt": "slow turntable rotation",
		"aspect_ratio": "16:9",
		"resolution": "1080p",
		"model": "veo-3"
	}`)

	raw, err := handler.Execute(env.ctx, job)
	require.NoError(t, err)

	require.Len(t, provider.videoCalls, 1)
	assert.Equal(t, "https://cdn.example.com/stored/prior-0.png", provider.videoCalls[0].SourceURL)
	assert.Equal(t, "1080p", provider.videoCalls[0].Resolution)

	result := parseResult(t, raw)
	require.NotNil(t, result.Asset)
	assert.Equal(t, "job-1-0", result.Asset.ID)
	assert.Equal(t, models.AssetKindVideo, result.Asset.Kind)

	stored, err := env.assets.GetByID(env.ctx, testTenantID, "job-1-0")
	require.NoError(t, err)
	assert.Equal(t, models.AssetKindVideo, stored.Kind)
	assert.Equal(t, "https://cdn.provider.example/video.mp4", stored.URL)
	require.NotNil(t, stored.ProductID)
	assert.Equal(t, productID, *stored.ProductID)
}

func TestVideoGenerationMissingSourceIsPermanent(t *testing.T) {
	env := newHandlerEnv(t)
	handler := &VideoGenerationHandler{assets: env.assets, genai: &fakeProvider{}}

	job := env.makeJob(t, models.JobTypeVideoGeneration, `{
		"source_asset_id": "gone-0",
		"prompt": "spin",
		"aspect_ratio": "16:9",
		"resolution": "720p",
		"model": "veo-3"
	}`)

	_, err := handler.Execute(env.ctx, job)
	require.Error(t, err)
	assert.True(t, queue.IsPermanent(err))
}

func TestVideoGenerationProviderErrorClassification(t *testing.T) {
	env := newHandlerEnv(t)
	env.createAsset(t, "prior-0", nil)
	payload := `{
		"source_asset_id": "prior-0",
		"prompt": "spin",
		"aspect_ratio": "16:9",
		"resolution": "720p",
		"model": "veo-3"
	}`

	provider := &fakeProvider{videoErr: &genai.APIError{StatusCode: 429, Message: "quota exceeded"}}
	handler := &VideoGenerationHandler{assets: env.assets, genai: provider}
	_, err := handler.Execute(env.ctx, env.makeJob(t, models.JobTypeVideoGeneration, payload))
	require.Error(t, err)
	assert.False(t, queue.IsPermanent(err))

	provider = &fakeProvider{videoErr: &genai.APIError{StatusCode: 422, Message: "unsupported resolution"}}
	handler = &VideoGenerationHandler{assets: env.assets, genai: provider}
	_, err = handler.Execute(env.ctx, env.makeJob(t, models.JobTypeVideoGeneration, payload))
	require.Error(t, err)
	assert.True(t, queue.IsPermanent(err))
}
