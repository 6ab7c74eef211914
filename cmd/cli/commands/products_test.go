//go:build !lint
// +build !lint

package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/pkg/api/v1/client"
	"github.com/shlior7/scenergy/pkg/api/v1/client/mock"
)

// setupProductsTestCommand sets up a test command with a mock client
func setupProductsTestCommand(t *testing.T) (*cobra.Command, *mock.MockClient, *bytes.Buffer) {
	mockClient := &mock.MockClient{}

	originalClient := apiClient
	t.Cleanup(func() {
		apiClient = originalClient
	})
	apiClient = mockClient

	outputBuf := &bytes.Buffer{}

	cmd := GetProductsCmd()
	resetCommandFlags(cmd)
	cmd.SetOut(outputBuf)
	cmd.SetErr(outputBuf)
	for _, subCmd := range cmd.Commands() {
		subCmd.SetOut(outputBuf)
	}

	return cmd, mockClient, outputBuf
}

func TestListProductsCommand(t *testing.T) {
	cmd, mockClient, outputBuf := setupProductsTestCommand(t)

	mockClient.ListProductsFn = func(_ context.Context, opts *client.PageOptions) ([]models.Product, error) {
		require.NotNil(t, opts)
		assert.Equal(t, 10, opts.Limit)
		assert.Equal(t, 20, opts.Offset)

		return []models.Product{
			{
				ID:         1,
				Title:      "Ceramic Mug",
				ExternalID: "1001",
				ImageURLs:  []string{"https://cdn.example.com/mug.jpg"},
				SyncedAt:   time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
			},
			{
				ID:         2,
				Title:      "Walnut Cutting Board",
				ExternalID: "1002",
			},
		}, nil
	}

	cmd.SetArgs([]string{"list", "-l", "10", "--offset", "20"})
	err := cmd.Execute()
	require.NoError(t, err, "Command execution failed")

	require.Len(t, mockClient.ListProductsCalls, 1, "ListProducts should be called once")

	output := outputBuf.String()
	assert.Contains(t, output, `"title": "Ceramic Mug"`)
	assert.Contains(t, output, `"title": "Walnut Cutting Board"`)
	assert.Contains(t, output, `"external_id": "1001"`)
	assert.Contains(t, output, `"images": 1`)
}

func TestListProductsCommandError(t *testing.T) {
	cmd, mockClient, _ := setupProductsTestCommand(t)

	mockClient.ListProductsFn = func(_ context.Context, _ *client.PageOptions) ([]models.Product, error) {
		return nil, assert.AnError
	}

	cmd.SetArgs([]string{"list"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error fetching products")
}
