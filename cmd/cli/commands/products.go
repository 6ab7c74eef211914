package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shlior7/scenergy/pkg/api/v1/client"
)

// productOutput represents the filtered output for a product
type productOutput struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	ExternalID string `json:"external_id"`
	Images     int    `json:"images"`
	SyncedAt   string `json:"synced_at"`
}

func init() {
	productsCmd.AddCommand(listProductsCmd)

	// Add flags
	listProductsCmd.Flags().IntP("limit", "l", 0, "Limit the number of products returned")
	listProductsCmd.Flags().Int("offset", 0, "Number of products to skip")
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse imported catalog products",
}

var listProductsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tenant's imported products",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := &client.PageOptions{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Offset, _ = cmd.Flags().GetInt("offset")

		products, err := apiClient.ListProducts(context.Background(), opts)
		if err != nil {
			return fmt.Errorf("error fetching products: %w", err)
		}

		// Filter the response to only include relevant fields
		output := make([]productOutput, len(products))
		for i, product := range products {
			output[i] = productOutput{
				ID:         product.ID,
				Title:      product.Title,
				ExternalID: product.ExternalID,
				Images:     len(product.ImageURLs),
				SyncedAt:   product.SyncedAt.Format("2006-01-02 15:04:05"),
			}
		}

		// Pretty print the response
		prettyJSON, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
		return nil
	},
}

// GetProductsCmd returns the products command
func GetProductsCmd() *cobra.Command {
	return productsCmd
}
