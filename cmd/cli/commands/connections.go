package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shlior7/scenergy/internal/types"
)

func init() {
	connectionsCmd.AddCommand(createConnectionCmd)
	connectionsCmd.AddCommand(listConnectionsCmd)

	// Add flags
	createConnectionCmd.Flags().String("provider", "", "Store platform: shopify, woocommerce, or bigcommerce")
	createConnectionCmd.Flags().String("domain", "", "Shop domain, or store hash for BigCommerce")
	createConnectionCmd.Flags().String("token", "", "Platform API access token")
	_ = createConnectionCmd.MarkFlagRequired("provider")
	_ = createConnectionCmd.MarkFlagRequired("domain")
	_ = createConnectionCmd.MarkFlagRequired("token")
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Manage store connections",
}

var createConnectionCmd = &cobra.Command{
	Use:   "create",
	Short: "Connect a store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		domain, _ := cmd.Flags().GetString("domain")
		token, _ := cmd.Flags().GetString("token")

		conn, err := apiClient.CreateConnection(context.Background(), types.CreateConnectionRequest{
			Provider:    provider,
			ShopDomain:  domain,
			AccessToken: token,
		})
		if err != nil {
			return fmt.Errorf("error creating connection: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), conn.ID)
		return nil
	},
}

var listConnectionsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tenant's store connections",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conns, err := apiClient.ListConnections(context.Background())
		if err != nil {
			return fmt.Errorf("error fetching connections: %w", err)
		}

		// Pretty print the response
		prettyJSON, err := json.MarshalIndent(conns, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
		return nil
	},
}

// GetConnectionsCmd returns the connections command
func GetConnectionsCmd() *cobra.Command {
	return connectionsCmd
}
