package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shlior7/scenergy/pkg/api/v1/client"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagTenant        = "tenant"
)

// environment variable names
const (
	envServerAddress = "SCENERGY_SERVER_ADDRESS"
	envTenant        = "SCENERGY_TENANT_ID"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
	// tenantID scopes every request the CLI makes
	tenantID string
)

// initClient initializes the API client
func initClient() error {
	var err error
	apiClient, err = client.NewClient(&client.Options{
		BaseURL:  serverAddress,
		TenantID: tenantID,
	})
	return err
}

func init() {
	// Set basic defaults for the flags. PersistentPreRunE handles env var
	// override.
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", client.DefaultBaseURL, "Address of the Scenergy API server (env: SCENERGY_SERVER_ADDRESS)")
	RootCmd.PersistentFlags().StringVarP(&tenantID, flagTenant, "t", "", "Tenant id requests are scoped to (env: SCENERGY_TENANT_ID)")
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "scenergy",
	Short: "Scenergy CLI - A command line interface for the Scenergy API",
	Long: `Scenergy CLI is a command line tool for enqueueing and tracking generation
jobs, browsing imported products, and managing store connections.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Flag > env var > default, for both persistent settings.
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(envServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}
		if !cmd.Flags().Changed(flagTenant) {
			if envTenantID := os.Getenv(envTenant); envTenantID != "" {
				tenantID = envTenantID
			}
		}

		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
