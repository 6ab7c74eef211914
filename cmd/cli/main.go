package main

import (
	"fmt"
	"os"

	"github.com/shlior7/scenergy/cmd/cli/commands"
)

func init() {
	// Add all subcommands to root command
	commands.RootCmd.AddCommand(commands.GetJobsCmd())
	commands.RootCmd.AddCommand(commands.GetProductsCmd())
	commands.RootCmd.AddCommand(commands.GetConnectionsCmd())
}

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
