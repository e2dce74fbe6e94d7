// Package cmd implements the command-line interface for adboard.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/adboard/cmd/httpd"
	"github.com/jonesrussell/adboard/cmd/resolve"
	"github.com/jonesrussell/adboard/cmd/top"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "adboard",
	Short: "Avito listing resolver and board",
	Long: `adboard resolves Avito listing URLs into stored records with
view counts and comments, surviving source-site throttling and
database outages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to every
	// command's configuration pass.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("adboard version %s\n", version)
		},
	})

	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(resolve.Command())
	rootCmd.AddCommand(top.Command())
}
