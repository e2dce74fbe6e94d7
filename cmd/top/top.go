// Package top implements the command that displays the most viewed
// listings in a formatted table.
package top

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/adboard/cmd/common"
	"github.com/jonesrussell/adboard/internal/domain"
	"github.com/jonesrussell/adboard/internal/resolver"
)

// Command returns the top command.
func Command() *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most viewed listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, limit, offset)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", resolver.DefaultListLimit, "maximum listings to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "listings to skip")

	return cmd
}

func run(cmd *cobra.Command, limit, offset int) error {
	deps, err := common.NewDeps()
	if err != nil {
		return err
	}

	pipeline, err := common.NewPipeline(deps)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	ads, total, err := pipeline.Resolver.ListTop(cmd.Context(), limit, offset)
	if err != nil {
		return fmt.Errorf("failed to list ads: %w", err)
	}

	renderTable(ads)
	fmt.Printf("\n%d of %d listings\n", len(ads), total)

	return nil
}

func renderTable(ads []*domain.Ad) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Title", "Views", "Approx", "Created", "URL"})

	for _, ad := range ads {
		t.AppendRow(table.Row{
			ad.ID,
			ad.Title,
			ad.Views,
			ad.Approximate,
			ad.CreatedAt.Format("2006-01-02 15:04"),
			ad.URL,
		})
	}

	t.Render()
}
