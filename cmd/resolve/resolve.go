// Package resolve implements the one-shot listing resolution command.
package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/adboard/cmd/common"
	"github.com/jonesrussell/adboard/internal/resolver"
)

// Command returns the resolve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve an Avito listing URL into a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}
}

func run(cmd *cobra.Command, rawURL string) error {
	deps, err := common.NewDeps()
	if err != nil {
		return err
	}

	pipeline, err := common.NewPipeline(deps)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	resolution, err := pipeline.Resolver.Resolve(cmd.Context(), rawURL)
	if err != nil {
		if errors.Is(err, resolver.ErrInvalidURL) || errors.Is(err, resolver.ErrUnsupportedDomain) {
			return fmt.Errorf("cannot resolve %q: %w", rawURL, err)
		}
		return fmt.Errorf("resolution failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if encodeErr := encoder.Encode(resolution); encodeErr != nil {
		return fmt.Errorf("failed to print resolution: %w", encodeErr)
	}

	return nil
}
