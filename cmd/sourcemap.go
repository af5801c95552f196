package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/argonsync/argon/internal/core"
	"github.com/argonsync/argon/internal/project"
	"github.com/spf13/cobra"
)

var (
	sourcemapOutput     string
	sourcemapNonScripts bool
)

func init() {
	sourcemapCmd.Flags().StringVarP(&sourcemapOutput, "output", "o", "", "Write sourcemap to a file instead of stdout")
	sourcemapCmd.Flags().BoolVar(&sourcemapNonScripts, "non-scripts", false, "Include non-script instances in the sourcemap")
}

var sourcemapCmd = &cobra.Command{
	Use:   "sourcemap",
	Short: "Generate a Rojo-compatible sourcemap for the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := project.Load(projectPath)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}

		ctx := context.Background()
		c, err := core.New(ctx, p, false)
		if err != nil {
			return fmt.Errorf("start core: %w", err)
		}

		node, err := c.Sourcemap(ctx, sourcemapNonScripts)
		if err != nil {
			return fmt.Errorf("sourcemap: %w", err)
		}

		data, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			return fmt.Errorf("encode sourcemap: %w", err)
		}

		if sourcemapOutput == "" {
			fmt.Println(string(data))
			return nil
		}
		return os.WriteFile(sourcemapOutput, data, 0o644)
	},
}
