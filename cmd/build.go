package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/argonsync/argon/internal/core"
	"github.com/argonsync/argon/internal/project"
	"github.com/spf13/cobra"
)

var buildOutput string

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output file path (required)")
	_ = buildCmd.MarkFlagRequired("output")
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the project into a model or place file",
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

		data, err := c.Build(ctx)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}

		if err := os.WriteFile(buildOutput, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", buildOutput, err)
		}

		fmt.Printf("Built %s\n", buildOutput)
		return nil
	},
}
