package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/planning-center-groups-go/internal/app"
)

var (
	renderGroupType string
	renderContent   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print one rendered groups fragment to stdout",
	Long: `Renders the groups grid once with the stored settings. With --content,
directives inside the given file ("-" for stdin) are expanded instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
		container, err := app.Build(buildCtx, cfg, logger)
		buildCancel()
		if err != nil {
			logger.Error("Failed to assemble application services", zap.Error(err))
			return err
		}
		defer container.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if renderContent == "" {
			fmt.Fprintln(cmd.OutOrStdout(), container.Groups.RenderGroups(ctx, renderGroupType))
			return nil
		}

		content, err := readContent(cmd, renderContent)
		if err != nil {
			return fmt.Errorf("reading content: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), container.Shortcodes.Expand(ctx, content))
		return nil
	},
}

func readContent(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func init() {
	renderCmd.Flags().StringVar(&renderGroupType, "group-type", "", "override the stored group type filter")
	renderCmd.Flags().StringVar(&renderContent, "content", "", "page content file with directives to expand (\"-\" for stdin)")
	rootCmd.AddCommand(renderCmd)
}
