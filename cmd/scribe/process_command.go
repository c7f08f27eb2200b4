package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/api"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath    string
		includeImages bool
		concurrency   int
		recursive     bool
		allowEmpty    bool
		noArtifact    bool
		jsonOut       bool
	)

	cmd := &cobra.Command{
		Use:   "process <file|directory|url>",
		Short: "Run OCR over a file, directory, or document URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			params := api.BatchParams{
				Input:        args[0],
				OutputPath:   strings.TrimSpace(outputPath),
				Concurrency:  concurrency,
				SkipArtifact: noArtifact,
			}
			flags := cmd.Flags()
			if flags.Changed("include-images") {
				params.IncludeImages = &includeImages
			}
			if flags.Changed("recursive") {
				params.Recursive = &recursive
			}
			if flags.Changed("allow-empty") {
				params.AllowEmpty = &allowEmpty
			}

			service := api.NewService(cfg, ctx.newOCRClient(cfg), logger)
			response, err := service.RunBatch(cmd.Context(), params)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, response)
			}
			printBatchResponse(cmd, response)
			if response.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed", response.Failed, len(response.Items))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Artifact destination path")
	cmd.Flags().BoolVar(&includeImages, "include-images", false, "Include extracted images in results")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Concurrent backend calls (default from config)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Recurse into subdirectories")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Tolerate inputs with no processable documents")
	cmd.Flags().BoolVar(&noArtifact, "no-artifact", false, "Skip writing the output artifact")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the batch response as JSON")
	return cmd
}

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List supported input file types",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeFormats(cmd)
		},
	}
}
