package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scribe/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check daemon health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := newDaemonClient(cfg)
			if err != nil {
				return err
			}

			var health api.HealthResponse
			if err := client.get(cmd.Context(), "/api/health", &health); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, health)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Daemon: %s (version %s)\n", health.Status, health.Version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the health response as JSON")
	return cmd
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var stateFilter string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "jobs [id]",
		Short: "List submitted jobs or show one job",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := newDaemonClient(cfg)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				var response api.JobResponse
				if err := client.get(cmd.Context(), "/api/ocr/jobs/"+args[0], &response); err != nil {
					return err
				}
				return writeJSON(cmd, response.Job)
			}

			path := "/api/ocr/jobs"
			if stateFilter != "" {
				path += "?state=" + stateFilter
			}
			var response api.JobListResponse
			if err := client.get(cmd.Context(), path, &response); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, response)
			}
			printJobList(cmd, response.Jobs)
			return nil
		},
	}

	cmd.Flags().StringVar(&stateFilter, "state", "", "Filter jobs by state (pending, running, completed, failed)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the job list as JSON")
	return cmd
}

func printJobList(cmd *cobra.Command, summaries []api.JobSummary) {
	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return
	}

	headers := []string{"ID", "State", "Input", "Items", "OK", "Failed", "Updated"}
	rows := make([][]string, 0, len(summaries))
	for _, job := range summaries {
		rows = append(rows, []string{
			job.ID,
			job.State,
			job.Input,
			strconv.Itoa(job.ItemCount),
			strconv.Itoa(job.Succeeded),
			strconv.Itoa(job.Failed),
			job.UpdatedAt,
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
		alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft,
	}))
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var includeImages bool

	cmd := &cobra.Command{
		Use:   "submit <file|directory|url>",
		Short: "Submit an asynchronous OCR job to the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := newDaemonClient(cfg)
			if err != nil {
				return err
			}

			req := api.JobRequest{Input: args[0]}
			if cmd.Flags().Changed("include-images") {
				req.IncludeImages = &includeImages
			}
			var response api.JobResponse
			if err := client.post(cmd.Context(), "/api/ocr/jobs", req, &response); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted job %s (%s)\n", response.Job.ID, response.Job.State)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeImages, "include-images", false, "Include extracted images in results")
	return cmd
}
