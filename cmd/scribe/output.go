package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"scribe/internal/api"
	"scribe/internal/ocr"
)

// printBatchResponse renders the batch outcome for humans: a table when
// stdout is a terminal, plain lines otherwise.
func printBatchResponse(cmd *cobra.Command, response *api.BatchResponse) {
	out := cmd.OutOrStdout()

	if isTerminal(out) {
		headers := []string{"ID", "Title", "Status", "Attempts", "Pages", "Error"}
		rows := make([][]string, 0, len(response.Items))
		for _, item := range response.Items {
			rows = append(rows, []string{
				item.ID,
				item.Title,
				item.Status,
				strconv.Itoa(item.AttemptsUsed),
				strconv.Itoa(item.Pages),
				itemErrorText(item),
			})
		}
		fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
			alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft,
		}))
	} else {
		for _, item := range response.Items {
			line := fmt.Sprintf("%s\t%s\t%s\tattempts=%d", item.ID, item.Title, item.Status, item.AttemptsUsed)
			if msg := itemErrorText(item); msg != "" {
				line += "\t" + msg
			}
			fmt.Fprintln(out, line)
		}
	}

	fmt.Fprintf(out, "Processed %d documents: %d succeeded, %d failed (%.1fs)\n",
		len(response.Items), response.Succeeded, response.Failed, response.ElapsedSeconds)
	if response.ArtifactPath != "" {
		fmt.Fprintf(out, "Results written to %s\n", response.ArtifactPath)
	}
}

func itemErrorText(item api.BatchItem) string {
	if item.Error == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", item.Error.Kind, firstLine(item.Error.Message))
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return message[:idx]
	}
	return message
}

func writeFormats(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	for _, ext := range ocr.SupportedExtensions() {
		if _, err := fmt.Fprintln(out, ext); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
