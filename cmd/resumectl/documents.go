package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"resume-builder/internal/client"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List generated documents and read their text",
}

var generateCmd = &cobra.Command{
	Use:   "generate <resumeId>",
	Short: "Render a resume to DOCX and save it",
	Long:  "Renders the resume (or one of its versions) to DOCX with the chosen template and downloads the result. Requests rejected because the converter is unavailable are retried.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var (
	generateVersionID  string
	generateTemplateID string
	generateOut        string
	generateRetries    int
	generateBackoff    time.Duration
)

func init() {
	list := &cobra.Command{
		Use:   "list <resumeId>",
		Short: "List generated documents, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.ListDocuments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	text := &cobra.Command{
		Use:   "text <resumeId> <documentId>",
		Short: "Print the text of a generated document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			out, err := c.DocumentText(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	documentsCmd.AddCommand(list, text)

	generateCmd.Flags().StringVar(&generateVersionID, "version", "", "Render this version instead of the current content")
	generateCmd.Flags().StringVar(&generateTemplateID, "template", "", "Template id (default: the version's, then the resume's)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output path (default: server file name)")
	generateCmd.Flags().IntVar(&generateRetries, "retries", 2, "Retries when generation is temporarily unavailable")
	generateCmd.Flags().DurationVar(&generateBackoff, "backoff", 2*time.Second, "Wait before the first retry; doubles each time")

	rootCmd.AddCommand(documentsCmd, generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	opts := client.GenerateOptions{VersionID: generateVersionID, TemplateID: generateTemplateID}

	file, err := generateWithRetry(cmd.Context(), c, args[0], opts, generateRetries, generateBackoff, func(attempt int, wait time.Duration, err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%v; retry %d in %s\n", err, attempt, wait)
	})
	if err != nil {
		return err
	}
	return saveFile(cmd, file.File, generateOut)
}

func generateWithRetry(ctx context.Context, c *client.Client, resumeID string, opts client.GenerateOptions, retries int, backoff time.Duration, onRetry func(int, time.Duration, error)) (client.GeneratedFile, error) {
	wait := backoff
	for attempt := 0; ; attempt++ {
		file, err := c.GenerateDocx(ctx, resumeID, opts)
		if err == nil || !client.IsRetryable(err) || attempt >= retries {
			return file, err
		}
		if onRetry != nil {
			onRetry(attempt+1, wait, err)
		}
		select {
		case <-ctx.Done():
			return client.GeneratedFile{}, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func saveFile(cmd *cobra.Command, file client.File, out string) error {
	path := out
	if path == "" {
		path = filepath.Base(file.FileName)
	}
	if path == "" || path == "." || path == "/" {
		path = "download.docx"
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", path, len(file.Data))
	return nil
}
