// Package main is resumectl, a command line client for the resume builder API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"resume-builder/internal/client"
)

const defaultAPIURL = "http://localhost:8080"

var apiURL string

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "Manage resumes, sections, versions and DOCX documents",
	Long:          "resumectl talks to a resume builder API server. The server address comes from --api or RESUME_API_URL.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $RESUME_API_URL or "+defaultAPIURL+")")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	base := strings.TrimSpace(apiURL)
	if base == "" {
		base = strings.TrimSpace(os.Getenv("RESUME_API_URL"))
	}
	if base == "" {
		base = defaultAPIURL
	}
	return client.New(base)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// optional returns nil for an unset flag so the field is left out of the request.
func optional(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

// readInput reads a flag value, or a file when the value starts with "@".
func readInput(value string) (string, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	path := strings.TrimPrefix(value, "@")
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
