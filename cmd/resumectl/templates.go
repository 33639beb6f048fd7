package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/client"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage DOCX templates",
}

var (
	templateName        string
	templateDescription string
	templateOut         string
)

func init() {
	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Register a template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			t, err := c.CreateTemplate(cmd.Context(), client.TemplateInput{
				Name:        templateName,
				Description: optional(cmd, "description", templateDescription),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
	create.Flags().StringVar(&templateName, "name", "", "Template name (required)")
	create.Flags().StringVar(&templateDescription, "description", "", "Short description")
	_ = create.MarkFlagRequired("name")

	upload := &cobra.Command{
		Use:   "upload <templateId> <file.docx>",
		Short: "Attach a reference DOCX to a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			t, err := c.UploadTemplateAsset(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}

	download := &cobra.Command{
		Use:   "download <templateId>",
		Short: "Save a template's reference DOCX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			file, err := c.DownloadTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return saveFile(cmd, file, templateOut)
		},
	}
	download.Flags().StringVarP(&templateOut, "out", "o", "", "Output path (default: server file name)")

	templatesCmd.AddCommand(list, create, upload, download)
	rootCmd.AddCommand(templatesCmd)
}
