package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/client"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "List, create, update and delete resumes",
}

var (
	resumeTitle         string
	resumeMarkdown      string
	resumeTargetRole    string
	resumeTargetCompany string
	resumeTemplateID    string
	resumeSourceOut     string
)

func init() {
	list := &cobra.Command{
		Use:   "list",
		Short: "List resumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.ListResumes(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	get := &cobra.Command{
		Use:   "get <resumeId>",
		Short: "Show one resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			r, err := c.GetResume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a resume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			markdown, err := readInput(resumeMarkdown)
			if err != nil {
				return err
			}
			r, err := c.CreateResume(cmd.Context(), client.ResumeInput{
				Title:         resumeTitle,
				Markdown:      markdown,
				TargetRole:    optional(cmd, "target-role", resumeTargetRole),
				TargetCompany: optional(cmd, "target-company", resumeTargetCompany),
				TemplateID:    optional(cmd, "template", resumeTemplateID),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
	create.Flags().StringVar(&resumeTitle, "title", "", "Resume title (required)")
	create.Flags().StringVar(&resumeMarkdown, "markdown", "", "Markdown body, or @file to read it from a file")
	create.Flags().StringVar(&resumeTargetRole, "target-role", "", "Role the resume targets")
	create.Flags().StringVar(&resumeTargetCompany, "target-company", "", "Company the resume targets")
	create.Flags().StringVar(&resumeTemplateID, "template", "", "Template id")
	_ = create.MarkFlagRequired("title")

	update := &cobra.Command{
		Use:   "update <resumeId>",
		Short: "Update fields of a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			patch := client.ResumePatch{
				Title:         optional(cmd, "title", resumeTitle),
				TargetRole:    optional(cmd, "target-role", resumeTargetRole),
				TargetCompany: optional(cmd, "target-company", resumeTargetCompany),
				TemplateID:    optional(cmd, "template", resumeTemplateID),
			}
			if cmd.Flags().Changed("markdown") {
				markdown, err := readInput(resumeMarkdown)
				if err != nil {
					return err
				}
				patch.Markdown = &markdown
			}
			r, err := c.UpdateResume(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
	update.Flags().StringVar(&resumeTitle, "title", "", "New title")
	update.Flags().StringVar(&resumeMarkdown, "markdown", "", "New markdown body, or @file")
	update.Flags().StringVar(&resumeTargetRole, "target-role", "", "New target role")
	update.Flags().StringVar(&resumeTargetCompany, "target-company", "", "New target company")
	update.Flags().StringVar(&resumeTemplateID, "template", "", "New template id")

	del := &cobra.Command{
		Use:   "delete <resumeId>",
		Short: "Delete a resume with its sections, versions and documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.DeleteResume(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a resume from a PDF or DOCX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			r, err := c.ImportResume(cmd.Context(), resumeTitle, resumeTemplateID, args[0], data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
	importCmd.Flags().StringVar(&resumeTitle, "title", "", "Title (defaults to the file name)")
	importCmd.Flags().StringVar(&resumeTemplateID, "template", "", "Template id")

	source := &cobra.Command{
		Use:   "source <resumeId>",
		Short: "Save the original file of an imported resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			file, err := c.ResumeSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return saveFile(cmd, file, resumeSourceOut)
		},
	}
	source.Flags().StringVarP(&resumeSourceOut, "out", "o", "", "Output path (default: original file name)")

	resumesCmd.AddCommand(list, get, create, update, del, importCmd, source)
	rootCmd.AddCommand(resumesCmd)
}
