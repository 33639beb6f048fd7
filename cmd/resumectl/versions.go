package main

import (
	"github.com/spf13/cobra"

	"resume-builder/internal/client"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Snapshot a resume into named versions",
}

var (
	versionLabel      string
	versionMarkdown   string
	versionTemplateID string
)

func init() {
	list := &cobra.Command{
		Use:   "list <resumeId>",
		Short: "List versions, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.ListVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	get := &cobra.Command{
		Use:   "get <resumeId> <versionId>",
		Short: "Show one version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			v, err := c.GetVersion(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}

	create := &cobra.Command{
		Use:   "create <resumeId>",
		Short: "Snapshot the resume's current content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			in := client.VersionInput{
				Label:      optional(cmd, "label", versionLabel),
				TemplateID: optional(cmd, "template", versionTemplateID),
			}
			if cmd.Flags().Changed("markdown") {
				markdown, err := readInput(versionMarkdown)
				if err != nil {
					return err
				}
				in.Markdown = &markdown
			}
			v, err := c.CreateVersion(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
	create.Flags().StringVar(&versionLabel, "label", "", "Version label")
	create.Flags().StringVar(&versionMarkdown, "markdown", "", "Explicit markdown instead of the current sections, or @file")
	create.Flags().StringVar(&versionTemplateID, "template", "", "Template id to pin on the version")

	versionsCmd.AddCommand(list, get, create)
	rootCmd.AddCommand(versionsCmd)
}
