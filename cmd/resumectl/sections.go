package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-builder/internal/client"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Edit the ordered sections of a resume",
}

var (
	sectionTitle    string
	sectionMarkdown string
	sectionOrder    int
)

func init() {
	list := &cobra.Command{
		Use:   "list <resumeId>",
		Short: "List sections in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.ListSections(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	add := &cobra.Command{
		Use:   "add <resumeId>",
		Short: "Add a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			markdown, err := readInput(sectionMarkdown)
			if err != nil {
				return err
			}
			in := client.SectionInput{Title: sectionTitle, Markdown: markdown}
			if cmd.Flags().Changed("order") {
				in.Order = &sectionOrder
			}
			s, err := c.CreateSection(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
	add.Flags().StringVar(&sectionTitle, "title", "", "Section title (required)")
	add.Flags().StringVar(&sectionMarkdown, "markdown", "", "Section markdown, or @file")
	add.Flags().IntVar(&sectionOrder, "order", 0, "1-based position (default: last)")
	_ = add.MarkFlagRequired("title")

	edit := &cobra.Command{
		Use:   "edit <resumeId> <sectionId>",
		Short: "Change a section's title or markdown",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			patch := client.SectionPatch{Title: optional(cmd, "title", sectionTitle)}
			if cmd.Flags().Changed("markdown") {
				markdown, err := readInput(sectionMarkdown)
				if err != nil {
					return err
				}
				patch.Markdown = &markdown
			}
			s, err := c.UpdateSection(cmd.Context(), args[0], args[1], patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
	edit.Flags().StringVar(&sectionTitle, "title", "", "New title")
	edit.Flags().StringVar(&sectionMarkdown, "markdown", "", "New markdown, or @file")

	rm := &cobra.Command{
		Use:   "rm <resumeId> <sectionId>",
		Short: "Delete a section and its history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.DeleteSection(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[1])
			return nil
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder <resumeId> <sectionId>...",
		Short: "Set the display order; every section id must be listed once",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.ReorderSections(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			items, err := c.ListSections(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	history := &cobra.Command{
		Use:   "history <resumeId> <sectionId>",
		Short: "List saved versions of a section, oldest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.SectionHistory(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	restore := &cobra.Command{
		Use:   "restore <resumeId> <sectionId> <historyId>",
		Short: "Restore a section's markdown from its history",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			s, err := c.RestoreSection(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}

	sectionsCmd.AddCommand(list, add, edit, rm, reorder, history, restore)
	rootCmd.AddCommand(sectionsCmd)
}
