package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notehub/internal/notehub/ui"
)

var (
	listPage   int
	listSearch string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := newDeps(ctx, cfg)
		if err != nil {
			return err
		}
		defer d.close(ctx, cfg)

		result, err := d.notes.ListNotes(ctx, listPage, listSearch)
		if err != nil {
			return fmt.Errorf("list notes: %w", err)
		}

		out, st := stdout()
		if listJSON {
			return writeJSON(out, result)
		}

		if len(result.Notes) == 0 {
			_, err := fmt.Fprintln(out, ui.TextEmpty)
			return err
		}
		if err := (ui.NoteList{Notes: result.Notes}).Render(out, st); err != nil {
			return err
		}

		totalPages := result.PageCount(d.perPage)
		if totalPages > 1 {
			fmt.Fprintln(out)
			return ui.Pagination{TotalPages: totalPages, Current: listPage}.Render(out, st)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page number, starting at 1")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Search text")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
