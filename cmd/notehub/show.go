package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notehub/internal/notehub/domain/entities"
	"notehub/internal/notehub/ui"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a single note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := newDeps(ctx, cfg)
		if err != nil {
			return err
		}
		defer d.close(ctx, cfg)

		note, err := d.notes.GetNote(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get note: %w", err)
		}

		out, st := stdout()
		if showJSON {
			return writeJSON(out, note)
		}
		return ui.NoteList{Notes: []entities.Note{*note}}.Render(out, st)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}
