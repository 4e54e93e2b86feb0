package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := newDeps(ctx, cfg)
		if err != nil {
			return err
		}
		defer d.close(ctx, cfg)

		note, err := d.notes.DeleteNote(ctx, args[0])
		if err != nil {
			return fmt.Errorf("delete note: %w", err)
		}

		out, st := stdout()
		_, err = fmt.Fprintf(out, "Deleted %s (%s)\n", st.Bold(note.ID), note.Title)
		return err
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
