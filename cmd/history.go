package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCMD() *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear saved summaries",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved summaries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newHistoryStore()
			if err != nil {
				return err
			}
			items, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
				return nil
			}
			for i := len(items) - 1; i >= 0; i-- {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %s\n", len(items)-i, items[i].Title)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newHistoryStore()
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}

	history.AddCommand(listCmd, clearCmd)
	return history
}
