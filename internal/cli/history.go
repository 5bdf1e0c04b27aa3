package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfassina/titlesync/internal/history"
	"github.com/pfassina/titlesync/internal/retitle"
)

type historyFlags struct {
	limit int
}

func newHistoryCmd(a *app) *cobra.Command {
	flags := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded renames",
		Long: `List renames recorded in the vault's history, newest first.

Examples:
  # Show the last 20 renames
  titlesync history

  # Show everything
  titlesync history --limit 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.openVault(); err != nil {
				return err
			}
			db, err := a.openJournal()
			if err != nil {
				return err
			}
			if db == nil {
				return retitle.ErrNoJournal
			}
			defer db.Close()

			entries, err := db.List(flags.limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.styles.Dim.Render("no renames recorded"))
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				status := ""
				if e.Undone {
					status = "undone"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s → %s\t%s\n",
					e.ID, e.RenamedAt.Local().Format(time.DateTime), e.OldPath, e.NewPath, status)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&flags.limit, "limit", 20, "maximum number of renames to show (0 for all)")
	return cmd
}

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent rename",
		Long: `Move the most recently renamed note back to its previous name and
rewrite wiki links back to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := a.openSyncer(false)
			defer closeFn()
			if err != nil {
				return err
			}

			e, err := s.Undo()
			if errors.Is(err, history.ErrEmpty) {
				fmt.Fprintln(cmd.OutOrStdout(), a.styles.Dim.Render("nothing to undo"))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n",
				a.styles.Renamed.Render("Reverted"), e.NewPath, e.OldPath)
			return nil
		},
	}
}
