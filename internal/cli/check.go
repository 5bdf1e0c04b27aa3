package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfassina/titlesync/internal/retitle"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [notes...]",
		Short: "Report notes whose filename does not match their title",
		Long: `Report notes whose filename differs from their first H1 heading.

Exits non-zero when any note is out of sync, which makes it usable as a
pre-commit hook. Nothing is renamed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := a.openSyncer(true)
			defer closeFn()
			if err != nil {
				return err
			}

			results, err := planNotes(cmd.Context(), a, s, args)
			var stale []retitle.Result
			for _, r := range results {
				if r.Outcome == retitle.WouldRename || r.Outcome == retitle.Collision {
					stale = append(stale, r)
				}
			}

			out := cmd.OutOrStdout()
			a.printResults(out, stale, false)
			if len(stale) > 0 {
				return errors.Join(err, fmt.Errorf("%d %w", len(stale), errOutOfSync))
			}
			return err
		},
	}
}
