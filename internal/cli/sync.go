package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pfassina/titlesync/internal/retitle"
	"github.com/pfassina/titlesync/internal/ui"
)

type syncFlags struct {
	dryRun      bool
	interactive bool
	all         bool
}

func newSyncCmd(a *app) *cobra.Command {
	flags := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync [notes...]",
		Short: "Rename notes after their first heading",
		Long: `Rename notes so their filename matches their first H1 heading.

With no arguments every note in the vault is synced. Notes that already
match are only listed with --all.

Examples:
  # Preview renames for the whole vault
  titlesync sync --dry-run

  # Sync one note
  titlesync sync "inbox/untitled 3.md"

  # Confirm each rename
  titlesync sync -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, a, args, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "show what would be renamed")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "confirm each rename")
	cmd.Flags().BoolVar(&flags.all, "all", false, "also list notes that are already in sync")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "interactive")

	return cmd
}

func runSync(cmd *cobra.Command, a *app, args []string, flags *syncFlags) error {
	s, closeFn, err := a.openSyncer(flags.dryRun)
	defer closeFn()
	if err != nil {
		return err
	}

	var results []retitle.Result
	if flags.interactive {
		results, err = syncInteractive(cmd.Context(), a, s, args)
	} else {
		results, err = syncNotes(cmd.Context(), a, s, args)
	}

	out := cmd.OutOrStdout()
	a.printResults(out, results, len(args) == 0 && !flags.all)
	fmt.Fprintln(out, a.styles.Summary(results))
	return err
}

func syncNotes(ctx context.Context, a *app, s *retitle.Syncer, args []string) ([]retitle.Result, error) {
	if len(args) == 0 {
		return s.SyncAll(ctx)
	}

	var results []retitle.Result
	var errs []error
	for _, arg := range args {
		rel, err := a.noteRel(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := s.Sync(rel)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func planNotes(ctx context.Context, a *app, s *retitle.Syncer, args []string) ([]retitle.Result, error) {
	if len(args) == 0 {
		return s.PlanAll(ctx)
	}

	var results []retitle.Result
	var errs []error
	for _, arg := range args {
		rel, err := a.noteRel(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := s.Plan(rel)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// syncInteractive plans first, asks about every pending rename and applies
// the accepted ones. Plans that were declined keep their WouldRename outcome.
func syncInteractive(ctx context.Context, a *app, s *retitle.Syncer, args []string) ([]retitle.Result, error) {
	plans, planErr := planNotes(ctx, a, s, args)

	final, err := tea.NewProgram(ui.NewConfirm(plans, a.styles), tea.WithContext(ctx)).Run()
	if err != nil {
		return plans, errors.Join(planErr, err)
	}
	confirm, ok := final.(ui.Confirm)
	if !ok {
		return plans, fmt.Errorf("unexpected model type from confirm prompt")
	}
	if confirm.Aborted() {
		a.log.Info("aborted, nothing renamed")
		return nil, planErr
	}

	applied := make(map[string]retitle.Result)
	errs := []error{planErr}
	for _, p := range confirm.Accepted() {
		res, err := s.Apply(p)
		if err != nil {
			errs = append(errs, err)
		}
		applied[p.Path] = res
	}

	var results []retitle.Result
	for _, p := range plans {
		if res, ok := applied[p.Path]; ok {
			p = res
		}
		results = append(results, p)
	}
	return results, errors.Join(errs...)
}
