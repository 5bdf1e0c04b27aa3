package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfassina/titlesync/internal/retitle"
	"github.com/pfassina/titlesync/internal/watcher"
)

type watchFlags struct {
	initial bool
}

func newWatchCmd(a *app) *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rename notes as they are saved",
		Long: `Watch the vault and sync every note shortly after it is written.

Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, a, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.initial, "initial", false, "sync the whole vault before watching")
	return cmd
}

func runWatch(cmd *cobra.Command, a *app, flags *watchFlags) error {
	s, closeFn, err := a.openSyncer(false)
	defer closeFn()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if flags.initial {
		results, err := s.SyncAll(ctx)
		a.printResults(out, results, true)
		if err != nil {
			a.log.Error("initial sync", "err", err)
		}
	}

	onChange := func(rel string) {
		res, err := s.Sync(rel)
		if err != nil {
			// The note may already be gone again; not worth stopping for.
			a.log.Warn("sync", "note", rel, "err", err)
			return
		}
		if res.Outcome != retitle.AlreadyMatches {
			fmt.Fprintln(out, a.styles.Notice(res))
		}
	}
	onError := func(err error) {
		a.log.Error("watcher", "err", err)
	}

	w, err := watcher.New(a.cfg.VaultPath, a.cfg.Debounce(), onChange, onError)
	if err != nil {
		return fmt.Errorf("watch %s: %w", a.cfg.VaultPath, err)
	}
	w.SetLogger(a.log)

	a.log.Info("watching", "vault", a.cfg.VaultPath)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	return nil
}
