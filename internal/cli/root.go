// Package cli is the titlesync command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pfassina/titlesync/internal/config"
	"github.com/pfassina/titlesync/internal/history"
	"github.com/pfassina/titlesync/internal/retitle"
	"github.com/pfassina/titlesync/internal/ui"
	"github.com/pfassina/titlesync/internal/vault"
)

// app carries state shared by every command of one root.
type app struct {
	cfg    config.Config
	log    *log.Logger
	styles ui.Styles

	configPath string
	vaultPath  string
	logLevel   string
	noLinks    bool
	noHistory  bool
}

func NewRoot() *cobra.Command {
	a := &app{styles: ui.NewStyles(ui.DefaultTheme())}

	cmd := &cobra.Command{
		Use:   "titlesync",
		Short: "Keep markdown filenames in sync with their first heading",
		Long: `titlesync renames markdown notes after their first H1 heading.

The heading is cleaned into a filesystem-safe name: markup is stripped,
reserved characters become dashes and the result is capped at 200 bytes.
Renames never overwrite another note, and wiki links pointing at a
renamed note are rewritten across the vault.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	flags.StringVar(&a.vaultPath, "vault", "", "path to vault directory")
	flags.StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error")
	flags.BoolVar(&a.noLinks, "no-links", false, "do not rewrite wiki links after a rename")
	flags.BoolVar(&a.noHistory, "no-history", false, "do not record renames")

	cmd.AddCommand(newTitleCmd(a))
	cmd.AddCommand(newSyncCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newWatchCmd(a))
	cmd.AddCommand(newNvimCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newUndoCmd(a))
	cmd.AddCommand(newInitCmd(a))
	return cmd
}

// load merges defaults, the config file and flags, in that order.
func (a *app) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		if _, err := config.LoadPath(&cfg, a.configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else if _, err := config.LoadFile(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("vault") {
		cfg.VaultPath = a.vaultPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if a.noLinks {
		cfg.RewriteLinks = false
	}
	if a.noHistory {
		cfg.History = false
	}

	// Absolute vault paths keep buffer names and watcher events comparable.
	cfg.VaultPath = config.ExpandHome(cfg.VaultPath)
	if abs, err := filepath.Abs(cfg.VaultPath); err == nil {
		cfg.VaultPath = abs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := log.ParseLevel(cfg.LogLevel)
	a.log = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:  level,
		Prefix: "titlesync",
	})
	return nil
}

// configFile is the config file in use: --config, or the default location.
func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ConfigPath()
}

// openVault checks that the configured vault is a directory.
func (a *app) openVault() (*vault.Vault, error) {
	info, err := os.Stat(a.cfg.VaultPath)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: %s is not a directory", a.cfg.VaultPath)
	}
	return vault.New(a.cfg.VaultPath), nil
}

// openJournal opens the rename history, or returns nil when it is disabled.
func (a *app) openJournal() (*history.DB, error) {
	if !a.cfg.History {
		return nil, nil
	}
	path := a.cfg.HistoryFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("history dir: %w", err)
	}
	db, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	a.log.Debug("history", "path", path)
	return db, nil
}

// openSyncer builds a Syncer for the vault. The returned close function
// releases the journal and is always safe to call.
func (a *app) openSyncer(dryRun bool) (*retitle.Syncer, func(), error) {
	v, err := a.openVault()
	if err != nil {
		return nil, func() {}, err
	}

	opts := retitle.Options{
		RewriteLinks: a.cfg.RewriteLinks,
		DryRun:       dryRun,
		Logger:       a.log,
	}

	closeFn := func() {}
	if !dryRun {
		db, err := a.openJournal()
		if err != nil {
			return nil, closeFn, err
		}
		if db != nil {
			opts.Journal = db
			closeFn = func() {
				if err := db.Close(); err != nil {
					a.log.Warn("close history", "err", err)
				}
			}
		}
	}

	return retitle.New(v, opts), closeFn, nil
}

// noteRel resolves a note argument. Paths that exist relative to the
// working directory win; anything else is taken as vault-relative.
func (a *app) noteRel(arg string) (string, error) {
	abs := arg
	if !filepath.IsAbs(abs) {
		if _, err := os.Stat(arg); err != nil {
			return filepath.Clean(arg), nil
		}
		var err error
		if abs, err = filepath.Abs(arg); err != nil {
			return "", err
		}
	}

	rel, err := filepath.Rel(a.cfg.VaultPath, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the vault %s", arg, a.cfg.VaultPath)
	}
	return rel, nil
}

func (a *app) printResults(w io.Writer, results []retitle.Result, quiet bool) {
	for _, r := range results {
		if quiet && r.Outcome == retitle.AlreadyMatches {
			continue
		}
		fmt.Fprintln(w, a.styles.Notice(r))
	}
}

var errOutOfSync = errors.New("notes out of sync")
