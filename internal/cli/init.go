package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfassina/titlesync/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [vault]",
		Short: "Write a config file pointing at a vault",
		Long: `Write the titlesync config file with the given vault path.

Prompts for the vault when none is given. Only vault_path is written;
other keys in the file keep their values and flags are not saved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile()
			var res config.SetupResult
			var err error
			if len(args) == 1 {
				res, err = config.Save(path, args[0])
			} else {
				res, err = config.RunSetup(path, a.cfg.VaultPath)
			}
			if err != nil {
				return err
			}
			if res.Cancelled {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vault %s saved to %s\n", res.VaultPath, path)
			return nil
		},
	}
}
