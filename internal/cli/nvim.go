package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfassina/titlesync/internal/editor"
)

type nvimFlags struct {
	socket string
}

func newNvimCmd(a *app) *cobra.Command {
	flags := &nvimFlags{}

	cmd := &cobra.Command{
		Use:   "nvim",
		Short: "Sync the note open in a running Neovim",
		Long: `Rename the note in Neovim's current buffer after its first heading.

Unsaved edits count: the heading is read from the buffer, and after a
rename the buffer is written to the new file. The outcome is shown in
Neovim with vim.notify. Inside Neovim's terminal $NVIM points at the
right socket, so a mapping can simply run:

  :!titlesync nvim`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := a.openSyncer(false)
			defer closeFn()
			if err != nil {
				return err
			}

			rpc, err := editor.ConnectRPC(flags.socket)
			if err != nil {
				return err
			}

			res, err := editor.SyncCurrent(rpc, s)
			if cerr := rpc.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close nvim connection: %w", cerr))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.styles.Notice(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.socket, "socket", os.Getenv("NVIM"), "Neovim RPC socket")
	return cmd
}
