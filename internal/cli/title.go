package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfassina/titlesync/internal/markdown"
	"github.com/pfassina/titlesync/internal/vault"
)

var (
	errNoHeading     = errors.New("no H1 header found")
	errEmptyFilename = errors.New("title converts to empty filename")
)

func newTitleCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "title [file]",
		Short: "Print a note's title and the filename it maps to",
		Long: `Print the first H1 heading of a note and the filename derived from it.

Reads standard input when no file is given. Nothing is renamed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if len(args) == 1 {
				content, err = os.ReadFile(args[0])
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			return printTitle(cmd.OutOrStdout(), content)
		},
	}
}

func printTitle(w io.Writer, content []byte) error {
	heading, ok := markdown.ExtractFirstHeading(content)
	if !ok {
		return errNoHeading
	}
	fmt.Fprintf(w, "heading:  %s\n", heading)

	name := vault.Filename(heading)
	if name == "" {
		return errEmptyFilename
	}
	fmt.Fprintf(w, "filename: %s.md\n", name)
	return nil
}
