package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/gnolang/scopelint/internal/frontend"
	"github.com/gnolang/scopelint/internal/frontend/dump"
	"github.com/gnolang/scopelint/internal/scopetree"
)

var dumpYAML bool

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the scope tree built for a file",
	Long: `Prints the scope tree the rules see for a file, one node per line.
With --yaml the tree is written as a node-table dump that lint accepts as input.
Example) scopelint dump --yaml main.cpp > main.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return runDump(ctx, cmd.OutOrStdout(), args[0], dumpYAML)
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpYAML, "yaml", false, "Write a node-table dump instead of an outline")
}

func runDump(ctx context.Context, w io.Writer, filename string, asYAML bool) error {
	u, err := frontend.Load(ctx, filename)
	if err != nil {
		return err
	}
	if !asYAML {
		return scopetree.Fprint(w, u.Tree)
	}
	data, err := dump.FromTree(u.Tree, u.Index).Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
