package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnolang/scopelint/internal/rules"
	"github.com/gnolang/scopelint/lint"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the available rules and their configured severity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := lint.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		return printRules(cmd.OutOrStdout(), rules.Default(), cfg)
	},
}

func printRules(w io.Writer, registry *rules.Registry, cfg lint.Config) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tSEVERITY\tDESCRIPTION")
	for _, r := range registry.All() {
		sev := r.Severity
		if c, ok := cfg.Rules[r.ID]; ok {
			sev = c.Severity
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, sev, r.Doc)
	}
	return tw.Flush()
}
