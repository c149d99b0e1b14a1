package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/scopelint/formatter"
	"github.com/gnolang/scopelint/internal/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-lint files under the given directories whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, err := newEngine(cfgFile, strict, logger)
		if err != nil {
			return err
		}
		for _, rule := range splitList(ignoreRules) {
			eng.IgnoreRule(rule)
		}
		return runWatch(ctx, logger, eng, args, cmd.OutOrStdout())
	},
}

func init() {
	watchCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	watchCmd.Flags().BoolVar(&strict, "strict", false, "Report suppression markers that silence nothing")
}

func runWatch(ctx context.Context, logger *zap.Logger, eng *engine.Engine, dirs []string, out io.Writer) error {
	w, err := eng.NewWatcher(dirs, func(r engine.Result) {
		if r.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", r.Unit, r.Err)
			return
		}
		if len(r.Findings) == 0 {
			fmt.Fprintf(out, "%s: ok\n", r.Unit)
			return
		}
		if err := formatter.WriteText(out, r.Findings, readSource(logger)); err != nil {
			logger.Error("Error writing findings", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	logger.Info("watching for changes", zap.Strings("dirs", dirs))
	return w.Run(ctx)
}
