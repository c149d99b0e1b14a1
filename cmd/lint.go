package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/scopelint/formatter"
	"github.com/gnolang/scopelint/internal/engine"
	"github.com/gnolang/scopelint/lint"
)

var (
	ignoreRules string
	formatName  string
	outPath     string
	strict      bool
	noProgress  bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run the lint rules over files and directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatter.ParseFormat(formatName)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		eng, err := newEngine(cfgFile, strict, logger)
		if err != nil {
			return err
		}
		for _, rule := range splitList(ignoreRules) {
			eng.IgnoreRule(rule)
		}

		out := cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("error creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		return runLint(ctx, logger, eng, args, lintOptions{
			Format:   format,
			Out:      out,
			Progress: !noProgress && format == formatter.Text && outPath == "",
			Errs:     cmd.ErrOrStderr(),
		})
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	lintCmd.Flags().StringVar(&formatName, "format", string(formatter.Text), "Output format: text, json or sarif")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the report to a file instead of stdout")
	lintCmd.Flags().BoolVar(&strict, "strict", false, "Report suppression markers that silence nothing")
	lintCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Do not draw a progress bar")
}

func newEngine(configPath string, strict bool, logger *zap.Logger) (*engine.Engine, error) {
	eng, _, err := lint.New(configPath, strict, logger)
	return eng, err
}

type lintOptions struct {
	Format   formatter.Format
	Out      io.Writer
	Errs     io.Writer
	Progress bool
}

func runLint(ctx context.Context, logger *zap.Logger, eng *engine.Engine, paths []string, opts lintOptions) error {
	results, err := lint.ProcessFiles(ctx, logger, eng, paths, lint.ProcessOptions{
		Progress: opts.Progress,
		Output:   opts.Errs,
	})
	if err != nil {
		return err
	}

	findings, failed := lint.Summarize(results)
	err = formatter.Write(opts.Out, opts.Format, findings, formatter.Options{
		Rules:   eng.Rules(),
		Source:  readSource(logger),
		Version: Version,
	})
	if err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}

	if failed > 0 {
		fmt.Fprintf(opts.Errs, "%d unit(s) could not be analyzed\n", failed)
	}
	if len(findings) > 0 || failed > 0 {
		return ErrFindings
	}
	return nil
}

func readSource(logger *zap.Logger) func(string) *formatter.SourceCode {
	return func(unit string) *formatter.SourceCode {
		src, err := formatter.ReadSource(unit)
		if err != nil {
			logger.Warn("Error reading source file", zap.String("file", unit), zap.Error(err))
			return nil
		}
		return src
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
