package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/scopelint/internal/engine"
	"github.com/gnolang/scopelint/internal/frontend"
	"github.com/gnolang/scopelint/internal/rules"
	tt "github.com/gnolang/scopelint/internal/types"
)

// DefaultConfigFile is read when no configuration path is given.
const DefaultConfigFile = ".scopelint.yaml"

type LintEngine interface {
	RunFiles(ctx context.Context, files []string, onDone func(engine.Result)) ([]engine.Result, error)
}

// Config represents the configuration file.
type Config struct {
	Name   string                   `yaml:"name"`
	Strict bool                     `yaml:"strict"`
	Jobs   int                      `yaml:"jobs"`
	Rules  map[string]tt.ConfigRule `yaml:"rules"`
}

// DefaultConfig lists every rule of registry with its default severity.
func DefaultConfig(registry *rules.Registry) Config {
	if registry == nil {
		registry = rules.Default()
	}
	cfg := Config{
		Name:  "scopelint",
		Rules: make(map[string]tt.ConfigRule),
	}
	for _, r := range registry.All() {
		cfg.Rules[r.ID] = tt.ConfigRule{Severity: r.Severity}
	}
	return cfg
}

// LoadConfig reads a configuration file. An empty path means
// DefaultConfigFile, which may be absent; a named file must exist.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(nil), nil
		}
		return Config{}, fmt.Errorf("error reading configuration: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("error parsing configuration %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig writes cfg to path. It refuses to overwrite an existing file.
func WriteConfig(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("error creating configuration: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("error writing configuration: %w", err)
	}
	return enc.Close()
}

// New loads the configuration at configPath and builds an engine from it.
// strict can only turn strict mode on, never off.
func New(configPath string, strict bool, logger *zap.Logger) (*engine.Engine, Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, Config{}, err
	}
	cfg.Strict = cfg.Strict || strict
	return NewEngine(cfg, logger), cfg, nil
}

// NewEngine builds an engine with the built-in rules configured by cfg.
func NewEngine(cfg Config, logger *zap.Logger) *engine.Engine {
	return engine.New(rules.Default(), engine.Options{
		Rules:  cfg.Rules,
		Strict: cfg.Strict,
		Jobs:   cfg.Jobs,
		Logger: logger,
	})
}

// ProcessOptions controls ProcessFiles.
type ProcessOptions struct {
	// Progress draws a progress bar on Output while units are analyzed.
	Progress bool
	Output   io.Writer
}

// ProcessFiles expands paths into units and analyzes them. Directories are
// walked for source files; node dumps are only read when named explicitly.
// Results come back in the order the units were found.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	eng LintEngine,
	paths []string,
	opts ProcessOptions,
) ([]engine.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var files []string
	for _, path := range paths {
		found, err := CollectFiles(path)
		if err != nil {
			logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		files = append(files, found...)
	}

	var onDone func(engine.Result)
	if opts.Progress && len(files) > 1 {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("linting"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		onDone = func(engine.Result) { _ = bar.Add(1) }
		defer bar.Finish()
	}

	results, err := eng.RunFiles(ctx, files, onDone)
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			logger.Error("Error processing file", zap.String("file", r.Unit), zap.Error(r.Err))
		}
	}
	return results, err
}

// CollectFiles returns path itself when it is a file, or the supported source
// files below it when it is a directory. Hidden directories are skipped.
func CollectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if hasDesiredExtension(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}
	return files, nil
}

func hasDesiredExtension(path string) bool {
	lang, ok := frontend.Detect(path)
	return ok && lang != frontend.Dump
}

// Summarize merges the findings of every result and counts the failed units.
func Summarize(results []engine.Result) ([]tt.Finding, int) {
	findings := []tt.Finding{}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		findings = append(findings, r.Findings...)
	}
	return findings, failed
}
