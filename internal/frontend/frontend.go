// Package frontend turns source files into analyzable units.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnolang/scopelint/internal/frontend/cpp"
	"github.com/gnolang/scopelint/internal/frontend/dump"
	"github.com/gnolang/scopelint/internal/frontend/golang"
	"github.com/gnolang/scopelint/internal/scopetree"
	"github.com/gnolang/scopelint/internal/suppress"
)

// ErrUnsupported is returned for files no frontend understands.
var ErrUnsupported = errors.New("unsupported file type")

// Unit is one analyzable unit: its tree and the suppressions that apply to it.
// A Unit is consumed by a single analysis; its index records matches.
type Unit struct {
	Name  string
	Tree  *scopetree.Tree
	Index *suppress.Index
}

// Language identifies a frontend.
type Language string

const (
	Go   Language = "go"
	CPP  Language = "cpp"
	Dump Language = "dump"
)

var extensions = map[string]Language{
	".go":   Go,
	".gno":  Go,
	".c":    CPP,
	".h":    CPP,
	".cc":   CPP,
	".cpp":  CPP,
	".cxx":  CPP,
	".hh":   CPP,
	".hpp":  CPP,
	".hxx":  CPP,
	".yaml": Dump,
	".yml":  Dump,
	".json": Dump,
}

// Detect returns the language for a file name.
func Detect(filename string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(filename))]
	return lang, ok
}

// Supported reports whether some frontend accepts the file.
func Supported(filename string) bool {
	_, ok := Detect(filename)
	return ok
}

// Load reads and parses a file.
func Load(ctx context.Context, filename string) (*Unit, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	return Parse(ctx, filename, src)
}

// Parse builds a unit from source text, choosing the frontend by file name.
func Parse(ctx context.Context, filename string, src []byte) (*Unit, error) {
	lang, ok := Detect(filename)
	if !ok {
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupported)
	}
	return ParseAs(ctx, lang, filename, src)
}

// ParseAs builds a unit with an explicitly chosen frontend.
func ParseAs(ctx context.Context, lang Language, filename string, src []byte) (*Unit, error) {
	switch lang {
	case Go:
		tree, err := golang.Parse(filename, src)
		if err != nil {
			return nil, err
		}
		return &Unit{Name: filename, Tree: tree, Index: suppress.Scan(src)}, nil

	case CPP:
		tree, err := cpp.Parse(ctx, filename, src)
		if err != nil {
			return nil, err
		}
		return &Unit{Name: filename, Tree: tree, Index: suppress.Scan(src)}, nil

	case Dump:
		d, err := dump.Decode(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		name := d.Unit
		if name == "" {
			name = filename
		}
		tree, err := d.Tree(name)
		if err != nil {
			return nil, err
		}
		return &Unit{Name: name, Tree: tree, Index: d.Index()}, nil
	}
	return nil, fmt.Errorf("%s: %w: %s", filename, ErrUnsupported, lang)
}
