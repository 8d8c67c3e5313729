// Package compiler wires components A through F into the single
// top-level operation the CLI exposes: reading a source file and, if it
// compiles cleanly, writing the generated intermediate representation to
// a destination file.
package compiler

import (
	"github.com/pkg/errors"

	"github.com/sourcelang/plc/internal/codegen"
	"github.com/sourcelang/plc/internal/diag"
	"github.com/sourcelang/plc/internal/ident"
	"github.com/sourcelang/plc/internal/parser"
	"github.com/sourcelang/plc/internal/scan"
	"github.com/sourcelang/plc/internal/source"
)

// Option configures a Compile call.
type Option func(*config) error

type config struct {
	debug            bool
	tabWidth         int
	runtimeOverrides map[string][]codegen.RuntimeParam
}

// WithDebug toggles emission of "// "-prefixed debug comments alongside
// the generated code.
func WithDebug(debug bool) Option {
	return func(c *config) error {
		c.debug = debug
		return nil
	}
}

// WithTabWidth renders one indentation level of generated output as n
// spaces instead of a literal tab. n <= 0 restores the tab default.
func WithTabWidth(n int) Option {
	return func(c *config) error {
		c.tabWidth = n
		return nil
	}
}

// WithRuntimeOverrides retunes the parameter list of one or more of the
// pre-declared runtime procedures (spec §8 invariant 7). Names absent from
// the closed runtime-function set are ignored: a config file can reshape
// an existing procedure's signature, never introduce a new one.
func WithRuntimeOverrides(overrides map[string][]codegen.RuntimeParam) Option {
	return func(c *config) error {
		c.runtimeOverrides = overrides
		return nil
	}
}

// Compile reads srcPath, compiles it, and if (and only if) the result is
// free of diagnostics beyond scan-category warnings, writes the generated
// intermediate representation to destPath. ok reports whether the
// destination file was written; err reports an I/O failure unrelated to
// the program's own correctness (a missing source file, an unwritable
// destination).
func Compile(srcPath, destPath string, opts ...Option) (ok bool, err error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return false, err
		}
	}

	buf, err := source.Load(srcPath)
	if err != nil {
		return false, errors.Wrap(err, "loading source")
	}

	sink := diag.New(srcPath, buf, nil)
	scanner := scan.New(buf, sink)
	ids := ident.New()
	gen := codegen.New(codegen.WithTabWidth(cfg.tabWidth))
	p := parser.New(scanner, sink, ids, gen, cfg.debug)
	if cfg.runtimeOverrides != nil {
		p.SetRuntimeFunctions(codegen.OverrideRuntimeFunctions(cfg.runtimeOverrides))
	}

	if !p.Run() {
		return false, nil
	}

	if err := gen.Commit(destPath); err != nil {
		return false, errors.Wrap(err, "committing compiled output")
	}
	return true, nil
}
