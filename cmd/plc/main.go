package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/sourcelang/plc/internal/compiler"
)

var (
	debug      bool
	configPath string
)

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

func main() {
	flag.BoolVar(&debug, "debug", false, "interleave human-readable comments with generated output")
	flag.StringVar(&configPath, "config", "", "path to a TOML configuration file")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: plc [-debug] [-config file] <source> <destination>")
		os.Exit(2)
	}
	srcPath, destPath := args[0], args[1]

	cfg, err := loadConfig(configPath)
	if err != nil {
		atExit(err)
		return
	}

	useDebug := cfg.Output.Debug
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "debug" {
			useDebug = debug
		}
	})

	opts := []compiler.Option{
		compiler.WithDebug(useDebug),
		compiler.WithTabWidth(cfg.Output.TabWidth),
	}
	if overrides := cfg.runtimeOverrides(); overrides != nil {
		opts = append(opts, compiler.WithRuntimeOverrides(overrides))
	}

	ok, err := compiler.Compile(srcPath, destPath, opts...)
	if err != nil {
		atExit(errors.Wrap(err, "compiling"))
		return
	}
	if !ok {
		os.Exit(1)
	}
}
