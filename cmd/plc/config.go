package main

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/sourcelang/plc/internal/codegen"
	"github.com/sourcelang/plc/internal/ident"
)

func identType(s string) (ident.Type, bool) {
	switch ident.Type(s) {
	case ident.TypeInt, ident.TypeFloat, ident.TypeBool, ident.TypeStr:
		return ident.Type(s), true
	default:
		return "", false
	}
}

func identDirection(s string) (ident.Direction, bool) {
	switch ident.Direction(s) {
	case ident.DirIn, ident.DirOut:
		return ident.Direction(s), true
	default:
		return "", false
	}
}

// fileConfig mirrors the shape lookbusy1344/arm-emulator loads its run
// profile from: a struct of optional, all-zero-valued-by-default sections
// decoded straight from TOML, with CLI flags applied on top afterward.
type fileConfig struct {
	Output struct {
		Debug    bool `toml:"debug"`
		TabWidth int  `toml:"tab_width"`
	} `toml:"output"`

	// Runtime overrides the parameter list of a pre-declared runtime
	// procedure (spec.md §8 invariant 7's closed set). Keys outside that
	// set are ignored silently: a config file retunes a signature, it
	// never grows the runtime table.
	Runtime map[string][]runtimeParamConfig `toml:"runtime"`
}

type runtimeParamConfig struct {
	Name      string `toml:"name"`
	Type      string `toml:"type"`
	Direction string `toml:"direction"`
}

// defaultConfig returns a fileConfig with the same defaults Compile itself
// would use, so a missing -config flag behaves identically to an absent
// file.
func defaultConfig() *fileConfig {
	return &fileConfig{}
}

// loadConfig reads and decodes path. A missing path is not an error: it
// simply yields defaultConfig(), matching arm-emulator's Load falling back
// to DefaultConfig() when its file is absent.
func loadConfig(path string) (*fileConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %q", path)
	}
	return cfg, nil
}

// runtimeOverrides converts the TOML-decoded runtime section into the
// codegen.RuntimeParam shape Compile's WithRuntimeOverrides expects.
// Entries with an unrecognized type or direction are dropped rather than
// failing the whole load; they would only ever affect a closed, internally
// consistent table.
func (c *fileConfig) runtimeOverrides() map[string][]codegen.RuntimeParam {
	if len(c.Runtime) == 0 {
		return nil
	}
	out := make(map[string][]codegen.RuntimeParam, len(c.Runtime))
	for name, params := range c.Runtime {
		converted := make([]codegen.RuntimeParam, 0, len(params))
		for _, p := range params {
			typ, ok := identType(p.Type)
			if !ok {
				continue
			}
			dir, ok := identDirection(p.Direction)
			if !ok {
				continue
			}
			converted = append(converted, codegen.RuntimeParam{Name: p.Name, Type: typ, Direction: dir})
		}
		out[name] = converted
	}
	return out
}
