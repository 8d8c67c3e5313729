package codegen

import "github.com/sourcelang/plc/internal/ident"

// RuntimeParam describes one parameter of a pre-declared runtime function.
type RuntimeParam struct {
	Name      string
	Type      ident.Type
	Direction ident.Direction
}

// RuntimeFunctions is the closed set of procedures injected into the
// global scope before parsing begins (spec §8 invariant 7). Every entry
// shares address 1: these procedures are implemented verbatim by the fixed
// runtime prologue (out of scope here, see spec.md §1), which defines a
// matching "<NAME>_1:" label for each one.
var RuntimeFunctions = map[string][]RuntimeParam{
	"GETBOOL":    {{Name: "b", Type: ident.TypeBool, Direction: ident.DirOut}},
	"GETINTEGER": {{Name: "n", Type: ident.TypeInt, Direction: ident.DirOut}},
	"GETFLOAT":   {{Name: "f", Type: ident.TypeFloat, Direction: ident.DirOut}},
	"GETSTRING":  {{Name: "s", Type: ident.TypeStr, Direction: ident.DirOut}},
	"PUTBOOL":    {{Name: "b", Type: ident.TypeBool, Direction: ident.DirIn}},
	"PUTINTEGER": {{Name: "n", Type: ident.TypeInt, Direction: ident.DirIn}},
	"PUTFLOAT":   {{Name: "f", Type: ident.TypeFloat, Direction: ident.DirIn}},
	"PUTSTRING":  {{Name: "s", Type: ident.TypeStr, Direction: ident.DirIn}},
}

// RuntimeFunctionAddress is the fixed entry-label address shared by every
// runtime function.
const RuntimeFunctionAddress = 1

// RuntimeFunctionNames returns RuntimeFunctions' keys in a fixed,
// deterministic order, so the header emits the same text on every run.
func RuntimeFunctionNames() []string {
	return []string{
		"GETBOOL", "GETINTEGER", "GETFLOAT", "GETSTRING",
		"PUTBOOL", "PUTINTEGER", "PUTFLOAT", "PUTSTRING",
	}
}

// OverrideRuntimeFunctions returns a copy of RuntimeFunctions with entries
// from overrides substituted in, for any name overrides names that already
// exists in RuntimeFunctions. It never adds a procedure name that isn't
// already part of the closed set: a config file can retune parameter
// lists, not grow the set of pre-declared runtime procedures.
func OverrideRuntimeFunctions(overrides map[string][]RuntimeParam) map[string][]RuntimeParam {
	out := make(map[string][]RuntimeParam, len(RuntimeFunctions))
	for name, params := range RuntimeFunctions {
		out[name] = params
	}
	for name, params := range overrides {
		if _, ok := out[name]; ok {
			out[name] = params
		}
	}
	return out
}
