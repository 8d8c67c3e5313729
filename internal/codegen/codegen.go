// Package codegen implements the code generator: component E. It is a
// thin, append-only text buffer plus the counters needed to mint fresh
// virtual registers, labels, and stack offsets while the parser walks the
// grammar. Nothing here inspects the grammar; every method is called by
// the parser at the point a construct is recognized, matching spec §4.5's
// on-the-fly generation contract.
package codegen

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/sourcelang/plc/internal/ident"
)

// Fixed labels emitted by GenerateFooter, one directly after the other, so
// both lead to the process exit. A procedure's implicit and explicit
// returns both jump to retLabel; the program body falls through into them
// at its end.
const (
	retLabel  = "RET"
	exitLabel = "PROGRAM_EXIT"
)

// Generator accumulates generated text and hands out fresh registers,
// labels, and memory offsets. A single Generator is used for one
// compilation; it is not safe for concurrent use, matching spec §5.
type Generator struct {
	lines  []string
	indent int

	// tabWidth is the number of spaces one indentation level renders as.
	// Zero means "tabs" (the teacher's own default); a config file may
	// override it to a space count (spec.md's expanded CLI configuration).
	tabWidth int

	regID   int
	labelID int

	localPtr int
	paramPtr int

	// returnLabel is the fixed epilogue target for the procedure or
	// program body currently being generated.
	returnLabel string
}

// New creates a Generator with all counters at their initial values. The
// label counter starts at 1, not 0 (spec §8 scenario S1: a minimal
// program's entry point is labeled "name_1:").
func New(opts ...Option) *Generator {
	g := &Generator{returnLabel: exitLabel, labelID: 1}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Option configures a Generator at construction time.
type Option func(*Generator)

// WithTabWidth renders one indentation level as n spaces instead of a
// literal tab character. n <= 0 restores the tab-character default.
func WithTabWidth(n int) Option {
	return func(g *Generator) {
		g.tabWidth = n
	}
}

func (g *Generator) indentUnit() string {
	if g.tabWidth > 0 {
		return strings.Repeat(" ", g.tabWidth)
	}
	return "\t"
}

// Generate appends line to the buffer, prefixed with the current
// indentation.
func (g *Generator) Generate(line string) {
	g.lines = append(g.lines, strings.Repeat(g.indentUnit(), g.indent)+line)
}

// Comment emits line as a "// "-prefixed comment, but only when debug is
// set; debug output is never load-bearing for a later compilation stage.
func (g *Generator) Comment(line string, debug bool) {
	if debug {
		g.Generate("// " + line)
	}
}

// TabPush increases the indentation of subsequently generated lines.
func (g *Generator) TabPush() { g.indent++ }

// TabPop decreases the indentation of subsequently generated lines.
func (g *Generator) TabPop() {
	if g.indent > 0 {
		g.indent--
	}
}

// GetReg returns the current register counter, and if inc is set mints a
// fresh one by incrementing it. Register numbers are never reused.
func (g *Generator) GetReg(inc bool) int {
	r := g.regID
	if inc {
		g.regID++
	}
	return r
}

// GetLabelID mints a fresh, globally unique label id. The counter never
// resets over the lifetime of a Generator (spec §9 open question:
// register/label counters are monotone for the whole compilation, not
// reset per procedure).
func (g *Generator) GetLabelID() int {
	id := g.labelID
	g.labelID++
	return id
}

// GetMM allocates the next memory offset for a variable of the given
// size (nil meaning a scalar). Parameters and locals are tracked by
// separate monotone pointers; which base register an offset is relative
// to, and its sign, is decided only when the offset is actually emitted
// (GenerateName, GenerateAssignment), never here.
func (g *Generator) GetMM(size *int, isParam bool) int {
	n := 1
	if size != nil {
		n = *size
	}
	if isParam {
		addr := g.paramPtr
		g.paramPtr += n
		return addr
	}
	addr := g.localPtr
	g.localPtr += n
	return addr
}

// ResetLocalPtr zeroes the local-variable offset pointer. The parser calls
// it at the start of each procedure body, after the procedure's parameters
// have been allocated and before the body's declarations are walked; the
// program body does not reset it.
func (g *Generator) ResetLocalPtr() { g.localPtr = 0 }

// ResetParamPtr zeroes the parameter offset pointer, for the same reason.
func (g *Generator) ResetParamPtr() { g.paramPtr = 0 }

func addressExpr(loc ident.Location, address int, indexReg *int) string {
	var base string
	switch loc {
	case ident.LocGlobal:
		base = fmt.Sprintf("R[GB] + %d", address)
	case ident.LocParam:
		base = fmt.Sprintf("R[FP] + %d", address)
	default:
		base = fmt.Sprintf("R[SP] - %d", address)
	}
	if indexReg != nil {
		base = fmt.Sprintf("%s + R[%d]", base, *indexReg)
	}
	return base
}

// GenerateHeader emits the fixed runtime prologue. Its exact text is an
// implementation detail (spec §6); what matters is that it is stable
// across runs and defines an entry stub for every pre-declared runtime
// function. retLabel and exitLabel are defined by GenerateFooter.
func (g *Generator) GenerateHeader() {
	g.Generate("// generated intermediate representation; do not edit")
	g.Generate("#include \"runtime.h\"")
	g.Generate("")
	g.Generate("int main(void) {")
	g.TabPush()
	g.Generate("R[SP] = STACK_SIZE;")
	g.Generate("R[GB] = 0;")
	for _, name := range RuntimeFunctionNames() {
		g.Generate(fmt.Sprintf("%s_%d:", name, RuntimeFunctionAddress))
	}
	g.Generate("")
}

// GenerateFooter closes out the translation unit. retLabel and exitLabel
// are defined here; both unwind to the process exit.
func (g *Generator) GenerateFooter() {
	g.Generate(retLabel + ":")
	g.Generate(exitLabel + ":")
	g.Generate("return 0;")
	g.TabPop()
	g.Generate("}")
}

// GenerateProgramEntry emits the program's entry label and stack-frame
// setup, then jumps straight to its body label. The jump exists so that
// any nested procedure declarations emitted between the entry label and
// the body label (spec grammar allows declarations, including nested
// procedures, before "body") are skipped rather than fallen into.
func (g *Generator) GenerateProgramEntry(name string, label int, debug bool) {
	g.returnLabel = exitLabel
	g.Generate(fmt.Sprintf("%s_%d:", name, label))
	g.Comment("establish program frame", debug)
	g.Generate("R[FP] = R[SP];")
	g.Generate(fmt.Sprintf("goto %s_%d_body;", name, label))
	g.Generate("")
}

// GenerateProcedureEntry emits a procedure's entry label, stack-frame
// setup, and the same skip-to-body jump as GenerateProgramEntry.
func (g *Generator) GenerateProcedureEntry(name string, label int, debug bool) {
	g.returnLabel = retLabel
	g.Generate(fmt.Sprintf("%s_%d:", name, label))
	g.Comment(fmt.Sprintf("establish frame for %s", name), debug)
	g.Generate("R[SP] = R[SP] - 1;")
	g.Generate("MEM[R[SP]] = R[FP];")
	g.Generate("R[FP] = R[SP];")
	g.Generate(fmt.Sprintf("goto %s_%d_body;", name, label))
	g.Generate("")
}

// GenerateBodyLabel emits the label marking the start of a procedure or
// program's own statement list.
func (g *Generator) GenerateBodyLabel(name string, label int) {
	g.Generate(fmt.Sprintf("%s_%d_body:", name, label))
}

// GenerateLocalAlloc reserves size words of local storage on the stack,
// once a body's declarations are known to need them.
func (g *Generator) GenerateLocalAlloc(size int, debug bool) {
	if size == 0 {
		return
	}
	g.Comment("reserve local storage", debug)
	g.Generate(fmt.Sprintf("R[SP] = R[SP] - %d;", size))
}

// GenerateReturn jumps to the epilogue of the procedure or program body
// currently open, honoring an explicit "return" statement.
func (g *Generator) GenerateReturn(debug bool) {
	g.Comment("return", debug)
	g.Generate("goto " + g.returnLabel + ";")
}

// GenerateProcedureEpilogue emits the implicit return executed when
// control falls off the end of a procedure body (one is also reached by
// any explicit "return" by way of GenerateReturn's fixed label).
func (g *Generator) GenerateProcedureEpilogue(debug bool) {
	g.Comment("restore caller frame", debug)
	g.Generate("R[SP] = R[FP];")
	g.Generate("R[FP] = MEM[R[SP]];")
	g.Generate("R[SP] = R[SP] + 1;")
}

// GenerateOperation emits a binary arithmetic or relational operation
// between registers r1 and r2, storing the result back into r1. If the
// operand types differ (one int, one float) an implicit widening cast is
// emitted first. It returns r1, the reused destination register.
func (g *Generator) GenerateOperation(op string, r1 int, t1 ident.Type, r2 int, t2 ident.Type, debug bool) int {
	if t1 == ident.TypeFloat && t2 == ident.TypeInt {
		g.Generate(fmt.Sprintf("R[%d] = (float)R[%d];", r2, r2))
	} else if t1 == ident.TypeInt && t2 == ident.TypeFloat {
		g.Generate(fmt.Sprintf("R[%d] = (float)R[%d];", r1, r1))
	}
	g.Comment(fmt.Sprintf("apply %s", op), debug)
	g.Generate(fmt.Sprintf("R[%d] = R[%d] %s R[%d];", r1, r1, op, r2))
	return r1
}

// GenerateNumber mints a fresh register and loads an immediate literal
// into it, optionally negated.
func (g *Generator) GenerateNumber(value string, negate bool, debug bool) int {
	r := g.GetReg(true)
	sign := ""
	if negate {
		sign = "-"
	}
	g.Comment("load literal", debug)
	g.Generate(fmt.Sprintf("R[%d] = %s%s;", r, sign, value))
	return r
}

// GenerateStringLiteral mints a fresh register and loads a string literal
// into it.
func (g *Generator) GenerateStringLiteral(value string, debug bool) int {
	r := g.GetReg(true)
	g.Comment("load string literal", debug)
	g.Generate(fmt.Sprintf("R[%d] = (int)%q;", r, value))
	return r
}

// GenerateBoolLiteral mints a fresh register and loads a boolean literal
// (1 or 0) into it.
func (g *Generator) GenerateBoolLiteral(value bool, debug bool) int {
	r := g.GetReg(true)
	n := 0
	if value {
		n = 1
	}
	g.Comment("load bool literal", debug)
	g.Generate(fmt.Sprintf("R[%d] = %d;", r, n))
	return r
}

// GenerateName mints a fresh register and loads the value of id (an
// in-scope variable) into it, through the base pointer appropriate to
// its location. indexReg is non-nil only when id is an array and the
// reference is subscripted.
func (g *Generator) GenerateName(id *ident.Identifier, loc ident.Location, indexReg *int, debug bool) int {
	r := g.GetReg(true)
	addr := addressExpr(loc, id.Address, indexReg)
	g.Comment("read "+id.Name, debug)
	g.Generate(fmt.Sprintf("R[%d] = MEM[%s];", r, addr))
	return r
}

// GenerateAssignment stores the value in exprReg into id's memory slot.
func (g *Generator) GenerateAssignment(id *ident.Identifier, loc ident.Location, indexReg *int, exprReg int, debug bool) {
	addr := addressExpr(loc, id.Address, indexReg)
	g.Comment("assign "+id.Name, debug)
	g.Generate(fmt.Sprintf("MEM[%s] = R[%d];", addr, exprReg))
}

// GenerateProcedureCall transfers control to the named procedure's entry
// label. It emits only the jump; the callee's frame is set up by the code
// GenerateProcedureEntry emitted at that label.
func (g *Generator) GenerateProcedureCall(name string, label int, debug bool) {
	g.Comment("call "+name, debug)
	g.Generate(fmt.Sprintf("goto %s_%d;", name, label))
}

// GenerateProcedureCallEnd emits the label a call returns to, once every
// argument has been popped back into its destination.
func (g *Generator) GenerateProcedureCallEnd(name string, label int, debug bool) {
	g.Comment("return point for "+name, debug)
	g.Generate(fmt.Sprintf("%s_%d_return_%d:", name, label, g.GetLabelID()))
}

// GenerateParamPush pushes the value in exprReg onto the parameter stack,
// ahead of a call. Arguments are pushed in reverse declaration order
// (spec §4.6 preserves the original's call convention exactly).
func (g *Generator) GenerateParamPush(exprReg int, debug bool) {
	g.Comment("push argument", debug)
	g.Generate("R[SP] = R[SP] - 1;")
	g.Generate(fmt.Sprintf("MEM[R[SP]] = R[%d];", exprReg))
}

// GenerateParamPop pops the top of the parameter stack into a fresh
// register and returns it, for an "out" parameter's result to be stored.
func (g *Generator) GenerateParamPop(debug bool) int {
	r := g.GetReg(true)
	g.Comment("pop result", debug)
	g.Generate(fmt.Sprintf("R[%d] = MEM[R[SP]];", r))
	g.Generate("R[SP] = R[SP] + 1;")
	return r
}

// GenerateParamStore stores the register returned by GenerateParamPop
// into the destination identifier named by an "out" argument.
func (g *Generator) GenerateParamStore(id *ident.Identifier, loc ident.Location, reg int, debug bool) {
	g.GenerateAssignment(id, loc, nil, reg, debug)
}

// Commit writes the accumulated buffer to path, one generated line per
// output line.
func (g *Generator) Commit(path string) error {
	var sb strings.Builder
	for _, line := range g.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing generated output to %q", path)
	}
	return nil
}

// Lines returns the generated buffer's lines, primarily for tests.
func (g *Generator) Lines() []string {
	out := make([]string, len(g.lines))
	copy(out, g.lines)
	return out
}
