// Package parser implements component F: a recursive-descent parser that
// performs semantic analysis and code generation in the same pass as
// syntax recognition. There is no separate AST; each grammar production
// calls directly into the identifier table and the code generator as it
// recognizes the construct it describes.
package parser

import (
	"fmt"
	"strconv"

	"github.com/sourcelang/plc/internal/codegen"
	"github.com/sourcelang/plc/internal/diag"
	"github.com/sourcelang/plc/internal/ident"
	"github.com/sourcelang/plc/internal/scan"
	"github.com/sourcelang/plc/lang/token"
)

// bail unwinds the current production and every one of its callers, up to
// the nearest resync boundary (a per-statement or per-declaration loop) or,
// failing that, to Run itself. It carries no payload: the diagnostic has
// already been recorded by the time it's thrown.
type bail struct{}

// Parser holds the two-token lookahead and the three collaborating
// components (identifier table, code generator, diagnostic sink) that the
// grammar productions below drive directly.
type Parser struct {
	scanner *scan.Scanner
	sink    *diag.Sink
	ids     *ident.Table
	gen     *codegen.Generator
	debug   bool

	previous, current, future token.Token

	// runtimeFns is the table seeded into the global scope by addRuntime.
	// It defaults to codegen.RuntimeFunctions; SetRuntimeFunctions lets a
	// caller apply a config-file override to the default parameter lists
	// (spec.md's expanded CLI configuration) without widening the closed
	// set of runtime procedure names.
	runtimeFns map[string][]codegen.RuntimeParam
}

// New creates a parser ready to Run over scanner's token stream.
func New(scanner *scan.Scanner, sink *diag.Sink, ids *ident.Table, gen *codegen.Generator, debug bool) *Parser {
	return &Parser{scanner: scanner, sink: sink, ids: ids, gen: gen, debug: debug, runtimeFns: codegen.RuntimeFunctions}
}

// SetRuntimeFunctions replaces the default runtime-function parameter
// table. Only entries whose name already appears in
// codegen.RuntimeFunctions take effect: the set of runtime procedure names
// is closed (spec §8 invariant 7) and a config file may tune their
// parameter lists but never introduce new procedures.
func (p *Parser) SetRuntimeFunctions(fns map[string][]codegen.RuntimeParam) {
	p.runtimeFns = fns
}

// Run drives the whole compilation: it seeds the runtime function table,
// emits the header, parses the single top-level program, emits the
// footer, and reports whether the result is free of errors and safe to
// commit. It never itself writes the output file; the caller decides
// whether ok warrants a Commit.
func (p *Parser) Run() (ok bool) {
	p.advance()
	p.advance()

	p.addRuntime()
	p.gen.GenerateHeader()

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, isBail := r.(bail); isBail {
					return
				}
				panic(r)
			}
		}()
		p.parseProgram()
	}()

	p.gen.GenerateFooter()

	if !p.check(token.EOF, "") {
		p.sink.Warn("unparsed content follows end of program", p.current.Line)
	}

	return !p.sink.HadErrors()
}

// addRuntime seeds the global scope with the closed set of pre-declared
// runtime procedures (spec §8 invariant 7), in a fixed order so repeated
// runs produce identical diagnostics and addresses.
func (p *Parser) addRuntime() {
	for _, name := range codegen.RuntimeFunctionNames() {
		params := p.runtimeFns[name]
		paramIDs := make([]ident.Parameter, len(params))
		for i, param := range params {
			paramIDs[i] = ident.Parameter{
				Ident:     &ident.Identifier{Name: param.Name, Type: param.Type, Address: i + 1},
				Direction: param.Direction,
			}
		}
		fn := &ident.Identifier{
			Name:    name,
			Type:    ident.TypeFunction,
			Params:  paramIDs,
			Address: codegen.RuntimeFunctionAddress,
		}
		// The runtime table is closed and collision-free by construction;
		// an error here would indicate a bug in this function, not in a
		// compiled program.
		_ = p.ids.Add(fn, true)
	}
}

// --- token stream primitives ---

// advance slides the lookahead window forward by one token. The scanner
// keeps returning an EOF token forever once the buffer is exhausted, so
// there's no need to guard against re-fetching past it.
func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.future
	p.future = p.scanner.Next()
}

func (p *Parser) check(kind token.Kind, value string) bool {
	return p.currentOrFuture(false, kind, value)
}

func (p *Parser) checkFuture(kind token.Kind, value string) bool {
	return p.currentOrFuture(true, kind, value)
}

func (p *Parser) currentOrFuture(future bool, kind token.Kind, value string) bool {
	tok := p.current
	if future {
		tok = p.future
	}
	return tok.Kind == kind && (value == "" || tok.Value == value)
}

func (p *Parser) accept(kind token.Kind, value string) bool {
	if p.check(kind, value) {
		p.advance()
		return true
	}
	return false
}

// match requires the current token to be (kind, value), advancing past it
// and returning the consumed token. Otherwise it records a syntax error
// and bails out of the current production.
func (p *Parser) match(kind token.Kind, value string) token.Token {
	if p.accept(kind, value) {
		return p.previous
	}
	if value != "" {
		p.syntaxError(fmt.Sprintf("%q (%s)", value, kind))
	} else {
		p.syntaxError(kind.String())
	}
	panic(bail{})
}

func (p *Parser) resyncAt(kind token.Kind, value string) {
	for !p.check(kind, value) && !p.check(token.EOF, "") {
		p.advance()
	}
}

// recoverStatement runs fn (ordinarily a call to parseStatement or
// parseDeclaration); if fn bails, it resyncs to the next ";" and returns
// normally, mirroring the per-statement "except ParserError: resync"
// boundary every statement/declaration list uses.
func (p *Parser) recoverStatement(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBail := r.(bail); isBail {
				p.resyncAt(token.Symbol, ";")
				return
			}
			panic(r)
		}
	}()
	fn()
}

// --- diagnostics ---

func (p *Parser) syntaxError(expected string) {
	msg := fmt.Sprintf("Expected %s, encountered %q (%s)", expected, p.current.Value, p.current.Kind)
	p.sink.SyntaxError(msg, p.current.Line)
}

func (p *Parser) nameError(msg, name string, line int) {
	p.sink.NameError(fmt.Sprintf("%s: %s", name, msg), line)
}

func (p *Parser) typeError(expected, encountered string, line int) {
	p.sink.TypeError(fmt.Sprintf("Expected %s type, encountered %s", expected, encountered), line)
}

func (p *Parser) runtimeError(msg string, line int) {
	p.sink.RuntimeError(msg, line)
}

// --- grammar: program ---

func (p *Parser) parseProgram() {
	id := p.parseProgramHeader()
	p.parseProgramBody(id)
}

func (p *Parser) parseProgramHeader() *ident.Identifier {
	for !p.accept(token.Keyword, "the") {
		p.recoverStatement(p.parseStatement)
		p.match(token.Symbol, ";")
	}
	p.match(token.Keyword, "program")

	name := p.current.Value
	p.match(token.Ident, "")

	label := p.gen.GetLabelID()
	id := &ident.Identifier{Name: name, Type: ident.TypeProgram, Address: label}
	if err := p.ids.Add(id, true); err != nil {
		p.nameError(err.Error(), name, p.previous.Line)
	}

	p.match(token.Keyword, "is")

	p.gen.GenerateProgramEntry(id.Name, id.Address, p.debug)

	p.ids.PushScope(id)
	_ = p.ids.Add(id, false)

	return id
}

func (p *Parser) parseProgramBody(programID *ident.Identifier) {
	localVarSize := 0

	for !p.accept(token.Keyword, "define") {
		p.recoverStatement(p.parseStatement)
		p.match(token.Symbol, ";")
	}

	for !p.accept(token.Keyword, "body") {
		p.recoverStatement(func() {
			if size := p.parseDeclaration(); size != nil {
				localVarSize += *size
			}
		})
		p.match(token.Symbol, ";")
	}

	p.gen.GenerateBodyLabel(programID.Name, programID.Address)
	p.gen.TabPush()
	p.gen.GenerateLocalAlloc(localVarSize, p.debug)

	for !p.accept(token.Keyword, "finish") {
		p.recoverStatement(p.parseStatement)
		p.match(token.Symbol, ";")
	}
	p.match(token.Keyword, "program")

	p.ids.PopScope()
	p.gen.TabPop()
}

// --- grammar: declarations ---

func (p *Parser) parseDeclaration() *int {
	isGlobal := p.accept(token.Keyword, "global")

	var id *ident.Identifier
	switch {
	case p.firstProcedureDeclaration():
		p.parseProcedureDeclaration(isGlobal)
	case p.firstVariableDeclaration():
		id = p.parseVariableDeclaration(isGlobal, false)
	default:
		p.syntaxError("procedure or variable declaration")
	}

	if id == nil {
		return nil
	}
	size := 1
	if id.Size != nil {
		size = *id.Size
	}
	return &size
}

func (p *Parser) firstVariableDeclaration() bool {
	return p.check(token.Keyword, "int") || p.check(token.Keyword, "float") ||
		p.check(token.Keyword, "bool") || p.check(token.Keyword, "str")
}

func (p *Parser) parseVariableDeclaration(isGlobal, isParam bool) *ident.Identifier {
	idType := p.parseTypeMark()

	var size *int
	nameTok := p.current
	p.match(token.Ident, "")

	if p.accept(token.Symbol, "[") {
		indexType := p.parseNumber(false, false)
		sizeLit := p.previous.Value
		indexLine := p.previous.Line

		if indexType != ident.TypeInt {
			p.typeError("int", string(indexType), indexLine)
			panic(bail{})
		}
		n, _ := strconv.Atoi(sizeLit)
		size = &n

		p.match(token.Symbol, "]")
	}

	address := p.gen.GetMM(size, isParam)
	id := &ident.Identifier{Name: nameTok.Value, Type: idType, Size: size, Address: address}

	if !isParam {
		if err := p.ids.Add(id, isGlobal); err != nil {
			p.nameError(err.Error(), nameTok.Value, nameTok.Line)
		}
	}

	return id
}

func (p *Parser) parseTypeMark() ident.Type {
	switch {
	case p.accept(token.Keyword, "int"):
		return ident.TypeInt
	case p.accept(token.Keyword, "float"):
		return ident.TypeFloat
	case p.accept(token.Keyword, "bool"):
		return ident.TypeBool
	case p.accept(token.Keyword, "str"):
		return ident.TypeStr
	default:
		p.syntaxError("variable type")
		panic(bail{})
	}
}

func (p *Parser) firstProcedureDeclaration() bool {
	return p.check(token.Keyword, "function")
}

func (p *Parser) parseProcedureDeclaration(isGlobal bool) {
	id := p.parseProcedureHeader(isGlobal)
	p.parseProcedureBody(id)
}

func (p *Parser) parseProcedureHeader(isGlobal bool) *ident.Identifier {
	p.match(token.Keyword, "function")

	name := p.current.Value
	line := p.current.Line
	p.match(token.Ident, "")
	p.match(token.Symbol, "(")

	var params []ident.Parameter
	if !p.check(token.Symbol, ")") {
		params = p.parseParameterList(nil)
	}
	p.match(token.Symbol, ")")
	p.match(token.Keyword, "is")

	label := p.gen.GetLabelID()
	id := &ident.Identifier{Name: name, Type: ident.TypeFunction, Params: params, Address: label}

	// A collision here skips opening the procedure's own scope entirely,
	// matching the try/except boundary the original wraps around all three
	// of add-to-parent, push-scope, and add-to-own-scope together.
	if err := p.ids.Add(id, isGlobal); err != nil {
		p.nameError("name already declared at this scope", name, line)
	} else {
		p.ids.PushScope(id)
		_ = p.ids.Add(id, false)
	}

	for _, param := range params {
		if err := p.ids.Add(param.Ident, false); err != nil {
			p.nameError("name already declared at this scope", param.Ident.Name, line)
		}
	}

	p.gen.GenerateProcedureEntry(id.Name, id.Address, p.debug)

	return id
}

func (p *Parser) parseProcedureBody(procedureID *ident.Identifier) {
	localVarSize := 0

	p.gen.ResetLocalPtr()
	p.gen.ResetParamPtr()

	for !p.accept(token.Keyword, "body") {
		p.recoverStatement(func() {
			if size := p.parseDeclaration(); size != nil {
				localVarSize += *size
			}
		})
		p.match(token.Symbol, ";")
	}

	p.gen.GenerateBodyLabel(procedureID.Name, procedureID.Address)
	p.gen.TabPush()
	p.gen.GenerateLocalAlloc(localVarSize, p.debug)

	for !p.accept(token.Keyword, "finish") {
		p.recoverStatement(p.parseStatement)
		p.match(token.Symbol, ";")
	}
	p.match(token.Keyword, "function")

	p.gen.GenerateProcedureEpilogue(p.debug)
	p.gen.GenerateReturn(p.debug)

	p.gen.TabPop()
	p.ids.PopScope()
	p.gen.TabPop()
}

func (p *Parser) parseParameterList(params []ident.Parameter) []ident.Parameter {
	params = append(params, p.parseParameter())
	if p.accept(token.Symbol, ",") {
		params = p.parseParameterList(params)
	}
	return params
}

func (p *Parser) parseParameter() ident.Parameter {
	id := p.parseVariableDeclaration(false, true)

	var dir ident.Direction
	switch {
	case p.accept(token.Keyword, "in"):
		dir = ident.DirIn
	case p.accept(token.Keyword, "out"):
		dir = ident.DirOut
	default:
		p.syntaxError(`"in" or "out"`)
	}
	return ident.Parameter{Ident: id, Direction: dir}
}

// --- grammar: statements ---

func (p *Parser) parseStatement() {
	switch {
	case p.accept(token.Keyword, "return"):
		p.gen.GenerateReturn(p.debug)
	case p.firstIfStatement():
		p.parseIfStatement()
	case p.firstLoopStatement():
		p.parseLoopStatement()
	case p.firstProcedureCall():
		p.parseProcedureCall()
	case p.firstAssignmentStatement():
		p.parseAssignmentStatement()
	default:
		p.syntaxError("statement")
	}
}

func (p *Parser) firstAssignmentStatement() bool { return p.check(token.Ident, "") }

func (p *Parser) parseAssignmentStatement() {
	name := p.current.Value
	line := p.current.Line

	destType := p.parseDestination()
	indexReg := p.gen.GetReg(false)

	id, err := p.ids.Find(name)
	if err != nil {
		p.nameError("not declared in this scope", name, line)
		panic(bail{})
	}

	p.match(token.Symbol, "=")
	exprType := p.parseExpression()
	exprReg := p.gen.GetReg(false)

	if destType != exprType {
		p.typeError(string(destType), string(exprType), line)
	}

	loc := p.ids.Location(name)
	if loc == ident.LocParam {
		dir, _ := p.ids.ParamDirection(name)
		if dir != ident.DirOut {
			p.typeError("'out' param", fmt.Sprintf("'%s' param", dir), line)
			panic(bail{})
		}
	}

	var idx *int
	if id.Size != nil {
		idx = &indexReg
	}
	p.gen.GenerateAssignment(id, loc, idx, exprReg, p.debug)
}

func (p *Parser) firstIfStatement() bool { return p.check(token.Keyword, "if") }

func (p *Parser) parseIfStatement() {
	p.match(token.Keyword, "if")
	p.match(token.Symbol, "(")
	p.parseExpression()
	p.match(token.Symbol, ")")
	p.match(token.Keyword, "then")

	label := p.gen.GetLabelID()
	exprReg := p.gen.GetReg(false)

	p.gen.Generate(fmt.Sprintf("if (!R[%d]) goto else_%d;", exprReg, label))
	p.gen.TabPush()

	for {
		p.recoverStatement(p.parseStatement)
		p.match(token.Symbol, ";")
		if p.check(token.Keyword, "else") || p.check(token.Keyword, "finish") {
			break
		}
	}
	p.gen.Generate(fmt.Sprintf("goto endif_%d;", label))

	p.gen.TabPop()
	p.gen.Generate(fmt.Sprintf("else_%d:", label))
	p.gen.TabPush()

	if p.accept(token.Keyword, "else") {
		for {
			p.recoverStatement(p.parseStatement)
			p.match(token.Symbol, ";")
			if p.check(token.Keyword, "finish") {
				break
			}
		}
	}

	p.match(token.Keyword, "finish")
	p.match(token.Keyword, "if")

	p.gen.TabPop()
	p.gen.Generate(fmt.Sprintf("endif_%d:", label))
}

func (p *Parser) firstLoopStatement() bool { return p.check(token.Keyword, "for") }

func (p *Parser) parseLoopStatement() {
	p.match(token.Keyword, "for")
	p.match(token.Symbol, "(")

	label := p.gen.GetLabelID()
	p.gen.Generate(fmt.Sprintf("loop_%d:", label))
	p.gen.TabPush()

	p.recoverStatement(p.parseAssignmentStatement)
	p.match(token.Symbol, ";")

	p.parseExpression()
	p.match(token.Symbol, ")")

	exprReg := p.gen.GetReg(false)
	p.gen.Generate(fmt.Sprintf("if (!R[%d]) goto endloop_%d;", exprReg, label))

	for !p.accept(token.Keyword, "finish") {
		p.recoverStatement(p.parseStatement)
		p.match(token.Symbol, ";")
	}
	p.match(token.Keyword, "for")

	p.gen.Generate(fmt.Sprintf("goto loop_%d;", label))
	p.gen.TabPop()
	p.gen.Generate(fmt.Sprintf("endloop_%d:", label))
}

func (p *Parser) firstProcedureCall() bool { return p.checkFuture(token.Symbol, "(") }

func (p *Parser) parseProcedureCall() {
	name := p.current.Value
	line := p.current.Line
	p.match(token.Ident, "")

	id, err := p.ids.Find(name)
	if err != nil {
		p.nameError("procedure has not been declared", name, line)
		panic(bail{})
	}
	if id.Type != ident.TypeFunction {
		p.typeError("function", string(id.Type), line)
		panic(bail{})
	}

	p.match(token.Symbol, "(")

	var outNames []string
	if !p.check(token.Symbol, ")") {
		numArgs, names := p.parseArgumentList(id.Params, nil, 0)
		outNames = names
		if numArgs < len(id.Params) {
			p.runtimeError(fmt.Sprintf("procedure call accepts %d argument(s), %d given", len(id.Params), numArgs), line)
			panic(bail{})
		}
	}
	p.match(token.Symbol, ")")

	p.gen.GenerateProcedureCall(id.Name, id.Address, p.debug)

	for i, param := range id.Params {
		outName := outNames[i]
		popped := p.gen.GenerateParamPop(p.debug)

		if param.Direction == ident.DirOut {
			outID, _ := p.ids.Find(outName)
			outLoc := p.ids.Location(outName)
			p.gen.GenerateParamStore(outID, outLoc, popped, p.debug)
		}
	}

	p.gen.GenerateProcedureCallEnd(id.Name, id.Address, p.debug)
}

// parseArgumentList walks one argument at a time, recursing before it
// pushes: the push for the LAST argument in source order therefore runs
// first, so arguments land on the stack in reverse order. outNames[i] is
// the destination identifier name for an "out" argument, or "" for "in".
func (p *Parser) parseArgumentList(params []ident.Parameter, outNames []string, index int) (int, []string) {
	line := p.current.Line

	if index > len(params)-1 {
		p.runtimeError(fmt.Sprintf("procedure call accepts only %d argument(s)", len(params)), line)
		panic(bail{})
	}
	param := params[index]

	var argType ident.Type
	var outName string
	switch param.Direction {
	case ident.DirOut:
		outName = p.current.Value
		argType = p.parseName()
	case ident.DirIn:
		argType = p.parseExpression()
	}
	outNames = append(outNames, outName)

	exprReg := p.gen.GetReg(false)

	if argType != param.Ident.Type {
		p.typeError(string(param.Ident.Type), string(argType), line)
	}

	index++
	if p.accept(token.Symbol, ",") {
		index, outNames = p.parseArgumentList(params, outNames, index)
	}

	p.gen.GenerateParamPush(exprReg, p.debug)

	return index, outNames
}

func (p *Parser) parseDestination() ident.Type {
	name := p.current.Value
	line := p.current.Line
	p.match(token.Ident, "")

	id, err := p.ids.Find(name)
	if err != nil {
		p.nameError("not declared in this scope", name, line)
		panic(bail{})
	}
	if !ident.IsScalarType(id.Type) {
		p.typeError("variable", string(id.Type), line)
		panic(bail{})
	}

	idType := id.Type

	if p.accept(token.Symbol, "[") {
		exprLine := p.current.Line
		exprType := p.parseExpression()
		if exprType != ident.TypeInt {
			p.typeError("int", string(exprType), exprLine)
		}
		p.accept(token.Symbol, "]")
	} else if id.Size != nil {
		p.runtimeError(fmt.Sprintf("%s: array requires index", name), line)
	}

	return idType
}

// --- grammar: expressions ---

func (p *Parser) parseExpression() ident.Type {
	p.gen.Comment("parsing expression", p.debug)

	negate := p.accept(token.Keyword, "not")
	line := p.current.Line
	idType := p.parseArithOp()

	if negate && idType != ident.TypeInt && idType != ident.TypeBool {
		p.typeError("int or bool", string(idType), line)
		panic(bail{})
	}

	for {
		operand1 := p.gen.GetReg(false)

		var op string
		switch {
		case p.accept(token.Symbol, "&"):
			op = "&"
		case p.accept(token.Symbol, "|"):
			op = "|"
		default:
			return idType
		}

		if idType != ident.TypeInt && idType != ident.TypeBool {
			p.typeError("int or bool", string(idType), line)
			panic(bail{})
		}

		nextType := p.parseArithOp()
		operand2 := p.gen.GetReg(false)

		if nextType != ident.TypeInt && nextType != ident.TypeBool {
			p.typeError("int or bool", string(nextType), line)
			panic(bail{})
		}

		result := p.gen.GenerateOperation(op, operand1, idType, operand2, nextType, p.debug)
		if negate {
			p.gen.Generate(fmt.Sprintf("R[%d] = ~R[%d];", result, result))
		}
	}
}

func (p *Parser) parseArithOp() ident.Type {
	line := p.current.Line
	idType := p.parseRelation()

	for {
		operand1 := p.gen.GetReg(false)

		var op string
		switch {
		case p.accept(token.Symbol, "+"):
			op = "+"
		case p.accept(token.Symbol, "-"):
			op = "-"
		default:
			return idType
		}

		if idType != ident.TypeInt && idType != ident.TypeFloat {
			p.typeError("int or float", string(idType), line)
			panic(bail{})
		}

		nextType := p.parseRelation()
		operand2 := p.gen.GetReg(false)

		if nextType != ident.TypeInt && nextType != ident.TypeFloat {
			p.typeError("int or float", string(nextType), line)
			panic(bail{})
		}

		p.gen.GenerateOperation(op, operand1, idType, operand2, nextType, p.debug)
	}
}

func (p *Parser) parseRelation() ident.Type {
	line := p.current.Line
	idType := p.parseTerm()

	for {
		operand1 := p.gen.GetReg(false)

		var op string
		switch {
		case p.accept(token.Symbol, "<"):
			op = "<"
		case p.accept(token.Symbol, ">"):
			op = ">"
		case p.accept(token.Symbol, "<="):
			op = "<="
		case p.accept(token.Symbol, ">="):
			op = ">="
		case p.accept(token.Symbol, "=="):
			op = "=="
		case p.accept(token.Symbol, "!="):
			op = "!="
		default:
			return idType
		}

		if idType != ident.TypeInt && idType != ident.TypeBool {
			p.typeError("int or bool", string(idType), line)
			panic(bail{})
		}

		nextType := p.parseTerm()
		operand2 := p.gen.GetReg(false)

		if nextType != ident.TypeInt && nextType != ident.TypeBool {
			p.typeError("int or bool", string(nextType), line)
			panic(bail{})
		}

		p.gen.GenerateOperation(op, operand1, idType, operand2, nextType, p.debug)
	}
}

func (p *Parser) parseTerm() ident.Type {
	line := p.current.Line
	idType := p.parseFactor()

	for {
		operand1 := p.gen.GetReg(false)

		var op string
		switch {
		case p.accept(token.Symbol, "*"):
			op = "*"
		case p.accept(token.Symbol, "/"):
			op = "/"
		default:
			return idType
		}

		if idType != ident.TypeInt && idType != ident.TypeFloat {
			p.typeError("int or float", string(idType), line)
			panic(bail{})
		}

		line = p.current.Line
		nextType := p.parseFactor()
		operand2 := p.gen.GetReg(false)

		if nextType != ident.TypeInt && nextType != ident.TypeFloat {
			p.typeError("int or float", string(nextType), line)
			panic(bail{})
		}

		p.gen.GenerateOperation(op, operand1, idType, operand2, nextType, p.debug)
	}
}

func (p *Parser) parseFactor() ident.Type {
	switch {
	case p.accept(token.Symbol, "("):
		idType := p.parseExpression()
		p.match(token.Symbol, ")")
		return idType
	case p.accept(token.Str, ""):
		p.gen.GenerateStringLiteral(p.previous.Value, p.debug)
		return ident.TypeStr
	case p.accept(token.Keyword, "true"):
		p.gen.GenerateBoolLiteral(true, p.debug)
		return ident.TypeBool
	case p.accept(token.Keyword, "false"):
		p.gen.GenerateBoolLiteral(false, p.debug)
		return ident.TypeBool
	case p.accept(token.Symbol, "-"):
		switch {
		case p.firstName():
			return p.parseName()
		case p.check(token.Int, "") || p.check(token.Float, ""):
			return p.parseNumber(true, true)
		default:
			p.syntaxError("variable name, int, or float")
			panic(bail{})
		}
	case p.firstName():
		return p.parseName()
	case p.check(token.Int, "") || p.check(token.Float, ""):
		return p.parseNumber(false, true)
	default:
		p.syntaxError("factor")
		panic(bail{})
	}
}

func (p *Parser) firstName() bool { return p.check(token.Ident, "") }

func (p *Parser) parseName() ident.Type {
	name := p.current.Value
	line := p.current.Line
	p.match(token.Ident, "")

	id, err := p.ids.Find(name)
	if err != nil {
		p.nameError("not declared in this scope", name, line)
		panic(bail{})
	}
	if !ident.IsScalarType(id.Type) {
		p.typeError("variable", string(id.Type), line)
		panic(bail{})
	}
	idType := id.Type

	if p.accept(token.Symbol, "[") {
		indexType := p.parseExpression()
		if indexType != ident.TypeInt {
			p.typeError("int", string(indexType), line)
			panic(bail{})
		}
		p.match(token.Symbol, "]")
	} else if id.Size != nil {
		p.runtimeError(fmt.Sprintf("%s: array requires index", name), line)
	}

	indexReg := p.gen.GetReg(false)
	loc := p.ids.Location(name)

	if loc == ident.LocParam {
		dir, _ := p.ids.ParamDirection(name)
		if dir != ident.DirIn {
			p.typeError("'in' param", fmt.Sprintf("'%s' param", dir), line)
			panic(bail{})
		}
	}

	var idx *int
	if id.Size != nil {
		idx = &indexReg
	}
	p.gen.GenerateName(id, loc, idx, p.debug)

	return idType
}

func (p *Parser) parseNumber(negate, generateCode bool) ident.Type {
	value := p.current.Value
	var idType ident.Type
	switch p.current.Kind {
	case token.Int:
		idType = ident.TypeInt
	case token.Float:
		idType = ident.TypeFloat
	}

	if !p.accept(token.Int, "") && !p.accept(token.Float, "") {
		p.syntaxError("number")
		panic(bail{})
	}

	if generateCode {
		p.gen.GenerateNumber(value, negate, p.debug)
	}

	return idType
}
