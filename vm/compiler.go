package vm

import (
	"math"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/josharian/intern"
	"github.com/loxvm/clox/debug"
	e "github.com/loxvm/clox/errors"
	"github.com/sirupsen/logrus"
)

// Parser drives the Scanner one token ahead and emits directly into the
// Chunk under construction: there is no separate AST stage. It is an
// explicit context struct threaded through every parse/emit call,
// rather than the module-level globals a naive C-to-Go port would keep.
type Parser struct {
	*Scanner
	vm         *VM
	chunk      *Chunk
	prev, curr Token

	// scopeDepth is bumped by '{' and dropped by '}'. It is never
	// consulted for variable resolution: every variable in this
	// language subset is a global, looked up by name at runtime.
	// Reserved alongside it for a future local-variable extension.
	scopeDepth int
	localCount int

	errors *multierror.Error
	// panicMode suppresses cascading diagnostics until sync() finds a
	// statement boundary.
	panicMode bool
}

func NewParser(vm *VM) *Parser { return &Parser{vm: vm} }

/* Single-pass compilation */

func (p *Parser) emitConst(val Value) { p.emitBytes(byte(OpConst), p.makeConst(val)) }

func (p *Parser) makeConst(val Value) byte {
	idx := p.currentChunk().AddConst(val)
	if idx > math.MaxUint8 {
		p.Error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (p *Parser) number(_canAssign bool) {
	val, err := strconv.ParseFloat(p.prev.String(), 64)
	if err != nil {
		p.Error("Invalid number.")
		return
	}
	p.emitConst(VNum(val))
}

func (p *Parser) grouping(_canAssign bool) {
	p.expr()
	p.consume(TRParen, "Expect ')' after expression.")
}

func (p *Parser) lit(_canAssign bool) {
	switch p.prev.Type {
	case TFalse:
		p.emitBytes(byte(OpFalse))
	case TNil:
		p.emitBytes(byte(OpNil))
	case TTrue:
		p.emitBytes(byte(OpTrue))
	default:
		panic(e.ErrUnreachable)
	}
}

func (p *Parser) str(_canAssign bool) {
	runes := p.prev.Runes
	// Copy the lexeme inside the quotes as a string.
	unquoted := string(runes[1 : len(runes)-1])
	p.emitConst(NewVStr(p.vm, unquoted))
}

func (p *Parser) var_(canAssign bool) { p.namedVar(p.prev, canAssign) }

// namedVar resolves a bare identifier appearing in expression position
// to a global read, or — only when canAssign holds and a trailing '='
// follows — a global write. There is no local-resolution path: every
// name is a global.
func (p *Parser) namedVar(name Token, canAssign bool) {
	arg := p.identifierConstant(&name)
	switch {
	case canAssign && p.match(TEqual):
		p.expr()
		p.emitBytes(byte(OpSetGlobal), arg)
	default:
		p.emitBytes(byte(OpGetGlobal), arg)
	}
}

func (p *Parser) unary(_canAssign bool) {
	op := p.prev.Type

	// Compile the operand.
	p.parsePrec(PrecUnary)

	// Emit the operator instruction.
	switch op {
	case TBang:
		p.emitBytes(byte(OpNot))
	case TMinus:
		p.emitBytes(byte(OpNeg))
	default:
		panic(e.ErrUnreachable)
	}
}

func (p *Parser) binary(_canAssign bool) {
	op := p.prev.Type
	rule := parseRules[op]

	// Compile the RHS one precedence level higher, so e.g. `a - b - c`
	// parses as `(a - b) - c` rather than `a - (b - c)`.
	p.parsePrec(rule.Prec + 1)

	// Emit the operator instruction.
	switch op {
	case TBangEqual:
		p.emitBytes(byte(OpEqual), byte(OpNot))
	case TEqualEqual:
		p.emitBytes(byte(OpEqual))
	case TGreater:
		p.emitBytes(byte(OpGreater))
	case TGreaterEqual:
		p.emitBytes(byte(OpLess), byte(OpNot))
	case TLess:
		p.emitBytes(byte(OpLess))
	case TLessEqual:
		p.emitBytes(byte(OpGreater), byte(OpNot))
	case TPlus:
		p.emitBytes(byte(OpAdd))
	case TMinus:
		p.emitBytes(byte(OpSub))
	case TStar:
		p.emitBytes(byte(OpMul))
	case TSlash:
		p.emitBytes(byte(OpDiv))
	default:
		panic(e.ErrUnreachable)
	}
}

func (p *Parser) expr() { p.parsePrec(PrecAssign) }

func (p *Parser) exprStmt() {
	p.expr()
	p.consume(TSemi, "Expect ';' after expression.")
	p.emitBytes(byte(OpPop))
}

func (p *Parser) printStmt() {
	p.expr()
	p.consume(TSemi, "Expect ';' after value.")
	p.emitBytes(byte(OpPrint))
}

func (p *Parser) block() {
	for !p.check(TRBrace) && !p.check(TEOF) {
		p.decl()
	}
	p.consume(TRBrace, "Expect '}' after block.")
}

func (p *Parser) beginScope() { p.scopeDepth++ }
func (p *Parser) endScope()   { p.scopeDepth-- }

func (p *Parser) stmt() {
	switch {
	case p.match(TPrint):
		p.printStmt()
	case p.match(TLBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.exprStmt()
	}
}

func (p *Parser) identifierConstant(name *Token) byte {
	// Dedup the Go-level string representation before it is handed to
	// the language-level intern table: small win, same idea one layer
	// down.
	return p.makeConst(NewVStr(p.vm, intern.String(name.String())))
}

func (p *Parser) defineVariable(global byte) { p.emitBytes(byte(OpDefGlobal), global) }

// parseVariable consumes an identifier token and returns the
// constant-pool index that holds its name, ready for defineVariable.
func (p *Parser) parseVariable(errMsg string) byte {
	tok := p.consume(TIdent, errMsg)
	if tok == nil {
		return 0
	}
	return p.identifierConstant(tok)
}

func (p *Parser) varDecl() {
	global := p.parseVariable("Expect variable name.")
	switch {
	case p.match(TEqual):
		p.expr()
	default:
		p.emitBytes(byte(OpNil))
	}
	p.consume(TSemi, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) decl() {
	switch {
	case p.match(TVar):
		p.varDecl()
	default:
		p.stmt()
	}
	if p.panicMode {
		p.sync()
	}
}

type ParseFn = func(p *Parser, canAssign bool)

type ParseRule struct {
	Prefix, Infix ParseFn
	Prec
}

var parseRules []ParseRule

func init() {
	parseRules = []ParseRule{
		TLParen:       {(*Parser).grouping, nil, PrecNone},
		TMinus:        {(*Parser).unary, (*Parser).binary, PrecTerm},
		TPlus:         {nil, (*Parser).binary, PrecTerm},
		TSlash:        {nil, (*Parser).binary, PrecFactor},
		TStar:         {nil, (*Parser).binary, PrecFactor},
		TBang:         {(*Parser).unary, nil, PrecNone},
		TBangEqual:    {nil, (*Parser).binary, PrecEqual},
		TEqualEqual:   {nil, (*Parser).binary, PrecEqual},
		TGreater:      {nil, (*Parser).binary, PrecComp},
		TGreaterEqual: {nil, (*Parser).binary, PrecComp},
		TLess:         {nil, (*Parser).binary, PrecComp},
		TLessEqual:    {nil, (*Parser).binary, PrecComp},
		TIdent:        {(*Parser).var_, nil, PrecNone},
		TStr:          {(*Parser).str, nil, PrecNone},
		TNum:          {(*Parser).number, nil, PrecNone},
		TFalse:        {(*Parser).lit, nil, PrecNone},
		TNil:          {(*Parser).lit, nil, PrecNone},
		TTrue:         {(*Parser).lit, nil, PrecNone},
		TEOF:          {},
	}
}

// parsePrec is the Pratt engine: parse one prefix expression, then keep
// folding in infix operators whose precedence is at least prec. canAssign
// is computed once per call and threaded to both the prefix and every
// infix handler invoked from this call — it is what makes `a + b = c`
// a compile error while `a = b` is accepted.
func (p *Parser) parsePrec(prec Prec) {
	p.advance()

	prefix := parseRules[p.prev.Type].Prefix
	if prefix == nil {
		p.Error("Expect expression.")
		return
	}
	canAssign := prec <= PrecAssign
	prefix(p, canAssign)

	for {
		rule := parseRules[p.curr.Type]
		if rule.Prec < prec {
			break
		}
		p.advance()
		if rule.Infix == nil {
			panic(e.ErrUnreachable)
		}
		rule.Infix(p, canAssign)
	}

	if canAssign && p.match(TEqual) {
		p.Error("Invalid assignment target.")
	}
}

/* Parsing helpers */

func (p *Parser) check(ty TokenType) bool     { return p.curr.Type == ty }
func (p *Parser) checkPrev(ty TokenType) bool { return p.prev.Type == ty }

func (p *Parser) advance() {
	p.prev = p.curr
	for {
		// Skip until the first non-TErr token, reporting each one.
		if p.curr = p.ScanToken(); !p.check(TErr) {
			break
		}
		p.errorAtCurrScan()
	}
}

func (p *Parser) match(ty TokenType) (matched bool) {
	if !p.check(ty) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(ty TokenType, errMsg string) *Token {
	if !p.check(ty) {
		p.ErrorAtCurr(errMsg)
		return nil
	}
	p.advance()
	return &p.prev
}

/* Compiling helpers */

// Compile drives the scanner to completion, parsing a sequence of
// declarations into a fresh Chunk, and returns that Chunk along with an
// aggregate of every compile-time diagnostic recorded. vm supplies the
// string intern table shared with the runtime.
func (p *Parser) Compile(vm *VM, src string) (*Chunk, error) {
	p.vm = vm
	p.chunk = NewChunk()
	p.Scanner = NewScanner(src)

	p.advance()
	for !p.match(TEOF) {
		p.decl()
	}
	p.endCompiler()

	return p.chunk, p.errors.ErrorOrNil()
}

func (p *Parser) currentChunk() *Chunk { return p.chunk }

func (p *Parser) emitBytes(bs ...byte) {
	for _, b := range bs {
		p.currentChunk().Write(b, p.prev.Line)
	}
}

func (p *Parser) endCompiler() {
	p.emitBytes(byte(OpReturn))
	if debug.DEBUG {
		logrus.Debugln(p.currentChunk().Disassemble("endCompiler"))
	}
}

//go:generate stringer -type=Prec
type Prec int

const (
	PrecNone   Prec = iota
	PrecAssign      // =
	PrecOr          // or
	PrecAnd         // and
	PrecEqual       // == !=
	PrecComp        // < > <= >=
	PrecTerm        // + -
	PrecFactor      // * /
	PrecUnary       // ! -
	PrecCall        // . ()
	PrecPrimary
)

/* Error handling */

// sync discards tokens until either the previous token was a ';' or the
// current token begins a new statement, then clears panicMode so the
// next top-level error is reported again instead of suppressed.
func (p *Parser) sync() {
	defer func() { p.panicMode = false }()
	for !p.check(TEOF) && !p.checkPrev(TSemi) {
		switch p.curr.Type {
		case TClass, TFun, TVar, TFor, TIf, TWhile, TPrint, TReturn:
			return
		default:
			p.advance()
		}
	}
}

func (p *Parser) ErrorAt(tk Token, reason string) {
	// Don't collect errors while we're already recovering.
	if p.panicMode {
		return
	}
	p.panicMode = true

	var loc string
	switch tk.Type {
	case TEOF:
		loc = " at end"
	case TErr:
		loc = ""
	default:
		loc = " at '" + tk.String() + "'"
	}
	err := &e.CompilationError{Line: tk.Line, Reason: "Error" + loc + ": " + reason}

	if debug.DEBUG {
		logrus.Debugln(p.currentChunk().Disassemble("ErrorAt"))
		logrus.Debugln(err)
	}

	p.errors = multierror.Append(p.errors, err)
}

// errorAtCurrScan reports a scanner-produced error token. It carries no
// lexeme location of its own: the message in Runes already says why.
func (p *Parser) errorAtCurrScan() {
	if p.panicMode {
		return
	}
	p.panicMode = true
	err := &e.CompilationError{Line: p.curr.Line, Reason: "Error: " + p.curr.String()}
	p.errors = multierror.Append(p.errors, err)
}

func (p *Parser) Error(reason string)       { p.ErrorAt(p.prev, reason) }
func (p *Parser) ErrorAtCurr(reason string) { p.ErrorAt(p.curr, reason) }
func (p *Parser) HadError() bool            { return p.errors != nil }
