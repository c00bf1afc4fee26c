package codegen

import (
	"fmt"
	"strings"

	"pine/internal/ast"
	"pine/internal/parser"
)

// Generator walks a typed program and emits RISC-V assembly text for
// the Venus/RARS environment-call ABI: syscall number in a7, argument
// and result in a0, trap via ecall.
type Generator struct {
	profile   Profile
	symbols   *parser.SymbolTable
	pool      *ast.StringPool
	regs      *registerFile
	text      []string
	nextLabel int
}

func NewGenerator(profile Profile) *Generator {
	return &Generator{profile: profile}
}

// Generate produces the complete assembly file: a .data section with
// the interned strings in insertion order, then .text with main. Code
// generation cannot fail for well-typed input except by exhausting the
// spill region of the 512-byte frame.
func (g *Generator) Generate(program *ast.Program, symbols *parser.SymbolTable, pool *ast.StringPool) (string, error) {
	g.symbols = symbols
	g.pool = pool
	g.text = nil
	g.nextLabel = 0
	// Spill slots start directly above the variable slots.
	g.regs = newRegisterFile(4*symbols.Len(), g.emit)

	g.emitRaw("main:")
	g.emit("addi sp, sp, -%d", frameSize)

	for _, stmt := range program.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return "", err
		}
	}

	// Fallback exit if control falls through.
	g.emit("addi sp, sp, %d", frameSize)
	g.emit("li a7, %d", g.profile.Exit)
	g.emit("ecall")

	var out strings.Builder
	fmt.Fprintf(&out, "# generated by the pine compiler (profile: %s)\n", g.profile.Name)
	out.WriteString(".data\n")
	for i, s := range g.pool.Values() {
		fmt.Fprintf(&out, "%s: .asciiz \"%s\"\n", g.pool.Label(i), escapeAsciiz(s))
	}
	out.WriteString(".text\n")
	out.WriteString(".globl main\n")
	for _, line := range g.text {
		out.WriteString(line)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func (g *Generator) emit(format string, args ...any) {
	g.text = append(g.text, "  "+fmt.Sprintf(format, args...))
}

func (g *Generator) emitRaw(line string) {
	g.text = append(g.text, line)
}

func (g *Generator) newLabel() string {
	l := fmt.Sprintf("L%d", g.nextLabel)
	g.nextLabel++
	return l
}

func (g *Generator) varOffset(name string) int {
	sym := g.symbols.Lookup(name)
	if sym == nil {
		panic(fmt.Sprintf("codegen: variable %q missing from symbol table", name))
	}
	return 4 * sym.Slot
}

func (g *Generator) genStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		return g.genAssign(s)
	case *ast.PrintStmt:
		return g.genPrint(s)
	case *ast.WhileStmt:
		return g.genWhile(s)
	case *ast.IfStmt:
		return g.genIf(s)
	case *ast.ExitStmt:
		return g.genExit(s)
	default:
		panic(fmt.Sprintf("codegen: unknown statement %T", stmt))
	}
}

func (g *Generator) genAssign(s *ast.AssignStmt) error {
	v, err := g.genExpr(s.Value)
	if err != nil {
		return err
	}
	r, err := g.regs.Materialize(v)
	if err != nil {
		return err
	}
	g.emit("sw %s, %d(sp)", r, g.varOffset(s.Name))
	g.regs.Release(v)
	return nil
}

func (g *Generator) genPrint(s *ast.PrintStmt) error {
	if s.Value != nil {
		v, err := g.genExpr(s.Value)
		if err != nil {
			return err
		}
		r, err := g.regs.Materialize(v)
		if err != nil {
			return err
		}
		g.emit("mv a0, %s", r)
		if s.Value.ResultType() == ast.String {
			g.emit("li a7, %d", g.profile.PrintString)
		} else {
			g.emit("li a7, %d", g.profile.PrintInt)
		}
		g.emit("ecall")
		g.regs.Release(v)
	}

	if s.Newline {
		g.emit("li a0, '\\n'")
		g.emit("li a7, %d", g.profile.PrintChar)
		g.emit("ecall")
	}
	return nil
}

func (g *Generator) genWhile(s *ast.WhileStmt) error {
	top := g.newLabel()
	end := g.newLabel()

	g.emitRaw(top + ":")
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	r, err := g.regs.Materialize(cond)
	if err != nil {
		return err
	}
	g.emit("beqz %s, %s", r, end)
	g.regs.Release(cond)

	for _, stmt := range s.Body {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	g.emit("j %s", top)
	g.emitRaw(end + ":")
	return nil
}

func (g *Generator) genIf(s *ast.IfStmt) error {
	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	r, err := g.regs.Materialize(cond)
	if err != nil {
		return err
	}
	g.emit("beqz %s, %s", r, elseLabel)
	g.regs.Release(cond)

	for _, stmt := range s.Then {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	g.emit("j %s", endLabel)
	g.emitRaw(elseLabel + ":")
	for _, stmt := range s.Else {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	g.emitRaw(endLabel + ":")
	return nil
}

func (g *Generator) genExit(s *ast.ExitStmt) error {
	if s.Code != nil {
		v, err := g.genExpr(s.Code)
		if err != nil {
			return err
		}
		r, err := g.regs.Materialize(v)
		if err != nil {
			return err
		}
		g.emit("mv a0, %s", r)
		g.regs.Release(v)
		g.emit("addi sp, sp, %d", frameSize)
		g.emit("li a7, %d", g.profile.ExitCode)
	} else {
		g.emit("addi sp, sp, %d", frameSize)
		g.emit("li a7, %d", g.profile.Exit)
	}
	g.emit("ecall")
	return nil
}

// genExpr evaluates the tree post-order, returning a handle to the
// register (or spill slot) holding the result.
func (g *Generator) genExpr(expr ast.Expr) (*Value, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		v, err := g.regs.Acquire()
		if err != nil {
			return nil, err
		}
		g.emit("li %s, %d", g.regs.regName(v), e.Value)
		return v, nil

	case *ast.StrLit:
		v, err := g.regs.Acquire()
		if err != nil {
			return nil, err
		}
		g.emit("la %s, %s", g.regs.regName(v), g.pool.Label(e.Label))
		return v, nil

	case *ast.VarExpr:
		v, err := g.regs.Acquire()
		if err != nil {
			return nil, err
		}
		g.emit("lw %s, %d(sp)", g.regs.regName(v), g.varOffset(e.Name))
		return v, nil

	case *ast.InputExpr:
		g.emit("li a7, %d", g.profile.ReadInt)
		g.emit("ecall")
		v, err := g.regs.Acquire()
		if err != nil {
			return nil, err
		}
		g.emit("mv %s, a0", g.regs.regName(v))
		return v, nil

	case *ast.UnaryExpr:
		return g.genUnary(e)

	case *ast.BinaryExpr:
		if e.Op == "&&" || e.Op == "||" {
			return g.genShortCircuit(e)
		}
		return g.genBinary(e)

	default:
		panic(fmt.Sprintf("codegen: unknown expression %T", expr))
	}
}

func (g *Generator) genUnary(e *ast.UnaryExpr) (*Value, error) {
	v, err := g.genExpr(e.Value)
	if err != nil {
		return nil, err
	}
	r, err := g.regs.Materialize(v)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "-":
		g.emit("sub %s, zero, %s", r, r)
	case "~":
		g.emit("xori %s, %s, -1", r, r)
	case "!":
		g.emit("seqz %s, %s", r, r)
	default:
		panic(fmt.Sprintf("codegen: unknown unary operator %q", e.Op))
	}
	return v, nil
}

func (g *Generator) genBinary(e *ast.BinaryExpr) (*Value, error) {
	lv, err := g.genExpr(e.Left)
	if err != nil {
		return nil, err
	}
	rv, err := g.genExpr(e.Right)
	if err != nil {
		return nil, err
	}

	rl, err := g.regs.Materialize(lv)
	if err != nil {
		return nil, err
	}
	g.regs.Pin(lv)
	rr, err := g.regs.Materialize(rv)
	g.regs.Unpin(lv)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "+":
		g.emit("add %s, %s, %s", rl, rl, rr)
	case "-":
		g.emit("sub %s, %s, %s", rl, rl, rr)
	case "*":
		g.emit("mul %s, %s, %s", rl, rl, rr)
	case "/":
		g.emit("div %s, %s, %s", rl, rl, rr)
	case "&":
		g.emit("and %s, %s, %s", rl, rl, rr)
	case "|":
		g.emit("or %s, %s, %s", rl, rl, rr)
	case "^":
		g.emit("xor %s, %s, %s", rl, rl, rr)
	case "<<":
		g.emit("sll %s, %s, %s", rl, rl, rr)
	case ">>":
		g.emit("sra %s, %s, %s", rl, rl, rr)
	case "<":
		g.emit("slt %s, %s, %s", rl, rl, rr)
	case ">":
		g.emit("slt %s, %s, %s", rl, rr, rl)
	case "<=":
		g.emit("slt %s, %s, %s", rl, rr, rl)
		g.emit("xori %s, %s, 1", rl, rl)
	case ">=":
		g.emit("slt %s, %s, %s", rl, rl, rr)
		g.emit("xori %s, %s, 1", rl, rl)
	case "==":
		g.emit("sub %s, %s, %s", rl, rl, rr)
		g.emit("seqz %s, %s", rl, rl)
	case "!=":
		g.emit("sub %s, %s, %s", rl, rl, rr)
		g.emit("snez %s, %s", rl, rl)
	default:
		panic(fmt.Sprintf("codegen: unknown binary operator %q", e.Op))
	}

	g.regs.Release(rv)
	return lv, nil
}

// genShortCircuit lowers && and || without evaluating the right
// operand when the left already decides the result. The left value's
// register doubles as the 0/1 result and stays pinned so both branch
// paths agree on it.
func (g *Generator) genShortCircuit(e *ast.BinaryExpr) (*Value, error) {
	lv, err := g.genExpr(e.Left)
	if err != nil {
		return nil, err
	}
	rl, err := g.regs.Materialize(lv)
	if err != nil {
		return nil, err
	}
	g.regs.Pin(lv)
	defer g.regs.Unpin(lv)

	shortLabel := g.newLabel()
	endLabel := g.newLabel()

	if e.Op == "&&" {
		g.emit("beqz %s, %s", rl, shortLabel)
	} else {
		g.emit("bnez %s, %s", rl, shortLabel)
	}

	rv, err := g.genExpr(e.Right)
	if err != nil {
		return nil, err
	}
	rr, err := g.regs.Materialize(rv)
	if err != nil {
		return nil, err
	}
	g.emit("snez %s, %s", rl, rr)
	g.regs.Release(rv)
	g.emit("j %s", endLabel)

	g.emitRaw(shortLabel + ":")
	if e.Op == "&&" {
		g.emit("li %s, 0", rl)
	} else {
		g.emit("li %s, 1", rl)
	}
	g.emitRaw(endLabel + ":")

	return lv, nil
}

// escapeAsciiz re-escapes decoded string bytes for a .asciiz directive.
// The bytes of the six scanner escapes are written back as escapes;
// every other byte passes through untouched.
func escapeAsciiz(s string) string {
	var escaped strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			escaped.WriteString("\\\\")
		case '"':
			escaped.WriteString("\\\"")
		case '\n':
			escaped.WriteString("\\n")
		case '\t':
			escaped.WriteString("\\t")
		case '\r':
			escaped.WriteString("\\r")
		case 0:
			escaped.WriteString("\\0")
		default:
			escaped.WriteByte(c)
		}
	}
	return escaped.String()
}
