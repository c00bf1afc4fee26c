package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String methods render a human-readable dump of the tree, annotating
// every expression with its inferred type. The CLI exposes this via
// --dump-ast.

func (p *Program) String() string {
	var b strings.Builder
	for _, stmt := range p.Stmts {
		b.WriteString(stmt.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *IntLit) String() string {
	return fmt.Sprintf("%d:%s", e.Value, e.ResultType())
}

func (e *StrLit) String() string {
	return fmt.Sprintf("%s:%s", strconv.Quote(e.Value), e.ResultType())
}

func (e *VarExpr) String() string {
	return fmt.Sprintf("%s:%s", e.Name, e.Ty)
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s):%s", e.Left, e.Op, e.Right, e.ResultType())
}

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s):%s", e.Op, e.Value, e.ResultType())
}

func (e *InputExpr) String() string {
	return fmt.Sprintf("input():%s", e.ResultType())
}

func (s *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s;", s.Name, s.Value)
}

func (s *PrintStmt) String() string {
	name := "print"
	if s.Newline {
		name = "println"
	}
	if s.Value == nil {
		return name + ";"
	}
	return fmt.Sprintf("%s %s;", name, s.Value)
}

func (s *WhileStmt) String() string {
	return fmt.Sprintf("while %s %s", s.Cond, blockString(s.Body))
}

func (s *IfStmt) String() string {
	out := fmt.Sprintf("if %s %s", s.Cond, blockString(s.Then))
	if s.Else != nil {
		out += " else " + blockString(s.Else)
	}
	return out
}

func (s *ExitStmt) String() string {
	if s.Code == nil {
		return "exit;"
	}
	return fmt.Sprintf("exit %s;", s.Code)
}

func blockString(stmts []Stmt) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, stmt := range stmts {
		b.WriteString("  " + strings.ReplaceAll(stmt.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}
