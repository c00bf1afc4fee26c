package ast

// Span is a half-open byte range [Start, End) into the source text,
// plus the 1-based line and column where it begins. Every token and
// AST node carries one so diagnostics can quote the offending line.
type Span struct {
	Start  int
	End    int
	Line   int
	Column int
}

// Spanning builds the span covering two spans, keeping the anchor
// (line/column) of the first.
func Spanning(from, to Span) Span {
	return Span{
		Start:  from.Start,
		End:    to.End,
		Line:   from.Line,
		Column: from.Column,
	}
}

type Node interface {
	NodeSpan() Span
	String() string
}

type Expr interface {
	Node
	isExpr()

	// ResultType is the type inferred for this expression during parsing.
	ResultType() Type
}

type Stmt interface {
	Node
	isStmt()
}

// Program is an ordered list of top-level statements.
type Program struct {
	Stmts []Stmt
}
