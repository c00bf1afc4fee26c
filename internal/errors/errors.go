package errors

import (
	"fmt"

	"pine/internal/ast"
)

// Category labels the pipeline stage an error was raised in.
type Category string

const (
	Lex     Category = "lex error"
	Parse   Category = "parse error"
	Type    Category = "type error"
	CodeGen Category = "codegen error"
	IO      Category = "io error"
)

// CompileError is the single error shape shared by every stage. The
// span anchors the diagnostic in the source; the first error halts the
// pipeline, so one value is all a compilation ever produces.
type CompileError struct {
	Category Category
	Code     string
	Message  string
	Span     ast.Span
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Category, e.Code, e.Message)
}

func NewLexError(code string, span ast.Span, format string, args ...any) *CompileError {
	return &CompileError{Category: Lex, Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

func NewParseError(code string, span ast.Span, format string, args ...any) *CompileError {
	return &CompileError{Category: Parse, Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

func NewTypeError(code string, span ast.Span, format string, args ...any) *CompileError {
	return &CompileError{Category: Type, Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

func NewCodeGenError(code string, span ast.Span, format string, args ...any) *CompileError {
	return &CompileError{Category: CodeGen, Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}
