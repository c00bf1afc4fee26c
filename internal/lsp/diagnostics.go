package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"pine/internal/errors"
	"pine/internal/parser"
)

// CollectDiagnostics runs the scanner and parser over text and converts
// the result into LSP diagnostics. Code generation is not run, so its
// errors are not reported. The first error halts parsing, so the slice
// holds at most one entry; an empty (non-nil) slice clears previously
// published diagnostics.
func CollectDiagnostics(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	_, _, _, err := parser.ParseSource(text)
	if err == nil {
		return diagnostics
	}

	if ce, ok := err.(*errors.CompileError); ok {
		diagnostics = append(diagnostics, convertCompileError(ce))
	}
	return diagnostics
}

func convertCompileError(err *errors.CompileError) protocol.Diagnostic {
	length := err.Span.End - err.Span.Start
	if length < 1 {
		length = 1
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{
				Line:      uint32(err.Span.Line - 1),
				Character: uint32(err.Span.Column - 1),
			},
			End: protocol.Position{
				Line:      uint32(err.Span.Line - 1),
				Character: uint32(err.Span.Column - 1 + length),
			},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Code:     &protocol.IntegerOrString{Value: err.Code},
		Source:   ptrString("pine"),
		Message:  err.Message,
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
