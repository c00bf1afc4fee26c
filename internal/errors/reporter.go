package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats compile errors for the terminal: category header,
// file:line:column location, the offending source line, and a caret
// underline sized to the error span.
type Reporter struct {
	filename string
	lines    []string
}

func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders err in the compiler's diagnostic style:
//
//	type error[E0202]: operator '+' requires Int operands, got Int and String
//	    --> prog.pine:3:7
//	    |
//	  3 | z = x + y;
//	    |       ^
func (r *Reporter) Format(err *CompileError) string {
	var result strings.Builder

	levelColor := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	result.WriteString(fmt.Sprintf("%s[%s]: %s\n",
		levelColor(string(err.Category)), err.Code, err.Message))

	lineNumberWidth := r.lineNumberWidth(err.Span.Line)
	indent := strings.Repeat(" ", lineNumberWidth)

	result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n",
		indent, dim("-->"), r.filename, err.Span.Line, err.Span.Column))

	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("|")))

	if err.Span.Line > 0 && err.Span.Line <= len(r.lines) {
		lineContent := r.lines[err.Span.Line-1]
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", lineNumberWidth, err.Span.Line)),
			dim("|"),
			lineContent))

		marker := r.marker(err.Span.Column, err.Span.End-err.Span.Start)
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("|"), marker))
	}

	return result.String()
}

func (r *Reporter) marker(column, length int) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max(0, column-1))
	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	return spaces + markerColor(strings.Repeat("^", length))
}

func (r *Reporter) lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}
