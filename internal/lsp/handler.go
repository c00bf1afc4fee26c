package lsp

import (
	"log"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"pine/internal/parser"
)

// Semantic token types advertised to the client. Pine has no scopes or
// declarations, so the lexer alone is enough to classify every token.
var SemanticTokenTypes = []string{
	"keyword",
	"variable",
	"number",
	"string",
	"operator",
}

var SemanticTokenModifiers = []string{}

// PineHandler implements the LSP handlers for Pine. It keeps the last
// known text of every open document and re-parses it on each change,
// publishing the first lex, parse or type error as a diagnostic.
type PineHandler struct {
	mu      sync.RWMutex
	content map[string]string
}

func NewPineHandler() *PineHandler {
	return &PineHandler{
		content: make(map[string]string),
	}
}

func (h *PineHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *PineHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("Pine LSP Initialized")
	return nil
}

func (h *PineHandler) Shutdown(ctx *glsp.Context) error {
	log.Println("Pine LSP Shutdown")
	return nil
}

func (h *PineHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (h *PineHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("Opened file: %s\n", params.TextDocument.URI)

	h.setContent(params.TextDocument.URI, params.TextDocument.Text)
	h.publishDiagnostics(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (h *PineHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("Closed file: %s\n", params.TextDocument.URI)

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, params.TextDocument.URI)
	return nil
}

func (h *PineHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Printf("Changed file: %s\n", params.TextDocument.URI)

	// Sync is full-document, so the last change carries the whole text.
	text, ok := h.getContent(params.TextDocument.URI)
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text, ok = c.Text, true
		case protocol.TextDocumentContentChangeEvent:
			text, ok = c.Text, true
		}
	}
	if !ok {
		return nil
	}

	h.setContent(params.TextDocument.URI, text)
	h.publishDiagnostics(ctx, params.TextDocument.URI, text)
	return nil
}

// TextDocumentSemanticTokensFull classifies the whole document from its
// token stream, encoded in the LSP delta format.
func (h *PineHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	log.Println("TextDocumentSemanticTokensFull called for:", params.TextDocument.URI)

	text, ok := h.getContent(params.TextDocument.URI)
	if !ok {
		return &protocol.SemanticTokens{}, nil
	}

	tokens, err := parser.NewScanner(text).ScanTokens()
	if err != nil {
		// A lexical error already surfaces as a diagnostic; send no tokens.
		return &protocol.SemanticTokens{}, nil
	}

	var data []uint32
	var prevLine, prevStart uint32

	for _, token := range tokens {
		kind, ok := semanticTokenIndex(token.Type)
		if !ok {
			continue
		}

		line := uint32(token.Span.Line - 1)
		start := uint32(token.Span.Column - 1)
		length := uint32(token.Span.End - token.Span.Start)

		deltaLine := line - prevLine
		deltaStart := start
		if deltaLine == 0 {
			deltaStart = start - prevStart
		}

		data = append(data, deltaLine, deltaStart, length, kind, 0)
		prevLine = line
		prevStart = start
	}

	return &protocol.SemanticTokens{Data: data}, nil
}

func semanticTokenIndex(t parser.TokenType) (uint32, bool) {
	switch t {
	case parser.WHILE, parser.IF, parser.ELSE, parser.PRINT, parser.PRINTLN, parser.EXIT, parser.INPUT:
		return 0, true // keyword
	case parser.IDENTIFIER:
		return 1, true // variable
	case parser.INT:
		return 2, true // number
	case parser.STRING:
		return 3, true // string
	case parser.PLUS, parser.MINUS, parser.STAR, parser.SLASH,
		parser.LESS, parser.LESS_EQUAL, parser.GREATER, parser.GREATER_EQUAL,
		parser.EQUAL_EQUAL, parser.BANG_EQUAL, parser.AND, parser.OR,
		parser.AMPERSAND, parser.PIPE, parser.CARET, parser.TILDE,
		parser.SHIFT_LEFT, parser.SHIFT_RIGHT, parser.BANG, parser.EQUAL:
		return 4, true // operator
	default:
		return 0, false
	}
}

func (h *PineHandler) setContent(uri, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.content[uri] = text
}

func (h *PineHandler) getContent(uri string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	text, ok := h.content[uri]
	return text, ok
}

func (h *PineHandler) publishDiagnostics(ctx *glsp.Context, uri string, text string) {
	diagnostics := CollectDiagnostics(text)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
