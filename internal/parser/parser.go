package parser

import (
	"pine/internal/ast"
	"pine/internal/errors"
)

// Parser consumes the token stream top-to-bottom, building the program
// AST while checking types inline. The first error halts it; there is
// no recovery or multi-error reporting.
type Parser struct {
	tokens  []Token
	current int
	symbols *SymbolTable
	pool    *ast.StringPool
}

func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:  tokens,
		symbols: NewSymbolTable(),
		pool:    ast.NewStringPool(),
	}
}

// ParseSource runs the scanner and parser over source, returning the
// typed program, the symbol table, and the populated string pool.
func ParseSource(source string) (*ast.Program, *SymbolTable, *ast.StringPool, error) {
	scanner := NewScanner(source)
	tokens, err := scanner.ScanTokens()
	if err != nil {
		return nil, nil, nil, err
	}

	p := NewParser(tokens)
	program, err := p.ParseProgram()
	if err != nil {
		return nil, nil, nil, err
	}
	return program, p.symbols, p.pool, nil
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	for !p.isAtEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Stmts = append(program.Stmts, stmt)
	}
	return program, nil
}

func (p *Parser) Symbols() *SymbolTable {
	return p.symbols
}

func (p *Parser) Pool() *ast.StringPool {
	return p.pool
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peek().Type {
	case IDENTIFIER:
		return p.parseAssign()
	case PRINT, PRINTLN:
		return p.parsePrint()
	case WHILE:
		return p.parseWhile()
	case IF:
		return p.parseIf()
	case EXIT:
		return p.parseExit()
	default:
		tok := p.peek()
		return nil, errors.NewParseError(errors.ErrorUnexpectedToken, tok.Span,
			"expected statement, found %s", tok.Type)
	}
}

func (p *Parser) parseAssign() (ast.Stmt, error) {
	name := p.advance()
	if _, err := p.consume(EQUAL, "expected '=' after variable name"); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	// First assignment establishes the type; later ones must keep it.
	if sym := p.symbols.Lookup(name.Lexeme); sym != nil {
		if sym.Type != value.ResultType() {
			return nil, errors.NewTypeError(errors.ErrorAssignTypeMismatch, name.Span,
				"cannot assign %s to '%s' of type %s", value.ResultType(), name.Lexeme, sym.Type)
		}
	} else {
		p.symbols.Define(name.Lexeme, value.ResultType(), name.Span)
	}

	end, err := p.consumeSemicolon()
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{
		Span:  ast.Spanning(name.Span, end.Span),
		Name:  name.Lexeme,
		Value: value,
	}, nil
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	keyword := p.advance()
	newline := keyword.Type == PRINTLN

	var value ast.Expr
	if !p.check(SEMICOLON) {
		var err error
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	} else if !newline {
		// Bare println emits a lone newline; bare print prints nothing,
		// so it is rejected.
		return nil, errors.NewParseError(errors.ErrorUnexpectedToken, p.peek().Span,
			"expected expression after 'print'")
	}

	end, err := p.consumeSemicolon()
	if err != nil {
		return nil, err
	}
	return &ast.PrintStmt{
		Span:    ast.Spanning(keyword.Span, end.Span),
		Value:   value,
		Newline: newline,
	}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	keyword := p.advance()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	body, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{
		Span: ast.Spanning(keyword.Span, end.Span),
		Cond: cond,
		Body: body,
	}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	keyword := p.advance()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	then, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var otherwise []ast.Stmt
	if p.match(ELSE) {
		otherwise, end, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
		if otherwise == nil {
			otherwise = []ast.Stmt{}
		}
	}
	return &ast.IfStmt{
		Span: ast.Spanning(keyword.Span, end.Span),
		Cond: cond,
		Then: then,
		Else: otherwise,
	}, nil
}

func (p *Parser) parseExit() (ast.Stmt, error) {
	keyword := p.advance()

	var code ast.Expr
	if !p.check(SEMICOLON) {
		var err error
		code, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		if code.ResultType() != ast.Int {
			return nil, errors.NewTypeError(errors.ErrorTypeMismatch, code.NodeSpan(),
				"exit code must be Int, got %s", code.ResultType())
		}
	}

	end, err := p.consumeSemicolon()
	if err != nil {
		return nil, err
	}
	return &ast.ExitStmt{
		Span: ast.Spanning(keyword.Span, end.Span),
		Code: code,
	}, nil
}

// parseCondition parses a loop or branch condition, which must be Int
// (used as a 0/non-0 truth value).
func (p *Parser) parseCondition() (ast.Expr, error) {
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if cond.ResultType() != ast.Int {
		return nil, errors.NewTypeError(errors.ErrorNonIntCondition, cond.NodeSpan(),
			"condition must be Int, got %s", cond.ResultType())
	}
	return cond, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, Token, error) {
	open, err := p.consume(LEFT_BRACE, "expected '{'")
	if err != nil {
		return nil, Token{}, err
	}

	var stmts []ast.Stmt
	for !p.check(RIGHT_BRACE) {
		if p.isAtEnd() {
			return nil, Token{}, errors.NewParseError(errors.ErrorUnclosedBlock, open.Span,
				"block is never closed")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, Token{}, err
		}
		stmts = append(stmts, stmt)
	}

	end := p.advance()
	return stmts, end, nil
}
