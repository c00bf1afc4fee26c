package parser

import (
	"pine/internal/ast"
	"pine/internal/errors"
)

// binaryPrecedence maps each infix operator to its level, lowest first.
// A left-associative level L binds with left-bp 2L and right-bp 2L+1;
// an operator is consumed as infix only while its left-bp exceeds the
// current minimum. The same table drives type checking: every operator
// here has the fixed signature Int x Int -> Int.
var binaryPrecedence = map[TokenType]int{
	OR:            1,
	AND:           2,
	PIPE:          3,
	CARET:         4,
	AMPERSAND:     5,
	EQUAL_EQUAL:   6,
	BANG_EQUAL:    6,
	LESS:          7,
	LESS_EQUAL:    7,
	GREATER:       7,
	GREATER_EQUAL: 7,
	SHIFT_LEFT:    8,
	SHIFT_RIGHT:   8,
	PLUS:          9,
	MINUS:         9,
	STAR:          10,
	SLASH:         10,
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parsePrattExpr(0)
}

func (p *Parser) parsePrattExpr(minBP int) (ast.Expr, error) {
	expr, err := p.parsePrefixExpr()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		level, ok := binaryPrecedence[tok.Type]
		if !ok || 2*level <= minBP {
			break
		}

		p.advance()
		right, err := p.parsePrattExpr(2*level + 1)
		if err != nil {
			return nil, err
		}

		if expr.ResultType() != ast.Int || right.ResultType() != ast.Int {
			return nil, errors.NewTypeError(errors.ErrorTypeMismatch, tok.Span,
				"operator '%s' requires Int operands, got %s and %s",
				tok.Lexeme, expr.ResultType(), right.ResultType())
		}

		expr = &ast.BinaryExpr{
			Span:  ast.Spanning(expr.NodeSpan(), right.NodeSpan()),
			Op:    tok.Lexeme,
			Left:  expr,
			Right: right,
		}
	}

	return expr, nil
}

func (p *Parser) parsePrefixExpr() (ast.Expr, error) {
	if p.match(MINUS, BANG, TILDE) {
		op := p.previous()
		value, err := p.parsePrefixExpr()
		if err != nil {
			return nil, err
		}
		if value.ResultType() != ast.Int {
			return nil, errors.NewTypeError(errors.ErrorTypeMismatch, op.Span,
				"operator '%s' requires an Int operand, got %s", op.Lexeme, value.ResultType())
		}
		return &ast.UnaryExpr{
			Span:  ast.Spanning(op.Span, value.NodeSpan()),
			Op:    op.Lexeme,
			Value: value,
		}, nil
	}

	return p.parsePrimaryExpr()
}

func (p *Parser) parsePrimaryExpr() (ast.Expr, error) {
	switch p.peek().Type {
	case INT:
		tok := p.advance()
		return &ast.IntLit{Span: tok.Span, Value: tok.Int}, nil

	case STRING:
		tok := p.advance()
		return &ast.StrLit{
			Span:  tok.Span,
			Value: tok.Lexeme,
			Label: p.pool.Intern(tok.Lexeme),
		}, nil

	case IDENTIFIER:
		tok := p.advance()
		sym := p.symbols.Lookup(tok.Lexeme)
		if sym == nil {
			return nil, errors.NewTypeError(errors.ErrorUndefinedVar, tok.Span,
				"variable '%s' is not defined", tok.Lexeme)
		}
		return &ast.VarExpr{Span: tok.Span, Name: tok.Lexeme, Ty: sym.Type}, nil

	case INPUT:
		tok := p.advance()
		if _, err := p.consume(LEFT_PAREN, "expected '(' after 'input'"); err != nil {
			return nil, err
		}
		end, err := p.consume(RIGHT_PAREN, "expected ')' after 'input('")
		if err != nil {
			return nil, err
		}
		return &ast.InputExpr{Span: ast.Spanning(tok.Span, end.Span)}, nil

	case LEFT_PAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(RIGHT_PAREN, "expected ')'"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		tok := p.peek()
		return nil, errors.NewParseError(errors.ErrorUnexpectedToken, tok.Span,
			"expected expression, found %s", tok.Type)
	}
}
