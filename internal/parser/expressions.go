package parser

import (
	"strconv"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/pkg/token"
)

// parseExpression parses an expression with Pratt precedence climbing.
// On return curToken is on the last token of the expression.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(p.curToken.Pos, "unexpected token %s in expression", p.curToken.Type)
		return nil
	}
	left := prefix()

	for left != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError(p.curToken.Pos, "could not parse %q as integer", p.curToken.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseRealLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(p.curToken.Pos, "could not parse %q as real", p.curToken.Literal)
		return nil
	}
	return &ast.RealLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// parseIdentifierExpression parses an identifier primary: a plain variable
// reference, an array access `a[i, j]`, or a call `f(args)`.
func (p *Parser) parseIdentifierExpression() ast.Expression {
	nameTok := p.curToken

	switch {
	case p.peekTokenIs(token.LBRACK):
		return p.parseIndexSuffix(nameTok)
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		call := &ast.CallExpression{Token: nameTok, Name: nameTok.Literal}
		call.Arguments = p.parseCallArguments()
		return call
	default:
		return &ast.Identifier{Token: nameTok, Value: nameTok.Literal}
	}
}

// parseIndexSuffix parses `[index{, index}]` after an identifier. The
// peek token is '[' on entry; curToken is ']' on return.
func (p *Parser) parseIndexSuffix(nameTok token.Token) *ast.IndexExpression {
	expr := &ast.IndexExpression{Token: nameTok, Name: nameTok.Literal}

	p.nextToken() // curToken = '['
	for {
		p.nextToken()
		idx := p.parseExpression(LOWEST)
		if idx == nil {
			return nil
		}
		expr.Indices = append(expr.Indices, idx)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	return expr
}

// parseCallArguments parses `(arg{, arg})` with curToken on '('. On
// return curToken is on ')'.
func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	for {
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return args
		}
		args = append(args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return args
	}
	return args
}

// parseUnaryExpression parses a sign-prefixed primary: -x, +x.
func (p *Parser) parseUnaryExpression() ast.Expression {
	expr := &ast.UnaryExpression{
		Token:    p.curToken,
		Operator: operatorStrings[p.curToken.Type],
	}
	p.nextToken()
	expr.Operand = p.parseExpression(PREFIX)
	if expr.Operand == nil {
		return nil
	}
	return expr
}

// parseBinaryExpression parses the right-hand side of a binary operator
// with curToken on the operator.
func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	expr := &ast.BinaryExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: operatorStrings[p.curToken.Type],
	}
	precedence := precedences[p.curToken.Type]
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseGroupedExpression parses `(expr)`. Parentheses affect grouping only
// and leave no node in the tree.
func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}
