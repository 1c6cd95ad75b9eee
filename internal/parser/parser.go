// Package parser implements the recursive-descent parser for Oberon.
//
// Expressions use Pratt parsing with a one-token lookahead; the precedence
// levels from lowest to highest binding are OR, AND, equality, relational,
// additive, multiplicative, unary sign, primary. The parser halts at the
// first syntax error.
package parser

import (
	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/lexer"
	"github.com/cwbudde/go-oberon/internal/types"
	"github.com/cwbudde/go-oberon/pkg/token"
)

// Precedence levels for operators (lowest to highest).
const (
	_ int = iota
	LOWEST
	OR          // OR
	AND         // AND
	EQUALS      // = #
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / DIV MOD
	PREFIX      // -x, +x
)

// precedences maps token types to their precedence levels.
var precedences = map[token.TokenType]int{
	token.OR:         OR,
	token.AND:        AND,
	token.EQ:         EQUALS,
	token.NOT_EQ:     EQUALS,
	token.LESS:       LESSGREATER,
	token.LESS_EQ:    LESSGREATER,
	token.GREATER:    LESSGREATER,
	token.GREATER_EQ: LESSGREATER,
	token.PLUS:       SUM,
	token.MINUS:      SUM,
	token.ASTERISK:   PRODUCT,
	token.SLASH:      PRODUCT,
	token.DIV:        PRODUCT,
	token.MOD:        PRODUCT,
}

// operatorStrings gives the canonical spelling of each operator token, so
// that `div` and `DIV` in source produce the same AST operator.
var operatorStrings = map[token.TokenType]string{
	token.PLUS:       "+",
	token.MINUS:      "-",
	token.ASTERISK:   "*",
	token.SLASH:      "/",
	token.DIV:        "DIV",
	token.MOD:        "MOD",
	token.AND:        "AND",
	token.OR:         "OR",
	token.EQ:         "=",
	token.NOT_EQ:     "#",
	token.LESS:       "<",
	token.LESS_EQ:    "<=",
	token.GREATER:    ">",
	token.GREATER_EQ: ">=",
}

// prefixParseFn parses prefix expressions (literals, unary sign, grouping).
type prefixParseFn func() ast.Expression

// infixParseFn parses infix (binary) expressions.
type infixParseFn func(ast.Expression) ast.Expression

// Parser holds the parsing state: the lexer, the current and peek tokens,
// and the dispatch tables for expression parsing.
type Parser struct {
	l              *lexer.Lexer
	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
	errors         []*ParseError
	curToken       token.Token
	peekToken      token.Token
}

// New creates a new Parser reading from the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.INT_LIT:    p.parseIntegerLiteral,
		token.REAL_LIT:   p.parseRealLiteral,
		token.STRING_LIT: p.parseStringLiteral,
		token.IDENT:      p.parseIdentifierExpression,
		token.MINUS:      p.parseUnaryExpression,
		token.PLUS:       p.parseUnaryExpression,
		token.LPAREN:     p.parseGroupedExpression,
	}
	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tt := range precedences {
		p.infixParseFns[tt] = p.parseBinaryExpression
	}

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the list of parse errors (at most one; the parser halts
// at the first syntax error).
func (p *Parser) Errors() []*ParseError {
	return p.errors
}

// LexError returns the lexical error encountered while tokenizing, if any.
func (p *Parser) LexError() *lexer.LexError {
	return p.l.Err()
}

// nextToken advances the token window.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek advances if the peek token matches, otherwise records an
// error and returns false.
func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses a complete module:
//
//	MODULE Name; declarations BEGIN statements END Name.
//
// The closing name must repeat the opening module name. Returns nil if a
// syntax (or lexical) error occurred; see Errors and LexError.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Token: p.curToken}

	if !p.curTokenIs(token.MODULE) {
		p.addError(p.curToken.Pos, "expected MODULE, got %s instead", p.curToken.Type)
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	program.Name = p.curToken.Literal
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	program.Declarations = p.parseDeclarations()

	if !p.expectPeek(token.BEGIN) {
		return nil
	}
	for !p.peekTokenIs(token.END) && !p.peekTokenIs(token.EOF) && !p.failed() {
		p.nextToken()
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	if !p.expectPeek(token.END) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	endName := p.curToken.Literal
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	if !p.expectPeek(token.DOT) {
		return nil
	}
	if program.Name != endName {
		p.addError(p.curToken.Pos, "module name mismatch: %s vs %s", program.Name, endName)
		return nil
	}

	if p.failed() || p.l.Err() != nil {
		return nil
	}
	return program
}

// parseDeclarations consumes CONST, VAR and PROCEDURE declarations while
// the peek token starts one.
func (p *Parser) parseDeclarations() []ast.Declaration {
	var decls []ast.Declaration
	for !p.failed() {
		switch p.peekToken.Type {
		case token.CONST:
			p.nextToken()
			if d := p.parseConstDecl(); d != nil {
				decls = append(decls, d)
			}
		case token.VAR:
			p.nextToken()
			decls = append(decls, p.parseVarDecls()...)
		case token.PROCEDURE:
			p.nextToken()
			if d := p.parseProcDecl(); d != nil {
				decls = append(decls, d)
			}
		default:
			return decls
		}
	}
	return decls
}

// parseScalarType expects the peek token to name a scalar type and
// returns it.
func (p *Parser) parseScalarType() (types.DataType, bool) {
	switch p.peekToken.Type {
	case token.INTEGER:
		p.nextToken()
		return types.INTEGER, true
	case token.REAL:
		p.nextToken()
		return types.REAL, true
	case token.STRING:
		p.nextToken()
		return types.STRING, true
	}
	p.addError(p.peekToken.Pos, "expected type name (INTEGER, REAL or STRING), got %s instead",
		p.peekToken.Type)
	return types.INTEGER, false
}
