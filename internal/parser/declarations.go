package parser

import (
	"strconv"

	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/internal/types"
	"github.com/cwbudde/go-oberon/pkg/token"
)

// parseConstDecl parses `CONST name := expr;` with curToken on CONST.
func (p *Parser) parseConstDecl() *ast.ConstDecl {
	decl := &ast.ConstDecl{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	decl.Value = p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return decl
}

// parseVarDecls parses a VAR block with curToken on VAR:
//
//	VAR x, y: INTEGER;
//	    a: ARRAY [10, 20] OF REAL;
//
// Each name yields its own VarDecl node.
func (p *Parser) parseVarDecls() []ast.Declaration {
	var decls []ast.Declaration

	for !p.failed() {
		if !p.expectPeek(token.IDENT) {
			return decls
		}
		nameTokens := []token.Token{p.curToken}
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return decls
			}
			nameTokens = append(nameTokens, p.curToken)
		}
		if !p.expectPeek(token.COLON) {
			return decls
		}

		dims, elemType, ok := p.parseTypeSpec()
		if !ok {
			return decls
		}
		if !p.expectPeek(token.SEMICOLON) {
			return decls
		}

		for _, nameTok := range nameTokens {
			decls = append(decls, &ast.VarDecl{
				Token:      nameTok,
				Name:       nameTok.Literal,
				Type:       elemType,
				Dimensions: dims,
			})
		}

		// Further declaration groups in the same VAR block start with a
		// bare identifier.
		if !p.peekTokenIs(token.IDENT) {
			return decls
		}
	}
	return decls
}

// parseTypeSpec parses `[ARRAY [N{, N}] OF] scalar-type` after the colon.
// The dimension list is nil for scalars.
func (p *Parser) parseTypeSpec() ([]int, types.DataType, bool) {
	var dims []int
	if p.peekTokenIs(token.ARRAY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACK) {
			return nil, types.INTEGER, false
		}
		for {
			if !p.expectPeek(token.INT_LIT) {
				return nil, types.INTEGER, false
			}
			size, err := strconv.Atoi(p.curToken.Literal)
			if err != nil || size <= 0 {
				p.addError(p.curToken.Pos, "invalid array dimension %q", p.curToken.Literal)
				return nil, types.INTEGER, false
			}
			dims = append(dims, size)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.RBRACK) {
			return nil, types.INTEGER, false
		}
		if !p.expectPeek(token.OF) {
			return nil, types.INTEGER, false
		}
	}
	elemType, ok := p.parseScalarType()
	return dims, elemType, ok
}

// parseProcDecl parses a procedure declaration with curToken on PROCEDURE:
//
//	PROCEDURE Name(params): Type; decls BEGIN stmts END Name;
//
// The closing name must repeat the procedure name.
func (p *Parser) parseProcDecl() *ast.ProcDecl {
	decl := &ast.ProcDecl{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		decl.Parameters = p.parseParameters()
		if p.failed() {
			return nil
		}
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		rt, ok := p.parseScalarType()
		if !ok {
			return nil
		}
		decl.ReturnType = &rt
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	decl.Declarations = p.parseDeclarations()

	if !p.expectPeek(token.BEGIN) {
		return nil
	}
	for !p.peekTokenIs(token.END) && !p.peekTokenIs(token.EOF) && !p.failed() {
		p.nextToken()
		stmt := p.parseStatement()
		if stmt != nil {
			decl.Statements = append(decl.Statements, stmt)
		}
	}
	if !p.expectPeek(token.END) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	if p.curToken.Literal != decl.Name {
		p.addError(p.curToken.Pos, "procedure name mismatch: %s vs %s",
			decl.Name, p.curToken.Literal)
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return decl
}

// parseParameters parses the parameter list with curToken on '('. Groups
// are separated by semicolons; a leading VAR marks the group by-reference.
func (p *Parser) parseParameters() []*ast.Parameter {
	var params []*ast.Parameter

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	for !p.failed() {
		byRef := false
		if p.peekTokenIs(token.VAR) {
			p.nextToken()
			byRef = true
		}
		if !p.expectPeek(token.IDENT) {
			return params
		}
		nameTokens := []token.Token{p.curToken}
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return params
			}
			nameTokens = append(nameTokens, p.curToken)
		}
		if !p.expectPeek(token.COLON) {
			return params
		}
		dims, paramType, ok := p.parseTypeSpec()
		if !ok {
			return params
		}
		for _, nameTok := range nameTokens {
			params = append(params, &ast.Parameter{
				Token:      nameTok,
				Name:       nameTok.Literal,
				Type:       paramType,
				ByRef:      byRef,
				Dimensions: dims,
			})
		}
		if !p.peekTokenIs(token.SEMICOLON) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return params
	}
	return params
}
