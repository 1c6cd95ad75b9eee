package parser

import (
	"github.com/cwbudde/go-oberon/internal/ast"
	"github.com/cwbudde/go-oberon/pkg/token"
)

// parseStatement dispatches on the leading token of a statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IDENT:
		return p.parseAssignOrCallStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.BEGIN:
		return p.parseCompoundStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	default:
		p.addError(p.curToken.Pos, "unexpected token %s at start of statement", p.curToken.Type)
		return nil
	}
}

// parseAssignOrCallStatement disambiguates a leading identifier: an
// assignment (`x := e;`, `a[i] := e;`) or a procedure call (`P(args);`,
// `P;`).
func (p *Parser) parseAssignOrCallStatement() ast.Statement {
	nameTok := p.curToken

	switch {
	case p.peekTokenIs(token.LBRACK):
		target := p.parseIndexSuffix(nameTok)
		if target == nil {
			return nil
		}
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		stmt := &ast.AssignmentStatement{Token: p.curToken, Target: target}
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return stmt

	case p.peekTokenIs(token.ASSIGN):
		target := &ast.Identifier{Token: nameTok, Value: nameTok.Literal}
		p.nextToken()
		stmt := &ast.AssignmentStatement{Token: p.curToken, Target: target}
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return stmt

	default:
		stmt := &ast.ProcCallStatement{Token: nameTok, Name: nameTok.Literal}
		stmt.Arguments = []ast.Expression{}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			stmt.Arguments = p.parseCallArguments()
		}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return stmt
	}
}

// parseIfStatement parses `IF cond THEN stmt [ELSE stmt] END;`. Each
// branch is a single statement.
func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(token.THEN) {
		return nil
	}
	p.nextToken()
	stmt.Then = p.parseStatement()
	if stmt.Then == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Else = p.parseStatement()
		if stmt.Else == nil {
			return nil
		}
	}
	if !p.expectPeek(token.END) {
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseWhileStatement parses `WHILE cond DO stmts END;`. The body is the
// statement sequence up to END, always wrapped in a CompoundStatement.
func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(token.DO) {
		return nil
	}
	stmt.Body = p.parseStatementsUntilEnd()
	if stmt.Body == nil {
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseForStatement parses `FOR i := start TO end DO stmts END;`.
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Variable = p.curToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Start = p.parseExpression(LOWEST)
	if !p.expectPeek(token.TO) {
		return nil
	}
	p.nextToken()
	stmt.End = p.parseExpression(LOWEST)
	if !p.expectPeek(token.DO) {
		return nil
	}
	stmt.Body = p.parseStatementsUntilEnd()
	if stmt.Body == nil {
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseStatementsUntilEnd collects statements up to the matching END with
// curToken on DO. On return curToken is on END.
func (p *Parser) parseStatementsUntilEnd() *ast.CompoundStatement {
	body := &ast.CompoundStatement{Token: p.curToken}
	for !p.peekTokenIs(token.END) && !p.peekTokenIs(token.EOF) && !p.failed() {
		p.nextToken()
		stmt := p.parseStatement()
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
		}
	}
	if !p.expectPeek(token.END) {
		return nil
	}
	return body
}

// parseCompoundStatement parses an explicit `BEGIN stmts END` block.
func (p *Parser) parseCompoundStatement() ast.Statement {
	stmt := &ast.CompoundStatement{Token: p.curToken}
	for !p.peekTokenIs(token.END) && !p.peekTokenIs(token.EOF) && !p.failed() {
		p.nextToken()
		inner := p.parseStatement()
		if inner != nil {
			stmt.Statements = append(stmt.Statements, inner)
		}
	}
	if !p.expectPeek(token.END) {
		return nil
	}
	return stmt
}

// parseReturnStatement parses `RETURN;` or `RETURN expr;`.
func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}
