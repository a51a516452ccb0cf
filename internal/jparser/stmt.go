package jparser

import (
	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/jtypes"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// parseStatement dispatches on the current token's kind to the right
// statement-level production. Anything that doesn't start a recognised
// statement keyword falls through to an expression statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curKind() {
	case token.LEFT_BRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.CLASS:
		return p.parseClassDecl()
	case token.RETURN:
		return p.finishExprStmt(p.parseReturnExpr())
	default:
		if (p.isTypeStart() || p.looksLikeClassTypedDecl()) && p.looksLikeFunDecl() {
			return p.parseFunDecl()
		}
		if p.isTypeStart() || p.looksLikeClassTypedDecl() {
			return p.parseVarDeclStatement()
		}
		return p.finishExprStmt(p.parseExpression())
	}
}

// looksLikeClassTypedDecl reports whether the current position is
// `Identifier identifier` — a declaration using a user-defined class name
// as the declared type, e.g. `Animal cat = ...` (spec §3: declared types
// may be a class name, not just the built-in type keywords).
func (p *Parser) looksLikeClassTypedDecl() bool {
	if !p.at(token.IDENTIFIER) {
		return false
	}
	save := p.cur()
	defer p.cursor.RewindTo(save)
	p.advance()
	return p.at(token.IDENTIFIER)
}

func (p *Parser) finishExprStmt(e ast.Expression) ast.Statement {
	if s, ok := e.(ast.Statement); ok {
		return s
	}
	return &ast.ExprStmt{StmtInfo: ast.StmtInfo{Tok: e.ExprToken()}, Expr: e}
}

// looksLikeFunDecl peeks past a type-keyword/name to see whether `(`
// follows an identifier, distinguishing `def f(...)`/`int f(...)` function
// declarations from `def x = ...`/`int x` variable declarations.
func (p *Parser) looksLikeFunDecl() bool {
	save := p.cur()
	defer p.cursor.RewindTo(save)

	p.advance() // consume the type keyword
	if !p.at(token.IDENTIFIER) {
		return false
	}
	p.advance() // consume the name
	return p.at(token.LEFT_PAREN)
}

func (p *Parser) parseBlock() *ast.Block {
	openTok := p.expect(token.LEFT_BRACE)
	block := &ast.Block{ExprInfo: ast.ExprInfo{Tok: openTok}}
	p.skipSeparators()
	for !p.at(token.RIGHT_BRACE, token.EOF) {
		stmt := p.parseStatement()
		if fn, ok := stmt.(*ast.FunDecl); ok {
			block.DeclareFunction(fn)
		}
		block.Statements = append(block.Statements, stmt)
		p.skipSeparators()
	}
	p.expect(token.RIGHT_BRACE)
	return block
}

func (p *Parser) parseIf() ast.Statement {
	ifTok := p.advance()
	p.expect(token.LEFT_PAREN)
	p.parenDepth++
	cond := p.parseExpression()
	p.parenDepth--
	p.expect(token.RIGHT_PAREN)
	then := p.parseStatement()
	var elseStmt ast.Statement
	p.skipSeparators()
	if p.at(token.ELSE) {
		p.advance()
		elseStmt = p.parseStatement()
	}
	return &ast.If{StmtInfo: ast.StmtInfo{Tok: ifTok}, Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) parseWhile() ast.Statement {
	whileTok := p.advance()
	w := &ast.While{StmtInfo: ast.StmtInfo{Tok: whileTok}}
	p.expect(token.LEFT_PAREN)
	p.parenDepth++
	w.Cond = p.parseExpression()
	p.parenDepth--
	p.expect(token.RIGHT_PAREN)
	p.pushLoop(w)
	w.Body = p.parseStatement()
	p.popLoop()
	return w
}

// parseFor desugars `for(init; cond; update) body` into the same While
// node a plain `while` produces, with Init/UpdateExprs populated (spec §3
// "While" carries the desugared for-loop clauses).
func (p *Parser) parseFor() ast.Statement {
	forTok := p.advance()
	w := &ast.While{StmtInfo: ast.StmtInfo{Tok: forTok}}
	p.expect(token.LEFT_PAREN)
	p.parenDepth++

	if !p.at(token.SEMICOLON) {
		if p.isTypeStart() {
			w.Init = p.parseVarDeclNoSeparator()
		} else {
			w.Init = &ast.ExprStmt{StmtInfo: ast.StmtInfo{Tok: p.cur()}, Expr: p.parseExpression()}
		}
	}
	p.expect(token.SEMICOLON)

	if !p.at(token.SEMICOLON) {
		w.Cond = p.parseExpression()
	} else {
		w.Cond = &ast.Literal{ExprInfo: ast.ExprInfo{Tok: p.cur(), Type: jtypes.Bool}, Value: true}
	}
	p.expect(token.SEMICOLON)

	for !p.at(token.RIGHT_PAREN, token.EOF) {
		w.UpdateExprs = append(w.UpdateExprs, p.parseExpression())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.parenDepth--
	p.expect(token.RIGHT_PAREN)

	p.pushLoop(w)
	w.Body = p.parseStatement()
	p.popLoop()
	return w
}

// parseVarDeclStatement parses one or more comma-separated declarations of
// the same declared type (spec §3 "VarDecl"); `var x = 1, y = 2` declares
// two VarDecls and returns them wrapped in an (unscoped) Stmts.
func (p *Parser) parseVarDeclStatement() ast.Statement {
	first := p.parseVarDeclNoSeparator()
	if !p.at(token.COMMA) {
		return first
	}
	stmts := &ast.Stmts{StmtInfo: ast.StmtInfo{Tok: first.ExprToken()}, List: []ast.Statement{first}}
	declType := first.DeclaredType
	for p.at(token.COMMA) {
		p.advance()
		stmts.List = append(stmts.List, p.parseVarDeclTail(declType))
	}
	return stmts
}

// parseVarDeclNoSeparator parses `<type> name [= init]` including the
// leading type keyword, without consuming a trailing comma/newline.
func (p *Parser) parseVarDeclNoSeparator() *ast.VarDecl {
	typeTok := p.advance()
	declType, ok := typeKeywordToType(typeTok.Kind)
	if !ok {
		declType = jtypes.Unknown
	}
	return p.parseVarDeclTail(declType)
}

func (p *Parser) parseVarDeclTail(declType jtypes.Type) *ast.VarDecl {
	nameTok := p.expect(token.IDENTIFIER)
	decl := &ast.VarDecl{
		ExprInfo:     ast.ExprInfo{Tok: nameTok, Type: declType},
		NameTok:      nameTok,
		Name:         nameTok.Text(),
		DeclaredType: declType,
	}
	if p.at(token.EQUAL) {
		p.advance()
		decl.Init = p.parseExpression()
	}
	return decl
}

// parseClosureBody parses `{ [params ->] stmt... }` shared by closure
// literals and any standalone `{ }` expression.
func (p *Parser) parseClosureBody(openTok *token.Token) *ast.FunDecl {
	p.expect(token.LEFT_BRACE)
	fn := &ast.FunDecl{
		ExprInfo:   ast.ExprInfo{Tok: openTok},
		StartTok:   openTok,
		IsClosure:  true,
		Descriptor: &ast.FunctionDescriptor{},
	}

	if p.looksLikeClosureParamList() {
		for !p.at(token.ARROW, token.EOF) {
			paramTok := p.expect(token.IDENTIFIER)
			param := &ast.VarDecl{
				ExprInfo:     ast.ExprInfo{Tok: paramTok, Type: jtypes.Unknown},
				NameTok:      paramTok,
				Name:         paramTok.Text(),
				DeclaredType: jtypes.Unknown,
				IsParam:      true,
			}
			if p.at(token.EQUAL) {
				p.advance()
				param.Init = p.parseExpression()
			}
			fn.Params = append(fn.Params, param)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.ARROW)
	}

	body := &ast.Block{ExprInfo: ast.ExprInfo{Tok: openTok}}
	p.skipSeparators()
	for !p.at(token.RIGHT_BRACE, token.EOF) {
		stmt := p.parseStatement()
		if nested, ok := stmt.(*ast.FunDecl); ok {
			body.DeclareFunction(nested)
		}
		body.Statements = append(body.Statements, stmt)
		p.skipSeparators()
	}
	p.expect(token.RIGHT_BRACE)
	fn.Body = body

	if fn.Descriptor != nil {
		fn.Descriptor.Arity = len(fn.Params)
	}
	return fn
}

// looksLikeClosureParamList scans ahead for a `->` before the matching `}`
// at this nesting depth, without consuming anything (spec §3 "Closure":
// `{ x, y -> ... }` vs. a no-arg `{ ... }`).
func (p *Parser) looksLikeClosureParamList() bool {
	save := p.cur()
	defer p.cursor.RewindTo(save)

	depth := 0
	for {
		t := p.cur()
		switch t.Kind {
		case token.EOF:
			return false
		case token.LEFT_BRACE:
			depth++
		case token.RIGHT_BRACE:
			if depth == 0 {
				return false
			}
			depth--
		case token.SEMICOLON, token.NEWLINE:
			if depth == 0 {
				return false
			}
		case token.ARROW:
			if depth == 0 {
				return true
			}
		}
		p.advance()
	}
}

// parseFunDecl parses `<type> name(params...) { body }` (spec §3
// "FunDecl"), used for both top-level/nested `def`/typed function
// statements.
func (p *Parser) parseFunDecl() *ast.FunDecl {
	startTok := p.cur()
	typeTok := p.advance()
	retType, ok := typeKeywordToType(typeTok.Kind)
	if !ok {
		retType = jtypes.Unknown
	}
	nameTok := p.expect(token.IDENTIFIER)

	fn := &ast.FunDecl{
		ExprInfo:           ast.ExprInfo{Tok: startTok, Type: retType},
		StartTok:           startTok,
		Name:               nameTok.Text(),
		DeclaredReturnType: retType,
		ReturnType:         retType,
		Descriptor:         &ast.FunctionDescriptor{},
	}

	p.expect(token.LEFT_PAREN)
	p.parenDepth++
	for !p.at(token.RIGHT_PAREN, token.EOF) {
		fn.Params = append(fn.Params, p.parseParam())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.parenDepth--
	p.expect(token.RIGHT_PAREN)

	fn.Body = p.parseBlock()
	fn.Descriptor.Arity = len(fn.Params)
	for _, param := range fn.Params {
		if param.Init == nil {
			fn.Descriptor.MandatoryCount++
		}
	}
	return fn
}

func (p *Parser) parseParam() *ast.VarDecl {
	var declType jtypes.Type = jtypes.Unknown
	if p.isTypeStart() {
		if t, ok := typeKeywordToType(p.curKind()); ok {
			declType = t
			p.advance()
		}
	}
	nameTok := p.expect(token.IDENTIFIER)
	param := &ast.VarDecl{
		ExprInfo:     ast.ExprInfo{Tok: nameTok, Type: declType},
		NameTok:      nameTok,
		Name:         nameTok.Text(),
		DeclaredType: declType,
		IsParam:      true,
	}
	if p.at(token.EQUAL) {
		p.advance()
		param.Init = p.parseExpression()
	}
	return param
}

// parseClassDecl parses a class declaration with fields and methods (spec
// §3 "ClassDecl"). Interface declarations/generic bounds beyond
// extends/implements name lists are out of scope here.
func (p *Parser) parseClassDecl() ast.Statement {
	classTok := p.advance()
	nameTok := p.expect(token.IDENTIFIER)
	decl := &ast.ClassDecl{StmtInfo: ast.StmtInfo{Tok: classTok}, Name: nameTok.Text()}

	if p.at(token.EXTENDS) {
		p.advance()
		decl.SuperName = p.expect(token.IDENTIFIER).Text()
	}
	if p.at(token.IMPLEMENTS) {
		p.advance()
		decl.InterfaceNames = append(decl.InterfaceNames, p.expect(token.IDENTIFIER).Text())
		for p.at(token.COMMA) {
			p.advance()
			decl.InterfaceNames = append(decl.InterfaceNames, p.expect(token.IDENTIFIER).Text())
		}
	}

	p.expect(token.LEFT_BRACE)
	p.skipSeparators()
	for !p.at(token.RIGHT_BRACE, token.EOF) {
		if p.isTypeStart() && p.looksLikeFunDecl() {
			decl.Methods = append(decl.Methods, p.parseFunDecl())
		} else if p.isTypeStart() {
			field := p.parseVarDeclNoSeparator()
			decl.Fields = append(decl.Fields, &ast.ClassField{Decl: field})
		} else if p.at(token.CLASS) {
			nested := p.parseClassDecl().(*ast.ClassDecl)
			nested.EnclosingClass = decl
			decl.NestedClasses = append(decl.NestedClasses, nested)
		} else {
			p.errorf(p.cur().Pos(), "unexpected token %s in class body", p.curKind())
			p.advance()
		}
		p.skipSeparators()
	}
	p.expect(token.RIGHT_BRACE)
	return decl
}
