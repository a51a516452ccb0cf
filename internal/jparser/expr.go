package jparser

import (
	"math/big"

	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/jtypes"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// parseExpression is the entry point for expression parsing; assignment
// binds loosest (spec §4.2 precedence table, lowest to highest: assignment,
// ternary, or, and, equality/match/in, relational, bitwise-or, bitwise-xor,
// bitwise-and, shift, additive, multiplicative, exponent, unary, postfix).
func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

var assignOps = map[token.Kind]string{
	token.PLUS_EQUAL:    "+",
	token.MINUS_EQUAL:   "-",
	token.STAR_EQUAL:    "*",
	token.SLASH_EQUAL:   "/",
	token.PERCENT_EQUAL: "%",
	token.AMP_EQUAL:     "&",
	token.PIPE_EQUAL:    "|",
	token.CARET_EQUAL:   "^",
}

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseTernary()

	switch p.curKind() {
	case token.EQUAL, token.QUESTION_EQUAL:
		nullSafe := p.curKind() == token.QUESTION_EQUAL
		eq := p.advance()
		value := p.parseAssignment()
		return p.buildAssign(left, eq, value, nullSafe)
	default:
		if op, ok := assignOps[p.curKind()]; ok {
			eq := p.advance()
			value := p.parseAssignment()
			return p.buildOpAssign(left, eq, op, value)
		}
	}
	return left
}

// buildAssign turns `target = value` into a VarAssign or FieldAssign
// depending on whether target is a plain Identifier or a field/index chain
// (spec §4.4: "An Index used as an lvalue is rewritten...").
func (p *Parser) buildAssign(target ast.Expression, eqTok *token.Token, value ast.Expression, nullSafe bool) ast.Expression {
	switch t := target.(type) {
	case *ast.Identifier:
		return &ast.VarAssign{
			ExprInfo:   ast.ExprInfo{Tok: eqTok},
			Target:     t,
			Value:      value,
			IsNullSafe: nullSafe,
		}
	case *ast.Index:
		t.CreateIfMissing = true
		return &ast.FieldAssign{
			ExprInfo: ast.ExprInfo{Tok: eqTok},
			Target:   t,
			Value:    value,
		}
	default:
		p.errorf(eqTok.Pos(), "invalid assignment target")
		return target
	}
}

func (p *Parser) buildOpAssign(target ast.Expression, opTok *token.Token, op string, value ast.Expression) ast.Expression {
	switch t := target.(type) {
	case *ast.Identifier:
		return &ast.VarOpAssign{
			ExprInfo: ast.ExprInfo{Tok: opTok},
			Target:   t,
			Op:       op,
			Value:    value,
			Embedded: &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: op, Left: &ast.Noop{ExprInfo: ast.ExprInfo{Tok: opTok}}, Right: value},
		}
	case *ast.Index:
		t.CreateIfMissing = true
		return &ast.FieldOpAssign{
			ExprInfo: ast.ExprInfo{Tok: opTok},
			Target:   t,
			Op:       op,
			Value:    value,
			Embedded: &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: op, Left: &ast.Noop{ExprInfo: ast.ExprInfo{Tok: opTok}}, Right: value},
		}
	default:
		p.errorf(opTok.Pos(), "invalid assignment target")
		return target
	}
}

func (p *Parser) parseTernary() ast.Expression {
	cond := p.parseOr()
	if p.at(token.QUESTION) {
		qTok := p.advance()
		then := p.parseAssignment()
		p.expect(token.COLON)
		els := p.parseAssignment()
		return &ast.Ternary{ExprInfo: ast.ExprInfo{Tok: qTok}, Cond: cond, Then: then, Else: els}
	}
	if p.at(token.QUESTION_COLON) {
		qTok := p.advance()
		els := p.parseAssignment()
		return &ast.Ternary{ExprInfo: ast.ExprInfo{Tok: qTok}, Cond: cond, Then: cond, Else: els}
	}
	return cond
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.at(token.PIPE_PIPE, token.OR) {
		opTok := p.advance()
		right := p.parseAnd()
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: "||", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.at(token.AMP_AMP, token.AND) {
		opTok := p.advance()
		right := p.parseEquality()
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: "&&", Left: left, Right: right}
	}
	return left
}

// parseEquality covers ==, !=, =~, !~, instanceof, !instanceof, in, !in —
// comparison-family operators at one precedence level, chained
// left-associatively (spec §4.2).
func (p *Parser) parseEquality() ast.Expression {
	left := p.parseRelational()
	for p.at(token.EQUAL_EQUAL, token.BANG_EQUAL, token.EQUAL_GRAPPLE, token.BANG_TILDE,
		token.INSTANCEOF, token.NOT_INSTANCEOF, token.IN, token.NOT_IN) {
		opTok := p.advance()
		switch opTok.Kind {
		case token.EQUAL_GRAPPLE, token.BANG_TILDE:
			pattern := p.parseRelational()
			left = &ast.RegexMatch{ExprInfo: ast.ExprInfo{Tok: opTok}, Subject: left, Pattern: pattern, Negated: opTok.Kind == token.BANG_TILDE}
		default:
			right := p.parseRelational()
			left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: opTok.Kind.String(), Left: left, Right: right}
		}
	}
	return left
}

func (p *Parser) parseRelational() ast.Expression {
	left := p.parseBitwiseOr()
	for p.at(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL, token.LESS_EQUAL_GREATER) {
		opTok := p.advance()
		right := p.parseBitwiseOr()
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: opTok.Kind.String(), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitwiseOr() ast.Expression {
	left := p.parseBitwiseXor()
	for p.at(token.PIPE) {
		opTok := p.advance()
		right := p.parseBitwiseXor()
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: "|", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitwiseXor() ast.Expression {
	left := p.parseBitwiseAnd()
	for p.at(token.CARET) {
		opTok := p.advance()
		right := p.parseBitwiseAnd()
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: "^", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitwiseAnd() ast.Expression {
	left := p.parseShift()
	for p.at(token.AMP) {
		opTok := p.advance()
		right := p.parseShift()
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: "&", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseShift() ast.Expression {
	left := p.parseAdditive()
	for p.at(token.SHIFT_LEFT, token.SHIFT_RIGHT, token.SHIFT_RIGHT_UNSIGNED) {
		opTok := p.advance()
		right := p.parseAdditive()
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: opTok.Kind.String(), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.at(token.PLUS, token.MINUS) {
		opTok := p.advance()
		right := p.parseMultiplicative()
		op := "+"
		if opTok.Kind == token.MINUS {
			op = "-"
		}
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseExponent()
	for p.at(token.STAR, token.SLASH, token.PERCENT) {
		opTok := p.advance()
		right := p.parseExponent()
		left = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: opTok.Kind.String(), Left: left, Right: right}
	}
	return left
}

// parseExponent is right-associative (spec §4.2: "`**` binds tighter than
// `*`/`/` and associates right").
func (p *Parser) parseExponent() ast.Expression {
	left := p.parseUnary()
	if p.at(token.STAR_STAR) {
		opTok := p.advance()
		right := p.parseExponent()
		return &ast.Binary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: "**", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.curKind() {
	case token.BANG, token.MINUS, token.PLUS, token.TILDE:
		opTok := p.advance()
		operand := p.parseUnary()
		return &ast.Unary{ExprInfo: ast.ExprInfo{Tok: opTok}, Op: opTok.Kind.String(), Operand: operand, Prefix: true}
	case token.PLUS_PLUS, token.MINUS_MINUS:
		opTok := p.advance()
		operand := p.parseUnary()
		id, ok := operand.(*ast.Identifier)
		if !ok {
			p.errorf(opTok.Pos(), "%s requires a variable operand", opTok.Kind)
			return operand
		}
		op := "+"
		if opTok.Kind == token.MINUS_MINUS {
			op = "-"
		}
		return &ast.VarOpAssign{
			ExprInfo:      ast.ExprInfo{Tok: opTok},
			Target:        id,
			Op:            op,
			Value:         &ast.Noop{ExprInfo: ast.ExprInfo{Tok: opTok}},
			IsPreIncOrDec: true,
			IsPrefix:      true,
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.curKind() {
		case token.DOT, token.QUESTION_DOT:
			expr = p.parseFieldAccess(expr)
		case token.LEFT_SQUARE, token.QUESTION_SQUARE:
			expr = p.parseIndexAccess(expr)
		case token.LEFT_PAREN:
			expr = p.parseCallArgs(expr)
		case token.PLUS_PLUS, token.MINUS_MINUS:
			id, ok := expr.(*ast.Identifier)
			if !ok {
				return expr
			}
			opTok := p.advance()
			op := "+"
			if opTok.Kind == token.MINUS_MINUS {
				op = "-"
			}
			expr = &ast.VarOpAssign{
				ExprInfo:      ast.ExprInfo{Tok: opTok},
				Target:        id,
				Op:            op,
				Value:         &ast.Noop{ExprInfo: ast.ExprInfo{Tok: opTok}},
				IsPreIncOrDec: true,
				IsPrefix:      false,
			}
		default:
			return expr
		}
	}
}

func (p *Parser) parseFieldAccess(recv ast.Expression) ast.Expression {
	safe := p.curKind() == token.QUESTION_DOT
	dotTok := p.advance()
	nameTok := p.expect(token.IDENTIFIER)
	ix := &ast.Index{ExprInfo: ast.ExprInfo{Tok: dotTok}, Receiver: recv, Field: nameTok.Text(), Safe: safe}
	if p.at(token.LEFT_PAREN) {
		args := p.parseArgList()
		return &ast.MethodCall{ExprInfo: ast.ExprInfo{Tok: dotTok}, Receiver: recv, Name: nameTok.Text(), Args: args}
	}
	return ix
}

func (p *Parser) parseIndexAccess(recv ast.Expression) ast.Expression {
	safe := p.curKind() == token.QUESTION_SQUARE
	openTok := p.advance()
	p.bracketDepth++
	key := p.parseExpression()
	p.bracketDepth--
	p.expect(token.RIGHT_SQUARE)
	return &ast.Index{ExprInfo: ast.ExprInfo{Tok: openTok}, Receiver: recv, Key: key, Safe: safe}
}

func (p *Parser) parseCallArgs(callee ast.Expression) ast.Expression {
	tok := p.cur()
	args := p.parseArgList()
	return &ast.Call{ExprInfo: ast.ExprInfo{Tok: tok}, Callee: callee, Args: args}
}

func (p *Parser) parseArgList() []ast.Expression {
	p.expect(token.LEFT_PAREN)
	p.parenDepth++
	var args []ast.Expression
	for !p.at(token.RIGHT_PAREN, token.EOF) {
		args = append(args, p.parseExpression())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.parenDepth--
	p.expect(token.RIGHT_PAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	t := p.cur()
	switch t.Kind {
	case token.INTEGER_CONST:
		p.advance()
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.Int}, Value: t.Literal.Int}
	case token.LONG_CONST:
		p.advance()
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.Long}, Value: t.Literal.Long}
	case token.DOUBLE_CONST:
		p.advance()
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.Double}, Value: t.Literal.Double}
	case token.DECIMAL_CONST:
		p.advance()
		v := t.Literal.Decimal
		if v == nil {
			v = new(big.Rat)
		}
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.Decimal}, Value: v}
	case token.STRING_CONST:
		p.advance()
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.String}, Value: t.Literal.Str}
	case token.TRUE:
		p.advance()
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.Bool}, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.Bool}, Value: false}
	case token.NULL:
		p.advance()
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.Any}, Value: nil}
	case token.IDENTIFIER:
		p.advance()
		return &ast.Identifier{ExprInfo: ast.ExprInfo{Tok: t}, Name: t.Text()}
	case token.LEFT_PAREN:
		p.advance()
		p.parenDepth++
		expr := p.parseExpression()
		p.parenDepth--
		p.expect(token.RIGHT_PAREN)
		return expr
	case token.LEFT_SQUARE:
		return p.parseListOrMapLiteral()
	case token.EXPR_STRING_START:
		return p.parseInterpolatedString()
	case token.LEFT_BRACE:
		return p.parseClosureLiteral()
	case token.DO:
		return p.parseDoExpr()
	case token.PRINT, token.PRINTLN:
		return p.parsePrint()
	case token.BREAK:
		p.advance()
		return &ast.Break{ExprInfo: ast.ExprInfo{Tok: t}, Target: p.currentLoop()}
	case token.CONTINUE:
		p.advance()
		return &ast.Continue{ExprInfo: ast.ExprInfo{Tok: t}, Target: p.currentLoop()}
	case token.RETURN:
		return p.parseReturnExpr()
	default:
		p.errorf(t.Pos(), "unexpected token %s in expression", t.Kind)
		p.advance()
		return &ast.Literal{ExprInfo: ast.ExprInfo{Tok: t, Type: jtypes.Any}, Value: nil}
	}
}

func (p *Parser) parsePrint() ast.Expression {
	t := p.advance()
	newline := t.Kind == token.PRINTLN
	var arg ast.Expression
	if !p.atStatementEnd() {
		arg = p.parseExpression()
	}
	return &ast.Print{ExprInfo: ast.ExprInfo{Tok: t}, Arg: arg, Newline: newline}
}

func (p *Parser) atStatementEnd() bool {
	return p.at(token.NEWLINE, token.SEMICOLON, token.EOF, token.RIGHT_BRACE, token.RIGHT_PAREN, token.RIGHT_SQUARE, token.COMMA)
}

func (p *Parser) parseReturnExpr() ast.Expression {
	t := p.advance()
	var value ast.Expression
	if !p.atStatementEnd() {
		value = p.parseExpression()
	}
	return &ast.Return{ExprInfo: ast.ExprInfo{Tok: t}, Value: value}
}

func (p *Parser) parseDoExpr() ast.Expression {
	doTok := p.advance()
	block := p.parseBlock()
	block.IsDoExpr = true
	block.Tok = doTok
	return block
}

// parseListOrMapLiteral disambiguates `[...]` between list and map by
// checking for `:` immediately after the first element, and recognises the
// empty-map literal `[:]` (spec §3 "ListLiteral"/"MapLiteral").
func (p *Parser) parseListOrMapLiteral() ast.Expression {
	openTok := p.advance()
	p.bracketDepth++
	defer func() { p.bracketDepth-- }()

	if p.at(token.COLON) {
		p.advance()
		p.expect(token.RIGHT_SQUARE)
		return &ast.MapLiteral{ExprInfo: ast.ExprInfo{Tok: openTok}}
	}
	if p.at(token.RIGHT_SQUARE) {
		p.advance()
		return &ast.ListLiteral{ExprInfo: ast.ExprInfo{Tok: openTok}}
	}

	first := p.parseExpression()
	if p.at(token.COLON) {
		p.advance()
		firstVal := p.parseExpression()
		entries := []ast.MapEntry{{Key: first, Value: firstVal}}
		for p.at(token.COMMA) {
			p.advance()
			k := p.parseExpression()
			p.expect(token.COLON)
			v := p.parseExpression()
			entries = append(entries, ast.MapEntry{Key: k, Value: v})
		}
		p.expect(token.RIGHT_SQUARE)
		return &ast.MapLiteral{ExprInfo: ast.ExprInfo{Tok: openTok}, Entries: entries}
	}

	elems := []ast.Expression{first}
	for p.at(token.COMMA) {
		p.advance()
		elems = append(elems, p.parseExpression())
	}
	p.expect(token.RIGHT_SQUARE)
	return &ast.ListLiteral{ExprInfo: ast.ExprInfo{Tok: openTok}, Elements: elems}
}

// parseInterpolatedString assembles the EXPR_STRING_START / STRING_CONST /
// LEFT_BRACE ... RIGHT_BRACE / IDENTIFIER / EXPR_STRING_END token sequence
// the lexer produces (spec §4.1) into one InterpolatedString node.
func (p *Parser) parseInterpolatedString() ast.Expression {
	startTok := p.advance()
	var parts []ast.StringPart
	for !p.at(token.EXPR_STRING_END, token.EOF) {
		switch p.curKind() {
		case token.STRING_CONST:
			t := p.advance()
			parts = append(parts, ast.StringPart{Literal: t.Literal.Str})
		case token.IDENTIFIER:
			t := p.advance()
			parts = append(parts, ast.StringPart{Expr: &ast.Identifier{ExprInfo: ast.ExprInfo{Tok: t}, Name: t.Text()}})
		case token.LEFT_BRACE:
			p.advance()
			expr := p.parseExpression()
			p.expect(token.RIGHT_BRACE)
			parts = append(parts, ast.StringPart{Expr: expr})
		default:
			p.errorf(p.cur().Pos(), "unexpected token %s inside interpolated string", p.curKind())
			p.advance()
		}
	}
	p.expect(token.EXPR_STRING_END)
	return &ast.InterpolatedString{ExprInfo: ast.ExprInfo{Tok: startTok, Type: jtypes.String}, Parts: parts}
}

// parseClosureLiteral parses `{ [params ->] stmt... }`. Lookahead is needed
// to tell a closure from a plain block used as a statement; in expression
// position `{` is always a closure (spec §3 "Closure").
func (p *Parser) parseClosureLiteral() ast.Expression {
	openTok := p.cur()
	fn := p.parseClosureBody(openTok)
	return &ast.Closure{ExprInfo: ast.ExprInfo{Tok: openTok}, Decl: fn}
}
