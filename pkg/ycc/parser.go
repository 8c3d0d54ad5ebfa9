package ycc

// parser builds declarations from a token stream, registering functions
// and structs as it meets them.
type parser struct {
	*TokenStream
	functions *FunctionRegistry
	structs   *StructRegistry
	debug     bool
}

// Parse reads a sequence of function and struct declarations, registering
// each in functions or structs. It returns the parsed functions in source
// order.
func Parse(tokens []Tok, functions *FunctionRegistry, structs *StructRegistry, debugParser bool) ([]*FuncNode, error) {
	p := &parser{
		TokenStream: newTokenStream(tokens),
		functions:   functions,
		structs:     structs,
		debug:       debugParser,
	}

	funcs := []*FuncNode{}
	for !p.atEnd() {
		tok, _ := p.peek()
		switch {
		case tok.is(Keyword, "def"):
			fn, err := p.parseFunc()
			if err != nil {
				return nil, err
			}
			funcs = append(funcs, fn)
		case tok.is(Keyword, "struct"):
			if err := p.parseStruct(); err != nil {
				return nil, err
			}
		default:
			return nil, errorf(ErrParse, "expected a def or struct declaration but found %s", tok)
		}
	}
	return funcs, nil
}

func (p *parser) parseFunc() (*FuncNode, error) {
	def, err := p.expect("def")
	if err != nil {
		return nil, err
	}
	name, err := p.expectKind(Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	params := []string{}
	seen := map[string]bool{}
	for !p.peekIs(")") {
		param, err := p.expectKind(Identifier)
		if err != nil {
			return nil, err
		}
		if seen[param.text] {
			return nil, errorf(ErrParse, "duplicate parameter %s in declaration of %s [%s]",
				param.text, name.text, param.position)
		}
		seen[param.text] = true
		params = append(params, param.text)

		if !p.peekIs(")") {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	// registered before the body is read so it may call itself
	fn := &FuncNode{name: name.text, params: params, position: def.position}
	if err := p.functions.Register(fn); err != nil {
		return nil, err
	}

	if fn.body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	if p.debug {
		LogDebug("parse ->", fn.String())
	}
	return fn, nil
}

func (p *parser) parseStruct() error {
	if _, err := p.expect("struct"); err != nil {
		return err
	}
	name, err := p.expectKind(Identifier)
	if err != nil {
		return err
	}

	if p.peekIs("extends") {
		p.advance()
		b, err := p.expectKind(Identifier)
		if err != nil {
			return err
		}
		if err := p.structs.Extend(name.text, b.text); err != nil {
			return at(err, b.position)
		}
	}

	if _, err := p.expect("{"); err != nil {
		return err
	}
	fields := map[string]Value{}
	for !p.peekIs("}") {
		field, err := p.expectKind(Identifier)
		if err != nil {
			return err
		}
		if _, err := p.expect("="); err != nil {
			return err
		}

		val, err := p.advance()
		if err != nil {
			return err
		}
		switch {
		case val.kind == Literal:
			fields[field.text] = parseConstant(val)
		case val.is(Keyword, "struct"):
			nested, err := p.expectKind(Identifier)
			if err != nil {
				return err
			}
			v, err := p.structs.DefaultValue(nested.text)
			if err != nil {
				return at(err, nested.position)
			}
			fields[field.text] = v
		default:
			return errorf(ErrParse, "field %s must be initialized with a literal or a struct, found %s",
				field.text, val)
		}

		if _, err := p.expect(";"); err != nil {
			return err
		}
	}
	if _, err := p.expect("}"); err != nil {
		return err
	}

	if err := p.structs.Define(name.text, fields); err != nil {
		return at(err, name.position)
	}
	if p.debug {
		v, _ := p.structs.DefaultValue(name.text)
		LogDebug("parse ->", "struct", name.text, v.String())
	}
	return nil
}

// parseBlock parses "{" stmt* "}".
func (p *parser) parseBlock() (*BlockStmt, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}

	block := &BlockStmt{position: open.position}
	for !p.peekIs("}") {
		if p.atEnd() {
			return nil, p.endErr()
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.stmts = append(block.stmts, s)
	}
	p.advance()
	return block, nil
}

func (p *parser) parseStmt() (Stmt, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if tok.kind == Keyword {
		switch tok.text {
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "for":
			return p.parseFor()
		case "foreach":
			return p.parseForeach()
		case "return":
			p.advance()
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(";"); err != nil {
				return nil, err
			}
			return &ReturnStmt{expr: expr, position: tok.position}, nil
		case "else":
			return nil, errorf(ErrParse, "else must follow an if [%s]", tok.position)
		default:
			return nil, errorf(ErrParse, "unexpected %s in statement", tok)
		}
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ExprStmt{expr: expr}, nil
}

// parenExpr parses "(" expr ")".
func (p *parser) parenExpr() (Expr, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) parseIf() (*IfStmt, error) {
	tok, err := p.expect("if")
	if err != nil {
		return nil, err
	}
	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	n := &IfStmt{cond: cond, then: then, position: tok.position}
	if p.peekIs("else") {
		p.advance()
		if p.peekIs("if") {
			n.els, err = p.parseIf()
		} else {
			n.els, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (p *parser) parseWhile() (*WhileStmt, error) {
	tok, err := p.expect("while")
	if err != nil {
		return nil, err
	}
	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{cond: cond, body: body, position: tok.position}, nil
}

func (p *parser) parseFor() (*ForStmt, error) {
	tok, err := p.expect("for")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	n := &ForStmt{position: tok.position}
	if n.init, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	if n.cond, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	if n.step, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	if n.body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parseForeach() (*ForeachStmt, error) {
	tok, err := p.expect("foreach")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	name, err := p.expectKind(Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForeachStmt{name: name.text, iter: iter, body: body, position: tok.position}, nil
}

// parseScript parses a bare statement sequence running to the end of
// input. A final expression without a terminating ";" is returned.
func (p *parser) parseScript() (*BlockStmt, error) {
	block := &BlockStmt{}
	for !p.atEnd() {
		tok, _ := p.peek()
		if tok.kind == Keyword {
			s, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			block.stmts = append(block.stmts, s)
			continue
		}

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.atEnd() {
			block.stmts = append(block.stmts, &ReturnStmt{expr: expr, position: expr.Position()})
			break
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		block.stmts = append(block.stmts, &ExprStmt{expr: expr})
	}
	return block, nil
}
