package ycc

// parseExpr reads the longest run of tokens that forms an expression,
// stopping before the first token that cannot continue one: a keyword,
// one of "; , ] { } :", or a ")" without a matching "(".
//
// It is an operator-precedence (shunting-yard) parser. "(" sits on the
// operator stack as a barrier, and "[" is a postfix operator binding
// tighter than every infix one.
func (p *parser) parseExpr() (Expr, error) {
	var operands []Expr
	var ops []Tok
	open := 0

	reduceTop := func() error {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		var err error
		operands, err = reduce(top, operands)
		return err
	}
	// reduceAbove reduces pending operators down to the nearest "(" for
	// as long as they bind at least as tightly as prec.
	reduceAbove := func(prec int) error {
		for len(ops) > 0 {
			top := ops[len(ops)-1]
			if top.is(Bracket, "(") || top.precedence() < prec {
				return nil
			}
			if err := reduceTop(); err != nil {
				return err
			}
		}
		return nil
	}

	start, err := p.peek()
	if err != nil {
		return nil, err
	}

loop:
	for !p.atEnd() {
		tok := p.tokens[p.idx]

		switch {
		case tok.kind == Literal:
			p.idx++
			operands = append(operands, ConstantNode{parseConstant(tok), tok.position})
		case tok.kind == Identifier:
			p.idx++
			if p.peekIs("(") {
				call, err := p.parseCall(tok)
				if err != nil {
					return nil, err
				}
				operands = append(operands, call)
			} else {
				operands = append(operands, VariableNode{tok.text, tok.position})
			}
		case tok.kind == Operator:
			p.idx++
			// a prefix operator has no left operand to reduce against
			if !isUnaryOp(tok.text) {
				if err := reduceAbove(tok.precedence()); err != nil {
					return nil, err
				}
			}
			ops = append(ops, tok)
		case tok.is(Bracket, "("):
			p.idx++
			ops = append(ops, tok)
			open++
		case tok.is(Bracket, ")") && open > 0:
			p.idx++
			for len(ops) > 0 && !ops[len(ops)-1].is(Bracket, "(") {
				if err := reduceTop(); err != nil {
					return nil, err
				}
			}
			if len(ops) == 0 {
				return nil, errorf(ErrParse, "unmatched ')' [%s]", tok.position)
			}
			ops = ops[:len(ops)-1]
			open--
		case tok.is(Bracket, "["):
			p.idx++
			if err := reduceAbove(tok.precedence()); err != nil {
				return nil, err
			}
			if len(operands) == 0 {
				return nil, errorf(ErrParse, "subscript without a value to index [%s]", tok.position)
			}
			b := operands[len(operands)-1]
			operands = operands[:len(operands)-1]

			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			operands = append(operands, SubscriptNode{b, index, tok.position})
		default:
			break loop
		}
	}

	if len(operands) == 0 {
		if p.atEnd() {
			return nil, p.endErr()
		}
		return nil, errorf(ErrParse, "expected an expression but found %s", p.tokens[p.idx])
	}
	for len(ops) > 0 {
		if top := ops[len(ops)-1]; top.is(Bracket, "(") {
			return nil, errorf(ErrParse, "unmatched '(' [%s]", top.position)
		}
		if err := reduceTop(); err != nil {
			return nil, err
		}
	}
	if len(operands) != 1 {
		return nil, errorf(ErrParse, "malformed expression of %d values with no operator between them [%s]",
			len(operands), start.position)
	}

	expr := operands[0]
	if p.debug {
		LogDebug("expr ->", expr.String())
	}
	return expr, nil
}

// parseCall parses the argument list of a call to the function named by
// tok. Arguments are full expressions separated by ",".
func (p *parser) parseCall(tok Tok) (Expr, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	args := []Expr{}
	for !p.peekIs(")") {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if !p.peekIs(")") {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	return CallNode{name: tok.text, args: args, position: tok.position}, nil
}

// reduce pops the operands of op and pushes the node it builds.
func reduce(op Tok, operands []Expr) ([]Expr, error) {
	if isUnaryOp(op.text) {
		if len(operands) < 1 {
			return nil, errorf(ErrParse, "operator %s is missing its operand [%s]", op.text, op.position)
		}
		x := operands[len(operands)-1]
		operands = operands[:len(operands)-1]

		var node Expr
		switch op.text {
		case "&":
			a, ok := x.(addressable)
			if !ok {
				return nil, errorf(ErrParse, "cannot take the address of %s [%s]", x, op.position)
			}
			node = AddressOfNode{a, op.position}
		case "arr":
			node = ArrayAllocNode{x, op.position}
		case "let":
			v, ok := x.(VariableNode)
			if !ok {
				return nil, errorf(ErrParse, "let expects a struct name, got %s [%s]", x, op.position)
			}
			node = StructInstNode{v.name, op.position}
		}
		return append(operands, node), nil
	}

	if len(operands) < 2 {
		return nil, errorf(ErrParse, "operator %s is missing an operand [%s]", op.text, op.position)
	}
	left, right := operands[len(operands)-2], operands[len(operands)-1]
	operands = operands[:len(operands)-2]

	var node Expr
	switch op.text {
	case "=":
		a, ok := left.(addressable)
		if !ok {
			return nil, errorf(ErrParse, "cannot assign to %s [%s]", left, op.position)
		}
		node = AssignNode{a, right, op.position}
	case ".":
		v, ok := right.(VariableNode)
		if !ok {
			return nil, errorf(ErrParse, "member access expects a field name, got %s [%s]", right, op.position)
		}
		node = MemberNode{left, v.name, op.position}
	default:
		fn, ok := binaryOps[op.text]
		if !ok {
			return nil, errorf(ErrAssert, "unknown binary operator %s [%s]", op.text, op.position)
		}
		node = BinaryNode{op.text, fn, left, right, op.position}
	}
	return append(operands, node), nil
}
