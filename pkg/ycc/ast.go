package ycc

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// outcome is the result of executing a statement: either it completed
// and the next statement runs, or it executed a return carrying value,
// which every enclosing statement propagates up to the call.
type outcome struct {
	returned bool
	value    Value
}

var completed = outcome{}

// Stmt is a statement node. Statements count their executions; the count
// is shown by Program.Dump.
type Stmt interface {
	Position() position
	Exec(f *frame) (outcome, error)
	Count() int64

	// prepare returns a prepared copy of the statement with its counters
	// at zero. The receiver is left untouched, so a parsed tree can be
	// prepared into any number of Programs.
	prepare(p *preparer) (Stmt, error)
	dump(b *strings.Builder, depth int)
}

type counter struct {
	n atomic.Int64
}

func (c *counter) hit() {
	c.n.Add(1)
}

// Count reports how many times the node has executed.
func (c *counter) Count() int64 {
	return c.n.Load()
}

func dumpLine(b *strings.Builder, depth int, n int64, format string, args ...interface{}) {
	fmt.Fprintf(b, "%s[ %d ] ", strings.Repeat("  ", depth), n)
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

// condition evaluates e as a branch or loop condition.
func condition(f *frame, e Expr) (bool, error) {
	v, err := evalDeref(f, e)
	if err != nil {
		return false, err
	}
	ok, err := truthy(v)
	if err != nil {
		return false, at(err, e.Position())
	}
	return ok, nil
}

type ExprStmt struct {
	counter
	expr Expr
}

func (n *ExprStmt) Position() position {
	return n.expr.Position()
}

func (n *ExprStmt) Exec(f *frame) (outcome, error) {
	n.hit()
	_, err := n.expr.Eval(f)
	return completed, err
}

func (n *ExprStmt) prepare(p *preparer) (Stmt, error) {
	e, err := n.expr.prepare(p)
	if err != nil {
		return nil, err
	}
	return &ExprStmt{expr: e}, nil
}

func (n *ExprStmt) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, n.Count(), "%s;", n.expr)
}

type ReturnStmt struct {
	counter
	expr Expr
	position
}

func (n *ReturnStmt) Position() position {
	return n.position
}

func (n *ReturnStmt) Exec(f *frame) (outcome, error) {
	n.hit()
	v, err := n.expr.Eval(f)
	if err != nil {
		return completed, err
	}
	f.run.ret = v
	return outcome{returned: true, value: v}, nil
}

func (n *ReturnStmt) prepare(p *preparer) (Stmt, error) {
	e, err := n.expr.prepare(p)
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{expr: e, position: n.position}, nil
}

func (n *ReturnStmt) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, n.Count(), "return %s;", n.expr)
}

// BlockStmt runs its statements in order until one of them returns.
type BlockStmt struct {
	counter
	stmts []Stmt
	position
}

func (n *BlockStmt) Position() position {
	return n.position
}

func (n *BlockStmt) Exec(f *frame) (outcome, error) {
	n.hit()
	for _, s := range n.stmts {
		out, err := s.Exec(f)
		if err != nil || out.returned {
			return out, err
		}
	}
	return completed, nil
}

func (n *BlockStmt) prepare(p *preparer) (Stmt, error) {
	return n.prepareBlock(p)
}

func (n *BlockStmt) prepareBlock(p *preparer) (*BlockStmt, error) {
	stmts := make([]Stmt, len(n.stmts))
	for i, s := range n.stmts {
		var err error
		if stmts[i], err = s.prepare(p); err != nil {
			return nil, err
		}
	}
	return &BlockStmt{stmts: stmts, position: n.position}, nil
}

// dump renders a block as its statements; the block's own count is that
// of the statement owning it.
func (n *BlockStmt) dump(b *strings.Builder, depth int) {
	for _, s := range n.stmts {
		s.dump(b, depth)
	}
}

// IfStmt runs then when cond holds and otherwise els, which is nil, a
// block, or the next IfStmt of an else-if chain.
type IfStmt struct {
	counter
	cond Expr
	then *BlockStmt
	els  Stmt
	position
}

func (n *IfStmt) Position() position {
	return n.position
}

func (n *IfStmt) Exec(f *frame) (outcome, error) {
	n.hit()
	ok, err := condition(f, n.cond)
	if err != nil {
		return completed, err
	}
	if ok {
		return n.then.Exec(f)
	}
	if n.els != nil {
		return n.els.Exec(f)
	}
	return completed, nil
}

func (n *IfStmt) prepare(p *preparer) (Stmt, error) {
	cond, err := n.cond.prepare(p)
	if err != nil {
		return nil, err
	}
	then, err := n.then.prepareBlock(p)
	if err != nil {
		return nil, err
	}
	out := &IfStmt{cond: cond, then: then, position: n.position}
	if n.els != nil {
		if out.els, err = n.els.prepare(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (n *IfStmt) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, n.Count(), "if (%s)", n.cond)
	n.then.dump(b, depth+1)
	switch els := n.els.(type) {
	case *IfStmt:
		dumpLine(b, depth, els.Count(), "else")
		els.dump(b, depth+1)
	case *BlockStmt:
		dumpLine(b, depth, els.Count(), "else")
		els.dump(b, depth+1)
	}
}

type WhileStmt struct {
	counter
	cond Expr
	body *BlockStmt
	position
}

func (n *WhileStmt) Position() position {
	return n.position
}

func (n *WhileStmt) Exec(f *frame) (outcome, error) {
	n.hit()
	for {
		ok, err := condition(f, n.cond)
		if err != nil || !ok {
			return completed, err
		}
		out, err := n.body.Exec(f)
		if err != nil || out.returned {
			return out, err
		}
	}
}

func (n *WhileStmt) prepare(p *preparer) (Stmt, error) {
	cond, err := n.cond.prepare(p)
	if err != nil {
		return nil, err
	}
	body, err := n.body.prepareBlock(p)
	if err != nil {
		return nil, err
	}
	return &WhileStmt{cond: cond, body: body, position: n.position}, nil
}

func (n *WhileStmt) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, n.Count(), "while (%s)", n.cond)
	n.body.dump(b, depth+1)
}

type ForStmt struct {
	counter
	init Expr
	cond Expr
	step Expr
	body *BlockStmt
	position
}

func (n *ForStmt) Position() position {
	return n.position
}

func (n *ForStmt) Exec(f *frame) (outcome, error) {
	n.hit()
	if _, err := n.init.Eval(f); err != nil {
		return completed, err
	}
	for {
		ok, err := condition(f, n.cond)
		if err != nil || !ok {
			return completed, err
		}
		out, err := n.body.Exec(f)
		if err != nil || out.returned {
			return out, err
		}
		if _, err := n.step.Eval(f); err != nil {
			return completed, err
		}
	}
}

func (n *ForStmt) prepare(p *preparer) (Stmt, error) {
	out := &ForStmt{position: n.position}
	var err error
	if out.init, err = n.init.prepare(p); err != nil {
		return nil, err
	}
	if out.cond, err = n.cond.prepare(p); err != nil {
		return nil, err
	}
	if out.step, err = n.step.prepare(p); err != nil {
		return nil, err
	}
	if out.body, err = n.body.prepareBlock(p); err != nil {
		return nil, err
	}
	return out, nil
}

func (n *ForStmt) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, n.Count(), "for (%s; %s; %s)", n.init, n.cond, n.step)
	n.body.dump(b, depth+1)
}

// ForeachStmt binds name to each element of the array iter evaluates to.
// The elements are copied once on entry, so the body cannot change
// what the loop visits.
type ForeachStmt struct {
	counter
	name string
	iter Expr
	body *BlockStmt
	position
}

func (n *ForeachStmt) Position() position {
	return n.position
}

func (n *ForeachStmt) Exec(f *frame) (outcome, error) {
	n.hit()
	v, err := evalDeref(f, n.iter)
	if err != nil {
		return completed, err
	}
	a, ok := v.(*ArrayValue)
	if !ok {
		return completed, errorf(ErrType, "foreach expects an array, got %s value %s [%s]",
			v.Type(), v, n.iter.Position())
	}

	snapshot := deepCopy(a).(*ArrayValue)
	for _, elem := range snapshot.elems {
		f.scope.bind(n.name, elem)
		out, err := n.body.Exec(f)
		if err != nil || out.returned {
			return out, err
		}
	}
	return completed, nil
}

func (n *ForeachStmt) prepare(p *preparer) (Stmt, error) {
	iter, err := n.iter.prepare(p)
	if err != nil {
		return nil, err
	}
	body, err := n.body.prepareBlock(p)
	if err != nil {
		return nil, err
	}
	return &ForeachStmt{name: n.name, iter: iter, body: body, position: n.position}, nil
}

func (n *ForeachStmt) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, n.Count(), "foreach (%s : %s)", n.name, n.iter)
	n.body.dump(b, depth+1)
}

// FuncNode is a user-defined function: its name, formal parameters and
// body. Its count is the number of calls made to it.
type FuncNode struct {
	counter
	name   string
	params []string
	body   *BlockStmt
	position
}

// Name returns the function's name.
func (n *FuncNode) Name() string {
	return n.name
}

// Params returns the names of the function's formal parameters.
func (n *FuncNode) Params() []string {
	return n.params
}

func (n *FuncNode) String() string {
	return fmt.Sprintf("def %s(%s)", n.name, strings.Join(n.params, ", "))
}

func (n *FuncNode) Position() position {
	return n.position
}

func (n *FuncNode) Exec(f *frame) (outcome, error) {
	n.hit()
	return n.body.Exec(f)
}

func (n *FuncNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, n.Count(), "%s", n)
	n.body.dump(b, depth+1)
}
