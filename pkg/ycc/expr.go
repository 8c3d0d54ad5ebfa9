package ycc

import (
	"fmt"
	"strings"
)

// Expr is a node of an expression tree. Eval may return a RefValue;
// consumers that need a plain value dereference it.
type Expr interface {
	String() string
	Position() position
	Eval(f *frame) (Value, error)

	// prepare resolves names against the registries and returns the node
	// that should replace the receiver, which is a constant when the
	// subtree folds.
	prepare(p *preparer) (Expr, error)
}

// addressable is implemented by expressions naming a storage place, the
// only expressions allowed left of "=" and after "&".
type addressable interface {
	Expr
	Ref(f *frame) (RefValue, error)
}

func evalDeref(f *frame, e Expr) (Value, error) {
	v, err := e.Eval(f)
	if err != nil {
		return nil, err
	}
	v, err = deref(v)
	if err != nil {
		return nil, at(err, e.Position())
	}
	return v, nil
}

// operand renders e as the child of an infix node.
func operand(e Expr) string {
	switch e.(type) {
	case BinaryNode, AssignNode:
		return "(" + e.String() + ")"
	default:
		return e.String()
	}
}

type ConstantNode struct {
	val Value
	position
}

func (n ConstantNode) String() string {
	return repr(n.val)
}

func (n ConstantNode) Position() position {
	return n.position
}

func (n ConstantNode) Eval(f *frame) (Value, error) {
	return n.val, nil
}

func (n ConstantNode) prepare(p *preparer) (Expr, error) {
	return n, nil
}

type VariableNode struct {
	name string
	position
}

func (n VariableNode) String() string {
	return n.name
}

func (n VariableNode) Position() position {
	return n.position
}

func (n VariableNode) Eval(f *frame) (Value, error) {
	return f.scope.Get(n.name), nil
}

func (n VariableNode) Ref(f *frame) (RefValue, error) {
	return f.scope.Ref(n.name), nil
}

func (n VariableNode) prepare(p *preparer) (Expr, error) {
	return n, nil
}

type BinaryNode struct {
	operator string
	op       binaryOp
	left     Expr
	right    Expr
	position
}

func (n BinaryNode) String() string {
	return fmt.Sprintf("%s %s %s", operand(n.left), n.operator, operand(n.right))
}

func (n BinaryNode) Position() position {
	return n.position
}

func (n BinaryNode) Eval(f *frame) (Value, error) {
	left, err := evalDeref(f, n.left)
	if err != nil {
		return nil, err
	}
	right, err := evalDeref(f, n.right)
	if err != nil {
		return nil, err
	}

	v, err := n.op(left, right)
	if err != nil {
		return nil, at(err, n.position)
	}
	return v, nil
}

func (n BinaryNode) prepare(p *preparer) (Expr, error) {
	var err error
	if n.left, err = n.left.prepare(p); err != nil {
		return nil, err
	}
	if n.right, err = n.right.prepare(p); err != nil {
		return nil, err
	}

	left, lok := n.left.(ConstantNode)
	right, rok := n.right.(ConstantNode)
	if lok && rok {
		// an operation that fails is left in place so the error is
		// raised when, and only if, it runs
		if v, err := n.op(left.val, right.val); err == nil {
			return ConstantNode{v, n.position}, nil
		}
	}
	return n, nil
}

// AssignNode stores the value of right at the place left names. It
// evaluates to the stored value, and as an lvalue to left's place.
type AssignNode struct {
	left  addressable
	right Expr
	position
}

func (n AssignNode) String() string {
	return fmt.Sprintf("%s = %s", operand(n.left), operand(n.right))
}

func (n AssignNode) Position() position {
	return n.position
}

func (n AssignNode) assign(f *frame) (RefValue, Value, error) {
	r, err := n.left.Ref(f)
	if err != nil {
		return RefValue{}, nil, err
	}
	v, err := n.right.Eval(f)
	if err != nil {
		return RefValue{}, nil, err
	}
	if err := r.Assign(v); err != nil {
		return RefValue{}, nil, at(err, n.position)
	}
	return r, v, nil
}

func (n AssignNode) Eval(f *frame) (Value, error) {
	_, v, err := n.assign(f)
	return v, err
}

func (n AssignNode) Ref(f *frame) (RefValue, error) {
	r, _, err := n.assign(f)
	return r, err
}

func (n AssignNode) prepare(p *preparer) (Expr, error) {
	left, err := n.left.prepare(p)
	if err != nil {
		return nil, err
	}
	// preparing an addressable node never folds it away
	n.left = left.(addressable)
	if n.right, err = n.right.prepare(p); err != nil {
		return nil, err
	}
	return n, nil
}

// base evaluates the container side of a subscript or member access:
// to a reference when it names a place, or else to its value.
func base(f *frame, e Expr) (Value, error) {
	if a, ok := e.(addressable); ok {
		return a.Ref(f)
	}
	return e.Eval(f)
}

// access reads the element sel of the container b evaluates to,
// returning it undereferenced.
func access(b Value, sel selector, pos position) (Value, error) {
	if r, ok := b.(RefValue); ok {
		v, err := r.with(sel).loadRaw()
		if err != nil {
			return nil, at(err, pos)
		}
		return v, nil
	}

	p, err := step(b, sel)
	if err != nil {
		return nil, at(err, pos)
	}
	return p.get(), nil
}

func placeOf(b Value, sel selector, e Expr, pos position) (RefValue, error) {
	r, ok := b.(RefValue)
	if !ok {
		return RefValue{}, errorf(ErrType, "cannot assign into temporary %s value %s [%s]",
			b.Type(), e, pos)
	}
	return r.with(sel), nil
}

// SubscriptNode is base[index]. A String index into a struct selects
// the field of that name.
type SubscriptNode struct {
	base  Expr
	index Expr
	position
}

func (n SubscriptNode) String() string {
	return fmt.Sprintf("%s[%s]", operand(n.base), n.index)
}

func (n SubscriptNode) Position() position {
	return n.position
}

func (n SubscriptNode) operands(f *frame) (Value, selector, error) {
	b, err := base(f, n.base)
	if err != nil {
		return nil, selector{}, err
	}
	idx, err := evalDeref(f, n.index)
	if err != nil {
		return nil, selector{}, err
	}

	if s, ok := idx.(StringValue); ok {
		return b, selector{field: string(s), member: true}, nil
	}
	i, err := toInt(idx)
	if err != nil {
		return nil, selector{}, at(err, n.index.Position())
	}
	return b, selector{index: i}, nil
}

func (n SubscriptNode) Eval(f *frame) (Value, error) {
	b, sel, err := n.operands(f)
	if err != nil {
		return nil, err
	}
	return access(b, sel, n.position)
}

func (n SubscriptNode) Ref(f *frame) (RefValue, error) {
	b, sel, err := n.operands(f)
	if err != nil {
		return RefValue{}, err
	}
	return placeOf(b, sel, n.base, n.position)
}

func (n SubscriptNode) prepare(p *preparer) (Expr, error) {
	var err error
	if n.base, err = n.base.prepare(p); err != nil {
		return nil, err
	}
	if n.index, err = n.index.prepare(p); err != nil {
		return nil, err
	}
	return n, nil
}

// MemberNode is base.field.
type MemberNode struct {
	base  Expr
	field string
	position
}

func (n MemberNode) String() string {
	return operand(n.base) + "." + n.field
}

func (n MemberNode) Position() position {
	return n.position
}

func (n MemberNode) Eval(f *frame) (Value, error) {
	b, err := base(f, n.base)
	if err != nil {
		return nil, err
	}
	return access(b, selector{field: n.field, member: true}, n.position)
}

func (n MemberNode) Ref(f *frame) (RefValue, error) {
	b, err := base(f, n.base)
	if err != nil {
		return RefValue{}, err
	}
	return placeOf(b, selector{field: n.field, member: true}, n.base, n.position)
}

func (n MemberNode) prepare(p *preparer) (Expr, error) {
	var err error
	if n.base, err = n.base.prepare(p); err != nil {
		return nil, err
	}
	return n, nil
}

// AddressOfNode is &operand. Taking the address of a place that already
// holds a reference yields that reference.
type AddressOfNode struct {
	operand addressable
	position
}

func (n AddressOfNode) String() string {
	return "&" + operand(n.operand)
}

func (n AddressOfNode) Position() position {
	return n.position
}

func (n AddressOfNode) Eval(f *frame) (Value, error) {
	r, err := n.operand.Ref(f)
	if err != nil {
		return nil, err
	}
	held, err := r.loadRaw()
	if err != nil {
		return nil, at(err, n.position)
	}
	if inner, ok := held.(RefValue); ok {
		return inner, nil
	}
	return r, nil
}

func (n AddressOfNode) prepare(p *preparer) (Expr, error) {
	o, err := n.operand.prepare(p)
	if err != nil {
		return nil, err
	}
	n.operand = o.(addressable)
	return n, nil
}

// ArrayAllocNode is arr size: a new array of size zero values.
type ArrayAllocNode struct {
	size Expr
	position
}

func (n ArrayAllocNode) String() string {
	return "arr " + operand(n.size)
}

func (n ArrayAllocNode) Position() position {
	return n.position
}

func (n ArrayAllocNode) Eval(f *frame) (Value, error) {
	sv, err := evalDeref(f, n.size)
	if err != nil {
		return nil, err
	}
	size, err := toInt(sv)
	if err != nil {
		return nil, at(err, n.position)
	}
	if size < 0 {
		return nil, errorf(ErrRange, "cannot allocate array of negative size %d [%s]", size, n.position)
	}
	if size > maxAllocLen {
		return nil, errorf(ErrRange, "cannot allocate array of %d elements, the limit is %d [%s]",
			size, maxAllocLen, n.position)
	}

	elems := make([]Value, size)
	for i := range elems {
		elems[i] = zeroValue
	}
	return NewArray(elems...), nil
}

func (n ArrayAllocNode) prepare(p *preparer) (Expr, error) {
	var err error
	if n.size, err = n.size.prepare(p); err != nil {
		return nil, err
	}
	return n, nil
}

// StructInstNode is let name: a fresh instance of a declared struct.
type StructInstNode struct {
	name string
	position
}

func (n StructInstNode) String() string {
	return "let " + n.name
}

func (n StructInstNode) Position() position {
	return n.position
}

func (n StructInstNode) Eval(f *frame) (Value, error) {
	v, err := f.run.prog.structs.DefaultValue(n.name)
	if err != nil {
		return nil, at(err, n.position)
	}
	return v, nil
}

func (n StructInstNode) prepare(p *preparer) (Expr, error) {
	if !p.structs.Has(n.name) {
		return nil, errorf(ErrName, "struct %s is not declared [%s]", n.name, n.position)
	}
	return n, nil
}

// CallNode calls the function registered under name with as many
// parameters as the call has arguments. The target is bound by prepare.
type CallNode struct {
	name string
	args []Expr
	fn   *function
	position
}

func (n CallNode) String() string {
	args := make([]string, len(n.args))
	for i, a := range n.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.name, strings.Join(args, ", "))
}

func (n CallNode) Position() position {
	return n.position
}

func (n CallNode) Eval(f *frame) (Value, error) {
	if n.fn == nil {
		return nil, errorf(ErrAssert, "call to %s/%d was never resolved [%s]",
			n.name, len(n.args), n.position)
	}

	args := make([]Value, len(n.args))
	for i, a := range n.args {
		v, err := a.Eval(f)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return f.call(n.fn, args, n.position)
}

func (n CallNode) prepare(p *preparer) (Expr, error) {
	fn, err := p.functions.resolve(n.name, len(n.args))
	if err != nil {
		return nil, at(err, n.position)
	}

	args := make([]Expr, len(n.args))
	for i, a := range n.args {
		if args[i], err = a.prepare(p); err != nil {
			return nil, err
		}
	}
	if fn.node != nil {
		p.reach(fn.node)
	}
	n.args = args
	n.fn = fn
	return n, nil
}
