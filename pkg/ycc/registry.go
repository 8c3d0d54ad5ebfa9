package ycc

import (
	"fmt"
	"sort"
)

type signature struct {
	name  string
	arity int
}

func (s signature) String() string {
	return fmt.Sprintf("%s/%d", s.name, s.arity)
}

// nativeFunc is the Go implementation of a built-in function.
type nativeFunc func(f *frame, args []Value) (Value, error)

// function is a FunctionRegistry entry: a user-defined function's node,
// or a built-in. Built-ins receive dereferenced arguments unless raw.
type function struct {
	signature
	node   *FuncNode
	native nativeFunc
	raw    bool
}

// FunctionRegistry maps (name, arity) pairs to functions. Functions are
// overloaded by arity only.
type FunctionRegistry struct {
	entries map[signature]*function
	frozen  bool
}

// NewFunctionRegistry returns a registry holding the built-in functions.
func NewFunctionRegistry() *FunctionRegistry {
	r := &FunctionRegistry{entries: map[signature]*function{}}
	r.LoadEnvironment()
	return r
}

// Register adds a user-defined function under its name and parameter
// count, replacing any function with the same signature.
func (r *FunctionRegistry) Register(node *FuncNode) error {
	if r.frozen {
		return errorf(ErrAssert, "cannot register %s in a frozen function registry", node.name)
	}
	sig := signature{node.name, len(node.params)}
	r.entries[sig] = &function{signature: sig, node: node}
	return nil
}

// loadFunc registers a built-in. A raw built-in receives its arguments
// without dereferencing.
func (r *FunctionRegistry) loadFunc(name string, arity int, raw bool, exec nativeFunc) {
	sig := signature{name, arity}
	r.entries[sig] = &function{signature: sig, native: exec, raw: raw}
}

func (r *FunctionRegistry) resolve(name string, arity int) (*function, error) {
	fn, ok := r.entries[signature{name, arity}]
	if !ok {
		return nil, errorf(ErrName, "no function %s taking %d arguments", name, arity)
	}
	return fn, nil
}

// Has reports whether a function name/arity is registered.
func (r *FunctionRegistry) Has(name string, arity int) bool {
	_, ok := r.entries[signature{name, arity}]
	return ok
}

// Signatures lists every registered signature as "name/arity", sorted.
func (r *FunctionRegistry) Signatures() []string {
	sigs := make([]string, 0, len(r.entries))
	for sig := range r.entries {
		sigs = append(sigs, sig.String())
	}
	sort.Strings(sigs)
	return sigs
}

// clone returns a copy of r that later registrations into r do not
// affect.
func (r *FunctionRegistry) clone(frozen bool) *FunctionRegistry {
	entries := make(map[signature]*function, len(r.entries))
	for sig, fn := range r.entries {
		entries[sig] = fn
	}
	return &FunctionRegistry{entries: entries, frozen: frozen}
}

// StructRegistry maps struct names to their default values.
type StructRegistry struct {
	templates map[string]*StructValue
	frozen    bool
}

func NewStructRegistry() *StructRegistry {
	return &StructRegistry{templates: map[string]*StructValue{}}
}

// Define merges fields into the template of name, creating it if needed.
// Fields already in the template are overwritten.
func (r *StructRegistry) Define(name string, fields map[string]Value) error {
	if r.frozen {
		return errorf(ErrAssert, "cannot define struct %s in a frozen struct registry", name)
	}
	t, ok := r.templates[name]
	if !ok {
		t = NewStruct(nil)
		r.templates[name] = t
	}
	for field, v := range fields {
		t.fields[field] = deepCopy(v)
	}
	return nil
}

// Extend replaces the template of name with a copy of base's.
func (r *StructRegistry) Extend(name, base string) error {
	if r.frozen {
		return errorf(ErrAssert, "cannot define struct %s in a frozen struct registry", name)
	}
	b, ok := r.templates[base]
	if !ok {
		return errorf(ErrName, "struct %s extends undeclared struct %s", name, base)
	}
	r.templates[name] = deepCopy(b).(*StructValue)
	return nil
}

// DefaultValue returns a new instance of the struct name, sharing no
// storage with the template or earlier instances.
func (r *StructRegistry) DefaultValue(name string) (*StructValue, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, errorf(ErrName, "struct %s is not declared", name)
	}
	return deepCopy(t).(*StructValue), nil
}

// Has reports whether the struct name is declared.
func (r *StructRegistry) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Names lists the declared struct names, sorted.
func (r *StructRegistry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *StructRegistry) clone(frozen bool) *StructRegistry {
	templates := make(map[string]*StructValue, len(r.templates))
	for name, t := range r.templates {
		templates[name] = deepCopy(t).(*StructValue)
	}
	return &StructRegistry{templates: templates, frozen: frozen}
}
