package ycc

import (
	"fmt"
	"strings"
)

// maxRefDepth bounds how many references a single dereference may pass
// through before it is treated as a cycle.
const maxRefDepth = 64

// Scope holds the variables of one function-call frame. Each variable
// lives in a slot whose index never changes once allocated, so a slot
// index is a stable handle for the lifetime of the frame.
type Scope struct {
	function string
	slots    []Value
	names    []string
	index    map[string]int
	dead     bool
}

func newScope(function string) *Scope {
	return &Scope{
		function: function,
		index:    map[string]int{},
	}
}

// slotOf returns the slot bound to name, creating it holding the zero
// Value if the frame has not seen name yet.
func (s *Scope) slotOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	s.slots = append(s.slots, zeroValue)
	s.names = append(s.names, name)
	s.index[name] = len(s.slots) - 1
	return len(s.slots) - 1
}

// Get returns the value bound to name, which may be a reference.
func (s *Scope) Get(name string) Value {
	return s.slots[s.slotOf(name)]
}

// bind stores a copy of v in name's slot, replacing whatever was there
// without writing through a reference.
func (s *Scope) bind(name string, v Value) {
	s.slots[s.slotOf(name)] = deepCopy(v)
}

// Ref returns a reference to name's slot.
func (s *Scope) Ref(name string) RefValue {
	return RefValue{scope: s, slot: s.slotOf(name)}
}

func (s *Scope) String() string {
	entries := make([]string, len(s.slots))
	for i, v := range s.slots {
		vstr := v.String()
		if len(vstr) > maxPrintLen {
			vstr = vstr[:maxPrintLen] + ".."
		}
		entries[i] = fmt.Sprintf("%s -> %s", s.names[i], vstr)
	}
	return fmt.Sprintf("%s {\n\t%s\n}", s.function, strings.Join(entries, "\n\t"))
}

const maxPrintLen = 120

type selector struct {
	field  string
	index  int64
	member bool
}

func (sel selector) String() string {
	if sel.member {
		return "." + sel.field
	}
	return fmt.Sprintf("[%d]", sel.index)
}

type placeKind int

const (
	slotPlace placeKind = iota
	elemPlace
	fieldPlace
)

// place is a resolved storage location: a frame slot, an array element
// or a struct field. Places are only valid until the next store.
type place struct {
	kind  placeKind
	scope *Scope
	slot  int
	arr   *ArrayValue
	index int
	st    *StructValue
	field string
}

func (p place) get() Value {
	switch p.kind {
	case elemPlace:
		return p.arr.elems[p.index]
	case fieldPlace:
		if v, ok := p.st.fields[p.field]; ok {
			return v
		}
		return zeroValue
	default:
		return p.scope.slots[p.slot]
	}
}

func (p place) set(v Value) {
	switch p.kind {
	case elemPlace:
		p.arr.elems[p.index] = v
	case fieldPlace:
		p.st.fields[p.field] = v
	default:
		p.scope.slots[p.slot] = v
	}
}

// RefValue is a reference: a frame, a slot in that frame, and a path of
// element and field selectors below the slot. Every dereference walks
// the path again from the slot's current value, so a reference follows
// rebinding of the variable it names.
type RefValue struct {
	scope *Scope
	slot  int
	path  []selector
}

func (r RefValue) Type() Type { return RefType }

// Name renders the referenced variable and path, e.g. "a[2].x".
func (r RefValue) Name() string {
	var b strings.Builder
	b.WriteString(r.scope.names[r.slot])
	for _, sel := range r.path {
		b.WriteString(sel.String())
	}
	return b.String()
}

// Origin is the name of the function whose frame the reference points into.
func (r RefValue) Origin() string {
	return r.scope.function
}

func (r RefValue) String() string {
	return "&" + r.Name()
}

func (r RefValue) Equals(other Value) bool {
	or, ok := other.(RefValue)
	if !ok || r.scope != or.scope || r.slot != or.slot || len(r.path) != len(or.path) {
		return false
	}
	for i, sel := range r.path {
		if sel != or.path[i] {
			return false
		}
	}
	return true
}

func (r RefValue) with(sel selector) RefValue {
	path := make([]selector, len(r.path), len(r.path)+1)
	copy(path, r.path)
	return RefValue{scope: r.scope, slot: r.slot, path: append(path, sel)}
}

// resolve walks r to the place it names. visit, if set, sees every place
// the walk passes through, including those of references met on the way.
func (r RefValue) resolve(visit func(place) error, depth int) (place, error) {
	if depth > maxRefDepth {
		return place{}, errorf(ErrType, "reference cycle while dereferencing %s", r)
	}
	if r.scope.dead {
		return place{}, errorf(ErrRange, "dangling reference to %s in finished call of %s",
			r.scope.names[r.slot], r.scope.function)
	}

	p := place{kind: slotPlace, scope: r.scope, slot: r.slot}
	if visit != nil {
		if err := visit(p); err != nil {
			return place{}, err
		}
	}
	for _, sel := range r.path {
		cur, err := derefVia(p.get(), visit, depth+1)
		if err != nil {
			return place{}, err
		}

		if p, err = step(cur, sel); err != nil {
			return place{}, err
		}

		if visit != nil {
			if err := visit(p); err != nil {
				return place{}, err
			}
		}
	}
	return p, nil
}

// step selects the element or field sel names inside the container cur.
func step(cur Value, sel selector) (place, error) {
	switch c := cur.(type) {
	case *ArrayValue:
		if sel.member {
			return place{}, errorf(ErrType, "cannot access member %s of an array", sel.field)
		}
		if sel.index < 0 || sel.index >= int64(len(c.elems)) {
			return place{}, errorf(ErrRange, "index %d out of bounds of array of size %d",
				sel.index, len(c.elems))
		}
		return place{kind: elemPlace, arr: c, index: int(sel.index)}, nil
	case *StructValue:
		if !sel.member {
			return place{}, errorf(ErrType, "cannot index struct with integer %d", sel.index)
		}
		return place{kind: fieldPlace, st: c, field: sel.field}, nil
	default:
		return place{}, errorf(ErrType, "cannot access %s of non-array, non-struct %s value %s",
			sel, cur.Type(), cur)
	}
}

func derefVia(v Value, visit func(place) error, depth int) (Value, error) {
	for ; ; depth++ {
		ref, ok := v.(RefValue)
		if !ok {
			return v, nil
		}
		if depth > maxRefDepth {
			return nil, errorf(ErrType, "reference cycle while dereferencing %s", ref)
		}
		p, err := ref.resolve(visit, depth+1)
		if err != nil {
			return nil, err
		}
		v = p.get()
	}
}

// deref follows references until it reaches a value that is not one.
func deref(v Value) (Value, error) {
	return derefVia(v, nil, 0)
}

// Load returns the terminal value r refers to. The result is never a
// reference; containers are returned uncopied, as aliases.
func (r RefValue) Load() (Value, error) {
	return deref(r)
}

// loadRaw returns whatever is stored at r's place, reference or not.
func (r RefValue) loadRaw() (Value, error) {
	p, err := r.resolve(nil, 0)
	if err != nil {
		return nil, err
	}
	return p.get(), nil
}

// Assign stores v at r's place. When the place holds a reference and v
// is not one, the store goes through to the referenced place instead;
// storing a reference rebinds the place.
func (r RefValue) Assign(v Value) error {
	p, err := r.resolve(nil, 0)
	if err != nil {
		return err
	}

	nr, storingRef := v.(RefValue)
	if target, ok := p.get().(RefValue); ok && !storingRef {
		return target.Assign(v)
	}

	if storingRef {
		err := nr.resolveChain(func(q place) error {
			if q == p {
				return errorf(ErrType, "assigning %s to %s would create a reference cycle", nr, r.Name())
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	p.set(deepCopy(v))
	return nil
}

func (r RefValue) resolveChain(visit func(place) error) error {
	_, err := derefVia(r, visit, 0)
	return err
}
