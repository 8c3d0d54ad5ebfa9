package ycc

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Type tags the variant a Value holds. The declaration order is the
// ordering used when comparing values of different types.
type Type int

const (
	IntType Type = iota
	BoolType
	FloatType
	StringType
	RefType
	ArrType
	StructType
)

func (t Type) String() string {
	switch t {
	case IntType:
		return "Int"
	case BoolType:
		return "Bool"
	case FloatType:
		return "Float"
	case StringType:
		return "String"
	case RefType:
		return "Ref"
	case ArrType:
		return "Arr"
	case StructType:
		return "Struct"
	default:
		return "Non"
	}
}

// Value represents any value in the Ycc language.
type Value interface {
	Type() Type
	String() string
	// Equals reports whether the given value is deep-equal to the
	// receiving value. References are equal when they name the same place.
	Equals(Value) bool
}

// zeroValue is what fresh variables, missing fields and functions
// without an explicit return hold.
var zeroValue Value = IntValue(0)

// IntValue is a 64-bit signed integer.
type IntValue int64

func (v IntValue) Type() Type { return IntType }

func (v IntValue) String() string {
	return strconv.FormatInt(int64(v), 10)
}

func (v IntValue) Equals(other Value) bool {
	ov, ok := other.(IntValue)
	return ok && v == ov
}

// FloatValue is a 64-bit float.
type FloatValue float64

func (v FloatValue) Type() Type { return FloatType }

func (v FloatValue) String() string {
	f := float64(v)
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

func (v FloatValue) Equals(other Value) bool {
	ov, ok := other.(FloatValue)
	return ok && v == ov
}

type BoolValue bool

func (v BoolValue) Type() Type { return BoolType }

func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (v BoolValue) Equals(other Value) bool {
	ov, ok := other.(BoolValue)
	return ok && v == ov
}

type StringValue string

func (v StringValue) Type() Type { return StringType }

func (v StringValue) String() string {
	return string(v)
}

func (v StringValue) Equals(other Value) bool {
	ov, ok := other.(StringValue)
	return ok && v == ov
}

// ArrayValue is a fixed-size ordered sequence. Arrays are owned by the
// slot, element or field that stores them; storing one copies it.
type ArrayValue struct {
	elems []Value
}

// NewArray builds an array holding elems.
func NewArray(elems ...Value) *ArrayValue {
	return &ArrayValue{elems: elems}
}

func (v *ArrayValue) Type() Type { return ArrType }

// Len returns the number of elements.
func (v *ArrayValue) Len() int {
	return len(v.elems)
}

// Index returns element i.
func (v *ArrayValue) Index(i int) Value {
	return v.elems[i]
}

func (v *ArrayValue) String() string {
	parts := make([]string, len(v.elems))
	for i, e := range v.elems {
		parts[i] = repr(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v *ArrayValue) Equals(other Value) bool {
	ov, ok := other.(*ArrayValue)
	if !ok || len(v.elems) != len(ov.elems) {
		return false
	}
	for i, e := range v.elems {
		if !e.Equals(ov.elems[i]) {
			return false
		}
	}
	return true
}

// StructValue maps field names to values. Field order is not part of a
// struct's identity; wherever an order is observable it is by name.
type StructValue struct {
	fields map[string]Value
}

// NewStruct builds a struct from a field map, which it takes ownership of.
func NewStruct(fields map[string]Value) *StructValue {
	if fields == nil {
		fields = map[string]Value{}
	}
	return &StructValue{fields: fields}
}

func (v *StructValue) Type() Type { return StructType }

// Field returns the named field and whether it is present.
func (v *StructValue) Field(name string) (Value, bool) {
	f, ok := v.fields[name]
	return f, ok
}

// Names returns the field names in stored (sorted) order.
func (v *StructValue) Names() []string {
	names := make([]string, 0, len(v.fields))
	for name := range v.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v *StructValue) String() string {
	names := v.Names()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + repr(v.fields[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v *StructValue) Equals(other Value) bool {
	ov, ok := other.(*StructValue)
	if !ok || len(v.fields) != len(ov.fields) {
		return false
	}
	for name, f := range v.fields {
		of, prs := ov.fields[name]
		if !prs || !f.Equals(of) {
			return false
		}
	}
	return true
}

// repr renders a value nested inside a container, quoting strings.
func repr(v Value) string {
	if s, ok := v.(StringValue); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// deepCopy returns v with every container it holds duplicated, so that
// the copy shares no storage with v. References are handles and are
// returned as-is.
func deepCopy(v Value) Value {
	switch c := v.(type) {
	case *ArrayValue:
		elems := make([]Value, len(c.elems))
		for i, e := range c.elems {
			elems[i] = deepCopy(e)
		}
		return &ArrayValue{elems: elems}
	case *StructValue:
		fields := make(map[string]Value, len(c.fields))
		for name, f := range c.fields {
			fields[name] = deepCopy(f)
		}
		return &StructValue{fields: fields}
	default:
		return v
	}
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case IntValue, FloatValue, BoolValue:
		return true
	default:
		return false
	}
}

// toInt coerces a dereferenced value to an integer the way conditions,
// indices, counts and int() do.
func toInt(v Value) (int64, error) {
	switch n := v.(type) {
	case IntValue:
		return int64(n), nil
	case BoolValue:
		if n {
			return 1, nil
		}
		return 0, nil
	case FloatValue:
		return int64(n), nil
	case StringValue:
		i, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		if err != nil {
			return 0, errorf(ErrType, "cannot convert string %s to an integer", strconv.Quote(string(n)))
		}
		return i, nil
	default:
		return 0, errorf(ErrType, "cannot convert %s value %s to an integer", v.Type(), v)
	}
}

func toFloat(v Value) float64 {
	switch n := v.(type) {
	case IntValue:
		return float64(n)
	case FloatValue:
		return float64(n)
	case BoolValue:
		if n {
			return 1
		}
	}
	return 0
}

func truthy(v Value) (bool, error) {
	n, err := toInt(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}
