package ycc

import (
	"fmt"
)

// maxAllocLen bounds the elements of an array and the bytes of a string
// that a single operation may build.
const maxAllocLen = 1 << 24

// LoadEnvironment registers all built-in functions.
func (r *FunctionRegistry) LoadEnvironment() {
	// console
	r.loadFunc("println", 1, false, yccPrintln)
	r.loadFunc("input", 0, false, yccInput)

	// introspection
	r.loadFunc("type", 1, true, yccType)
	r.loadFunc("len", 1, false, yccLen)

	// conversions
	r.loadFunc("int", 1, false, yccInt)
	r.loadFunc("trans", 1, false, yccTrans)

	// sequences
	r.loadFunc("range", 2, false, yccRange)
	r.loadFunc("range", 3, false, yccRange)
}

func yccPrintln(f *frame, in []Value) (Value, error) {
	if _, err := fmt.Fprintln(f.run.out, in[0].String()); err != nil {
		return nil, errorf(ErrSystem, "println() could not write output: %s", err)
	}
	return zeroValue, nil
}

func yccInput(f *frame, in []Value) (Value, error) {
	if !f.run.in.Scan() {
		if err := f.run.in.Err(); err != nil {
			return nil, errorf(ErrSystem, "input() could not read input: %s", err)
		}
		return StringValue(""), nil
	}
	return StringValue(f.run.in.Text()), nil
}

func yccType(f *frame, in []Value) (Value, error) {
	if r, ok := in[0].(RefValue); ok {
		return StringValue(fmt.Sprintf("Ref(%s@%s)", r.Name(), r.Origin())), nil
	}
	return StringValue(in[0].Type().String()), nil
}

func yccLen(f *frame, in []Value) (Value, error) {
	switch v := in[0].(type) {
	case *ArrayValue:
		return IntValue(len(v.elems)), nil
	case StringValue:
		return IntValue(len(v)), nil
	case *StructValue:
		return IntValue(len(v.fields)), nil
	default:
		return zeroValue, nil
	}
}

func yccInt(f *frame, in []Value) (Value, error) {
	n, err := toInt(in[0])
	if err != nil {
		return nil, err
	}
	return IntValue(n), nil
}

func yccTrans(f *frame, in []Value) (Value, error) {
	s, ok := in[0].(*StructValue)
	if !ok {
		return nil, errorf(ErrType, "trans() takes a struct, but got %s value %s", in[0].Type(), in[0])
	}

	names := s.Names()
	elems := make([]Value, len(names))
	for i, name := range names {
		elems[i] = deepCopy(s.fields[name])
	}
	return NewArray(elems...), nil
}

func yccRange(f *frame, in []Value) (Value, error) {
	bounds := [3]int64{0, 0, 1}
	for i, v := range in {
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		bounds[i] = n
	}
	lo, hi, step := bounds[0], bounds[1], bounds[2]
	if step == 0 {
		return nil, errorf(ErrRange, "range() step cannot be 0")
	}

	// unsigned, as hi - lo need not fit in an int64
	var span, stride uint64
	switch {
	case step > 0 && hi > lo:
		span, stride = uint64(hi)-uint64(lo), uint64(step)
	case step < 0 && hi < lo:
		span, stride = uint64(lo)-uint64(hi), -uint64(step)
	}
	var count uint64
	if span > 0 {
		count = (span-1)/stride + 1
	}
	if count > maxAllocLen {
		return nil, errorf(ErrRange, "range() of %d elements is too large", count)
	}

	elems := make([]Value, count)
	for i := range elems {
		elems[i] = IntValue(lo + int64(i)*step)
	}
	return NewArray(elems...), nil
}
