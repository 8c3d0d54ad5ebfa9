package ycc

import (
	"strings"
)

// binaryOp computes an operator over two dereferenced operands.
type binaryOp func(left, right Value) (Value, error)

var binaryOps = map[string]binaryOp{
	"+":  opAdd,
	"-":  opSub,
	"*":  opMul,
	"/":  opDiv,
	"==": opEqual,
	"!=": opNotEqual,
	"<":  opLess,
	">":  opGreater,
	"<=": opLessOrEqual,
	">=": opGreaterOrEqual,
	"&&": opAnd,
	"||": opOr,
}

func unsupported(verb string, left, right Value) error {
	return errorf(ErrType, "values %s (%s) and %s (%s) do not support %s",
		repr(left), left.Type(), repr(right), right.Type(), verb)
}

// numeric applies an arithmetic operator with int operands staying
// integral and any float operand widening both sides to float.
func numeric(left, right Value, ints func(a, b int64) (Value, error), floats func(a, b float64) Value) (Value, error) {
	_, lf := left.(FloatValue)
	_, rf := right.(FloatValue)
	if lf || rf {
		return floats(toFloat(left), toFloat(right)), nil
	}
	a, _ := toInt(left)
	b, _ := toInt(right)
	return ints(a, b)
}

func opAdd(left, right Value) (Value, error) {
	ls, lstr := left.(StringValue)
	rs, rstr := right.(StringValue)
	switch {
	case lstr && rstr:
		return ls + rs, nil
	case lstr && isNumeric(right):
		return ls + StringValue(right.String()), nil
	case rstr && isNumeric(left):
		return StringValue(left.String()) + rs, nil
	case isNumeric(left) && isNumeric(right):
		return numeric(left, right,
			func(a, b int64) (Value, error) { return IntValue(a + b), nil },
			func(a, b float64) Value { return FloatValue(a + b) })
	}
	return nil, unsupported("addition", left, right)
}

func opSub(left, right Value) (Value, error) {
	if isNumeric(left) && isNumeric(right) {
		return numeric(left, right,
			func(a, b int64) (Value, error) { return IntValue(a - b), nil },
			func(a, b float64) Value { return FloatValue(a - b) })
	}
	return nil, unsupported("subtraction", left, right)
}

func repeat(s StringValue, count Value) (Value, error) {
	n, _ := toInt(count)
	if n <= 0 || len(s) == 0 {
		return StringValue(""), nil
	}
	if n > maxAllocLen/int64(len(s)) {
		return nil, errorf(ErrRange, "repeating a string of %d bytes %d times exceeds the limit of %d bytes",
			len(s), n, maxAllocLen)
	}
	return StringValue(strings.Repeat(string(s), int(n))), nil
}

func opMul(left, right Value) (Value, error) {
	ls, lstr := left.(StringValue)
	rs, rstr := right.(StringValue)
	switch {
	case lstr && isNumeric(right):
		return repeat(ls, right)
	case rstr && isNumeric(left):
		return repeat(rs, left)
	case isNumeric(left) && isNumeric(right):
		return numeric(left, right,
			func(a, b int64) (Value, error) { return IntValue(a * b), nil },
			func(a, b float64) Value { return FloatValue(a * b) })
	}
	return nil, unsupported("multiplication", left, right)
}

func opDiv(left, right Value) (Value, error) {
	if isNumeric(left) && isNumeric(right) {
		return numeric(left, right,
			func(a, b int64) (Value, error) {
				if b == 0 {
					return nil, errorf(ErrRange, "division by zero")
				}
				return IntValue(a / b), nil
			},
			func(a, b float64) Value { return FloatValue(a / b) })
	}
	return nil, unsupported("division", left, right)
}

// compare orders two dereferenced values. Numbers compare by value,
// values of different types by their type tag, strings lexicographically.
func compare(left, right Value) (int, error) {
	if isNumeric(left) && isNumeric(right) {
		_, lf := left.(FloatValue)
		_, rf := right.(FloatValue)
		if lf || rf {
			a, b := toFloat(left), toFloat(right)
			switch {
			case a < b:
				return -1, nil
			case a > b:
				return 1, nil
			}
			return 0, nil
		}
		a, _ := toInt(left)
		b, _ := toInt(right)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil
	}

	if left.Type() != right.Type() {
		if left.Type() < right.Type() {
			return -1, nil
		}
		return 1, nil
	}

	if ls, ok := left.(StringValue); ok {
		return strings.Compare(string(ls), string(right.(StringValue))), nil
	}
	return 0, unsupported("ordering", left, right)
}

func equal(left, right Value) (bool, error) {
	switch left.(type) {
	case *ArrayValue, *StructValue:
		if left.Type() == right.Type() {
			return left.Equals(right), nil
		}
	}
	c, err := compare(left, right)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

func opEqual(left, right Value) (Value, error) {
	eq, err := equal(left, right)
	return BoolValue(eq), err
}

func opNotEqual(left, right Value) (Value, error) {
	eq, err := equal(left, right)
	return BoolValue(!eq), err
}

func ordered(left, right Value, accept func(int) bool) (Value, error) {
	c, err := compare(left, right)
	if err != nil {
		return nil, err
	}
	return BoolValue(accept(c)), nil
}

func opLess(left, right Value) (Value, error) {
	return ordered(left, right, func(c int) bool { return c < 0 })
}

func opGreater(left, right Value) (Value, error) {
	return ordered(left, right, func(c int) bool { return c > 0 })
}

func opLessOrEqual(left, right Value) (Value, error) {
	return ordered(left, right, func(c int) bool { return c <= 0 })
}

func opGreaterOrEqual(left, right Value) (Value, error) {
	return ordered(left, right, func(c int) bool { return c >= 0 })
}

func logical(left, right Value, combine func(a, b bool) bool) (Value, error) {
	a, err := truthy(left)
	if err != nil {
		return nil, err
	}
	b, err := truthy(right)
	if err != nil {
		return nil, err
	}
	return BoolValue(combine(a, b)), nil
}

func opAnd(left, right Value) (Value, error) {
	return logical(left, right, func(a, b bool) bool { return a && b })
}

func opOr(left, right Value) (Value, error) {
	return logical(left, right, func(a, b bool) bool { return a || b })
}
