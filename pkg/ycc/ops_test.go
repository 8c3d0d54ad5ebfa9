package ycc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryOps(t *testing.T) {
	tests := []struct {
		op          string
		left, right Value
		want        Value
	}{
		{"+", IntValue(2), IntValue(3), IntValue(5)},
		{"+", IntValue(2), FloatValue(0.5), FloatValue(2.5)},
		{"+", BoolValue(true), IntValue(1), IntValue(2)},
		{"+", StringValue("a"), StringValue("b"), StringValue("ab")},
		{"+", StringValue("x"), FloatValue(1), StringValue("x1.0")},
		{"+", IntValue(7), StringValue("!"), StringValue("7!")},
		{"-", FloatValue(1), IntValue(3), FloatValue(-2)},
		{"*", IntValue(4), IntValue(-3), IntValue(-12)},
		{"*", IntValue(2), StringValue("ha"), StringValue("haha")},
		{"*", StringValue("ha"), FloatValue(2.9), StringValue("haha")},
		{"/", IntValue(-7), IntValue(2), IntValue(-3)},
		{"/", IntValue(1), FloatValue(4), FloatValue(0.25)},
		{"==", IntValue(1), FloatValue(1), BoolValue(true)},
		{"==", IntValue(1), BoolValue(true), BoolValue(true)},
		{"==", StringValue("1"), IntValue(1), BoolValue(false)},
		{"==", NewArray(IntValue(1)), NewArray(IntValue(1)), BoolValue(true)},
		{"!=", NewArray(IntValue(1)), NewArray(IntValue(2)), BoolValue(true)},
		{"<", StringValue("abc"), StringValue("abd"), BoolValue(true)},
		{"<", IntValue(100), StringValue("a"), BoolValue(true)},
		{">=", FloatValue(2), IntValue(2), BoolValue(true)},
		{"<=", IntValue(3), IntValue(2), BoolValue(false)},
		{"&&", IntValue(2), FloatValue(0.5), BoolValue(false)},
		{"||", IntValue(0), StringValue(" 3 "), BoolValue(true)},
	}
	for _, tt := range tests {
		got, err := binaryOps[tt.op](tt.left, tt.right)
		if assert.NoError(t, err, "%s %s %s", repr(tt.left), tt.op, repr(tt.right)) {
			assert.Equal(t, tt.want, got, "%s %s %s", repr(tt.left), tt.op, repr(tt.right))
		}
	}
}

func TestBinaryOpErrors(t *testing.T) {
	tests := []struct {
		op          string
		left, right Value
		reason      int
	}{
		{"-", StringValue("a"), IntValue(1), ErrType},
		{"*", StringValue("a"), StringValue("b"), ErrType},
		{"/", IntValue(1), IntValue(0), ErrRange},
		{"/", StringValue("a"), IntValue(1), ErrType},
		{"+", NewArray(), IntValue(1), ErrType},
		{"<", NewArray(), NewArray(), ErrType},
		{"<", NewStruct(nil), NewStruct(nil), ErrType},
		{"&&", StringValue("x"), IntValue(1), ErrType},
		{"*", StringValue("ab"), IntValue(1 << 62), ErrRange},
		{"*", IntValue(maxAllocLen), StringValue("ab"), ErrRange},
	}
	for _, tt := range tests {
		_, err := binaryOps[tt.op](tt.left, tt.right)
		if assert.Error(t, err, "%s %s %s", repr(tt.left), tt.op, repr(tt.right)) {
			assert.Equal(t, tt.reason, ReasonOf(err), err.Error())
		}
	}
}

func TestFloatDivisionByZero(t *testing.T) {
	v, err := opDiv(IntValue(1), FloatValue(0))
	require.NoError(t, err)
	assert.Equal(t, "+Inf", v.String())
}

func TestTruthy(t *testing.T) {
	for v, want := range map[Value]bool{
		IntValue(0):       false,
		IntValue(-1):      true,
		FloatValue(0.9):   false,
		BoolValue(true):   true,
		StringValue("0"):  false,
		StringValue(" 2"): true,
	} {
		got, err := truthy(v)
		require.NoError(t, err, repr(v))
		assert.Equal(t, want, got, repr(v))
	}

	_, err := truthy(NewArray())
	assert.Equal(t, ErrType, ReasonOf(err))
}
