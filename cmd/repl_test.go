package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superloach/ycc/pkg/ycc"
)

func TestBraceDepth(t *testing.T) {
	tests := map[string]int{
		"":                           0,
		"def f() {":                  1,
		"def f() { if (x) {":         2,
		"def f() { return 1; }":      0,
		`def f() { s = "{"; `:        1,
		`def f() { s = "\"}"; }`:     0,
		"}":                          -1,
		"struct P {\n  x = 1;\n}\n": 0,
	}
	for src, want := range tests {
		assert.Equal(t, want, braceDepth(src), src)
	}
}

func TestIsDeclaration(t *testing.T) {
	assert.True(t, isDeclaration("def f() { return 1; }"))
	assert.True(t, isDeclaration("  struct P { x = 1; }"))
	assert.True(t, isDeclaration("def\tf() {}"))
	assert.False(t, isDeclaration("define = 3"))
	assert.False(t, isDeclaration("structure + 1"))
	assert.False(t, isDeclaration("f(1)"))
}

func TestEvalInput(t *testing.T) {
	eng := &ycc.Engine{Stdout: io.Discard, Stdin: strings.NewReader("")}
	ctx := eng.CreateContext()

	v, err := evalInput(ctx, "def double(n) { return n * 2; }")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = evalInput(ctx, "double(21)")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	_, err = evalInput(ctx, "def broken( {")
	assert.Equal(t, ycc.ErrParse, ycc.ReasonOf(err))

	v, err = evalInput(ctx, "double(2)")
	require.NoError(t, err)
	assert.Equal(t, "4", v.String())
}
