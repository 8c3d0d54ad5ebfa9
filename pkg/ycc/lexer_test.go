package ycc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lexed struct {
	Kind Kind
	Text string
}

func lex(t *testing.T, src string) []lexed {
	t.Helper()
	tokens, err := Tokenize("test", src, false)
	require.NoError(t, err)
	out := make([]lexed, len(tokens))
	for i, tok := range tokens {
		out[i] = lexed{tok.Kind(), tok.Text()}
	}
	return out
}

func TestTokenize(t *testing.T) {
	got := lex(t, `a = arr 3; x1 = "s\"q"; if (a[0] >= 1.5e-3) { b = -2; }`)
	want := []lexed{
		{Identifier, "a"}, {Operator, "="}, {Operator, "arr"}, {Literal, "3"}, {Bracket, ";"},
		{Identifier, "x1"}, {Operator, "="}, {Literal, `"s\"q"`}, {Bracket, ";"},
		{Keyword, "if"}, {Bracket, "("}, {Identifier, "a"}, {Bracket, "["}, {Literal, "0"}, {Bracket, "]"},
		{Operator, ">="}, {Literal, "1.5e-3"}, {Bracket, ")"}, {Bracket, "{"},
		{Identifier, "b"}, {Operator, "="}, {Operator, "-"}, {Literal, "2"}, {Bracket, ";"},
		{Bracket, "}"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeWordBoundaries(t *testing.T) {
	tests := []struct {
		src  string
		want []lexed
	}{
		{"5-3", []lexed{{Literal, "5"}, {Operator, "-"}, {Literal, "3"}}},
		{"array", []lexed{{Identifier, "array"}}},
		{"letter", []lexed{{Identifier, "letter"}}},
		{"iffy", []lexed{{Identifier, "iffy"}}},
		{"foreach for", []lexed{{Keyword, "foreach"}, {Keyword, "for"}}},
		{"let P", []lexed{{Operator, "let"}, {Identifier, "P"}}},
		{"true falsey", []lexed{{Literal, "true"}, {Identifier, "falsey"}}},
		{"a&&&b", []lexed{{Identifier, "a"}, {Operator, "&&"}, {Operator, "&"}, {Identifier, "b"}}},
		{"p.x", []lexed{{Identifier, "p"}, {Operator, "."}, {Identifier, "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, lex(t, tt.src)); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("pos", "def f() {\n  return 1;\n}", false)
	require.NoError(t, err)
	require.Len(t, tokens, 9)

	ret := tokens[5]
	assert.Equal(t, "return", ret.Text())
	assert.Equal(t, "pos:2:3", ret.position.String())
}

func TestTokenizeErrors(t *testing.T) {
	for _, src := range []string{"a # b", `"open`, "x = 1 @ 2", `"trailing\"`} {
		_, err := Tokenize("bad", src, false)
		if assert.Error(t, err, src) {
			assert.Equal(t, ErrLex, ReasonOf(err), src)
		}
	}
}

func TestParseConstant(t *testing.T) {
	tests := []struct {
		text string
		want Value
	}{
		{"42", IntValue(42)},
		{"007", IntValue(7)},
		{"2.5", FloatValue(2.5)},
		{"1e3", FloatValue(1000)},
		{"true", BoolValue(true)},
		{"false", BoolValue(false)},
		{`"a\nb"`, StringValue("a\nb")},
		{`"q\"q"`, StringValue(`q"q`)},
		{`""`, StringValue("")},
		{"12abc", IntValue(0)},
	}
	for _, tt := range tests {
		got := parseConstant(Tok{kind: Literal, text: tt.text})
		assert.Equal(t, tt.want, got, tt.text)
	}
}
