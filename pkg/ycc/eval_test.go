package ycc_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/superloach/ycc/pkg/ycc"
)

func quietEngine() *ycc.Engine {
	return &ycc.Engine{Stdout: io.Discard, Stdin: strings.NewReader("")}
}

func TestFoldedMatchesEvaluated(t *testing.T) {
	operands := []string{"1", "2.5", "0", `"ab"`, "true"}
	ops := []string{"+", "-", "*", "/", "==", "!=", "<", ">", "<=", ">=", "&&", "||"}

	for _, op := range ops {
		for _, l := range operands {
			for _, r := range operands {
				folded := fmt.Sprintf("def main() { return %s %s %s; }", l, op, r)
				evaluated := fmt.Sprintf("def main() { a = %s; b = %s; return a %s b; }", l, r, op)

				fv, ferr := runSource(quietEngine(), folded)
				ev, eerr := runSource(quietEngine(), evaluated)

				if eerr != nil {
					if assert.Error(t, ferr, "%s %s %s", l, op, r) {
						assert.Equal(t, ycc.ReasonOf(eerr), ycc.ReasonOf(ferr), "%s %s %s", l, op, r)
					}
					continue
				}
				if assert.NoError(t, ferr, "%s %s %s", l, op, r) {
					assert.Equal(t, ev.String(), fv.String(), "%s %s %s", l, op, r)
					assert.Equal(t, ev.Type(), fv.Type(), "%s %s %s", l, op, r)
				}
			}
		}
	}
}

func TestDumpCountsExecutions(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("dump", `
def main() {
	n = 0;
	while (n < 3) { n = n + 1; }
	return n;
}
`))
	prog, err := ctx.Prepare()
	require.NoError(t, err)

	_, err = prog.Run()
	require.NoError(t, err)

	want := strings.Join([]string{
		"[ 1 ] def main()",
		"  [ 1 ] n = 0;",
		"  [ 1 ] while (n < 3)",
		"    [ 3 ] n = (n + 1);",
		"  [ 1 ] return n;",
		"",
	}, "\n")
	var b bytes.Buffer
	require.NoError(t, prog.Dump(&b))
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("Dump() mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpBeforeRun(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("dump", "def main() { return 7; }"))
	prog, err := ctx.Prepare()
	require.NoError(t, err)

	assert.Equal(t, "[ 0 ] def main()\n  [ 0 ] return 7;\n", prog.String())

	_, err = prog.Run()
	require.NoError(t, err)
	assert.Equal(t, "[ 1 ] def main()\n  [ 1 ] return 7;\n", prog.String())
}

func TestProgramRunsConcurrently(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("fib", `
def fib(n) { if (n < 2) { return n; } return fib(n - 1) + fib(n - 2); }
def main() {
	out = arr 10;
	foreach (i : range(0, 10)) { out[i] = fib(i); }
	return out;
}
`))
	prog, err := ctx.Prepare()
	require.NoError(t, err)

	results := make([]string, 32)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			v, err := prog.Run()
			if err != nil {
				return err
			}
			results[i] = v.String()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, got := range results {
		assert.Equal(t, "[0, 1, 1, 2, 3, 5, 8, 13, 21, 34]", got)
	}
}

func TestProgramCall(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("lib", "def add(a, b) { return a + b; }"))
	prog, err := ctx.Prepare()
	require.NoError(t, err)

	v, err := prog.Call("add", ycc.IntValue(2), ycc.IntValue(3))
	require.NoError(t, err)
	assert.Equal(t, ycc.IntValue(5), v)

	_, err = prog.Call("add", ycc.IntValue(2))
	assert.Equal(t, ycc.ErrName, ycc.ReasonOf(err))
}

func TestProgramIgnoresLaterLoads(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("a", "def main() { return 1; }"))
	prog, err := ctx.Prepare()
	require.NoError(t, err)

	require.NoError(t, ctx.LoadString("b", "def main() { return 2; }"))

	v, err := prog.Run()
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())

	next, err := ctx.Prepare()
	require.NoError(t, err)
	v, err = next.Run()
	require.NoError(t, err)
	assert.Equal(t, "2", v.String())
}

func TestProgramKeepsResolvedCalls(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("a", `
def f() { return 1; }
def main() { return f(); }
`))
	first, err := ctx.Prepare()
	require.NoError(t, err)

	require.NoError(t, ctx.LoadString("b", "def f() { return 2; }"))
	second, err := ctx.Prepare()
	require.NoError(t, err)

	v, err := first.Run()
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())

	v, err = second.Run()
	require.NoError(t, err)
	assert.Equal(t, "2", v.String())
}

func TestProgramsCountSeparately(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("count", "def main() { return 7; }"))
	first, err := ctx.Prepare()
	require.NoError(t, err)
	second, err := ctx.Prepare()
	require.NoError(t, err)

	_, err = first.Run()
	require.NoError(t, err)
	assert.Equal(t, "[ 1 ] def main()\n  [ 1 ] return 7;\n", first.String())
	assert.Equal(t, "[ 0 ] def main()\n  [ 0 ] return 7;\n", second.String())
}

func TestEvalSkipsUnreachedFunctions(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("<repl>", "def f() { return g(); }"))

	v, err := ctx.Eval("1 + 1")
	require.NoError(t, err)
	assert.Equal(t, "2", v.String())

	_, err = ctx.Eval("f()")
	assert.Equal(t, ycc.ErrName, ycc.ReasonOf(err))

	_, err = ctx.Prepare()
	assert.Equal(t, ycc.ErrName, ycc.ReasonOf(err))

	require.NoError(t, ctx.LoadString("<repl>", "def g() { return 5; }"))
	v, err = ctx.Eval("f() * 2")
	require.NoError(t, err)
	assert.Equal(t, "10", v.String())
}

func TestContextEval(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("lib", "def sq(n) { return n * n; }"))

	v, err := ctx.Eval("x = 3; sq(x) + 1")
	require.NoError(t, err)
	assert.Equal(t, "10", v.String())

	v, err = ctx.Eval(`s = "";  foreach (c : range(0, 3)) { s = s + c; } s`)
	require.NoError(t, err)
	assert.Equal(t, "012", v.String())

	_, err = ctx.Eval("missing(1)")
	assert.Equal(t, ycc.ErrName, ycc.ReasonOf(err))
}

func TestFailedLoadLeavesContextUnchanged(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("ok", "def main() { return 1; }"))

	err := ctx.LoadString("broken", `
struct S { x = 1; }
def helper() { return 2; }
def main() { return ( ; }
`)
	require.Error(t, err)
	assert.Equal(t, ycc.ErrParse, ycc.ReasonOf(err))

	assert.False(t, ctx.Functions().Has("helper", 0))
	assert.False(t, ctx.Structs().Has("S"))
	assert.Equal(t, "ok", ctx.File)

	require.Error(t, ctx.LoadString("lexfail", "def main() { return 1 # 2; }"))
	assert.Equal(t, "ok", ctx.File)

	prog, err := ctx.Prepare()
	require.NoError(t, err)
	v, err := prog.Run()
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())
}

func TestStructRegistryNames(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("structs", `
struct Point { x = 0; y = 0; }
struct Point3 extends Point { z = 0; }
struct Named { name = "anon"; at = struct Point; }
`))

	if diff := cmp.Diff([]string{"Named", "Point", "Point3"}, ctx.Structs().Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	p3, err := ctx.Structs().DefaultValue("Point3")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"x", "y", "z"}, p3.Names()); diff != "" {
		t.Errorf("Point3 fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, `{at: {x: 0, y: 0}, name: "anon"}`, mustDefault(t, ctx, "Named").String())
}

func mustDefault(t *testing.T, ctx *ycc.Context, name string) *ycc.StructValue {
	t.Helper()
	v, err := ctx.Structs().DefaultValue(name)
	require.NoError(t, err)
	return v
}

func TestDefaultValuesAreIndependent(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("structs", "struct P { xs = 1; }"))

	a := mustDefault(t, ctx, "P")
	b := mustDefault(t, ctx, "P")
	assert.NotSame(t, a, b)
	assert.True(t, a.Equals(b))
}

func TestArityOverloading(t *testing.T) {
	ctx := quietEngine().CreateContext()
	require.NoError(t, ctx.LoadString("overloads", `
def f() { return "none"; }
def f(a) { return "one"; }
def f(a, b) { return "two"; }
def main() { return f() + f(1) + f(1, 2); }
`))

	fns := ctx.Functions()
	assert.True(t, fns.Has("f", 0))
	assert.True(t, fns.Has("f", 2))
	assert.False(t, fns.Has("f", 3))

	sigs := fns.Signatures()
	for _, want := range []string{"f/0", "f/1", "f/2", "main/0", "println/1", "range/2", "range/3"} {
		assert.Contains(t, sigs, want)
	}

	v, err := runSource(quietEngine(), `
def f() { return "none"; }
def f(a) { return "one"; }
def f(a, b) { return "two"; }
def main() { return f() + f(1) + f(1, 2); }
`)
	require.NoError(t, err)
	assert.Equal(t, "noneonetwo", v.String())
}

func TestErrorsCarryPositions(t *testing.T) {
	_, err := runSource(quietEngine(), "def main() {\n\treturn 1 / 0;\n}\n")
	require.Error(t, err)
	assert.Equal(t, ycc.ErrRange, ycc.ReasonOf(err))
	assert.Contains(t, err.Error(), "scenario:2:")
}

func TestExecReadsFromReader(t *testing.T) {
	var out bytes.Buffer
	eng := &ycc.Engine{Stdout: &out, Stdin: strings.NewReader("3 4")}
	ctx := eng.CreateContext()
	ctx.File = "stdin"

	v, err := ctx.Exec(strings.NewReader(`
def main() {
	a = int(input());
	b = int(input());
	println(a * b);
	return a + b;
}
`))
	require.NoError(t, err)
	assert.Equal(t, "7", v.String())
	assert.Equal(t, "12\n", out.String())
}
