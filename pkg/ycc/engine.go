package ycc

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// DefaultMaxDepth is the call depth limit of an Engine that sets none.
const DefaultMaxDepth = 10000

// DebugConfig defines any debugging flags referenced at runtime
type DebugConfig struct {
	Lex   bool
	Parse bool
	Dump  bool
}

// Engine holds the configuration shared by every Context created from it.
type Engine struct {
	// If FatalError is true, Context.LogErr halts the process
	FatalError bool
	Debug      DebugConfig

	// MaxDepth bounds the number of nested function calls; zero means
	// DefaultMaxDepth.
	MaxDepth int

	// Stdout and Stdin back println() and input(), defaulting to the
	// process's standard streams.
	Stdout io.Writer
	Stdin  io.Reader
}

// CreateContext creates and initializes a new Context tied to a given Engine.
func (eng *Engine) CreateContext() *Context {
	return &Context{
		Engine:    eng,
		functions: NewFunctionRegistry(),
		structs:   NewStructRegistry(),
	}
}

// Context accumulates the declarations of one program, loaded from one or
// more source blocks, until it is prepared into a Program.
type Context struct {
	Engine *Engine
	// name of the most recently loaded source block, if any
	File string

	functions *FunctionRegistry
	structs   *StructRegistry
	funcs     []*FuncNode
}

// Functions returns the context's function registry.
func (ctx *Context) Functions() *FunctionRegistry {
	return ctx.functions
}

// Structs returns the context's struct registry.
func (ctx *Context) Structs() *StructRegistry {
	return ctx.structs
}

// LogErr logs an Err (interpreter error) according to the configurations
// specified in the Context's Engine.
func (ctx *Context) LogErr(e Err) {
	msg := e.message
	if ctx.File != "" {
		msg = e.message + " in " + ctx.File
	}

	if ctx.Engine.FatalError {
		LogErr(e.reason, msg)
	} else {
		LogSafeErr(e.reason, msg)
	}
}

// Load reads a block of source and registers its declarations.
func (ctx *Context) Load(name string, input io.Reader) error {
	src, err := io.ReadAll(input)
	if err != nil {
		return errorf(ErrSystem, "could not read %s: %s", name, err)
	}
	return ctx.LoadString(name, string(src))
}

// LoadString registers the declarations in source. A block that fails to
// lex or parse leaves the context as it was.
func (ctx *Context) LoadString(name, source string) error {
	// trailing padding keeps every token clear of the end of the buffer
	tokens, err := Tokenize(name, source+"\n", ctx.Engine.Debug.Lex)
	if err != nil {
		return err
	}

	functions, structs := ctx.functions.clone(false), ctx.structs.clone(false)
	funcs, err := Parse(tokens, functions, structs, ctx.Engine.Debug.Parse)
	if err != nil {
		return err
	}

	ctx.File = name
	ctx.functions, ctx.structs = functions, structs
	ctx.funcs = append(ctx.funcs, funcs...)
	return nil
}

// preparer carries the registries names are resolved against, and the
// functions of the Program under construction that calls have reached
// but whose bodies are not prepared yet.
type preparer struct {
	functions *FunctionRegistry
	structs   *StructRegistry

	sources  map[*FuncNode]*FuncNode
	reached  map[*FuncNode]bool
	queue    []*FuncNode
	prepared []*FuncNode
}

// reach schedules fn, a function of the Program under construction, for
// preparation.
func (p *preparer) reach(fn *FuncNode) {
	if p.reached[fn] {
		return
	}
	p.reached[fn] = true
	p.queue = append(p.queue, fn)
}

// drain prepares the body of every reached function, including those
// reached while preparing others.
func (p *preparer) drain() error {
	for len(p.queue) > 0 {
		fn := p.queue[0]
		p.queue = p.queue[1:]

		body, err := p.sources[fn].body.prepareBlock(p)
		if err != nil {
			return err
		}
		fn.body = body
		p.prepared = append(p.prepared, fn)
	}
	return nil
}

// live returns the loaded functions still registered, dropping those
// replaced by a later declaration of the same signature.
func (ctx *Context) live() []*FuncNode {
	funcs := make([]*FuncNode, 0, len(ctx.funcs))
	for _, fn := range ctx.funcs {
		if entry, ok := ctx.functions.entries[signature{fn.name, len(fn.params)}]; ok && entry.node == fn {
			funcs = append(funcs, fn)
		}
	}
	return funcs
}

// program starts a Program over frozen copies of the registries. Every
// user function gets a node of its own, without a body until the
// preparer reaches it.
func (ctx *Context) program() (*Program, *preparer) {
	functions := ctx.functions.clone(true)
	p := &preparer{
		functions: functions,
		structs:   ctx.structs.clone(true),
		sources:   map[*FuncNode]*FuncNode{},
		reached:   map[*FuncNode]bool{},
	}
	for sig, fn := range functions.entries {
		if fn.node == nil {
			continue
		}
		own := &FuncNode{name: fn.node.name, params: fn.node.params, position: fn.node.position}
		p.sources[own] = fn.node
		functions.entries[sig] = &function{signature: sig, node: own}
	}

	return &Program{
		engine:    ctx.Engine,
		functions: functions,
		structs:   p.structs,
	}, p
}

// Prepare resolves every call and struct name in the loaded functions and
// folds constant subexpressions, producing a Program that owns its copy
// of every function and registry. Loading more source afterwards does
// not change the Program.
func (ctx *Context) Prepare() (*Program, error) {
	prog, p := ctx.program()

	funcs := ctx.live()
	for i, fn := range funcs {
		own := prog.functions.entries[signature{fn.name, len(fn.params)}].node
		p.reach(own)
		funcs[i] = own
	}
	if err := p.drain(); err != nil {
		return nil, err
	}

	prog.funcs = funcs
	return prog, nil
}

// Exec loads a program from input, prepares it, and runs its main
// function. This is the main way to invoke Ycc programs from Go.
func (ctx *Context) Exec(input io.Reader) (Value, error) {
	if err := ctx.Load(ctx.File, input); err != nil {
		return nil, err
	}
	prog, err := ctx.Prepare()
	if err != nil {
		return nil, err
	}
	return prog.Run()
}

// Eval runs a bare statement sequence against the declarations loaded so
// far, as the body of a function of no parameters. A trailing expression
// with no ";" gives the result. Only the functions the statements can
// reach are prepared, so a declaration that cannot resolve yet does not
// get in the way of unrelated input.
func (ctx *Context) Eval(source string) (Value, error) {
	tokens, err := Tokenize("<eval>", source+"\n", ctx.Engine.Debug.Lex)
	if err != nil {
		return nil, err
	}
	ps := &parser{
		TokenStream: newTokenStream(tokens),
		functions:   ctx.functions,
		structs:     ctx.structs,
		debug:       ctx.Engine.Debug.Parse,
	}
	script, err := ps.parseScript()
	if err != nil {
		return nil, err
	}

	prog, p := ctx.program()
	body, err := script.prepareBlock(p)
	if err != nil {
		return nil, err
	}
	if err := p.drain(); err != nil {
		return nil, err
	}

	fn := &FuncNode{name: "<eval>", params: []string{}, body: body}
	prog.funcs = append(p.prepared, fn)
	return prog.call(&function{signature: signature{fn.name, 0}, node: fn}, nil)
}

// Program is a prepared, immutable set of declarations. A Program may run
// any number of times, concurrently; every run has its own call stack,
// return slot and input scanner.
type Program struct {
	engine    *Engine
	functions *FunctionRegistry
	structs   *StructRegistry
	funcs     []*FuncNode
}

// Run calls the program's main function, which takes no arguments.
func (prog *Program) Run() (Value, error) {
	return prog.Call("main")
}

// Call calls the named function with args and returns its result,
// dereferenced.
func (prog *Program) Call(name string, args ...Value) (Value, error) {
	fn, err := prog.functions.resolve(name, len(args))
	if err != nil {
		return nil, err
	}
	return prog.call(fn, args)
}

func (prog *Program) call(fn *function, args []Value) (Value, error) {
	eng := prog.engine
	r := &run{
		prog:     prog,
		ret:      zeroValue,
		maxDepth: eng.MaxDepth,
		out:      eng.Stdout,
	}
	if r.maxDepth <= 0 {
		r.maxDepth = DefaultMaxDepth
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	stdin := eng.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	r.in = bufio.NewScanner(stdin)
	r.in.Split(bufio.ScanWords)

	host := &frame{scope: newScope("<host>"), run: r}
	v, err := host.call(fn, append([]Value(nil), args...), position{})
	if err == nil {
		v, err = deref(v)
	}

	if eng.Debug.Dump {
		LogDebug("ast dump\n" + prog.String())
	}
	return v, err
}

// String renders every function of the program with execution counts.
func (prog *Program) String() string {
	var b strings.Builder
	for _, fn := range prog.funcs {
		fn.dump(&b, 0)
	}
	return b.String()
}

// Dump writes the program's functions to w, each statement prefixed with
// the number of times it has executed.
func (prog *Program) Dump(w io.Writer) error {
	_, err := io.WriteString(w, prog.String())
	return err
}

// run is the state of one evaluation of a Program.
type run struct {
	prog     *Program
	depth    int
	maxDepth int
	// ret is the return slot: the value of the latest return statement,
	// which a function falling off its end yields
	ret Value
	in  *bufio.Scanner
	out io.Writer
}

// frame is one function-call activation.
type frame struct {
	scope *Scope
	run   *run
}

func (f *frame) call(fn *function, args []Value, pos position) (Value, error) {
	if fn.native != nil {
		if !fn.raw {
			for i, a := range args {
				v, err := deref(a)
				if err != nil {
					return nil, at(err, pos)
				}
				args[i] = v
			}
		}
		v, err := fn.native(f, args)
		if err != nil {
			return nil, at(err, pos)
		}
		return v, nil
	}

	r := f.run
	if r.depth >= r.maxDepth {
		return nil, at(errorf(ErrSystem, "maximum call depth of %d exceeded calling %s",
			r.maxDepth, fn.signature), pos)
	}

	scope := newScope(fn.name)
	for i, name := range fn.node.params {
		scope.bind(name, args[i])
	}

	r.depth++
	out, err := fn.node.Exec(&frame{scope: scope, run: r})
	r.depth--
	scope.dead = true
	if err != nil {
		return nil, err
	}

	v := r.ret
	if out.returned {
		v = out.value
	}
	if ref, ok := v.(RefValue); ok && ref.scope == scope {
		return nil, at(errorf(ErrType, "%s cannot return %s, a reference to its own local variable",
			fn.signature, ref), pos)
	}
	return v, nil
}
