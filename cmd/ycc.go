package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/superloach/ycc/pkg/ycc"
)

const Version = "0.2.0"

const HelpMessage = `
Ycc is a tiny imperative scripting language for embedding.
	ycc v%s

By default, ycc loads every .ycc file in the current directory and runs main().
	ycc
Run Ycc programs from source files or directories by passing them to the interpreter.
	ycc main.ycc lib/
Start an interactive repl with -repl.
	ycc -repl
	> ___
Run from the command line with -eval.
	ycc -eval "def main() { return 1 + 2 * 3; }"

`

func main() {
	flag.Usage = func() {
		fmt.Printf(HelpMessage, Version)
		flag.PrintDefaults()
	}

	configPath := flag.String("config", "", "Load settings from a YAML config file")
	flag.String("ext", defaultExtension, "Source file extension to look for in directories")
	flag.Int("max-depth", ycc.DefaultMaxDepth, "Maximum depth of nested function calls")
	flag.Bool("no-color", false, "Disable coloured output")

	// cli arguments
	flag.Bool("verbose", false, "Log all interpreter debug information")
	flag.Bool("debug-lex", false, "Log lexer output")
	flag.Bool("debug-parse", false, "Log parser output")
	flag.Bool("dump", false, "Dump the program with execution counts after eval")

	version := flag.Bool("version", false, "Print version string and exit")
	help := flag.Bool("help", false, "Print help message and exit")

	repl := flag.Bool("repl", false, "Run as an interactive repl")
	eval := flag.String("eval", "", "Evaluate argument as a Ycc program")

	flag.Parse()

	// collect all other non-parsed arguments from the CLI as files to be run
	paths := flag.Args()

	// if asked for version, disregard everything else
	if *version {
		fmt.Printf("ycc v%s\n", Version)
		os.Exit(0)
	} else if *help {
		flag.Usage()
		os.Exit(0)
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			ycc.LogErrf(ycc.ErrSystem, "%s", err)
		}
	}
	if err := cfg.override(flag.CommandLine); err != nil {
		ycc.LogErrf(ycc.ErrSystem, "%s", err)
	}
	ycc.SetColor(cfg.Color)

	// execution environment
	eng := ycc.Engine{
		FatalError: false,
		MaxDepth:   cfg.MaxDepth,
		Debug: ycc.DebugConfig{
			Lex:   cfg.Debug.Lex,
			Parse: cfg.Debug.Parse,
			Dump:  cfg.Debug.Dump,
		},
	}

	if *repl {
		os.Exit(runRepl(&eng))
	}

	// outside the repl every error ends the process
	eng.FatalError = true
	ctx := eng.CreateContext()

	if *eval != "" {
		ctx.File = "<eval>"
		if err := ctx.LoadString(ctx.File, *eval); err != nil {
			fail(ctx, err)
		}
	} else {
		if len(paths) == 0 {
			paths = []string{"."}
		}
		files, err := collectSources(paths, cfg.Extension)
		if err != nil {
			fail(ctx, err)
		}
		sources, err := readSources(context.Background(), files)
		if err != nil {
			fail(ctx, err)
		}
		for _, src := range sources {
			if err := ctx.LoadString(src.name, src.text); err != nil {
				fail(ctx, err)
			}
		}
	}

	prog, err := ctx.Prepare()
	if err != nil {
		fail(ctx, err)
	}
	val, err := prog.Run()
	if err != nil {
		fail(ctx, err)
	}
	ycc.LogInteractive("=>", val.String())
}

func fail(ctx *ycc.Context, err error) {
	var e ycc.Err
	if errors.As(err, &e) {
		ctx.LogErr(e)
	}
	ycc.LogErr(ycc.ErrSystem, strings.TrimSpace(err.Error()))
}
