package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/superloach/ycc/pkg/ycc"
)

const (
	historyFile = ".ycc_history"
	promptMain  = "> "
	promptCont  = ". "
)

// braceDepth reports how many "{" in src are still open, ignoring any
// inside string literals.
func braceDepth(src string) int {
	depth := 0
	inString := false
	for i := 0; i < len(src); i++ {
		switch c := src[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
		}
	}
	return depth
}

// isDeclaration reports whether input declares functions or structs
// rather than being statements to run.
func isDeclaration(input string) bool {
	input = strings.TrimSpace(input)
	for _, kw := range []string{"def", "struct"} {
		if rest, ok := strings.CutPrefix(input, kw); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n') {
			return true
		}
	}
	return false
}

// readInput prompts until the braces of the input so far balance.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if braceDepth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// evalInput loads declarations into ctx, or runs statements against the
// declarations loaded so far.
func evalInput(ctx *ycc.Context, input string) (ycc.Value, error) {
	if isDeclaration(input) {
		return nil, ctx.LoadString("<repl>", input)
	}
	return ctx.Eval(input)
}

func runRepl(eng *ycc.Engine) int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ctx := eng.CreateContext()
	for {
		input, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		val, err := evalInput(ctx, input)
		if err != nil {
			var e ycc.Err
			if errors.As(err, &e) {
				ctx.LogErr(e)
			} else {
				ycc.LogSafeErr(ycc.ErrSystem, err.Error())
			}
			continue
		}
		if val != nil {
			ycc.LogInteractive(val.String())
		}
	}
}
