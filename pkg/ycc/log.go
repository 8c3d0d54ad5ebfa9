package ycc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ANSI_RESET       = "[0;0m"
	ANSI_BLUE        = "[34;22m"
	ANSI_GREEN       = "[32;22m"
	ANSI_YELLOW      = "[33;22m"
	ANSI_RED         = "[31;22m"
	ANSI_BLUE_BOLD   = "[34;1m"
	ANSI_GREEN_BOLD  = "[32;1m"
	ANSI_YELLOW_BOLD = "[33;1m"
	ANSI_RED_BOLD    = "[31;1m"
)

// LogOutput and ErrOutput are where the Log* family writes. Debug and
// interactive lines go to LogOutput, errors to ErrOutput.
var (
	LogOutput io.Writer = os.Stdout
	ErrOutput io.Writer = os.Stderr
)

var colorDisabled bool

// SetColor turns ANSI colouring on or off. Even when on, colour is only
// emitted to writers that are terminals.
func SetColor(on bool) {
	colorDisabled = !on
}

func colorful(w io.Writer) bool {
	if colorDisabled {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func paint(w io.Writer, code, s string) string {
	if !colorful(w) {
		return s
	}
	return code + s
}

func reset(w io.Writer) string {
	if !colorful(w) {
		return ""
	}
	return ANSI_RESET
}

func LogDebug(args ...string) {
	fmt.Fprintln(LogOutput, paint(LogOutput, ANSI_BLUE_BOLD, "debug: ")+
		paint(LogOutput, ANSI_BLUE, strings.Join(args, " "))+reset(LogOutput))
}

func LogDebugf(s string, args ...interface{}) {
	LogDebug(fmt.Sprintf(s, args...))
}

func LogInteractive(args ...string) {
	fmt.Fprintln(LogOutput, paint(LogOutput, ANSI_GREEN, strings.Join(args, " "))+reset(LogOutput))
}

func LogInteractivef(s string, args ...interface{}) {
	LogInteractive(fmt.Sprintf(s, args...))
}

func LogWarn(args ...string) {
	fmt.Fprintln(ErrOutput, paint(ErrOutput, ANSI_YELLOW_BOLD, "warn: ")+
		paint(ErrOutput, ANSI_YELLOW, strings.Join(args, " "))+reset(ErrOutput))
}

func LogWarnf(s string, args ...interface{}) {
	LogWarn(fmt.Sprintf(s, args...))
}

// LogSafeErr prints an error of the given reason without exiting.
func LogSafeErr(reason int, args ...string) {
	fmt.Fprintln(ErrOutput, paint(ErrOutput, ANSI_RED_BOLD, reasonName(reason)+": ")+
		paint(ErrOutput, ANSI_RED, strings.Join(args, " "))+reset(ErrOutput))
}

// LogErr prints an error and exits the process with the reason as status.
func LogErr(reason int, args ...string) {
	LogSafeErr(reason, args...)
	if reason == ErrUnknown {
		reason = 1
	}
	os.Exit(reason)
}

func LogErrf(reason int, s string, args ...interface{}) {
	LogErr(reason, fmt.Sprintf(s, args...))
}
