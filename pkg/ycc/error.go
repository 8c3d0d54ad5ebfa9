package ycc

import (
	"errors"
	"fmt"
)

// Error reasons are enumerated here to be used in the Err struct,
// the error type shared across all Ycc APIs. A reason doubles as the
// process exit status when the CLI aborts on an error.
const (
	ErrUnknown = 0
	ErrLex     = 1
	ErrParse   = 2
	ErrName    = 3
	ErrType    = 4
	ErrRange   = 5
	ErrSystem  = 40
	ErrAssert  = 100
)

// Err constants represent possible errors that the Ycc lexer, parser
// and evaluator may return. Every Err aborts the run it occurred in.
type Err struct {
	reason  int
	message string
}

func (e Err) Error() string {
	return e.message
}

// Reason reports the error category of e.
func (e Err) Reason() int {
	return e.reason
}

// ReasonOf returns the category of err if it is (or wraps) an Err,
// and ErrUnknown otherwise.
func ReasonOf(err error) int {
	var e Err
	if errors.As(err, &e) {
		return e.reason
	}
	return ErrUnknown
}

func reasonName(reason int) string {
	switch reason {
	case ErrLex:
		return "lex error"
	case ErrParse:
		return "parse error"
	case ErrName:
		return "name error"
	case ErrType:
		return "type error"
	case ErrRange:
		return "range error"
	case ErrSystem:
		return "system error"
	case ErrAssert:
		return "invariant violation"
	default:
		return "error"
	}
}

func errorf(reason int, format string, args ...interface{}) Err {
	return Err{reason, fmt.Sprintf(format, args...)}
}

// at appends a source position to an Err raised by a runtime helper.
// Positions outside any source are not shown.
func at(err error, pos position) error {
	if e, ok := err.(Err); ok && pos.line > 0 {
		return Err{e.reason, fmt.Sprintf("%s [%s]", e.message, pos)}
	}
	return err
}
