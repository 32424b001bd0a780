package processor

import (
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/platinummonkey/weaver/pkg/diag"
)

var (
	// ErrDisposed is returned by operations attempted after Dispose.
	ErrDisposed = errors.New("processor disposed")
	// ErrNotInitialized is returned when editing is attempted after the
	// editors were unregistered.
	ErrNotInitialized = errors.New("processor not initialized")
)

// PhaseError tags a failure with the lifecycle phase that produced it.
type PhaseError struct {
	Phase  string
	Editor string
	Err    error
}

func (e *PhaseError) Error() string {
	if e.Editor != "" {
		return fmt.Sprintf("%s: editor %s: %v", e.Phase, e.Editor, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// protect runs fn and converts a panic into a *PanicError.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

// unroll flattens err into the leaf errors that should each become one
// diagnostic. Joined errors are expanded recursively, and a *diag.Error
// found anywhere along a chain stops the walk.
func unroll(err error) []error {
	if err == nil {
		return nil
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if _, ok := cur.(*diag.Error); ok {
			return []error{cur}
		}
		if multi, ok := cur.(interface{ Unwrap() []error }); ok {
			var out []error
			for _, inner := range multi.Unwrap() {
				out = append(out, unroll(inner)...)
			}
			if len(out) > 0 {
				return out
			}
			break
		}
	}
	return []error{err}
}

// describe returns the user-facing text of err. One level of panic wrapping
// is removed so that a panic raised with an error shows that error's text.
func describe(err error) string {
	if pe, ok := err.(*PanicError); ok {
		if inner, ok := pe.Value.(error); ok {
			return sanitize(inner.Error())
		}
		return sanitize(fmt.Sprint(pe.Value))
	}
	return sanitize(err.Error())
}

var (
	absPath    = regexp.MustCompile(`(^|[\s"'(=])(?:[A-Za-z]:)?[\\/](?:[^\s\\/"':]+[\\/])+([^\s\\/"':]+)`)
	stackFrame = regexp.MustCompile(`^(goroutine \d+ \[|\s+\S+\.go:\d+|[\w./\-*()]+\(.*\)$)`)
)

// sanitize strips stack frames and reduces absolute file paths to their base
// name so messages are stable across machines.
func sanitize(msg string) string {
	lines := strings.Split(msg, "\n")
	kept := lines[:0]
	for i, line := range lines {
		if strings.TrimSpace(line) == "" || (i > 0 && stackFrame.MatchString(line)) {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t\r"))
	}
	out := strings.Join(kept, " ")
	return strings.TrimSpace(absPath.ReplaceAllString(out, "$1$2"))
}
