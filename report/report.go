// Package report is the core's diagnostic sink. All compilation errors are
// fatal (spec.md §7): there is no recovery, only a formatted message and a
// non-zero process exit.
package report

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

// Fatalf prints a fatal compiler error and terminates the process. This is
// the concrete realization of every "X is a construction-time error" /
// "is a fatal error" clause in spec.md: lex errors, name errors, type
// errors, and semantic errors all eventually reach this function (directly,
// or via a caller that decided not to use the error-returning form described
// in spec.md §7's note about a result-returning upgrade).
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	pterm.Error.WithShowLineNumber(false).Println(msg)
	os.Exit(1)
}

// Warnf prints a non-fatal advisory. Compilation continues.
func Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	pterm.Warning.WithShowLineNumber(false).Println(msg)
}

// Errorf formats msg in the same style as Fatalf but returns it as an error
// instead of exiting, so that AST constructors (which are exercised by
// tests and must not kill the test binary) can report the same diagnostic
// text through Go's normal error-handling idiom.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
