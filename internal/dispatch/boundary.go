package dispatch

import (
	"github.com/sourcegraph/conc/panics"

	"github.com/wagiedev/cli-mcp-go/internal/errors"
)

// guard runs fn. With catch set, a panic in fn is recovered and returned
// as a PanicError; otherwise it propagates to the caller and, unhandled,
// terminates the server.
func guard(catch bool, fn func()) *errors.PanicError {
	if !catch {
		fn()

		return nil
	}

	var pc panics.Catcher

	pc.Try(fn)

	if r := pc.Recovered(); r != nil {
		return &errors.PanicError{Value: r.Value, Stack: r.Stack}
	}

	return nil
}
