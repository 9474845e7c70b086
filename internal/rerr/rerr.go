// Package rerr defines ryu's error taxonomy, used to map any error
// surfaced by the CLI to a process exit code without every package
// needing to know about exit codes itself.
package rerr

import (
	"errors"
	"fmt"
)

// Category classifies the root cause of a failure.
type Category int

const (
	// Internal indicates a bug in ryu itself: an invariant the code
	// assumed did not hold. Reported with exit code 4.
	Internal Category = iota

	// UserInput indicates the user's command-line invocation, config,
	// or working copy state was invalid. Exit code 1.
	UserInput

	// Vcs indicates the underlying jj invocation failed or returned
	// output ryu could not make sense of. Exit code 3.
	Vcs

	// Forge indicates the GitHub/GitLab API call failed. Exit code 2.
	Forge

	// Planning indicates the analyze/plan phases could not produce a
	// valid execution plan (e.g. a cycle, or an unsupported stack
	// shape). Exit code 4.
	Planning
)

// Error wraps an underlying error with the Category used to decide
// its exit code and how it is reported to the user.
type Error struct {
	Category Category
	Err      error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// New builds an [*Error] in the given category.
func New(cat Category, format string, args ...any) error {
	return &Error{Category: cat, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a category to an existing error. Returns nil if err is nil.
func Wrap(cat Category, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Category: cat, Err: err}
}

// CategoryOf reports the category attached to err via [Wrap] or [New],
// defaulting to Internal if err was never categorized: an uncategorized
// error reaching the CLI's top level is itself treated as a bug.
func CategoryOf(err error) Category {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Category
	}
	return Internal
}

// ExitCode maps a category to the process exit code documented for ryu:
//
//	0  success
//	1  user input error (bad flags, dirty workspace, no trunk, ...)
//	2  forge operation failed
//	3  vcs operation failed
//	4  planning could not produce a valid plan, or internal error (a bug)
func ExitCode(cat Category) int {
	switch cat {
	case UserInput:
		return 1
	case Forge:
		return 2
	case Vcs:
		return 3
	default:
		return 4
	}
}
