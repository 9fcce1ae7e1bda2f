package app

import (
	"errors"

	"github.com/heartmarshall/familytree-names/internal/domain"
)

// Process exit codes. Each failure category has its own code.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitSourceNotFound    = 2
	ExitParse             = 3
	ExitOutputWrite       = 4
	ExitEmptyIntersection = 5
)

// ExitCode maps an error returned by a pipeline to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrSourceNotFound):
		return ExitSourceNotFound
	case errors.Is(err, domain.ErrParse):
		return ExitParse
	case errors.Is(err, domain.ErrOutputWrite):
		return ExitOutputWrite
	case errors.Is(err, domain.ErrEmptyIntersection):
		return ExitEmptyIntersection
	default:
		return ExitFailure
	}
}

// Outcome is a short label for the failure category of err, used as the
// "outcome" attribute of status log lines.
func Outcome(err error) string {
	switch ExitCode(err) {
	case ExitOK:
		return "success"
	case ExitSourceNotFound:
		return "source_not_found"
	case ExitParse:
		return "parse_failure"
	case ExitOutputWrite:
		return "output_write_failure"
	case ExitEmptyIntersection:
		return "empty_intersection"
	default:
		return "failure"
	}
}
