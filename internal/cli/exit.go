package cli

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-privateplot/internal/commands"
	"github.com/goliatone/go-privateplot/internal/publish"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
)

// ExitError carries the exit code a command wants the process to end with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func invalidInput(err error) error {
	return &ExitError{Code: ExitInvalidInput, Err: err}
}

func invalidInputf(format string, args ...any) error {
	return invalidInput(fmt.Errorf(format, args...))
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var inputErr *publish.InvalidInputError
	if errors.As(err, &inputErr) || commands.IsValidation(err) {
		return ExitInvalidInput
	}
	return ExitFailure
}
