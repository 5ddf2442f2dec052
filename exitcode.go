package main

import (
	"errors"
	"flag"
)

// Process exit codes of the example.
const (
	exitOK           = 0
	exitFailure      = 1
	exitImageFailure = 2
	exitVideoFailure = 4
)

// exitError carries the process exit code of a failed setup step.
type exitError struct {
	code int
	err  error
}

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps the error returned by run to the process exit code.
func exitCode(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	return exitFailure
}
