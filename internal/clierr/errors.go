// Package clierr provides the error taxonomy and CLI exit-code mapping
// shared by validate and extract.
package clierr

import (
	"fmt"
	"strings"
)

// Kind discriminates the taxonomy's error categories.
type Kind string

const (
	FileNotFound       Kind = "FileNotFound"
	DuplicateShortName Kind = "DuplicateShortName"
	AnchorNotFound     Kind = "AnchorNotFound"
	PathConversion     Kind = "PathConversion" // warning, not error
	ParseError         Kind = "ParseError"
	InternalFailure    Kind = "InternalFailure"
)

// CLIError is a user-facing error carrying enough context to render a
// helpful message and pick an exit code.
type CLIError struct {
	Kind       Kind
	Operation  string
	File       string
	Err        error
	Suggestion string
}

func (e *CLIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s", e.Err)
	if e.Operation != "" {
		fmt.Fprintf(&b, "\nOperation: %s", e.Operation)
	}
	if e.File != "" {
		fmt.Fprintf(&b, "\nFile: %s", e.File)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n\nSuggestion: %s", e.Suggestion)
	}
	return b.String()
}

func (e *CLIError) Unwrap() error { return e.Err }

// ExitCode maps a CLIError's Kind to the process exit code §6
// specifies: 0 success, 1 validation failure/zero extractions, 2
// system error.
func (e *CLIError) ExitCode() int {
	switch e.Kind {
	case InternalFailure, ParseError:
		return 2
	case PathConversion:
		return 0
	default:
		return 1
	}
}

// Builder assembles a CLIError field by field via a fluent chain.
type Builder struct {
	kind       Kind
	operation  string
	file       string
	err        error
	suggestion string
}

func New() *Builder { return &Builder{} }

func (b *Builder) WithKind(k Kind) *Builder         { b.kind = k; return b }
func (b *Builder) WithOperation(op string) *Builder { b.operation = op; return b }
func (b *Builder) WithFile(f string) *Builder       { b.file = f; return b }
func (b *Builder) WithError(err error) *Builder     { b.err = err; return b }
func (b *Builder) WithSuggestion(s string) *Builder { b.suggestion = s; return b }

func (b *Builder) Build() *CLIError {
	return &CLIError{
		Kind:       b.kind,
		Operation:  b.operation,
		File:       b.file,
		Err:        b.err,
		Suggestion: b.suggestion,
	}
}

// FileNotFoundError builds a CLIError for a target path absent from scope.
func FileNotFoundError(file, suggestion string) *CLIError {
	return New().WithKind(FileNotFound).WithFile(file).
		WithError(fmt.Errorf("file not found: %s", file)).
		WithSuggestion(suggestion).Build()
}

// AnchorNotFoundError builds a CLIError for a missing header/block anchor.
func AnchorNotFoundError(file, anchor, suggestion string) *CLIError {
	return New().WithKind(AnchorNotFound).WithFile(file).
		WithError(fmt.Errorf("anchor not found: %s", anchor)).
		WithSuggestion(suggestion).Build()
}

// DuplicateShortNameError builds a CLIError for an ambiguous short-name lookup.
func DuplicateShortNameError(target string, candidates []string) *CLIError {
	return New().WithKind(DuplicateShortName).
		WithError(fmt.Errorf("multiple files match %q: %s", target, strings.Join(candidates, ", "))).
		Build()
}

// InternalFailureError wraps an unexpected condition as exit-code-2 worthy.
func InternalFailureError(operation string, err error) *CLIError {
	return New().WithKind(InternalFailure).WithOperation(operation).WithError(err).Build()
}
