// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

import (
	"errors"

	perrors "github.com/pkg/errors"
)

// Kind classifies an Error into one of the flat, disjoint failure kinds of
// the simulator's error taxonomy. Kinds never nest: a CausalityViolation is
// never also a BadInput.
type Kind int

// The full error taxonomy. None of these are retried by the simulator; all
// of them propagate to the outermost runner.
const (
	_ Kind = iota
	CausalityViolation
	IndexOutOfRange
	EmptySequence
	PinUndefined
	PinDuplicated
	PinModeInvalid
	PinModeConflict
	PinWiringConflict
	ApiDisabled
	NotImplemented
	ChainAlreadyAttached
	ChainNotAttached
	InvariantViolation
	AlreadyInitialized
	BadInput
)

var kindNames = map[Kind]string{
	CausalityViolation:   "CausalityViolation",
	IndexOutOfRange:      "IndexOutOfRange",
	EmptySequence:        "EmptySequence",
	PinUndefined:         "PinUndefined",
	PinDuplicated:        "PinDuplicated",
	PinModeInvalid:       "PinModeInvalid",
	PinModeConflict:      "PinModeConflict",
	PinWiringConflict:    "PinWiringConflict",
	ApiDisabled:          "ApiDisabled",
	NotImplemented:       "NotImplemented",
	ChainAlreadyAttached: "ChainAlreadyAttached",
	ChainNotAttached:     "ChainNotAttached",
	InvariantViolation:   "InvariantViolation",
	AlreadyInitialized:   "AlreadyInitialized",
	BadInput:             "BadInput",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UnknownKind"
}

// Error is the concrete error type returned by every fallible operation in
// this package. It carries its Kind and, optionally, a wrapped cause.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// newError builds an *Error of the given kind with a formatted message.
func newError(k Kind, msg string) *Error {
	return &Error{kind: k, msg: msg}
}

// wrapError builds an *Error of the given kind, wrapping cause with msg.
func wrapError(k Kind, cause error, msg string) *Error {
	return &Error{kind: k, msg: msg, cause: perrors.Wrap(cause, msg)}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.msg
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// NewBadInputError builds a BadInput error, for glue packages (stimulus
// file loaders, configuration) that need to report malformed external input
// without reaching into the unexported constructors of this package.
func NewBadInputError(msg string) error { return newError(BadInput, msg) }

// IsKind reports whether err is, or wraps, an *Error of Kind k. Kind is not
// an error value, so errors.Is(err, moccarduino.Kind(...)) style checks do
// not apply: callers compare with IsKind instead.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == k
	}
	return false
}
