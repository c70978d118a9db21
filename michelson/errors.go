// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"errors"
	"fmt"
)

var (
	ErrGeneralOverflow = errors.New("general overflow")
	ErrMutezOverflow   = errors.New("mutez overflow")
	ErrMutezUnderflow  = errors.New("mutez underflow")
	ErrBadReturn       = errors.New("final stack does not match the declared return type")
)

// TypeMismatchError is returned when a value or literal does not have the
// type an operation expects.
type TypeMismatchError struct {
	Expected string
	Found    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
}

// TypeUnsupportedError is returned for types the VM does not handle
type TypeUnsupportedError struct {
	Type string
}

func (e *TypeUnsupportedError) Error() string {
	return fmt.Sprintf("unsupported michelson type %s", e.Type)
}

// InstructionUnsupportedError is returned for instructions that have no
// handler.
type InstructionUnsupportedError struct {
	Instruction string
}

func (e *InstructionUnsupportedError) Error() string {
	return fmt.Sprintf("unsupported michelson instruction %s", e.Instruction)
}

// ScriptFailedError is the outcome of FAILWITH. It is a domain level
// result rather than a fault of the interpreter.
type ScriptFailedError struct {
	With Item
}

func (e *ScriptFailedError) Error() string {
	return fmt.Sprintf("script failed with %s", IntoData(e.With))
}

// MissingScriptFieldError is returned when a script lacks one of its
// parameter, storage or code sections.
type MissingScriptFieldError struct {
	Prim string
}

func (e *MissingScriptFieldError) Error() string {
	return fmt.Sprintf("script is missing the %s field", e.Prim)
}

// BadStackError reports an access below the bottom of the stack
type BadStackError struct {
	Location int
}

func (e *BadStackError) Error() string {
	return fmt.Sprintf("stack underflow at depth %d", e.Location)
}

// InvalidArityError reports a wrong number of arguments or results
type InvalidArityError struct {
	Expected int
	Found    int
}

func (e *InvalidArityError) Error() string {
	return fmt.Sprintf("invalid arity: expected %d, found %d", e.Expected, e.Found)
}

// IsScriptFailure reports whether [err] is a FAILWITH outcome and returns
// the failure value.
func IsScriptFailure(err error) (Item, bool) {
	var failed *ScriptFailedError
	if errors.As(err, &failed) {
		return failed.With, true
	}
	return nil, false
}

func mismatch(expected string, found Item) error {
	return &TypeMismatchError{Expected: expected, Found: found.Type().String()}
}
