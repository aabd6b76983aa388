// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"errors"
	"strconv"
)

// ErrorKind classifies a malformed program.
type ErrorKind uint8

const (
	MissingLeadingStep ErrorKind = iota + 1
	InsufficientStepArguments
	UnresolvedDeepKey
)

// Sentinels matched by errors.Is against a [*MalformedProgramError].
var (
	ErrMissingLeadingStep        = errors.New("action: program does not start with a step")
	ErrInsufficientStepArguments = errors.New("action: step collected too few values")
	ErrUnresolvedDeepKey         = errors.New("action: key cannot be resolved")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case MissingLeadingStep:
		return ErrMissingLeadingStep
	case InsufficientStepArguments:
		return ErrInsufficientStepArguments
	case UnresolvedDeepKey:
		return ErrUnresolvedDeepKey
	}
	return nil
}

func (k ErrorKind) String() string {
	switch k {
	case MissingLeadingStep:
		return "MissingLeadingStep"
	case InsufficientStepArguments:
		return "InsufficientStepArguments"
	case UnresolvedDeepKey:
		return "UnresolvedDeepKey"
	}
	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// MalformedProgramError is reported by strict runs only.
// Permissive runs degrade to fewer or nil outputs instead.
type MalformedProgramError struct {
	Kind   ErrorKind
	Step   string // step that detected the problem, if any
	Detail string
	Err    error // underlying cause, if any
}

func (e *MalformedProgramError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Step != "" {
		msg += " (" + e.Step + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel of the error's kind.
func (e *MalformedProgramError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *MalformedProgramError) Unwrap() error { return e.Err }

func countDetail(want, got int) string {
	return "want at least " + strconv.Itoa(want) + " values, got " + strconv.Itoa(got)
}
