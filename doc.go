// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package action interprets flat sequences of values as small programs.
//
// A program is a []any. Its tokens are classified by [Classify] into a
// closed set: data, function references, function literals ([Lit]),
// steps ([*Step]), closers ([Close]) and the quiet [End] marker. The
// first token must be a step.
//
// # Steps
//
// A step pairs a [Kind] (what to do with values) with a [Priority].
// When a step runs it collects the tokens that follow it:
//
//   - data and functions are handed to the kind's [Reducer];
//   - a [Forced] step runs right away, nested, and whatever it yields is
//     collected as data;
//   - a [Normal] step ends the collection and runs next, as the
//     continuation;
//   - [End] ends the collection quietly; a [Closer] ends the collection
//     of its target and of everything nested above it.
//
// Built-in kinds:
//
//   - [Pass]: yield collected values unchanged
//   - [With]: call functions as fn(scope, args, acc...)
//   - [Pipe]: chain functions, each result the sole argument of the next
//   - [FuncOf]: user-defined policy
//   - [Args]: invocation arguments, all or by index
//   - [Many]: spread iterables and keyed values
//   - [One]: collect everything into one []any
//   - [Get], [Set], [Call], [Delete]: member access through [deep] keys
//   - [Null]: run for effect, yield nothing
//   - [Early]: run a fixed prefix plus the collected values as a
//     sub-program; [Template] builds parameterised Early steps
//
// Steps are immutable. A step value may appear several times in a
// program and be shared between actions running concurrently.
//
// # Running
//
//	w, _ := action.Both(action.With)
//	a := action.New([]any{w, func(...any) any { return 5 }})
//	v, err := a.Call() // v == 5
//
// [Action.Start] returns a [Run], a pull iterator. Outputs are computed
// only as far as they are consumed; [Action.Call] and [Action.CallWith]
// return the first output and close the run, [Action.Gen] and
// [Action.GenWith] expose every output as an iter.Seq2. Evaluation uses
// an explicit frame stack, so neither nesting depth nor the length of a
// continuation chain grows the goroutine stack.
//
// # Errors
//
// By default malformed programs degrade to fewer or nil outputs. The
// [Strict] option reports them as [*MalformedProgramError]. Errors
// returned by program functions stop the run and are reported by
// [Run.Err] unchanged.
package action
