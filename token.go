// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package action

// TokenKind tags the variants of the closed program token union.
// Dispatch uses type switches in Classify; everything downstream
// switches on the tag.
type TokenKind uint8

const (
	// Data is any value without interpreter meaning.
	Data TokenKind = iota
	// FunctionRef is a function to be invoked by the collecting step.
	FunctionRef
	// FunctionLiteral is a function wrapped by [Lit], passed on as data.
	FunctionLiteral
	// StepRef is a *Step.
	StepRef
	// CloserRef is a [Closer].
	CloserRef
	// EndMarker is [End].
	EndMarker
)

var tokenKindNames = [...]string{
	Data:            "data",
	FunctionRef:     "function",
	FunctionLiteral: "literal",
	StepRef:         "step",
	CloserRef:       "closer",
	EndMarker:       "end",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// Func is the calling convention for functions embedded in a program.
// With calls it as fn(scope, args, acc...), Pipe as fn(list...).
// A returned error stops the run and is reported unchanged by [Run.Err].
type Func func(args ...any) (any, error)

// Literal marks a function as plain data. Steps never invoke it;
// With and Pipe unwrap it to the raw function value.
type Literal struct {
	Fn any
}

// Lit wraps fn as a [Literal].
func Lit(fn any) Literal { return Literal{Fn: fn} }

// Closer forces the collection of Target to end, unwinding every
// collection nested above it.
type Closer struct {
	Target *Step
}

// Close returns a [Closer] for target.
func Close(target *Step) Closer { return Closer{Target: target} }

type endMarker struct{}

func (endMarker) String() string { return "$" }

// End quietly ends the collection of the current step without
// scheduling a continuation.
var End any = endMarker{}

// Token is a classified program value.
type Token struct {
	Kind  TokenKind
	Value any // raw value; the unwrapped function for FunctionLiteral

	Func   Func   // FunctionRef
	Step   *Step  // StepRef
	Closer Closer // CloserRef
}

// Classify tags v with its token kind. Functions of type [Func],
// func(...any) (any, error) and func(...any) any are function
// references; every other function type, iter.Seq included, is data.
func Classify(v any) Token {
	switch x := v.(type) {
	case *Step:
		if x != nil {
			return Token{Kind: StepRef, Value: v, Step: x}
		}
	case Closer:
		return Token{Kind: CloserRef, Value: v, Closer: x}
	case endMarker:
		return Token{Kind: EndMarker, Value: v}
	case Literal:
		return Token{Kind: FunctionLiteral, Value: x.Fn}
	case Func:
		if x != nil {
			return Token{Kind: FunctionRef, Value: v, Func: x}
		}
	case func(...any) (any, error):
		if x != nil {
			return Token{Kind: FunctionRef, Value: v, Func: Func(x)}
		}
	case func(...any) any:
		if x != nil {
			return Token{Kind: FunctionRef, Value: v, Func: func(args ...any) (any, error) {
				return x(args...), nil
			}}
		}
	}
	return Token{Kind: Data, Value: v}
}
