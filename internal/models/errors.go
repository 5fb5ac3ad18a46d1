package models

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failed operation
type FailureKind string

const (
	KindValidation FailureKind = "validation"
	KindNetwork    FailureKind = "network"
	KindUpstream   FailureKind = "upstream"
	KindNotFound   FailureKind = "not_found"
	KindConflict   FailureKind = "conflict"
	KindAuth       FailureKind = "auth"
)

// Failure is the tagged error returned by the gateway, upload and session
// services. Op names the operation that failed ("create artwork").
type Failure struct {
	Kind FailureKind
	Op   string
	Err  error
}

// Sentinels for errors.Is matching on kind alone
var (
	ErrValidation = &Failure{Kind: KindValidation}
	ErrNetwork    = &Failure{Kind: KindNetwork}
	ErrUpstream   = &Failure{Kind: KindUpstream}
	ErrNotFound   = &Failure{Kind: KindNotFound}
	ErrConflict   = &Failure{Kind: KindConflict}
	ErrAuth       = &Failure{Kind: KindAuth}
)

// NewFailure wraps err with a kind and operation name
func NewFailure(kind FailureKind, op string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Err: err}
}

// Validationf builds a validation failure from a message
func Validationf(op, format string, args ...interface{}) *Failure {
	return &Failure{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

func (f *Failure) Error() string {
	switch {
	case f.Op == "" && f.Err == nil:
		return string(f.Kind)
	case f.Err == nil:
		return fmt.Sprintf("%s: %s", f.Op, f.Kind)
	case f.Op == "":
		return f.Err.Error()
	}
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches sentinels that carry only a kind
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == f.Kind
}

// KindOf returns the kind of the first Failure in err's chain.
// Untagged errors are reported as upstream failures.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUpstream
}
