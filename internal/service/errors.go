package service

import (
	"errors"
	"fmt"

	"github.com/shopfloor/api/internal/ledger"
)

// Kind classifies a core failure so callers can translate it.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindInvalidArgument   Kind = "INVALID_ARGUMENT"
	KindConflict          Kind = "CONFLICT"
)

// Error is returned by every core operation that fails. The ledger is
// left unchanged by a failed operation.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Msg == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrConflict          = &Error{Kind: KindConflict}
)

// KindOf returns the kind of err, or "" when err is not a core error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func notFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalidTransition(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidTransition, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func conflict(op string, err error, format string, args ...any) error {
	return &Error{Kind: KindConflict, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// fromLedger maps store errors onto core error kinds.
func fromLedger(op string, err error) error {
	if err == nil {
		return nil
	}
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return err
	}
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return &Error{Kind: KindNotFound, Op: op, Msg: err.Error(), Err: err}
	case errors.Is(err, ledger.ErrExists), errors.Is(err, ledger.ErrOperatorBusy):
		return &Error{Kind: KindConflict, Op: op, Msg: err.Error(), Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
