package service

import (
	"errors"

	"gamelife/internal/store"
)

// Kind classifies a service error for callers that map errors to exit codes
// or messages.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// ErrNoProfile is returned when an operation needs a profile and none was named.
var ErrNoProfile = errors.New("no profile selected (use --user or GAMELIFE_USER)")

var errInvalidProfileID = errors.New("invalid profile id")

// Error is a classified service error.
type Error struct {
	Kind Kind
	Err  error
}

func (e Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

func makeError(kind Kind, err error) error {
	if err == nil {
		err = errors.New(string(kind))
	}

	var existing Error
	if errors.As(err, &existing) && existing.Kind != "" {
		return existing
	}
	return Error{Kind: kind, Err: err}
}

func badRequest(err error) error {
	return makeError(KindInvalidArgument, err)
}

func notFound(err error) error {
	return makeError(KindNotFound, err)
}

func conflict(err error) error {
	return makeError(KindConflict, err)
}

// fromStore classifies store sentinels and passes other errors through.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFound(err)
	case errors.Is(err, store.ErrConflict):
		return conflict(err)
	default:
		return err
	}
}

// KindOf reports the classification of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var svcErr Error
	if errors.As(err, &svcErr) && svcErr.Kind != "" {
		return svcErr.Kind
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, store.ErrConflict):
		return KindConflict
	}
	return KindInternal
}
