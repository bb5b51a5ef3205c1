// Package apperr defines the closed error taxonomy shared by the game
// engines and the API layer. Engines return kinds; the HTTP layer owns the
// mapping from kind to status code.
package apperr

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInsufficientFunds
	KindInsufficientStock
	KindInvalidItemStats
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInvalidItemStats:
		return "invalid_item_stats"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Conflict(message string) *Error          { return New(KindConflict, message) }
func Forbidden(message string) *Error         { return New(KindForbidden, message) }
func Unauthorized(message string) *Error      { return New(KindUnauthorized, message) }
func InvalidArgument(message string) *Error   { return New(KindInvalidArgument, message) }
func InsufficientFunds(message string) *Error { return New(KindInsufficientFunds, message) }
func InsufficientStock(message string) *Error { return New(KindInsufficientStock, message) }
func InvalidItemStats(message string) *Error  { return New(KindInvalidItemStats, message) }

// KindOf extracts the kind from err, falling back to KindInternal for
// anything outside the taxonomy (unexpected storage failures and the like).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
