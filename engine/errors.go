package engine

import "errors"

// ErrorKind discriminates engine failures so the API layer can map each
// kind to a status code without string matching.
type ErrorKind int

const (
	KindValidation ErrorKind = iota // bad or missing input, user-correctable
	KindNotFound                    // unknown or non-owned id (collapsed on purpose)
	KindStore                       // persistence backend failure
	KindProvider                    // ranking provider failure (recovered internally)
)

// Error is the discriminated error type returned by every Engine operation.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func errValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func errNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func errStore(message string, cause error) *Error {
	return &Error{Kind: KindStore, Message: message, cause: cause}
}

// KindOf extracts the ErrorKind from err if it is (or wraps) an engine Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
