package openrpc

import "errors"

var (
	// ErrInvalidDocument is returned when a document cannot be decoded or
	// fails structural validation.
	ErrInvalidDocument = errors.New("openrpc: invalid document")

	// ErrUnresolvedRef is returned when a $ref does not point at a component
	// in the same document. External references are not supported.
	ErrUnresolvedRef = errors.New("openrpc: unresolved reference")
)

// IsInvalidDocumentErr returns true if err is or wraps ErrInvalidDocument.
func IsInvalidDocumentErr(err error) bool {
	return errors.Is(err, ErrInvalidDocument)
}

// IsUnresolvedRefErr returns true if err is or wraps ErrUnresolvedRef.
func IsUnresolvedRefErr(err error) bool {
	return errors.Is(err, ErrUnresolvedRef)
}
