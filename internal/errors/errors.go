package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Services wrap these with fmt.Errorf("...: %w", ...) and the API layer uses
// errors.Is() to map them to HTTP responses.

var (
	// ErrNotFound signifies that a requested resource (usually a session) could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation could not be completed because
	// it conflicts with the current state of a resource (e.g., a duplicate message ID).
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrInvalidState signifies a second streaming run targeting a session that
	// already has one in flight. Rejected at the boundary, never interleaved.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrInvalidState = errors.New("invalid state")

	// ErrTransport wraps any failure from a generation or search collaborator.
	// Path handlers recover it into a visible assistant message.
	ErrTransport = errors.New("transport error")

	// ErrPersistence wraps any failure from the durable store. It is logged and
	// surfaced through the synchronizer status flag only.
	ErrPersistence = errors.New("persistence error")

	// ErrParse signifies a collaborator response that could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrPermission signifies that the caller is not allowed to perform the action.
	// This is typically mapped to a 403 Forbidden HTTP status.
	ErrPermission = errors.New("permission denied")

	// ErrInternal signifies an unexpected error on the server.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)
