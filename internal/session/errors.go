package session

import "errors"

var (
	// ErrResourceNotFound reports an open against a resource name with
	// no binding in the loaded definition set.
	ErrResourceNotFound = errors.New("session: resource not found")

	// ErrResourceBusy reports an open against a resource already held
	// by a live session.
	ErrResourceBusy = errors.New("session: resource busy")

	// ErrSessionClosed reports an operation on a closed session.
	ErrSessionClosed = errors.New("session: session closed")

	// ErrUnknownHandle reports a manager lookup with a handle that
	// does not belong to a live session.
	ErrUnknownHandle = errors.New("session: unknown handle")

	// ErrNoData reports a read against an empty response buffer. The
	// device's query-error flag is asserted before it is returned.
	ErrNoData = errors.New("session: no data available")
)
