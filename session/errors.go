package session

import "errors"

// Refusals returned by Store operations. A refused operation leaves the
// session unchanged. Operations wrap these with context; use errors.Is.
var (
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrLastItemProtected = errors.New("cannot delete the last remaining item")
	ErrInvalidName       = errors.New("invalid name")
	ErrNameConflict      = errors.New("name already in use")
	ErrInvalidFileName   = errors.New("file name must end in " + SourceExtension)
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrNotConfirmed      = errors.New("not confirmed")
)
