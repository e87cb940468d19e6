package wayland

import "errors"

var (
	ErrUnknownObject   = errors.New("unknown object")
	ErrInvalidMethod   = errors.New("invalid method")
	ErrInvalidArgs     = errors.New("invalid arguments")
	ErrInvalidObjectID = errors.New("invalid new object id")
	ErrGlobalNotFound  = errors.New("global not found")
)
