package admin

import "errors"

var (
	// ErrInvalidCredentials is returned for a wrong admin password
	ErrInvalidCredentials = errors.New("invalid admin credentials")
	// ErrUnknownKind is returned when exporting a kind that is not registered
	ErrUnknownKind = errors.New("unknown resource kind")
)
