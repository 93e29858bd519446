package registry

import "errors"

var (
	// ErrDuplicateType is returned when a qualified name is registered twice
	// within one pass.
	ErrDuplicateType = errors.New("registry: duplicate type")
	// ErrUnknownType is returned when a looked-up qualified name is absent.
	ErrUnknownType = errors.New("registry: unknown type")
)
