package models

import "errors"

// ErrUnknownClass is returned when a class name is not present in the Registry.
var ErrUnknownClass = errors.New("unknown class")

// ErrInvalidRecord is returned when a serialised object cannot be hydrated.
var ErrInvalidRecord = errors.New("invalid record")
