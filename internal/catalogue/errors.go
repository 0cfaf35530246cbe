package catalogue

import "errors"

// ErrNotFound is returned by lookups for an unknown stop or route name.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when inserting a stop or route whose name already exists.
var ErrDuplicate = errors.New("duplicate name")

// ErrUnknownStop is returned when a route or distance references a stop that
// has not been added to the catalogue.
var ErrUnknownStop = errors.New("unknown stop")
