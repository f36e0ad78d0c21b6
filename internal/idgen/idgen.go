package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique, time-sortable identifier. It is a
// variable so tests can stub it.
var NewFunc = func() string { return uuid.Must(uuid.NewV7()).String() }

// New returns a new identifier.
func New() string { return NewFunc() }
