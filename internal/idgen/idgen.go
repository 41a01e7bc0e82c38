package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier. Tests replace it to get
// stable boot and event identifiers.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier.
func New() string { return NewFunc() }
