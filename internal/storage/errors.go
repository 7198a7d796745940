package storage

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrStaleAssignment is returned when an assignment write touches fewer rows
// than the computed mapping expects, meaning a case referenced by the mapping
// stopped being eligible mid-transaction. The whole run is rolled back.
var ErrStaleAssignment = errors.New("storage: assignment mapping no longer matches eligible cases")
