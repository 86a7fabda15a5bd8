package flow

import "errors"

// ErrSourceUnavailable is returned when workflow source text cannot be
// obtained at all, e.g. a missing file. Malformed lines are never an error.
var ErrSourceUnavailable = errors.New("workflow source unavailable")

// ErrExportNotFound is returned when a cache holds no export under the
// requested workflow name.
var ErrExportNotFound = errors.New("workflow export not found")
