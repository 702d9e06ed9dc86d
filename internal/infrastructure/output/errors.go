package output

import "errors"

// ErrWrite is returned when the symbol list cannot be written to its destination
var ErrWrite = errors.New("failed to write symbols")
