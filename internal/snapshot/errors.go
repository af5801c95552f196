package snapshot

import "errors"

// ErrInvalidData is spec.md §7's InvalidData: the only middleware failure
// that aborts a snapshot rather than being logged and skipped — a
// non-string ClassName key in a data sidecar, or a data file that isn't
// valid JSON.
var ErrInvalidData = errors.New("snapshot: invalid data")
