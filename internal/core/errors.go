// Package core implements spec.md §7's error sentinels and the Core façade
// (core.go) that original_source/src/core/mod.rs's `Core` struct is
// ported from: the single object a CLI command or HTTP handler reaches
// into for Name/Host/Port/snapshot/build/sourcemap.
package core

import "errors"

// The six sentinel error kinds spec.md §7 names. Components further down
// the stack (internal/vfs, internal/tree, internal/snapshot) define their
// own locally-scoped sentinels. Core wraps its own failures in ErrIO,
// ErrInvalidData and ErrUnknownReferent so callers can match them with
// errors.Is; the other three are declared but not produced by any code in
// this repository.
var (
	ErrIO                 = errors.New("core: io error")
	ErrInvalidData        = errors.New("core: invalid data")
	ErrUnknownParent      = errors.New("core: unknown parent")
	ErrUnknownReferent    = errors.New("core: unknown referent")
	ErrPropertyResolution = errors.New("core: property resolution error")
	ErrTransport          = errors.New("core: transport error")
)
