package spatial

import "errors"

// Sentinel errors for the persistence taxonomy in spec §7. Wrap with
// fmt.Errorf("...: %w", ErrX) at the call site so callers can still
// errors.Is against these.
var (
	// ErrIndexNotFound is returned by Load when the target directory has
	// no metadata.json — the authoritative "nothing saved here" marker.
	ErrIndexNotFound = errors.New("spatial: index not found")

	// ErrIndexCorrupt is returned by Load when a dump exists but fails
	// to decode, or decodes to a structurally invalid index.
	ErrIndexCorrupt = errors.New("spatial: index corrupt")

	// ErrIO wraps filesystem failures encountered during Save/Load that
	// are neither "not found" nor "corrupt".
	ErrIO = errors.New("spatial: io error")
)
