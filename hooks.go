package nscache

// Hooks lightweight callbacks for degradation events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// The backing store failed and the operation degraded to its safe
	// default. op ∈ {"get", "set", "del", "keys"}.
	StoreError(op, key string, err error)

	// A value failed to encode on write or decode on read. Decode failures
	// also drop the unreadable entry.
	CodecError(key string, err error)

	// An unrecognized namespace reached key construction and fell back to
	// the general namespace.
	UnknownNamespace(ns string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StoreError(string, string, error) {}
func (NopHooks) CodecError(string, error)         {}
func (NopHooks) UnknownNamespace(string)          {}
