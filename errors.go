package nscache

import "errors"

// ErrNilStore is returned by New when Options.Store is missing. It is the
// only construction-time failure; at runtime the cache degrades instead of
// erroring.
var ErrNilStore = errors.New("nscache: store is required")
