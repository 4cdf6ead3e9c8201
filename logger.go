package nscache

// Fields carries structured context for a log line, e.g. the storage key and
// the store error behind a degraded read.
type Fields map[string]any

// Logger receives the cache's own log lines: mostly Warn entries for
// operations that degraded (store outage, undecodable entry) and Debug
// entries for bulk invalidations. Wrap your logging stack with one of the
// log/zap, log/logrus or log/slog adapters, or leave Options.Logger nil to
// silence the cache entirely.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger discards everything; it is the default when no Logger is set.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
