package dispatch

import "go.uber.org/zap"

// Config carries the dispatcher tunables that the historical C source
// hardcoded. DefaultConfig reproduces those hardcoded values exactly;
// callers may override before passing Config to New.
type Config struct {
	// ListenBacklog is the backlog argument passed to listen(2) for both
	// the IPv4 and IPv6 listener sockets.
	ListenBacklog int

	// ReadBufferSize is the number of bytes read per readable connection
	// event, per §4.F.2.
	ReadBufferSize int

	// SlotGrowth is the number of slots appended to the slot vector each
	// time it is exhausted, per §4.F.3.
	SlotGrowth int

	// Logger receives structured lifecycle and failure events. A nil
	// Logger is replaced with zap.NewNop() so embedding applications
	// that don't want logs pay nothing for them.
	Logger *zap.Logger

	// Metrics receives Prometheus instrumentation. A nil Metrics
	// disables metrics entirely.
	Metrics *Metrics
}

// DefaultConfig returns the spec-mandated constants: backlog 128,
// 4096-byte reads, slots grown 128 at a time.
func DefaultConfig() Config {
	return Config{
		ListenBacklog:   128,
		ReadBufferSize:  4096,
		SlotGrowth:      128,
		Logger:          zap.NewNop(),
		Metrics:         nil,
	}
}

func (c Config) withDefaults() Config {
	if c.ListenBacklog <= 0 {
		c.ListenBacklog = 128
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = 4096
	}
	if c.SlotGrowth <= 0 {
		c.SlotGrowth = 128
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
