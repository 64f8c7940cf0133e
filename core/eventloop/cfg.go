package eventloop

import "time"

// EventLoopConfig is used for Run and EventLoop.
type EventLoopConfig struct {
	// TimeoutStep is the pause between two steps, so a host (UI, websocket
	// peer, terminal) gets to show each one. Zero steps as fast as possible.
	TimeoutStep time.Duration
	// MaxSteps bounds the loop, convergence under exact equality isn't
	// guaranteed to ever happen. Zero means unbounded, the context is then
	// the only way out besides convergence.
	MaxSteps int
	// Logger for the event loop. See docs for Logger interface. If nil, a
	// Logger backed by the global zap logger (core/logutil) is used.
	L Logger
}

// Clamps vals and sets defaults.
func (cfg *EventLoopConfig) validate() {
	if cfg.TimeoutStep < 0 {
		cfg.TimeoutStep = 0
	}
	if cfg.MaxSteps < 0 {
		cfg.MaxSteps = 0
	}
	if cfg.L == nil {
		cfg.L = NewZapLogger(nil)
	}
}
