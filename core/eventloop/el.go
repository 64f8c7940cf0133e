/*
The eventloop pkg drives a clustering run one step at a time, without ever
looping unconditionally: each iteration checks the context, an optional step
limit and a stop func before stepping, and may pause between steps so a host
can render every one.
*/
package eventloop

import (
	"context"
	"fmt"
	"time"

	"kmviz/pkg/kmeans"
)

// Stepper is whatever can take one clustering step, e.g *kmeans.Engine.
type Stepper interface {
	Step() (kmeans.Snapshot, error)
}

// StepperFunc is a func adapter for Stepper.
type StepperFunc func() (kmeans.Snapshot, error)

func (f StepperFunc) Step() (kmeans.Snapshot, error) { return f() }

// Result is the outcome of a finished loop.
type Result struct {
	// Snapshot is the last one produced (zero if no step was taken).
	Snapshot kmeans.Snapshot
	// Steps is the number of Step calls made by the loop.
	Steps int
	// Err is nil on convergence.
	Err error
}

// Run steps s until it converges, ctx is done, cfg.MaxSteps steps were taken
// or a step/consume call fails. consume (may be nil) gets every snapshot, and
// an error from it ends the loop.
func Run(ctx context.Context, cfg EventLoopConfig, s Stepper, consume func(kmeans.Snapshot) error) Result {
	cfg.validate()

	var res Result
	stop := func(err error) Result {
		res.Err = err
		cfg.L.LogStop(res.Snapshot, err)
		return res
	}

	for {
		if res.Steps > 0 && cfg.TimeoutStep > 0 {
			t := time.NewTimer(cfg.TimeoutStep)
			select {
			case <-ctx.Done():
				t.Stop()
			case <-t.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return stop(err)
		}
		if cfg.MaxSteps > 0 && res.Steps >= cfg.MaxSteps {
			return stop(fmt.Errorf("%w: %d steps", kmeans.ErrStepLimit, res.Steps))
		}

		snap, err := s.Step()
		if err != nil {
			return stop(err)
		}
		res.Steps++
		res.Snapshot = snap
		cfg.L.LogStep(snap)

		if consume != nil {
			if err := consume(snap); err != nil {
				return stop(err)
			}
		}
		if snap.Converged {
			return stop(nil)
		}
	}
}

// EventLoop is Run in a goroutine. The returned func stops the loop (it's safe
// to call more than once, and after the loop ended) and the channel receives
// the single Result.
func EventLoop(ctx context.Context, cfg EventLoopConfig, s Stepper, consume func(kmeans.Snapshot) error) (func(), <-chan Result) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan Result, 1)
	go func() {
		defer cancel()
		done <- Run(ctx, cfg, s, consume)
	}()
	return cancel, done
}
