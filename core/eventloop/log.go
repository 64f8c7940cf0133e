package eventloop

import (
	"go.uber.org/zap"

	"kmviz/core/logutil"
	"kmviz/pkg/kmeans"
)

// Logger is a logger for the event-loop used in this pkg. It is primarily used
// in EventLoopConfig. See method-specific docs for more details.
type Logger interface {
	// LogStep is called for each step that was taken, with its snapshot.
	LogStep(kmeans.Snapshot)
	// LogStop is called once when the loop ends, with the last snapshot and
	// the reason (nil on convergence).
	LogStop(kmeans.Snapshot, error)
}

type zapLogger struct {
	l *zap.Logger
}

// NewZapLogger creates a Logger on top of l, or on top of the global logger
// (at call time) if l is nil.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = logutil.GetGlobalLogger()
	}
	return &zapLogger{l: l.Named("eventloop")}
}

func (z *zapLogger) LogStep(s kmeans.Snapshot) {
	z.l.Debug("step",
		zap.Int("step", s.StepCount),
		zap.Bool("converged", s.Converged),
		zap.Ints("sizes", s.ClusterSizes()),
	)
}

func (z *zapLogger) LogStop(s kmeans.Snapshot, err error) {
	if err != nil {
		z.l.Warn("stopped before convergence",
			zap.Int("steps", s.StepCount),
			zap.String("state", s.State.String()),
			zap.Error(err),
		)
		return
	}
	z.l.Info("converged", zap.Int("steps", s.StepCount), zap.Int("k", s.K))
}
