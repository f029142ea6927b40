package application

import (
	"context"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// SideEffectRunner executes post-commit steps. Failures and panics are logged and never
// reach the caller, whose operation has already succeeded.
type SideEffectRunner struct {
	async  bool
	wg     conc.WaitGroup
	logger *zap.Logger
}

// NewSideEffectRunner creates a runner. With async set, Run returns immediately and the
// step runs on its own goroutine detached from the request's cancellation.
func NewSideEffectRunner(async bool, logger *zap.Logger) *SideEffectRunner {
	return &SideEffectRunner{async: async, logger: logger}
}

// Run executes fn under the step name, tagging any failure log with fields.
func (r *SideEffectRunner) Run(ctx context.Context, step string, fields []zap.Field, fn func(ctx context.Context)) {
	if !r.async {
		r.runContained(ctx, step, fields, fn)
		return
	}

	detached := context.WithoutCancel(ctx)
	r.wg.Go(func() {
		r.runContained(detached, step, fields, fn)
	})
}

// Wait blocks until all async steps have finished. Used on shutdown and in tests.
func (r *SideEffectRunner) Wait() {
	r.wg.Wait()
}

func (r *SideEffectRunner) runContained(ctx context.Context, step string, fields []zap.Field, fn func(ctx context.Context)) {
	var pc panics.Catcher
	pc.Try(func() { fn(ctx) })
	if rec := pc.Recovered(); rec != nil {
		logFields := make([]zap.Field, 0, len(fields)+3)
		logFields = append(logFields, fields...)
		logFields = append(logFields,
			zap.String("step", step),
			zap.Any("panic", rec.Value),
			zap.String("stack", string(rec.Stack)),
		)
		r.logger.Error("post-commit step panicked", logFields...)
	}
}
