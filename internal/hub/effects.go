package hub

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// EffectHook observes the outcome of every best-effort side effect; err is nil
// on success. It must not block.
type EffectHook func(name string, err error)

// effectRunner executes durable side effects of relayed events. Failures are
// logged and reported to the hook, never retried and never returned to the
// client.
type effectRunner struct {
	logger  *zap.Logger
	hook    EffectHook
	wg      sync.WaitGroup
	pending atomic.Int64
	failed  atomic.Uint64
}

func newEffectRunner(logger *zap.Logger, hook EffectHook) *effectRunner {
	return &effectRunner{logger: logger, hook: hook}
}

// run executes fn inline, detached from the hub's lifetime so a write in
// flight at shutdown still completes. The error is returned only so the caller
// can pick a branch (e.g. an empty message id); it must not be surfaced as a
// failure.
func (r *effectRunner) run(name string, fn func(context.Context) error) error {
	r.pending.Add(1)
	defer r.pending.Add(-1)

	err := fn(context.Background())
	r.report(name, err)
	return err
}

// goRun executes fn on its own goroutine; Stop waits for it.
func (r *effectRunner) goRun(name string, fn func(context.Context) error) {
	r.wg.Add(1)
	r.pending.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.pending.Add(-1)
		r.report(name, fn(context.Background()))
	}()
}

func (r *effectRunner) report(name string, err error) {
	if err != nil {
		r.failed.Add(1)
		r.logger.Error("side effect failed", zap.String("effect", name), zap.Error(err))
	}
	if r.hook != nil {
		r.hook(name, err)
	}
}

func (r *effectRunner) wait() {
	r.wg.Wait()
}
