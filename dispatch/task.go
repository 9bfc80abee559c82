package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/resilience"
	"github.com/kbukum/widgetkit/state"
)

// Work is an asynchronous completion, typically a network call. On success
// it returns the transform to apply; a nil transform leaves the tree as is.
type Work func(ctx context.Context) (state.Transform, error)

// Future is the handle of a running Async task.
type Future struct {
	done chan struct{}
	err  error
}

// Done is closed once the task has applied its single update.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the task resolves or ctx is done. It returns the work's
// error (or the update's, if the instance vanished meanwhile).
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Async runs work off the calling goroutine, retrying it per the
// configured policy and bounding it by AsyncTimeout. It resolves with
// exactly one Update: the work's transform on success, otherwise a
// transform that clears submitting and sets the global error.
func (d *Dispatcher) Async(ctx context.Context, id ident.ID, work Work) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.err = d.runTask(ctx, id, work)
	}()
	return f
}

// Submit marks the instance as submitting and then runs work with Async.
func (d *Dispatcher) Submit(ctx context.Context, id ident.ID, work Work) (*Future, error) {
	err := d.Update(ctx, id, func(t state.Tree) state.Tree {
		t.UI.Submitting = true
		t.GlobalError = ""
		t.GlobalSuccess = ""
		return t
	})
	if err != nil {
		return nil, err
	}
	return d.Async(ctx, id, work), nil
}

func (d *Dispatcher) runTask(ctx context.Context, id ident.ID, work Work) error {
	wctx := ctx
	if d.cfg.AsyncTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, d.cfg.AsyncTimeout)
		defer cancel()
	}

	start := time.Now()
	transform, workErr := resilience.Retry(wctx, d.cfg.Retry, func(ctx context.Context) (tr state.Transform, err error) {
		defer func() {
			if p := recover(); p != nil {
				tr, err = nil, errors.Internal(fmt.Errorf("async work panicked: %v", p))
			}
		}()
		return work(ctx)
	})
	if workErr != nil {
		if stderrors.Is(workErr, context.DeadlineExceeded) && ctx.Err() == nil {
			workErr = errors.Timeout("async completion").WithCause(workErr)
		}
		d.log.Warn("async completion failed", logger.Fields(
			logger.FieldInstanceID, id.String(),
			logger.FieldError, workErr.Error(),
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
		transform = failed(workErr)
	}

	// The outcome is applied even when the caller's context is gone.
	if err := d.Update(context.WithoutCancel(ctx), id, transform); err != nil {
		if workErr != nil {
			return stderrors.Join(workErr, err)
		}
		return err
	}
	return workErr
}

func failed(err error) state.Transform {
	msg := err.Error()
	if appErr, ok := errors.AsAppError(err); ok {
		msg = appErr.Message
	}
	return func(t state.Tree) state.Tree {
		return t.WithGlobalError(msg)
	}
}
