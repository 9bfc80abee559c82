// Package hook runs optional host-supplied functions at named lifecycle
// points. Hooks get a copy of the current State Tree and can change state
// only by dispatching an update through the widget.
package hook

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/observability"
	"github.com/kbukum/widgetkit/state"
)

// Func is a host hook. It receives the instance's current tree followed by
// the caller's arguments.
type Func func(ctx context.Context, t state.Tree, args ...any) (any, error)

// Provider looks up hooks by name. Host engines implement it to expose
// extension points.
type Provider interface {
	Hook(name string) (Func, bool)
}

// Map is a Provider backed by a map.
type Map map[string]Func

// Hook returns the hook registered under name.
func (m Map) Hook(name string) (Func, bool) {
	fn, ok := m[name]
	return fn, ok && fn != nil
}

// RunFunc is a Runner bound to one instance.
type RunFunc func(ctx context.Context, name string, args ...any) (any, error)

// Runner invokes hooks with read-only state access.
type Runner struct {
	reader  state.Reader
	hooks   Provider
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewRunner creates a Runner. A nil hooks provider makes every hook absent.
func NewRunner(reader state.Reader, hooks Provider, metrics *observability.Metrics) *Runner {
	return &Runner{
		reader:  reader,
		hooks:   hooks,
		metrics: metrics,
		log:     logger.Get("hook"),
	}
}

// Run invokes hook name for instance id. An absent hook is a no-op that
// returns (nil, nil). Errors and panics raised by the hook come back as
// HOOK_FAILED wrapping the original error.
func (r *Runner) Run(ctx context.Context, id ident.ID, name string, args ...any) (result any, err error) {
	var fn Func
	ok := false
	if r.hooks != nil {
		fn, ok = r.hooks.Hook(name)
	}
	if !ok {
		r.metrics.RecordHook(ctx, name, "absent")
		return nil, nil
	}

	t, err := r.reader.Get(id)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartInstanceSpan(ctx, observability.SpanHook, id.String(),
		attribute.String(observability.AttrHook, name))
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			r.log.Error("hook failed", logger.Fields(
				logger.FieldHook, name,
				logger.FieldInstanceID, id.String(),
				logger.FieldError, err.Error(),
			))
		}
		r.metrics.RecordHook(ctx, name, status)
		observability.EndSpan(span, err)
	}()
	defer func() {
		if p := recover(); p != nil {
			result, err = nil, errors.HookFailed(name, fmt.Errorf("panic: %v", p))
		}
	}()

	result, err = fn(ctx, t, args...)
	if err != nil {
		return nil, errors.HookFailed(name, err)
	}
	return result, nil
}

// Bind returns a RunFunc for id.
func (r *Runner) Bind(id ident.ID) RunFunc {
	return func(ctx context.Context, name string, args ...any) (any, error) {
		return r.Run(ctx, id, name, args...)
	}
}
