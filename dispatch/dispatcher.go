package dispatch

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/widgetkit/bus"
	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/event"
	"github.com/kbukum/widgetkit/hook"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/observability"
	"github.com/kbukum/widgetkit/resilience"
	"github.com/kbukum/widgetkit/state"
	"github.com/kbukum/widgetkit/validation"
)

// Operation names used in spans, metrics and logs.
const (
	OpSetup  = "setup"
	OpOpen   = "open"
	OpClose  = "close"
	OpUpdate = "update"
	OpRemove = "remove"
)

const resourceInstance = "instance"

// LoginFunc is the host's login callback. The engine stores it and never
// calls it itself; screens reach it through Dispatcher.Login.
type LoginFunc func(ctx context.Context, id ident.ID, args ...any) error

// Config holds dispatcher-wide settings.
type Config struct {
	// CloseDelay is how long a modal widget keeps its transient state after
	// a non-immediate close, matching its exit animation.
	CloseDelay time.Duration
	// AsyncTimeout bounds Async work. Zero means no timeout.
	AsyncTimeout time.Duration
	Retry        resilience.RetryConfig
	Defaults     state.Defaults
}

// DefaultConfig returns the dispatcher defaults.
func DefaultConfig() Config {
	return Config{
		CloseDelay: time.Second,
		Retry:      resilience.RetryConfig{MaxAttempts: 1},
		Defaults: state.Defaults{
			ContainerPrefix: "auth0-lock-container-",
			Language:        "en",
			InitialScreen:   state.ScreenLoading,
		},
	}
}

// Params are the per-instance arguments of Setup.
type Params struct {
	ClientID string
	Domain   string
	Options  state.Options
	Login    LoginFunc
	// Hooks may be nil, making every hook absent.
	Hooks hook.Provider
	// Emit receives the instance's events. Nil discards them.
	Emit event.EmitFunc
}

type pendingEvent struct {
	name string
	args []any
}

// instance is the engine-side record of one widget besides its tree.
type instance struct {
	id     ident.ID
	login  LoginFunc
	hooks  *hook.Runner
	emitFn event.EmitFunc

	// mu serializes dispatches.
	mu      sync.Mutex
	removed bool

	// qmu guards the event queue and the busy flag.
	qmu   sync.Mutex
	busy  bool
	queue []pendingEvent

	resetTimer *time.Timer
	// resetGen identifies the live delayed reset; a timer that fired
	// after being superseded sees a newer value and does nothing.
	resetGen uint64
}

// Dispatcher applies actions to instances held in a state.Store and
// notifies observers through a bus.Bus.
type Dispatcher struct {
	store   *state.Store
	bus     *bus.Bus
	cfg     Config
	metrics *observability.Metrics
	log     *logger.Logger

	mu        sync.RWMutex
	instances map[ident.ID]*instance
}

// New creates a Dispatcher. metrics may be nil.
func New(store *state.Store, b *bus.Bus, cfg Config, metrics *observability.Metrics) *Dispatcher {
	if cfg.Defaults.ContainerPrefix == "" {
		cfg.Defaults.ContainerPrefix = DefaultConfig().Defaults.ContainerPrefix
	}
	return &Dispatcher{
		store:     store,
		bus:       b,
		cfg:       cfg,
		metrics:   metrics,
		log:       logger.Get("dispatch"),
		instances: make(map[ident.ID]*instance),
	}
}

// Setup validates the arguments, builds the initial tree and registers the
// instance. It fails with ALREADY_EXISTS if id is taken and with
// INVALID_ARGUMENT if an argument is rejected; nothing is stored on failure.
func (d *Dispatcher) Setup(ctx context.Context, id ident.ID, p Params) (err error) {
	start := time.Now()
	ctx, span := d.startSpan(ctx, OpSetup, id)
	defer func() { d.finish(ctx, span, OpSetup, id, start, err) }()

	if err = ValidateParams(p); err != nil {
		return err
	}

	inst := &instance{
		id:     id,
		login:  p.Login,
		hooks:  hook.NewRunner(d.store, p.Hooks, d.metrics),
		emitFn: p.Emit,
	}

	d.mu.Lock()
	if _, taken := d.instances[id]; taken || d.store.Has(id) {
		d.mu.Unlock()
		return errors.AlreadyExists(resourceInstance, id.String())
	}
	tree := state.Build(id, p.ClientID, p.Domain, p.Options, d.cfg.Defaults)
	if err = d.store.Insert(id, tree); err != nil {
		d.mu.Unlock()
		return err
	}
	d.instances[id] = inst
	d.mu.Unlock()

	d.metrics.InstanceCreated(ctx)
	d.log.Info("instance set up", logger.Fields(
		logger.FieldInstanceID, id.String(),
		logger.FieldContainerID, tree.UI.ContainerID,
	))

	inst.mu.Lock()
	inst.begin()
	_, err = d.bus.Publish(ctx, bus.ChannelRender, id)
	events := inst.end()
	inst.mu.Unlock()
	inst.deliver(events)
	return err
}

// ValidateParams checks Setup arguments without touching any state.
func ValidateParams(p Params) error {
	if err := validation.New().
		Required("clientID", p.ClientID).
		Required("domain", p.Domain).
		Hostname("domain", p.Domain).
		Custom(p.Login != nil, "loginCallback", "is required").
		Validate(); err != nil {
		return err
	}
	return validation.Validate(p.Options)
}

// Open makes the widget visible and emits "show". Opening a visible
// widget is a no-op.
func (d *Dispatcher) Open(ctx context.Context, id ident.ID) error {
	return d.dispatch(ctx, OpOpen, id, func(inst *instance, t state.Tree) (state.Tree, bool) {
		if t.UI.Visible {
			return t, false
		}
		inst.stopReset()
		t.UI.Visible = true
		inst.enqueue(event.Show)
		return t, true
	})
}

// Close hides the widget and emits "hide". Unless immediate, it only acts
// when the widget is closable. A modal widget closed without immediate
// keeps its transient state until CloseDelay has passed; otherwise the
// state is reset in the same dispatch. Closing a hidden widget is a no-op.
func (d *Dispatcher) Close(ctx context.Context, id ident.ID, immediate bool) error {
	return d.dispatch(ctx, OpClose, id, func(inst *instance, t state.Tree) (state.Tree, bool) {
		if !t.UI.Visible || (!immediate && !t.UI.Closable) {
			return t, false
		}
		t.UI.Visible = false
		if t.UI.Modal && !immediate && d.cfg.CloseDelay > 0 {
			gen := inst.scheduleReset(d.cfg.CloseDelay, func(gen uint64) { d.resetAfterClose(id, gen) })
			d.log.Debug("reset scheduled", logger.Fields(
				logger.FieldInstanceID, id.String(),
				"generation", gen,
			))
		} else {
			t = t.Reset()
		}
		inst.enqueue(event.Hide)
		return t, true
	})
}

// Update replaces the tree with f applied to it and re-renders. The
// instance id and the captcha configuration set at setup cannot be
// changed by f.
func (d *Dispatcher) Update(ctx context.Context, id ident.ID, f state.Transform) error {
	return d.dispatch(ctx, OpUpdate, id, func(_ *instance, t state.Tree) (state.Tree, bool) {
		if f == nil {
			return t, true
		}
		next := f(t)
		next.ID = t.ID
		next.Core.Captcha = t.Core.Captcha
		return next, true
	})
}

// Remove discards the instance's state and subscriptions. Any later
// operation on id fails with NOT_FOUND.
func (d *Dispatcher) Remove(ctx context.Context, id ident.ID) (err error) {
	start := time.Now()
	ctx, span := d.startSpan(ctx, OpRemove, id)
	defer func() { d.finish(ctx, span, OpRemove, id, start, err) }()

	inst, err := d.lookup(id)
	if err != nil {
		return err
	}

	inst.mu.Lock()
	if inst.removed {
		inst.mu.Unlock()
		return errors.NotFound(resourceInstance, id.String())
	}
	inst.removed = true
	inst.stopReset()
	d.mu.Lock()
	delete(d.instances, id)
	d.mu.Unlock()
	d.store.Remove(id)
	d.bus.Forget(id)
	inst.mu.Unlock()

	d.metrics.InstanceRemoved(ctx)
	d.log.Info("instance removed", logger.Fields(logger.FieldInstanceID, id.String()))
	return nil
}

// Emit raises an event on the instance. During a dispatch it is queued
// until the dispatch has rendered; otherwise it is delivered at once.
// Events for unknown instances are dropped.
func (d *Dispatcher) Emit(id ident.ID, name string, args ...any) {
	inst, err := d.lookup(id)
	if err != nil {
		return
	}
	inst.qmu.Lock()
	if inst.busy {
		inst.queue = append(inst.queue, pendingEvent{name: name, args: args})
		inst.qmu.Unlock()
		return
	}
	inst.qmu.Unlock()
	inst.deliver([]pendingEvent{{name: name, args: args}})
}

// RunHook runs a host hook for the instance.
func (d *Dispatcher) RunHook(ctx context.Context, id ident.ID, name string, args ...any) (any, error) {
	inst, err := d.lookup(id)
	if err != nil {
		return nil, err
	}
	return inst.hooks.Run(ctx, id, name, args...)
}

// Login invokes the host's login callback for the instance.
func (d *Dispatcher) Login(ctx context.Context, id ident.ID, args ...any) error {
	inst, err := d.lookup(id)
	if err != nil {
		return err
	}
	return inst.login(ctx, id, args...)
}

// Get returns the current tree of id.
func (d *Dispatcher) Get(id ident.ID) (state.Tree, error) {
	return d.store.Get(id)
}

// Has reports whether id is set up.
func (d *Dispatcher) Has(id ident.ID) bool {
	_, err := d.lookup(id)
	return err == nil
}

// step is one dispatch's transform. It returns false to leave state alone
// and skip rendering.
type step func(inst *instance, t state.Tree) (state.Tree, bool)

func (d *Dispatcher) dispatch(ctx context.Context, op string, id ident.ID, fn step) (err error) {
	start := time.Now()
	ctx, span := d.startSpan(ctx, op, id)
	defer func() { d.finish(ctx, span, op, id, start, err) }()

	inst, err := d.lookup(id)
	if err != nil {
		return err
	}

	inst.mu.Lock()
	if inst.removed {
		inst.mu.Unlock()
		return errors.NotFound(resourceInstance, id.String())
	}
	inst.begin()
	err = d.apply(ctx, inst, id, fn)
	events := inst.end()
	inst.mu.Unlock()

	inst.deliver(events)
	return err
}

func (d *Dispatcher) apply(ctx context.Context, inst *instance, id ident.ID, fn step) error {
	current, err := d.store.Get(id)
	if err != nil {
		return err
	}
	next, changed := fn(inst, current)
	if !changed {
		return nil
	}
	d.store.Set(id, next)
	_, err = d.bus.Publish(ctx, bus.ChannelRender, id)
	return err
}

// resetAfterClose clears transient state once the close delay has passed,
// unless the reset was superseded or the widget is visible again.
func (d *Dispatcher) resetAfterClose(id ident.ID, gen uint64) {
	err := d.dispatch(context.Background(), OpUpdate, id, func(inst *instance, t state.Tree) (state.Tree, bool) {
		if inst.resetGen != gen || t.UI.Visible {
			return t, false
		}
		inst.resetTimer = nil
		return t.Reset(), true
	})
	if err != nil && !errors.IsNotFound(err) {
		d.log.Warn("reset after close failed", logger.ErrorFields(OpClose, err))
	}
}

func (d *Dispatcher) lookup(id ident.ID) (*instance, error) {
	d.mu.RLock()
	inst, ok := d.instances[id]
	d.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(resourceInstance, id.String())
	}
	return inst, nil
}

func (d *Dispatcher) startSpan(ctx context.Context, op string, id ident.ID) (context.Context, trace.Span) {
	return observability.StartInstanceSpan(ctx, observability.SpanDispatchPrefix+op, id.String(),
		attribute.String(observability.AttrOperation, op))
}

func (d *Dispatcher) finish(ctx context.Context, span trace.Span, op string, id ident.ID, start time.Time, err error) {
	elapsed := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
		d.metrics.RecordError(ctx, string(errorCode(err)), "dispatch")
		d.log.Debug("dispatch failed", logger.Fields(
			logger.FieldOperation, op,
			logger.FieldInstanceID, id.String(),
			logger.FieldError, err.Error(),
		))
	} else {
		d.log.Debug("dispatch", logger.Fields(
			logger.FieldOperation, op,
			logger.FieldInstanceID, id.String(),
			logger.FieldDuration, elapsed.Milliseconds(),
		))
	}
	d.metrics.RecordDispatch(ctx, op, status, elapsed)
	observability.EndSpan(span, err)
}

func errorCode(err error) errors.ErrorCode {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Code
	}
	return errors.ErrCodeInternal
}

func (i *instance) begin() {
	i.qmu.Lock()
	i.busy = true
	i.qmu.Unlock()
}

// end clears the busy flag and hands back the events queued during the
// dispatch.
func (i *instance) end() []pendingEvent {
	i.qmu.Lock()
	defer i.qmu.Unlock()
	i.busy = false
	events := i.queue
	i.queue = nil
	return events
}

func (i *instance) enqueue(name string, args ...any) {
	i.qmu.Lock()
	i.queue = append(i.queue, pendingEvent{name: name, args: args})
	i.qmu.Unlock()
}

func (i *instance) deliver(events []pendingEvent) {
	if i.emitFn == nil {
		return
	}
	for _, e := range events {
		i.emitFn(e.name, e.args...)
	}
}

// scheduleReset and stopReset run under i.mu. Both advance resetGen, so
// a timer that already fired cannot act on a newer lifecycle.
func (i *instance) scheduleReset(delay time.Duration, fn func(gen uint64)) uint64 {
	i.stopReset()
	gen := i.resetGen
	i.resetTimer = time.AfterFunc(delay, func() { fn(gen) })
	return gen
}

func (i *instance) stopReset() {
	i.resetGen++
	if i.resetTimer != nil {
		i.resetTimer.Stop()
		i.resetTimer = nil
	}
}
