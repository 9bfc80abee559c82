package widget

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/widgetkit/bus"
	"github.com/kbukum/widgetkit/config"
	"github.com/kbukum/widgetkit/dispatch"
	apperrors "github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/event"
	"github.com/kbukum/widgetkit/hook"
	"github.com/kbukum/widgetkit/i18n"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/observability"
	"github.com/kbukum/widgetkit/render"
	"github.com/kbukum/widgetkit/state"
	"github.com/kbukum/widgetkit/webapi"
)

// Options is the per-instance configuration.
type Options = state.Options

// LoginFunc is the host's login callback.
type LoginFunc = dispatch.LoginFunc

// Spec is the loosely typed construction input accepted by NewFromMap.
type Spec struct {
	ClientID string  `mapstructure:"clientID"`
	Domain   string  `mapstructure:"domain"`
	Options  Options `mapstructure:"options"`
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithMetrics records engine metrics.
func WithMetrics(m *observability.Metrics) RuntimeOption {
	return func(r *Runtime) { r.metrics = m }
}

// WithAllocator overrides the allocator built from the configuration.
func WithAllocator(a ident.Allocator) RuntimeOption {
	return func(r *Runtime) { r.alloc = a }
}

// Runtime owns the state store, the observation bus and the dispatcher
// shared by all its widgets.
type Runtime struct {
	cfg     config.EngineConfig
	store   *state.Store
	bus     *bus.Bus
	d       *dispatch.Dispatcher
	alloc   ident.Allocator
	mounter render.Mounter
	metrics *observability.Metrics
	log     *logger.Logger

	mu      sync.RWMutex
	widgets map[ident.ID]*Widget
}

// NewRuntime creates a Runtime that mounts widgets through mounter.
func NewRuntime(cfg config.EngineConfig, mounter render.Mounter, opts ...RuntimeOption) *Runtime {
	cfg.ApplyDefaults()
	r := &Runtime{
		cfg:     cfg,
		store:   state.NewStore(),
		mounter: mounter,
		log:     logger.Get("widget"),
		widgets: make(map[ident.ID]*Widget),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.alloc == nil {
		r.alloc = cfg.NewAllocator()
	}
	if r.mounter == nil {
		r.mounter = render.NewMemoryMounter()
	}
	r.bus = bus.New(r.store)
	r.d = dispatch.New(r.store, r.bus, cfg.Dispatch(), r.metrics)
	return r
}

// Option configures one Widget.
type Option func(*settings)

type settings struct {
	api        webapi.API
	hooks      hook.Provider
	translator i18n.Translator
}

// WithAPI replaces the network collaborator.
func WithAPI(api webapi.API) Option {
	return func(s *settings) { s.api = api }
}

// WithHooks sets the hooks. By default they come from the engine when it
// implements hook.Provider.
func WithHooks(h hook.Provider) Option {
	return func(s *settings) { s.hooks = h }
}

// WithTranslator replaces the message dictionary.
func WithTranslator(t i18n.Translator) Option {
	return func(s *settings) { s.translator = t }
}

// New creates a widget, hidden until Show. Invalid arguments fail with
// INVALID_ARGUMENT and allocate no id.
func (r *Runtime) New(clientID, domain string, opts Options, login LoginFunc, engine render.Engine, options ...Option) (*Widget, error) {
	if engine == nil {
		return nil, apperrors.InvalidArgument("engine", "engine is required")
	}

	var s settings
	for _, o := range options {
		o(&s)
	}
	if s.hooks == nil {
		if hp, ok := engine.(hook.Provider); ok {
			s.hooks = hp
		}
	}
	if s.translator == nil {
		s.translator = i18n.NewDictionary(opts.LanguageDictionary)
	}
	if s.api == nil {
		api, err := webapi.NewClient(webapi.Config{
			ClientID: clientID,
			Domain:   domain,
			Timeout:  r.cfg.APITimeout,
			Retry:    r.cfg.Retry,
			TLS:      r.cfg.TLS,
		})
		if err != nil {
			return nil, err
		}
		s.api = api
	}

	emitter := event.NewEmitter()
	params := dispatch.Params{
		ClientID: clientID,
		Domain:   domain,
		Options:  opts,
		Login:    login,
		Hooks:    s.hooks,
		Emit:     func(name string, args ...any) { emitter.Emit(name, args...) },
	}
	if err := dispatch.ValidateParams(params); err != nil {
		return nil, err
	}

	id := r.alloc.Next()
	if err := r.d.Setup(context.Background(), id, params); err != nil {
		return nil, err
	}
	tree, err := r.d.Get(id)
	if err != nil {
		return nil, err
	}

	w := &Widget{
		id:          id,
		rt:          r,
		emitter:     emitter,
		api:         s.api,
		containerID: tree.UI.ContainerID,
		pipeline: render.NewPipeline(id, render.Config{
			Engine:     engine,
			Mounter:    r.mounter,
			Translator: s.translator,
			Actions:    r.d,
			Metrics:    r.metrics,
		}),
	}
	w.pipeline.Subscribe(r.bus)

	r.mu.Lock()
	r.widgets[id] = w
	r.mu.Unlock()
	return w, nil
}

// NewFromMap decodes raw strictly into a Spec and creates the widget.
// Mistyped or unknown fields fail with INVALID_ARGUMENT before any id is
// allocated.
func (r *Runtime) NewFromMap(raw map[string]any, login LoginFunc, engine render.Engine, options ...Option) (*Widget, error) {
	spec, err := DecodeSpec(raw)
	if err != nil {
		return nil, err
	}
	return r.New(spec.ClientID, spec.Domain, spec.Options, login, engine, options...)
}

// DecodeSpec decodes raw without weak typing: a number where a string is
// expected is an error.
func DecodeSpec(raw map[string]any) (Spec, error) {
	var spec Spec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &spec,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return Spec{}, apperrors.Internal(err)
	}
	if err := dec.Decode(raw); err != nil {
		return Spec{}, apperrors.InvalidArgument("options", err.Error()).WithCause(err)
	}
	return spec, nil
}

// Get returns the live widget with id.
func (r *Runtime) Get(id ident.ID) (*Widget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.widgets[id]
	if !ok {
		return nil, apperrors.NotFound("widget", id.String())
	}
	return w, nil
}

// IDs returns the ids of the live widgets, sorted.
func (r *Runtime) IDs() []ident.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ident.ID, 0, len(r.widgets))
	for id := range r.widgets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close destroys every widget.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	for _, id := range r.IDs() {
		w, err := r.Get(id)
		if err != nil {
			continue
		}
		if err := w.Destroy(ctx); err != nil && !apperrors.IsNotFound(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Runtime) forget(id ident.ID) {
	r.mu.Lock()
	delete(r.widgets, id)
	r.mu.Unlock()
}
