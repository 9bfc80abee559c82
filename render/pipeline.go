package render

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/widgetkit/bus"
	"github.com/kbukum/widgetkit/captcha"
	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/event"
	"github.com/kbukum/widgetkit/i18n"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/observability"
	"github.com/kbukum/widgetkit/state"
)

// HookCaptchaReload runs after the captcha challenge has been reloaded.
const HookCaptchaReload = "captchaReload"

// Render outcomes recorded in metrics.
const (
	OutcomeMounted   = "mounted"
	OutcomeUnmounted = "unmounted"
	OutcomeFailed    = "failed"
)

// Actions is the slice of the dispatcher the pipeline binds handlers to.
type Actions interface {
	Close(ctx context.Context, id ident.ID, immediate bool) error
	Update(ctx context.Context, id ident.ID, f state.Transform) error
	Emit(id ident.ID, name string, args ...any)
	RunHook(ctx context.Context, id ident.ID, name string, args ...any) (any, error)
}

// Config wires a Pipeline.
type Config struct {
	Engine     Engine
	Mounter    Mounter
	Translator i18n.Translator
	Actions    Actions
	Metrics    *observability.Metrics
}

// Pipeline renders one instance.
type Pipeline struct {
	id  ident.ID
	cfg Config
	log *logger.Logger

	mu         sync.Mutex
	lastScreen string
	last       *Props
}

// NewPipeline creates the pipeline of instance id. A nil Translator falls
// back to the built-in dictionary.
func NewPipeline(id ident.ID, cfg Config) *Pipeline {
	if cfg.Translator == nil {
		cfg.Translator = i18n.NewDictionary(nil)
	}
	return &Pipeline{
		id:  id,
		cfg: cfg,
		log: logger.Get("render").WithInstance(id.String()),
	}
}

// Subscribe registers the pipeline on the render channel of its instance.
func (p *Pipeline) Subscribe(b *bus.Bus) *bus.Subscription {
	return b.Observe(bus.ChannelRender, p.id, func(ctx context.Context, t state.Tree) {
		_ = p.Render(ctx, t)
	})
}

// Render applies t to the host UI. Engine failures leave the UI as it was,
// raise "render error" and come back as RENDER_FAILED.
func (p *Pipeline) Render(ctx context.Context, t state.Tree) (err error) {
	start := time.Now()
	ctx, span := observability.StartInstanceSpan(ctx, observability.SpanRender, p.id.String())
	outcome := OutcomeMounted
	defer func() {
		if err != nil {
			outcome = OutcomeFailed
		}
		p.cfg.Metrics.RecordRender(ctx, outcome, time.Since(start))
		observability.EndSpan(span, err)
	}()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !t.Rendering() {
		outcome = OutcomeUnmounted
		p.last = nil
		if err = p.cfg.Mounter.Unmount(ctx, t.UI.ContainerID); err != nil {
			p.log.Error("unmount failed", logger.Fields(
				logger.FieldContainerID, t.UI.ContainerID,
				logger.FieldError, err.Error(),
			))
		}
		return err
	}

	props, screen, err := p.build(t)
	if err != nil {
		p.fail(ctx, err)
		return err
	}
	span.SetAttributes(attribute.String(observability.AttrScreen, screen.Name()))

	if err = p.cfg.Mounter.Mount(ctx, t.UI.ContainerID, props); err != nil {
		p.log.Error("mount failed", logger.Fields(
			logger.FieldContainerID, t.UI.ContainerID,
			logger.FieldScreen, screen.Name(),
			logger.FieldError, err.Error(),
		))
		return err
	}
	p.last = &props
	p.transition(screen.Name())
	return nil
}

// Last returns the props most recently mounted, if the widget is on screen.
func (p *Pipeline) Last() (Props, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Props{}, false
	}
	return *p.last, true
}

// ScreenName returns the name of the last screen rendered.
func (p *Pipeline) ScreenName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastScreen
}

// Teardown removes the widget from its container regardless of state.
func (p *Pipeline) Teardown(ctx context.Context, containerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = nil
	return p.cfg.Mounter.Unmount(ctx, containerID)
}

// build resolves the screen and assembles the props. Panics raised by the
// engine or the screen are turned into errors.
func (p *Pipeline) build(t state.Tree) (props Props, screen Screen, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.RenderFailed(p.id.String(), fmt.Errorf("panic: %v", r))
		}
	}()

	screen, err = p.cfg.Engine.Render(t)
	if err != nil {
		return Props{}, nil, errors.RenderFailed(p.id.String(), err)
	}
	if screen == nil {
		return Props{}, nil, errors.RenderFailed(p.id.String(), stderrors.New("engine returned no screen"))
	}
	return p.props(t, screen), screen, nil
}

func (p *Pipeline) props(t state.Tree, screen Screen) Props {
	translate := p.translate(t.UI.Language)
	errMsg, successMsg := t.Status()

	props := Props{
		InstanceID:          p.id,
		ScreenName:          screen.Name(),
		AuxiliaryPane:       screen.RenderAuxiliaryPane(t),
		AutoFocus:           t.UI.AutoFocus,
		BadgeLink:           BadgeLink,
		Captcha:             captcha.NewPane(t, p.reloadCaptcha),
		Content:             screen.Render(),
		ContentProps:        ContentProps{Model: t, T: translate},
		DisableSubmitButton: DisableSubmit(screen, t),
		Error:               errMsg,
		Success:             successMsg,
		IsMobile:            t.UI.Mobile,
		IsModal:             t.UI.Modal,
		IsSubmitting:        t.UI.Submitting,
		Logo:                t.UI.Theme.Logo,
		PrimaryColor:        t.UI.Theme.PrimaryColor,
		Tabs:                screen.RenderTabs(t),
		Terms:               screen.RenderTerms(t, translate),
		Title:               p.title(t, translate),
		TransitionName:      TransitionFor(screen.Name()),
		BackHandler:         bind(screen.BackHandler(t), p.id),
		SubmitHandler:       bind(screen.SubmitHandler(t), p.id),
	}
	if t.AvatarReady() {
		props.Avatar = t.Avatar.URL
	}
	if t.UI.Closable {
		props.CloseHandler = p.close
	}
	props.Handlers = HandlerSet{
		Back:   props.BackHandler != nil,
		Close:  props.CloseHandler != nil,
		Submit: props.SubmitHandler != nil,
	}
	return props
}

func (p *Pipeline) title(t state.Tree, translate Translate) string {
	if t.AvatarReady() {
		return translate(i18n.KeyWelcome, map[string]string{"name": t.Avatar.DisplayName})
	}
	return translate(i18n.KeyTitle, nil)
}

func (p *Pipeline) translate(lang string) Translate {
	return func(key string, params map[string]string) string {
		return p.cfg.Translator.T(lang, key, params)
	}
}

func (p *Pipeline) close(ctx context.Context, _ ...any) error {
	return p.cfg.Actions.Close(ctx, p.id, false)
}

func (p *Pipeline) reloadCaptcha(ctx context.Context) error {
	if err := p.cfg.Actions.Update(ctx, p.id, captcha.Reloaded); err != nil {
		return err
	}
	_, err := p.cfg.Actions.RunHook(ctx, p.id, HookCaptchaReload)
	return err
}

// transition raises the ready events when the screen changes. Runs under
// p.mu.
func (p *Pipeline) transition(name string) {
	if name == p.lastScreen {
		return
	}
	p.lastScreen = name
	switch name {
	case state.ScreenLogin:
		p.cfg.Actions.Emit(p.id, event.SigninReady)
	case state.ScreenSignUp:
		p.cfg.Actions.Emit(p.id, event.SignupReady)
	}
}

func (p *Pipeline) fail(ctx context.Context, err error) {
	p.log.Error("render failed", logger.Fields(logger.FieldError, err.Error()))
	p.cfg.Metrics.RecordError(ctx, string(errors.ErrCodeRenderFailed), "render")
	p.cfg.Actions.Emit(p.id, event.RenderError, err)
}
