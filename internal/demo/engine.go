// Package demo is the screen engine served by widgetd: a loading screen,
// a login form and a sign-up form with terms.
package demo

import (
	"context"
	"fmt"

	"github.com/kbukum/widgetkit/hook"
	"github.com/kbukum/widgetkit/i18n"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/render"
	"github.com/kbukum/widgetkit/state"
)

// Hook names the engine offers.
const (
	HookSubmitted = "submitted"
	HookScreens   = "screens"
)

// Actions are the widget operations the screens' handlers trigger.
type Actions struct {
	// Submit starts a login with the form arguments.
	Submit render.Handler
	// Navigate switches the instance to another screen.
	Navigate func(ctx context.Context, id ident.ID, screen string) error
}

// Engine resolves screens from ui.screen.
type Engine struct {
	actions Actions
	hooks   hook.Map
}

var (
	_ render.Engine = (*Engine)(nil)
	_ hook.Provider = (*Engine)(nil)
)

// New creates an Engine.
func New(actions Actions) *Engine {
	log := logger.Get("demo")
	return &Engine{
		actions: actions,
		hooks: hook.Map{
			render.HookCaptchaReload: func(_ context.Context, t state.Tree, _ ...any) (any, error) {
				log.Debug("captcha reloaded", logger.Fields(logger.FieldInstanceID, t.ID.String(), "generation", t.Captcha.Generation))
				return nil, nil
			},
			HookSubmitted: func(_ context.Context, t state.Tree, _ ...any) (any, error) {
				errMsg, successMsg := t.Status()
				return map[string]string{"error": errMsg, "success": successMsg}, nil
			},
			HookScreens: func(_ context.Context, t state.Tree, _ ...any) (any, error) {
				return t.Screens().Keys(), nil
			},
		},
	}
}

// Render implements render.Engine.
func (e *Engine) Render(t state.Tree) (render.Screen, error) {
	switch t.UI.Screen {
	case state.ScreenLoading:
		return loading{}, nil
	case state.ScreenLogin:
		return login{e: e}, nil
	case state.ScreenSignUp:
		if !t.Core.AllowSignUp {
			return nil, fmt.Errorf("sign up is disabled")
		}
		return signUp{e: e}, nil
	default:
		return nil, fmt.Errorf("unknown screen %q", t.UI.Screen)
	}
}

// Hook implements hook.Provider.
func (e *Engine) Hook(name string) (hook.Func, bool) {
	return e.hooks.Hook(name)
}

func (e *Engine) navigate(screen string) render.Handler {
	if e.actions.Navigate == nil {
		return nil
	}
	return func(ctx context.Context, id ident.ID, _ ...any) error {
		return e.actions.Navigate(ctx, id, screen)
	}
}

// Node is the content of a screen region.
type Node struct {
	Kind   string   `json:"kind"`
	Fields []string `json:"fields,omitempty"`
	Text   string   `json:"text,omitempty"`
	Links  []string `json:"links,omitempty"`
}

type loading struct{}

func (loading) Name() string                                         { return state.ScreenLoading }
func (loading) Render() render.Node                                  { return Node{Kind: "spinner"} }
func (loading) RenderAuxiliaryPane(state.Tree) render.Node           { return nil }
func (loading) RenderTabs(state.Tree) render.Node                    { return nil }
func (loading) RenderTerms(state.Tree, render.Translate) render.Node { return nil }
func (loading) BackHandler(state.Tree) render.Handler                { return nil }
func (loading) SubmitHandler(state.Tree) render.Handler              { return nil }

type login struct{ e *Engine }

func (login) Name() string                               { return state.ScreenLogin }
func (login) Render() render.Node                        { return Node{Kind: "form", Fields: []string{"email", "password"}} }
func (login) RenderAuxiliaryPane(state.Tree) render.Node { return nil }

func (login) RenderTabs(t state.Tree) render.Node {
	if !t.Core.AllowSignUp {
		return nil
	}
	return Node{Kind: "tabs", Links: []string{state.ScreenLogin, state.ScreenSignUp}}
}

func (login) RenderTerms(state.Tree, render.Translate) render.Node { return nil }
func (login) BackHandler(state.Tree) render.Handler                { return nil }

func (s login) SubmitHandler(state.Tree) render.Handler { return s.e.actions.Submit }

// signUp reports the bare screen name, so render.DisableSubmit (keyed on
// render.SignUpScreenName) never fires for it and disableSubmitButton
// stays false. The screen withholds its submit handler until the terms
// are accepted instead.
type signUp struct{ e *Engine }

func (signUp) Name() string { return state.ScreenSignUp }

func (signUp) Render() render.Node {
	return Node{Kind: "form", Fields: []string{"email", "password", "username"}}
}

func (signUp) RenderAuxiliaryPane(state.Tree) render.Node { return nil }

func (signUp) RenderTabs(state.Tree) render.Node {
	return Node{Kind: "tabs", Links: []string{state.ScreenLogin, state.ScreenSignUp}}
}

func (signUp) RenderTerms(t state.Tree, translate render.Translate) render.Node {
	if !t.Core.MustAcceptTerms {
		return nil
	}
	return Node{Kind: "terms", Text: translate(i18n.KeyTerms, nil)}
}

func (s signUp) BackHandler(state.Tree) render.Handler { return s.e.navigate(state.ScreenLogin) }

func (s signUp) SubmitHandler(t state.Tree) render.Handler {
	if !t.TermsSatisfied() {
		return nil
	}
	return s.e.actions.Submit
}
