package render

import (
	"context"

	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/state"
)

// Node is an opaque piece of host UI content.
type Node = any

// Handler is a screen action that still needs the instance id.
type Handler func(ctx context.Context, id ident.ID, args ...any) error

// BoundHandler is a Handler with the instance id applied.
type BoundHandler func(ctx context.Context, args ...any) error

// Translate looks up a message in the instance's language.
type Translate func(key string, params map[string]string) string

// Screen is one view of the widget, supplied by the host engine. Any
// region method may return nil for "nothing to show"; a nil handler means
// the action is unavailable.
type Screen interface {
	Name() string
	Render() Node
	RenderAuxiliaryPane(t state.Tree) Node
	RenderTabs(t state.Tree) Node
	RenderTerms(t state.Tree, translate Translate) Node
	BackHandler(t state.Tree) Handler
	SubmitHandler(t state.Tree) Handler
}

// Engine resolves the screen to show for a tree. Hooks are offered by
// engines that also implement hook.Provider.
type Engine interface {
	Render(t state.Tree) (Screen, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(t state.Tree) (Screen, error)

// Render implements Engine.
func (f EngineFunc) Render(t state.Tree) (Screen, error) { return f(t) }

func bind(h Handler, id ident.ID) BoundHandler {
	if h == nil {
		return nil
	}
	return func(ctx context.Context, args ...any) error {
		return h(ctx, id, args...)
	}
}
