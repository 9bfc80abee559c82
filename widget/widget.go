package widget

import (
	"context"

	"github.com/kbukum/widgetkit/dispatch"
	"github.com/kbukum/widgetkit/event"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/render"
	"github.com/kbukum/widgetkit/state"
	"github.com/kbukum/widgetkit/webapi"
)

// Widget is a handle on one instance. After Destroy every method that
// touches the instance fails with NOT_FOUND.
type Widget struct {
	id          ident.ID
	rt          *Runtime
	emitter     *event.Emitter
	pipeline    *render.Pipeline
	api         webapi.API
	containerID string
}

// ID returns the instance id.
func (w *Widget) ID() ident.ID { return w.id }

// ContainerID returns the container the widget mounts into.
func (w *Widget) ContainerID() string { return w.containerID }

// Show opens the widget.
func (w *Widget) Show(ctx context.Context) error {
	return w.rt.d.Open(ctx, w.id)
}

// Hide closes the widget immediately.
func (w *Widget) Hide(ctx context.Context) error {
	return w.rt.d.Close(ctx, w.id, true)
}

// Close closes the widget the way its close button does: only when
// closable, keeping transient state for the exit animation of a modal.
func (w *Widget) Close(ctx context.Context) error {
	return w.rt.d.Close(ctx, w.id, false)
}

// Destroy unmounts the widget and discards the instance.
func (w *Widget) Destroy(ctx context.Context) error {
	if err := w.rt.d.Remove(ctx, w.id); err != nil {
		return err
	}
	w.rt.forget(w.id)
	if err := w.pipeline.Teardown(ctx, w.containerID); err != nil {
		w.rt.log.Warn("teardown failed", logger.Fields(logger.FieldInstanceID, w.id.String(), logger.FieldError, err.Error()))
	}
	return nil
}

// Update applies f to the widget state and re-renders.
func (w *Widget) Update(ctx context.Context, f state.Transform) error {
	return w.rt.d.Update(ctx, w.id, f)
}

// SetModel replaces the widget state wholesale. The id and the captcha
// configuration set at construction are kept.
func (w *Widget) SetModel(ctx context.Context, t state.Tree) error {
	return w.rt.d.Update(ctx, w.id, func(state.Tree) state.Tree { return t })
}

// State returns the current state.
func (w *Widget) State() (state.Tree, error) {
	return w.rt.d.Get(w.id)
}

// Props returns the props last mounted, if the widget is on screen.
func (w *Widget) Props() (render.Props, bool) {
	return w.pipeline.Last()
}

// RunHook runs a host hook against the current state.
func (w *Widget) RunHook(ctx context.Context, name string, args ...any) (any, error) {
	return w.rt.d.RunHook(ctx, w.id, name, args...)
}

// Login invokes the host's login callback.
func (w *Widget) Login(ctx context.Context, args ...any) error {
	return w.rt.d.Login(ctx, w.id, args...)
}

// Submit marks the widget as submitting and resolves work asynchronously.
func (w *Widget) Submit(ctx context.Context, work dispatch.Work) (*dispatch.Future, error) {
	return w.rt.d.Submit(ctx, w.id, work)
}

// On registers fn for the named event and returns a function removing it.
func (w *Widget) On(name string, fn event.Listener) (off func()) {
	return w.emitter.On(name, fn)
}

// Once registers fn for the next emission of name.
func (w *Widget) Once(name string, fn event.Listener) (off func()) {
	return w.emitter.Once(name, fn)
}

// Off removes every listener of name.
func (w *Widget) Off(name string) {
	w.emitter.Off(name)
}

// GetProfile fetches the user profile for token.
func (w *Widget) GetProfile(ctx context.Context, token string) (webapi.Profile, error) {
	return w.api.GetProfile(ctx, token)
}

// ParseHash parses an authentication redirect fragment.
func (w *Widget) ParseHash(ctx context.Context, hash string) (*webapi.HashResult, error) {
	return w.api.ParseHash(ctx, hash)
}

// Logout returns the URL that ends the user's session.
func (w *Widget) Logout(p webapi.LogoutParams) string {
	return w.api.LogoutURL(p)
}

// LoadProfile marks the avatar pending, then fetches the profile of token
// in the background and shows the user's name and picture once it arrives.
// Nothing is fetched if the avatar cannot be marked.
func (w *Widget) LoadProfile(ctx context.Context, token string) (*dispatch.Future, error) {
	err := w.Update(ctx, func(t state.Tree) state.Tree {
		t.Avatar = state.Avatar{SyncStatus: state.SyncPending}
		return t
	})
	if err != nil {
		return nil, err
	}
	return w.rt.d.Async(ctx, w.id, func(ctx context.Context) (state.Transform, error) {
		profile, err := w.api.GetProfile(ctx, token)
		if err != nil {
			return nil, err
		}
		name, _ := profile["name"].(string)
		picture, _ := profile["picture"].(string)
		return func(t state.Tree) state.Tree {
			t.Avatar = state.Avatar{SyncStatus: state.SyncOK, DisplayName: name, URL: picture}
			return t
		}, nil
	}), nil
}
