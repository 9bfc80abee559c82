package demo

import (
	"context"
	"testing"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/render"
	"github.com/kbukum/widgetkit/state"
)

func tree(screen string) state.Tree {
	return state.Build("lock1", "client", "tenant.auth0.com", state.Options{InitialScreen: screen}, state.Defaults{})
}

func TestRenderResolvesScreens(t *testing.T) {
	e := New(Actions{})
	for _, name := range []string{state.ScreenLoading, state.ScreenLogin, state.ScreenSignUp} {
		s, err := e.Render(tree(name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("screen name = %q, want %q", s.Name(), name)
		}
	}
	if _, err := e.Render(tree("nowhere")); err == nil {
		t.Error("expected error for unknown screen")
	}

	noSignUp := tree(state.ScreenSignUp)
	noSignUp.Core.AllowSignUp = false
	if _, err := e.Render(noSignUp); err == nil {
		t.Error("expected error when sign up is disabled")
	}
}

func TestSignUpSubmitWaitsForTerms(t *testing.T) {
	submit := render.Handler(func(context.Context, ident.ID, ...any) error { return nil })
	e := New(Actions{Submit: submit})

	tr := tree(state.ScreenSignUp)
	tr.Core.MustAcceptTerms = true
	s, _ := e.Render(tr)
	if s.SubmitHandler(tr) != nil {
		t.Error("submit available before terms were accepted")
	}
	if s.RenderTerms(tr, func(key string, _ map[string]string) string { return key }) == nil {
		t.Error("terms not rendered")
	}

	if render.DisableSubmit(s, tr) {
		t.Error("the sign-up screen gates submit through its handler, not disableSubmitButton")
	}

	tr.TermsAccepted = true
	if s.SubmitHandler(tr) == nil {
		t.Error("submit unavailable after terms were accepted")
	}
}

func TestBackNavigatesToLogin(t *testing.T) {
	var got string
	e := New(Actions{Navigate: func(_ context.Context, _ ident.ID, screen string) error {
		got = screen
		return nil
	}})
	tr := tree(state.ScreenSignUp)
	s, _ := e.Render(tr)
	if err := s.BackHandler(tr)(context.Background(), "lock1"); err != nil {
		t.Fatal(err)
	}
	if got != state.ScreenLogin {
		t.Errorf("navigated to %q", got)
	}
}

func TestHooks(t *testing.T) {
	e := New(Actions{})
	fn, ok := e.Hook(HookSubmitted)
	if !ok {
		t.Fatal("submitted hook missing")
	}
	res, err := fn(context.Background(), tree(state.ScreenLogin).WithGlobalError("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if res.(map[string]string)["error"] != "nope" {
		t.Errorf("result = %v", res)
	}
	if _, ok := e.Hook("absent"); ok {
		t.Error("absent hook reported present")
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	if err := Login(ctx, "lock1", "ana@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	if err := Login(ctx, "lock1", "ana@example.com"); !errors.IsInvalidArgument(err) {
		t.Errorf("missing password: %v", err)
	}
}
