package hook

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/state"
)

func newStore() *state.Store {
	s := state.NewStore()
	s.Set("lock-1", state.Build("lock-1", "client", "domain", state.Options{}, state.Defaults{}))
	return s
}

func TestRunAbsentHookIsNoop(t *testing.T) {
	for name, hooks := range map[string]Provider{"nil provider": nil, "empty map": Map{}, "nil func": Map{"x": nil}} {
		t.Run(name, func(t *testing.T) {
			r := NewRunner(newStore(), hooks, nil)
			got, err := r.Run(context.Background(), "lock-1", "x")
			if err != nil || got != nil {
				t.Errorf("expected (nil, nil), got (%v, %v)", got, err)
			}
		})
	}
}

func TestRunAbsentHookOnUnknownInstance(t *testing.T) {
	r := NewRunner(newStore(), Map{}, nil)
	if _, err := r.Run(context.Background(), "ghost", "x"); err != nil {
		t.Errorf("absent hooks never fail, got %v", err)
	}
}

func TestRunPassesCurrentTreeAndArgs(t *testing.T) {
	store := newStore()
	var gotScreen string
	var gotArgs []any
	r := NewRunner(store, Map{
		"signingIn": func(_ context.Context, tree state.Tree, args ...any) (any, error) {
			gotScreen = tree.UI.Screen
			gotArgs = args
			return "proceed", nil
		},
	}, nil)

	tree, _ := store.Get("lock-1")
	tree.UI.Screen = state.ScreenLogin
	store.Set("lock-1", tree)

	res, err := r.Bind("lock-1")(context.Background(), "signingIn", "a", 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res != "proceed" {
		t.Errorf("expected hook result, got %v", res)
	}
	if gotScreen != state.ScreenLogin {
		t.Errorf("expected current snapshot, got screen %q", gotScreen)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "a" || gotArgs[1] != 2 {
		t.Errorf("unexpected args %v", gotArgs)
	}
}

func TestRunCannotMutateStore(t *testing.T) {
	store := newStore()
	r := NewRunner(store, Map{
		"tamper": func(_ context.Context, tree state.Tree, _ ...any) (any, error) {
			tree.GlobalError = "hacked"
			tree.UI.Visible = true
			return nil, nil
		},
	}, nil)

	if _, err := r.Run(context.Background(), "lock-1", "tamper"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	tree, _ := store.Get("lock-1")
	if tree.GlobalError != "" || tree.UI.Visible {
		t.Error("hooks only see a copy of the tree")
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	boom := stderrors.New("boom")
	r := NewRunner(newStore(), Map{
		"fails":  func(context.Context, state.Tree, ...any) (any, error) { return nil, boom },
		"panics": func(context.Context, state.Tree, ...any) (any, error) { panic("kaput") },
	}, nil)

	_, err := r.Run(context.Background(), "lock-1", "fails")
	if !errors.HasCode(err, errors.ErrCodeHookFailed) || !stderrors.Is(err, boom) {
		t.Errorf("expected HOOK_FAILED wrapping boom, got %v", err)
	}

	_, err = r.Run(context.Background(), "lock-1", "panics")
	if !errors.HasCode(err, errors.ErrCodeHookFailed) {
		t.Errorf("expected panic converted to HOOK_FAILED, got %v", err)
	}
}

func TestRunPresentHookOnUnknownInstance(t *testing.T) {
	r := NewRunner(newStore(), Map{"x": func(context.Context, state.Tree, ...any) (any, error) { return 1, nil }}, nil)
	if _, err := r.Run(context.Background(), "ghost", "x"); !errors.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
