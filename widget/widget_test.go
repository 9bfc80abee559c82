package widget

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/widgetkit/config"
	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/event"
	"github.com/kbukum/widgetkit/hook"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/render"
	"github.com/kbukum/widgetkit/state"
	"github.com/kbukum/widgetkit/webapi"
)

type screen struct{ name string }

func (s screen) Name() string                                         { return s.name }
func (s screen) Render() render.Node                                  { return s.name }
func (s screen) RenderAuxiliaryPane(state.Tree) render.Node           { return nil }
func (s screen) RenderTabs(state.Tree) render.Node                    { return nil }
func (s screen) RenderTerms(state.Tree, render.Translate) render.Node { return nil }
func (s screen) BackHandler(state.Tree) render.Handler                { return nil }
func (s screen) SubmitHandler(state.Tree) render.Handler              { return nil }

type engine struct{ hooks hook.Map }

func (e engine) Render(t state.Tree) (render.Screen, error) { return screen{name: t.UI.Screen}, nil }
func (e engine) Hook(name string) (hook.Func, bool)         { return e.hooks.Hook(name) }

func login(context.Context, ident.ID, ...any) error { return nil }

func newRuntime(t *testing.T) (*Runtime, *render.MemoryMounter) {
	t.Helper()
	m := render.NewMemoryMounter()
	return NewRuntime(config.DefaultEngineConfig(), m), m
}

func TestNewAllocatesSequentialIDs(t *testing.T) {
	rt, _ := newRuntime(t)
	a, err := rt.New("client", "tenant.auth0.com", Options{}, login, engine{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := rt.New("client", "tenant.auth0.com", Options{}, login, engine{})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() != "lock1" || b.ID() != "lock2" {
		t.Errorf("ids = %s, %s", a.ID(), b.ID())
	}
	if len(rt.IDs()) != 2 {
		t.Errorf("IDs = %v", rt.IDs())
	}
}

func TestNewRejectsInvalidArguments(t *testing.T) {
	rt, _ := newRuntime(t)
	if _, err := rt.New("", "tenant.auth0.com", Options{}, login, engine{}); !errors.IsInvalidArgument(err) {
		t.Errorf("empty client id: %v", err)
	}
	if _, err := rt.New("client", "tenant.auth0.com", Options{}, nil, engine{}); !errors.IsInvalidArgument(err) {
		t.Errorf("nil login: %v", err)
	}
	if _, err := rt.New("client", "tenant.auth0.com", Options{}, login, nil); !errors.IsInvalidArgument(err) {
		t.Errorf("nil engine: %v", err)
	}
	w, err := rt.New("client", "tenant.auth0.com", Options{}, login, engine{})
	if err != nil {
		t.Fatal(err)
	}
	if w.ID() != "lock1" {
		t.Errorf("failed constructions consumed ids: got %s", w.ID())
	}
}

func TestNewFromMapIsStrict(t *testing.T) {
	rt, _ := newRuntime(t)
	_, err := rt.NewFromMap(map[string]any{"clientID": 42, "domain": "tenant.auth0.com"}, login, engine{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("numeric client id: %v", err)
	}
	_, err = rt.NewFromMap(map[string]any{"clientID": "c", "domain": "tenant.auth0.com", "bogus": true}, login, engine{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("unknown key: %v", err)
	}

	w, err := rt.NewFromMap(map[string]any{
		"clientID": "c",
		"domain":   "tenant.auth0.com",
		"options": map[string]any{
			"container": "inline",
			"closable":  true,
			"theme":     map[string]any{"primaryColor": "#ea5323"},
		},
	}, login, engine{})
	if err != nil {
		t.Fatal(err)
	}
	if w.ID() != "lock1" {
		t.Errorf("id = %s", w.ID())
	}
	tree, _ := w.State()
	if tree.UI.ContainerID != "inline" || tree.UI.Modal || !tree.UI.Closable || tree.UI.Theme.PrimaryColor != "#ea5323" {
		t.Errorf("options not applied: %+v", tree.UI)
	}
}

func TestShowMountsAndEmits(t *testing.T) {
	rt, m := newRuntime(t)
	w, err := rt.New("client", "tenant.auth0.com", Options{InitialScreen: state.ScreenLogin}, login, engine{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	w.On(event.Show, func(...any) { got = append(got, event.Show) })
	w.On(event.SigninReady, func(...any) { got = append(got, event.SigninReady) })

	if err := w.Show(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Props(w.ContainerID()); !ok {
		t.Fatal("widget not mounted")
	}
	props, ok := w.Props()
	if !ok || props.InstanceID != "lock1" {
		t.Errorf("props = %+v", props)
	}
	if len(got) != 2 {
		t.Errorf("events = %v", got)
	}

	if err := w.Hide(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Props(w.ContainerID()); ok {
		t.Error("hidden widget still mounted")
	}
}

func TestDestroyInvalidatesHandle(t *testing.T) {
	rt, m := newRuntime(t)
	w, _ := rt.New("client", "tenant.auth0.com", Options{}, login, engine{})
	ctx := context.Background()
	_ = w.Show(ctx)

	if err := w.Destroy(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Props(w.ContainerID()); ok {
		t.Error("destroyed widget still mounted")
	}
	if err := w.Show(ctx); !errors.IsNotFound(err) {
		t.Errorf("Show after Destroy: %v", err)
	}
	if _, err := w.State(); !errors.IsNotFound(err) {
		t.Errorf("State after Destroy: %v", err)
	}
	if err := w.Destroy(ctx); !errors.IsNotFound(err) {
		t.Errorf("second Destroy: %v", err)
	}
	if _, err := rt.Get(w.ID()); !errors.IsNotFound(err) {
		t.Errorf("runtime still holds widget: %v", err)
	}
}

func TestSetModelAndUpdate(t *testing.T) {
	rt, _ := newRuntime(t)
	w, _ := rt.New("client", "tenant.auth0.com", Options{}, login, engine{})
	ctx := context.Background()

	_ = w.Update(ctx, func(t state.Tree) state.Tree { return t.WithGlobalError("oops") })
	tree, _ := w.State()
	if tree.GlobalError != "oops" {
		t.Errorf("update not applied: %q", tree.GlobalError)
	}

	tree.UI.Screen = state.ScreenSignUp
	if err := w.SetModel(ctx, tree); err != nil {
		t.Fatal(err)
	}
	got, _ := w.State()
	if got.UI.Screen != state.ScreenSignUp {
		t.Errorf("screen = %q", got.UI.Screen)
	}
}

func TestHooksComeFromEngine(t *testing.T) {
	rt, _ := newRuntime(t)
	eng := engine{hooks: hook.Map{
		"ping": func(_ context.Context, t state.Tree, args ...any) (any, error) {
			return string(t.ID) + ":" + args[0].(string), nil
		},
	}}
	w, _ := rt.New("client", "tenant.auth0.com", Options{}, login, eng)

	got, err := w.RunHook(context.Background(), "ping", "pong")
	if err != nil {
		t.Fatal(err)
	}
	if got != "lock1:pong" {
		t.Errorf("hook result = %v", got)
	}
	if got, err := w.RunHook(context.Background(), "absent"); got != nil || err != nil {
		t.Errorf("absent hook = %v, %v", got, err)
	}
}

func TestLoadProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"ana","picture":"https://example.com/a.png"}`))
	}))
	defer srv.Close()

	rt, _ := newRuntime(t)
	api, err := webapi.NewClient(webapi.Config{ClientID: "client", Domain: "tenant.auth0.com", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	w, _ := rt.New("client", "tenant.auth0.com", Options{}, login, engine{}, WithAPI(api))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f, err := w.LoadProfile(ctx, "token")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	tree, _ := w.State()
	if !tree.AvatarReady() || tree.Avatar.DisplayName != "ana" {
		t.Errorf("avatar = %+v", tree.Avatar)
	}
}

func TestLoadProfileOnDestroyedWidget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	rt, _ := newRuntime(t)
	api, err := webapi.NewClient(webapi.Config{ClientID: "client", Domain: "tenant.auth0.com", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	w, _ := rt.New("client", "tenant.auth0.com", Options{}, login, engine{}, WithAPI(api))
	if err := w.Destroy(context.Background()); err != nil {
		t.Fatal(err)
	}

	f, err := w.LoadProfile(context.Background(), "token")
	if f != nil || !errors.IsNotFound(err) {
		t.Fatalf("LoadProfile = %v, %v; want NOT_FOUND", f, err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("expected no profile request, got %d", n)
	}
}

func TestConcurrentConstruction(t *testing.T) {
	rt, _ := newRuntime(t)
	var wg sync.WaitGroup
	ids := make(chan ident.ID, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := rt.New("client", "tenant.auth0.com", Options{}, login, engine{})
			if err != nil {
				t.Error(err)
				return
			}
			ids <- w.ID()
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[ident.ID]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != 20 {
		t.Errorf("got %d ids", len(seen))
	}
}

func TestRuntimeClose(t *testing.T) {
	rt, m := newRuntime(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		w, _ := rt.New("client", "tenant.auth0.com", Options{}, login, engine{})
		_ = w.Show(ctx)
	}
	if err := rt.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if len(rt.IDs()) != 0 || len(m.Mounted()) != 0 {
		t.Errorf("runtime not empty: %v %v", rt.IDs(), m.Mounted())
	}
}
