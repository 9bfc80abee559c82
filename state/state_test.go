package state

import (
	"reflect"
	"sync"
	"testing"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/ident"
)

var testDefaults = Defaults{ContainerPrefix: "auth0-lock-container-"}

func boolPtr(b bool) *bool { return &b }

func TestBuildDefaults(t *testing.T) {
	tree := Build("lock-1", "client", "tenant.example.com", Options{}, testDefaults)

	if tree.UI.Visible {
		t.Error("new instances start hidden")
	}
	if tree.UI.Screen != ScreenLoading {
		t.Errorf("expected initial screen %q, got %q", ScreenLoading, tree.UI.Screen)
	}
	if !tree.UI.Modal {
		t.Error("expected modal when no container is given")
	}
	if tree.UI.ContainerID != "auth0-lock-container-lock-1" {
		t.Errorf("unexpected container id %q", tree.UI.ContainerID)
	}
	if !tree.UI.Closable || !tree.UI.AutoFocus || !tree.UI.Avatar {
		t.Errorf("expected closable/autofocus/avatar defaults, got %+v", tree.UI)
	}
	if tree.UI.Language != "en" {
		t.Errorf("expected language en, got %q", tree.UI.Language)
	}
	if tree.Core.Captcha.Provider != "" {
		t.Errorf("expected no captcha provider, got %q", tree.Core.Captcha.Provider)
	}
}

func TestBuildAppliesOptions(t *testing.T) {
	opts := Options{
		Container:     "login-box",
		AutoFocus:     boolPtr(false),
		Avatar:        boolPtr(false),
		Mobile:        true,
		InitialScreen: ScreenLogin,
		Language:      "es",
		Theme:         ThemeOptions{PrimaryColor: "#ea5323", Logo: "https://example.com/logo.png"},
		Captcha:       CaptchaOptions{Provider: "hcaptcha", SiteKey: "mySiteKey", Required: true},
	}
	tree := Build("lock-2", "client", "tenant", opts, testDefaults)

	if tree.UI.Modal {
		t.Error("explicit container renders inline")
	}
	if tree.UI.ContainerID != "login-box" {
		t.Errorf("expected container login-box, got %q", tree.UI.ContainerID)
	}
	if tree.UI.Closable {
		t.Error("inline widgets are not closable unless asked")
	}
	if tree.UI.AutoFocus || tree.UI.Avatar {
		t.Error("expected explicit false options to win")
	}
	if tree.UI.Screen != ScreenLogin || tree.UI.Language != "es" || !tree.UI.Mobile {
		t.Errorf("unexpected ui %+v", tree.UI)
	}
	want := CaptchaConfig{Provider: "hcaptcha", SiteKey: "mySiteKey", Required: true}
	if tree.Core.Captcha != want {
		t.Errorf("expected captcha %+v, got %+v", want, tree.Core.Captcha)
	}
}

func TestRegionsAreImmutable(t *testing.T) {
	var r Regions
	a := r.With("login", "form-a")
	b := a.With("signUp", "form-b")

	if r.Len() != 0 {
		t.Errorf("zero value must stay empty, got %d", r.Len())
	}
	if a.Len() != 1 || b.Len() != 2 {
		t.Errorf("unexpected lengths a=%d b=%d", a.Len(), b.Len())
	}
	c := b.Without("login")
	if _, ok := b.Get("login"); !ok {
		t.Error("Without must not modify the receiver")
	}
	if _, ok := c.Get("login"); ok {
		t.Error("expected login removed from copy")
	}
	if got := b.Keys(); !reflect.DeepEqual(got, []string{"login", "signUp"}) {
		t.Errorf("expected sorted keys, got %v", got)
	}
}

func TestTreeCopySemantics(t *testing.T) {
	store := NewStore()
	orig := Build("lock-1", "c", "d", Options{}, testDefaults).WithScreen("login", 1)
	store.Set(orig.ID, orig)

	got, _ := store.Get(orig.ID)
	got.UI.Visible = true
	_ = got.WithScreen("login", 2)

	again, _ := store.Get(orig.ID)
	if again.UI.Visible {
		t.Error("mutating a fetched copy must not change the stored tree")
	}
	if v, _ := again.Screens().Get("login"); v != 1 {
		t.Errorf("expected stored region untouched, got %v", v)
	}
}

func TestTreeHelpers(t *testing.T) {
	tree := Build("lock-1", "c", "d", Options{MustAcceptTerms: true}, testDefaults)

	if tree.AvatarReady() {
		t.Error("no avatar yet")
	}
	tree.Avatar = Avatar{SyncStatus: SyncPending}
	if tree.AvatarReady() {
		t.Error("pending avatar is not ready")
	}
	tree.Avatar.SyncStatus = SyncOK
	if !tree.AvatarReady() {
		t.Error("expected ready avatar")
	}

	if tree.TermsSatisfied() {
		t.Error("terms must be accepted first")
	}
	tree.TermsAccepted = true
	if !tree.TermsSatisfied() {
		t.Error("expected terms satisfied")
	}

	tree.UI.Submitting = true
	tree = tree.WithGlobalSuccess("ok").WithGlobalError("bad")
	if e, s := tree.Status(); e != "bad" || s != "" {
		t.Errorf("expected error to win, got %q/%q", e, s)
	}
	if tree.UI.Submitting {
		t.Error("a status message ends submission")
	}

	tree.Captcha.Value = "abc"
	tree = tree.Reset()
	if tree.GlobalError != "" || tree.Captcha.Value != "" {
		t.Errorf("expected transient state cleared, got %+v", tree)
	}
}

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()
	id := ident.ID("lock-1")

	if _, err := store.Get(id); !errors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	tree := Build(id, "c", "d", Options{}, testDefaults)
	if err := store.Insert(id, tree); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(id, tree); !errors.HasCode(err, errors.ErrCodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS, got %v", err)
	}
	if !store.Has(id) || store.Len() != 1 {
		t.Error("expected one live instance")
	}
	if !store.Remove(id) {
		t.Error("expected Remove to report existing id")
	}
	if store.Remove(id) {
		t.Error("second Remove reports nothing removed")
	}
	if _, err := store.Get(id); !errors.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND after remove, got %v", err)
	}
}

func TestStoreConcurrentIsolation(t *testing.T) {
	store := NewStore()
	a, b := ident.ID("a"), ident.ID("b")
	store.Set(a, Build(a, "c", "d", Options{}, testDefaults))
	store.Set(b, Build(b, "c", "d", Options{}, testDefaults))
	before, _ := store.Get(b)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, _ := store.Get(a)
			tree.Captcha.Generation = i
			store.Set(a, tree)
		}()
	}
	wg.Wait()

	after, _ := store.Get(b)
	if !reflect.DeepEqual(before, after) {
		t.Error("writes to a must never be observable at b")
	}
	if got := store.IDs(); !reflect.DeepEqual(got, []ident.ID{"a", "b"}) {
		t.Errorf("expected sorted ids, got %v", got)
	}
}
