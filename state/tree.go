package state

import (
	"github.com/kbukum/widgetkit/ident"
)

// SyncStatus is the fetch state of the avatar preview.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncOK      SyncStatus = "ok"
	SyncError   SyncStatus = "error"
)

// Well-known screen names.
const (
	ScreenLoading = "loading"
	ScreenLogin   = "login"
	ScreenSignUp  = "signUp"
)

// Theme carries the host's branding values.
type Theme struct {
	PrimaryColor string `json:"primaryColor,omitempty"`
	Logo         string `json:"logo,omitempty"`
}

// UI holds transient UI flags.
type UI struct {
	Visible     bool   `json:"visible"`
	Screen      string `json:"screen"`
	Submitting  bool   `json:"submitting"`
	Mobile      bool   `json:"mobile"`
	Modal       bool   `json:"modal"`
	Closable    bool   `json:"closable"`
	AutoFocus   bool   `json:"autofocus"`
	Avatar      bool   `json:"avatar"`
	Theme       Theme  `json:"theme"`
	ContainerID string `json:"containerID"`
	Language    string `json:"language"`
}

// CaptchaConfig is the captcha configuration fixed at setup time.
// An empty Provider selects the built-in input challenge.
type CaptchaConfig struct {
	Provider string `json:"provider,omitempty"`
	SiteKey  string `json:"siteKey,omitempty"`
	Required bool   `json:"required"`
}

// Core holds durable configuration.
type Core struct {
	Captcha         CaptchaConfig `json:"captcha"`
	MustAcceptTerms bool          `json:"mustAcceptTerms"`
	AllowSignUp     bool          `json:"allowSignUp"`
}

// Avatar is the identity preview. The zero value means no preview.
type Avatar struct {
	SyncStatus  SyncStatus `json:"syncStatus,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	URL         string     `json:"url,omitempty"`
}

// Present reports whether an avatar preview exists.
func (a Avatar) Present() bool { return a.SyncStatus != "" }

// CaptchaState is the runtime side of the captcha region.
type CaptchaState struct {
	Value      string `json:"value,omitempty"`
	Generation int    `json:"generation"`
}

// Tree is the immutable configuration and runtime state of one instance.
type Tree struct {
	ID            ident.ID     `json:"id"`
	ClientID      string       `json:"clientID"`
	Domain        string       `json:"domain"`
	UI            UI           `json:"ui"`
	Core          Core         `json:"core"`
	Avatar        Avatar       `json:"avatar"`
	Captcha       CaptchaState `json:"captcha"`
	TermsAccepted bool         `json:"termsAccepted"`
	GlobalError   string       `json:"globalError,omitempty"`
	GlobalSuccess string       `json:"globalSuccess,omitempty"`

	screens Regions
}

// Rendering reports whether the widget should be on screen.
func (t Tree) Rendering() bool { return t.UI.Visible }

// AvatarReady reports whether the avatar preview may be shown.
func (t Tree) AvatarReady() bool {
	return t.UI.Avatar && t.Avatar.Present() && t.Avatar.SyncStatus == SyncOK
}

// TermsSatisfied reports whether sign-up may proceed with respect to terms.
func (t Tree) TermsSatisfied() bool {
	return !t.Core.MustAcceptTerms || t.TermsAccepted
}

// Status returns the global error and success messages. When both are set
// the error wins.
func (t Tree) Status() (errMsg, successMsg string) {
	if t.GlobalError != "" {
		return t.GlobalError, ""
	}
	return "", t.GlobalSuccess
}

// Screens returns the screen-owned regions.
func (t Tree) Screens() Regions { return t.screens }

// WithScreens returns a copy of t with the screen regions replaced.
func (t Tree) WithScreens(r Regions) Tree {
	t.screens = r
	return t
}

// WithScreen returns a copy of t with one screen region set.
func (t Tree) WithScreen(key string, v any) Tree {
	t.screens = t.screens.With(key, v)
	return t
}

// WithGlobalError sets the error message and clears success and submitting.
func (t Tree) WithGlobalError(msg string) Tree {
	t.GlobalError = msg
	t.GlobalSuccess = ""
	t.UI.Submitting = false
	return t
}

// WithGlobalSuccess sets the success message and clears error and submitting.
func (t Tree) WithGlobalSuccess(msg string) Tree {
	t.GlobalSuccess = msg
	t.GlobalError = ""
	t.UI.Submitting = false
	return t
}

// Reset clears transient state left behind by a closed widget.
func (t Tree) Reset() Tree {
	t.GlobalError = ""
	t.GlobalSuccess = ""
	t.UI.Submitting = false
	t.Captcha.Value = ""
	return t
}

// Transform derives a new tree from the current one. Transforms must be
// pure: they receive a copy and return the replacement.
type Transform func(Tree) Tree
