// Package captcha selects the captcha widget variant for an instance from
// its core.captcha configuration.
package captcha

import (
	"context"
	"net/url"

	"github.com/kbukum/widgetkit/provider"
	"github.com/kbukum/widgetkit/state"
)

// Provider identifies a third-party captcha backend.
type Provider string

const (
	RecaptchaV2         Provider = "recaptcha_v2"
	RecaptchaEnterprise Provider = "recaptcha_enterprise"
	HCaptcha            Provider = "hcaptcha"
	FriendlyCaptcha     Provider = "friendly_captcha"
)

// Kind tells the UI layer which component to mount.
type Kind string

const (
	// KindInput is the built-in image challenge with a text input.
	KindInput Kind = "input"
	// KindExtended is a third-party widget driven by a site key.
	KindExtended Kind = "extended"
)

// Params are forwarded to the selected variant.
type Params struct {
	SiteKey string
}

// Variant describes the captcha component to render.
type Variant struct {
	Kind     Kind     `json:"kind"`
	Provider Provider `json:"provider,omitempty"`
	SiteKey  string   `json:"siteKey,omitempty"`
	// Script is the loader URL of a third-party SDK, without query string.
	Script string `json:"script,omitempty"`
	// Global is the browser global the SDK installs.
	Global string `json:"global,omitempty"`
	// ElementPrefix prefixes the DOM element the SDK renders into.
	ElementPrefix string `json:"elementPrefix,omitempty"`
}

// Extended reports whether v is a third-party widget.
func (v Variant) Extended() bool { return v.Kind == KindExtended }

// ScriptURL returns the SDK loader URL for the given UI language.
func (v Variant) ScriptURL(lang string) string {
	if v.Script == "" {
		return ""
	}
	if v.Provider == FriendlyCaptcha {
		return v.Script
	}
	q := url.Values{}
	q.Set("render", "explicit")
	if lang != "" {
		q.Set("hl", lang)
	}
	return v.Script + "?" + q.Encode()
}

func extended(p Provider, script, global, prefix string) provider.Entry[Params, Variant] {
	return provider.Entry[Params, Variant]{
		ID: string(p),
		Factory: func(params Params) Variant {
			return Variant{
				Kind:          KindExtended,
				Provider:      p,
				SiteKey:       params.SiteKey,
				Script:        script,
				Global:        global,
				ElementPrefix: prefix,
			}
		},
	}
}

var variants = provider.NewRegistry(
	func(Params) Variant { return Variant{Kind: KindInput} },
	extended(RecaptchaV2, "https://www.recaptcha.net/recaptcha/api.js", "grecaptcha", "recaptcha"),
	extended(RecaptchaEnterprise, "https://www.recaptcha.net/recaptcha/enterprise.js", "grecaptcha.enterprise", "recaptcha"),
	extended(HCaptcha, "https://js.hcaptcha.com/1/api.js", "hcaptcha", "hcaptcha"),
	extended(FriendlyCaptcha, "https://cdn.jsdelivr.net/npm/friendly-challenge@0.9.12/widget.module.min.js", "friendlyChallenge", "frc"),
)

// Select returns the variant for providerID. Unknown or empty identifiers
// select the built-in input variant, which ignores params.
func Select(providerID string, params Params) Variant {
	return variants.Select(providerID, params)
}

// Providers lists the supported third-party providers.
func Providers() []Provider {
	ids := variants.IDs()
	out := make([]Provider, len(ids))
	for i, id := range ids {
		out[i] = Provider(id)
	}
	return out
}

// ReloadFunc asks for a fresh challenge.
type ReloadFunc func(ctx context.Context) error

// Pane is the captcha region of the property bag.
type Pane struct {
	Variant    Variant    `json:"variant"`
	Required   bool       `json:"required"`
	Value      string     `json:"value,omitempty"`
	Generation int        `json:"generation"`
	Reload     ReloadFunc `json:"-"`
}

// NewPane resolves the captcha region for t.
func NewPane(t state.Tree, reload ReloadFunc) Pane {
	cfg := t.Core.Captcha
	return Pane{
		Variant:    Select(cfg.Provider, Params{SiteKey: cfg.SiteKey}),
		Required:   cfg.Required,
		Value:      t.Captcha.Value,
		Generation: t.Captcha.Generation,
		Reload:     reload,
	}
}

// Reloaded is the update applied when a new challenge is requested: the
// previous answer is discarded and the generation advances.
func Reloaded(t state.Tree) state.Tree {
	t.Captcha.Value = ""
	t.Captcha.Generation++
	return t
}
