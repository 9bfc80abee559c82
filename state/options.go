package state

import (
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/util"
)

// ThemeOptions configures branding.
type ThemeOptions struct {
	PrimaryColor string `mapstructure:"primaryColor" json:"primaryColor" validate:"omitempty,iscolor"`
	Logo         string `mapstructure:"logo" json:"logo" validate:"omitempty,url"`
}

// CaptchaOptions configures the captcha region.
type CaptchaOptions struct {
	Provider string `mapstructure:"provider" json:"provider"`
	SiteKey  string `mapstructure:"siteKey" json:"siteKey" validate:"max=256"`
	Required bool   `mapstructure:"required" json:"required"`
}

// Options is the per-instance structured configuration supplied by the host.
// Pointer fields distinguish "unset" from an explicit false.
type Options struct {
	Container          string            `mapstructure:"container" json:"container" validate:"max=256"`
	Closable           *bool             `mapstructure:"closable" json:"closable"`
	AutoFocus          *bool             `mapstructure:"autofocus" json:"autofocus"`
	Avatar             *bool             `mapstructure:"avatar" json:"avatar"`
	AllowSignUp        *bool             `mapstructure:"allowSignUp" json:"allowSignUp"`
	Mobile             bool              `mapstructure:"mobile" json:"mobile"`
	MustAcceptTerms    bool              `mapstructure:"mustAcceptTerms" json:"mustAcceptTerms"`
	InitialScreen      string            `mapstructure:"initialScreen" json:"initialScreen" validate:"max=64"`
	Language           string            `mapstructure:"language" json:"language" validate:"omitempty,min=2,max=16"`
	LanguageDictionary map[string]string `mapstructure:"languageDictionary" json:"languageDictionary"`
	Theme              ThemeOptions      `mapstructure:"theme" json:"theme"`
	Captcha            CaptchaOptions    `mapstructure:"captcha" json:"captcha"`
}

// Defaults are engine-wide values applied beneath Options.
type Defaults struct {
	ContainerPrefix string
	Language        string
	InitialScreen   string
}

// Build creates the initial Tree for an instance: defaults first, then
// options on top.
func Build(id ident.ID, clientID, domain string, opts Options, d Defaults) Tree {
	t := Tree{
		ID:       id,
		ClientID: clientID,
		Domain:   domain,
		UI: UI{
			Screen:   util.Coalesce(opts.InitialScreen, d.InitialScreen, ScreenLoading),
			Closable: true,
			Language: util.Coalesce(opts.Language, d.Language, "en"),
			Mobile:   opts.Mobile,
			Theme: Theme{
				PrimaryColor: opts.Theme.PrimaryColor,
				Logo:         opts.Theme.Logo,
			},
		},
		Core: Core{
			Captcha: CaptchaConfig{
				Provider: opts.Captcha.Provider,
				SiteKey:  opts.Captcha.SiteKey,
				Required: opts.Captcha.Required,
			},
			MustAcceptTerms: opts.MustAcceptTerms,
		},
	}

	// An explicit container renders inline; otherwise the widget is a modal
	// appended to a generated container.
	if opts.Container != "" {
		t.UI.ContainerID = opts.Container
	} else {
		t.UI.Modal = true
		t.UI.ContainerID = d.ContainerPrefix + id.String()
	}

	if opts.Closable != nil {
		t.UI.Closable = *opts.Closable
	} else if !t.UI.Modal {
		t.UI.Closable = false
	}
	t.UI.AutoFocus = util.Deref(util.Coalesce(opts.AutoFocus, util.Ptr(true)))
	t.UI.Avatar = util.Deref(util.Coalesce(opts.Avatar, util.Ptr(true)))
	t.Core.AllowSignUp = util.Deref(util.Coalesce(opts.AllowSignUp, util.Ptr(true)))
	return t
}
