package render

import (
	"github.com/kbukum/widgetkit/captcha"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/state"
)

// BadgeLink is the attribution link shown in the widget footer.
const BadgeLink = "https://auth0.com/?utm_source=lock&utm_campaign=badge&utm_medium=widget"

// SignUpScreenName is the screen whose submit button waits for the terms
// to be accepted.
const SignUpScreenName = "main.signUp"

// Transition names.
const (
	TransitionFade           = "fade"
	TransitionHorizontalFade = "horizontal-fade"
)

// ContentProps is handed to the screen content.
type ContentProps struct {
	Model state.Tree `json:"model"`
	T     Translate  `json:"-"`
}

// HandlerSet reports which actions are bound, for hosts that only see the
// serialized bag.
type HandlerSet struct {
	Back   bool `json:"back"`
	Close  bool `json:"close"`
	Submit bool `json:"submit"`
}

// Props is the property bag passed to the mount primitive.
type Props struct {
	InstanceID          ident.ID     `json:"instanceID"`
	ScreenName          string       `json:"screenName"`
	Avatar              string       `json:"avatar,omitempty"`
	AuxiliaryPane       Node         `json:"auxiliaryPane,omitempty"`
	AutoFocus           bool         `json:"autofocus"`
	BadgeLink           string       `json:"badgeLink"`
	Captcha             captcha.Pane `json:"captcha"`
	Content             Node         `json:"content,omitempty"`
	ContentProps        ContentProps `json:"contentProps"`
	DisableSubmitButton bool         `json:"disableSubmitButton"`
	Error               string       `json:"error,omitempty"`
	Success             string       `json:"success,omitempty"`
	IsMobile            bool         `json:"isMobile"`
	IsModal             bool         `json:"isModal"`
	IsSubmitting        bool         `json:"isSubmitting"`
	Logo                string       `json:"logo,omitempty"`
	PrimaryColor        string       `json:"primaryColor,omitempty"`
	Tabs                Node         `json:"tabs,omitempty"`
	Terms               Node         `json:"terms,omitempty"`
	Title               string       `json:"title"`
	TransitionName      string       `json:"transitionName"`
	Handlers            HandlerSet   `json:"handlers"`

	BackHandler   BoundHandler `json:"-"`
	CloseHandler  BoundHandler `json:"-"`
	SubmitHandler BoundHandler `json:"-"`
}

// DisableSubmit reports whether the submit button must be disabled.
func DisableSubmit(screen Screen, t state.Tree) bool {
	return screen.Name() == SignUpScreenName && !t.TermsSatisfied()
}

// TransitionFor returns the transition used when showing screenName.
func TransitionFor(screenName string) string {
	if screenName == state.ScreenLoading {
		return TransitionFade
	}
	return TransitionHorizontalFade
}
