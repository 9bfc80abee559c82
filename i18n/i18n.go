// Package i18n resolves UI strings for the render pipeline.
package i18n

import (
	"maps"
	"sort"
	"strings"
)

// Translator resolves a string key for a language. Params fill {name}
// style placeholders.
type Translator interface {
	T(lang, key string, params map[string]string) string
}

// Keys used by the engine itself.
const (
	KeyTitle   = "title"
	KeyWelcome = "welcome"
	KeyTerms   = "signUpTerms"
)

// fallbackLanguage is consulted when a key is missing for the requested one.
const fallbackLanguage = "en"

var builtin = map[string]map[string]string{
	"en": {
		KeyTitle:   "Log In",
		KeyWelcome: "Welcome {name}!",
		KeyTerms:   "By signing up, you agree to our terms of service and privacy policy.",
	},
	"es": {
		KeyTitle:   "Iniciar sesión",
		KeyWelcome: "¡Bienvenido {name}!",
		KeyTerms:   "Al registrarse, acepta nuestros términos de servicio y política de privacidad.",
	},
	"fr": {
		KeyTitle:   "Connexion",
		KeyWelcome: "Bienvenue {name} !",
		KeyTerms:   "En vous inscrivant, vous acceptez nos conditions d'utilisation et notre politique de confidentialité.",
	},
}

// Dictionary is the default Translator: built-in languages plus
// per-instance overrides that apply to every language.
type Dictionary struct {
	overrides map[string]string
}

// NewDictionary creates a Dictionary with the given overrides.
func NewDictionary(overrides map[string]string) *Dictionary {
	return &Dictionary{overrides: maps.Clone(overrides)}
}

// T resolves key. Unknown keys resolve to the key itself.
func (d *Dictionary) T(lang, key string, params map[string]string) string {
	s, ok := d.overrides[key]
	if !ok {
		s, ok = builtin[lang][key]
	}
	if !ok {
		s, ok = builtin[fallbackLanguage][key]
	}
	if !ok {
		s = key
	}
	return interpolate(s, params)
}

// Languages returns the built-in language codes.
func Languages() []string {
	langs := make([]string, 0, len(builtin))
	for l := range builtin {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

func interpolate(s string, params map[string]string) string {
	if len(params) == 0 {
		return s
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
