// Package provider implements configuration-driven selection of exactly one
// implementation from a closed set.
//
// A Registry maps provider identifiers to factories and owns a default
// factory. Select is a pure function of the identifier: known identifiers
// build their variant from the supplied params, anything else (including
// the empty identifier) builds the default variant.
//
//	reg := provider.NewRegistry(newPlainInput,
//	    provider.Entry[Params, Widget]{ID: "hcaptcha", Factory: newHCaptcha},
//	)
//	w := reg.Select(cfg.Provider, Params{SiteKey: cfg.SiteKey})
//
// The set of entries is fixed at construction; there is no runtime
// registration.
package provider
