// Package widget is the public face of the engine: a Runtime holds the
// shared instance arena and each Widget is a handle on one instance.
//
//	rt := widget.NewRuntime(config.DefaultEngineConfig(), mounter)
//	w, err := rt.New("client-id", "tenant.auth0.com", widget.Options{}, login, engine)
//	w.On(event.SigninReady, func(...any) { ... })
//	_ = w.Show(ctx)
//
// Widgets built from loosely typed input (JSON bodies, script bindings)
// go through NewFromMap, which rejects mistyped fields before any id is
// allocated.
package widget
