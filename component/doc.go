// Package component manages the lifecycle of the long-lived parts of a
// widget host process (telemetry exporters, the SSE hub, the HTTP
// listener, the widget set itself).
//
// Components start in registration order and stop in reverse order:
//
//	r := component.NewRegistry()
//	_ = r.Register(telemetry)
//	_ = r.Register(hub)
//	if err := r.StartAll(ctx); err != nil { ... }
//	defer r.StopAll(ctx)
package component
