// Package bootstrap runs a widgetkit host process: it starts registered
// components, runs lifecycle hooks, waits for a shutdown signal and stops
// everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	_ = app.RegisterComponent(server.NewComponent(srv))
//	app.OnStop(func(ctx context.Context) error { return rt.Close(ctx) })
//	return app.Run(ctx)
package bootstrap
