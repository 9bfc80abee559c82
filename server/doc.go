// Package server hosts the gin HTTP engine of widgetd as a lifecycle
// component, with the standard middleware stack and JSON response helpers.
//
//	srv := server.New(cfg.HTTP, logger.Get("server"))
//	srv.ApplyDefaults(cfg.Name, registry.HealthAll)
//	srv.Engine().POST("/widgets", create)
//	_ = registry.Register(server.NewComponent(srv))
package server
