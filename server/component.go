package server

import (
	"context"

	"github.com/kbukum/widgetkit/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component adapts a Server to the component registry.
type Component struct {
	server *Server
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name implements component.Component.
func (c *Component) Name() string { return componentName }

// Start implements component.Component.
func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

// Stop implements component.Component.
func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

// Health implements component.Component.
func (c *Component) Health(context.Context) component.Health {
	if c.server.listener == nil {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: c.server.Addr(),
	}
}
