package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/widgetkit/component"
)

// Component wraps a Hub for the component registry.
type Component struct {
	hub  *Hub
	path string
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component around a fresh Hub served at path.
func NewComponent(path string) *Component {
	return &Component{hub: NewHub(), path: path}
}

// Hub returns the underlying Hub.
func (c *Component) Hub() *Hub { return c.hub }

// Name implements component.Component.
func (c *Component) Name() string { return "sse" }

// Start implements component.Component. The hub needs no background work.
func (c *Component) Start(context.Context) error { return nil }

// Stop disconnects every client.
func (c *Component) Stop(context.Context) error {
	c.hub.Stop()
	return nil
}

// Health implements component.Component.
func (c *Component) Health(context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.hub.ClientCount()),
	}
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	return component.Description{Name: "SSE Hub", Type: "sse", Details: "path: " + c.path}
}
