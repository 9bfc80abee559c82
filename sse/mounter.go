package sse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kbukum/widgetkit/render"
)

// unmountPayload is the body of an unmount frame.
type unmountPayload struct {
	ContainerID string `json:"containerID"`
}

// Mounter publishes mounts and unmounts as frames on the container's
// topic. Handlers in the props are not serialized; Props.Handlers tells
// clients which actions exist.
type Mounter struct {
	b Broadcaster
}

var _ render.Mounter = (*Mounter)(nil)

// NewMounter creates a Mounter over b.
func NewMounter(b Broadcaster) *Mounter {
	return &Mounter{b: b}
}

// Mount implements render.Mounter.
func (m *Mounter) Mount(_ context.Context, containerID string, props render.Props) error {
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode props for %s: %w", containerID, err)
	}
	m.b.Broadcast(containerID, Frame{Event: EventMount, Data: data})
	return nil
}

// Unmount implements render.Mounter.
func (m *Mounter) Unmount(_ context.Context, containerID string) error {
	data, err := json.Marshal(unmountPayload{ContainerID: containerID})
	if err != nil {
		return err
	}
	m.b.Broadcast(containerID, Frame{Event: EventUnmount, Data: data})
	return nil
}
