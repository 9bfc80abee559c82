// Package bus implements the Observation Bus: named channels that invoke
// subscribers with the current State Tree of an instance whenever a publish
// happens for that instance.
package bus

import (
	"context"
	"slices"
	"sync"

	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/state"
)

// ChannelRender is the only channel the engine publishes on.
const ChannelRender = "render"

// Callback receives the snapshot read at publish time.
type Callback func(ctx context.Context, t state.Tree)

type key struct {
	channel string
	id      ident.ID
}

// Subscription is a registered callback. Cancel removes it.
type Subscription struct {
	bus *Bus
	key key
	seq uint64
	fn  Callback
}

// Cancel unregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.bus.unsubscribe(s)
}

// Bus dispatches publishes to subscribers synchronously, in registration order.
type Bus struct {
	mu     sync.RWMutex
	reader state.Reader
	subs   map[key][]*Subscription
	seq    uint64
	log    *logger.Logger
}

// New creates a Bus that reads snapshots from reader.
func New(reader state.Reader) *Bus {
	return &Bus{
		reader: reader,
		subs:   make(map[key][]*Subscription),
		log:    logger.Get("bus"),
	}
}

// Observe registers fn for publishes on channel for instance id.
func (b *Bus) Observe(channel string, id ident.ID, fn Callback) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	k := key{channel: channel, id: id}
	sub := &Subscription{bus: b, key: k, seq: b.seq, fn: fn}
	b.subs[k] = append(b.subs[k], sub)
	return sub
}

// Publish reads the current tree for id and invokes every subscriber of
// (channel, id) before returning. It returns the number of callbacks run,
// or NOT_FOUND when id is not live.
func (b *Bus) Publish(ctx context.Context, channel string, id ident.ID) (int, error) {
	t, err := b.reader.Get(id)
	if err != nil {
		return 0, err
	}

	b.mu.RLock()
	subs := slices.Clone(b.subs[key{channel: channel, id: id}])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(ctx, t)
	}
	b.log.Debug("published", logger.Fields(
		logger.FieldChannel, channel,
		logger.FieldInstanceID, id.String(),
		"subscribers", len(subs),
	))
	return len(subs), nil
}

// Forget drops every subscription held for id on any channel.
func (b *Bus) Forget(id ident.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k := range b.subs {
		if k.id == id {
			delete(b.subs, k)
		}
	}
}

// Count returns the number of subscribers on (channel, id).
func (b *Bus) Count(channel string, id ident.ID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[key{channel: channel, id: id}])
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[s.key]
	idx := slices.IndexFunc(subs, func(x *Subscription) bool { return x.seq == s.seq })
	if idx < 0 {
		return
	}
	subs = slices.Delete(slices.Clone(subs), idx, idx+1)
	if len(subs) == 0 {
		delete(b.subs, s.key)
		return
	}
	b.subs[s.key] = subs
}
