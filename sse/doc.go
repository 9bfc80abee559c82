// Package sse streams widget renders to browsers over Server-Sent Events.
//
// A Hub fans frames out to subscribers by topic; the topic of a widget is
// its container id. Mounter implements render.Mounter on top of a Hub so
// every mount and unmount of a container reaches the clients watching it:
//
//	hub := sse.NewHub()
//	mounter := sse.NewMounter(hub)
//	// GET /widgets/:id/events
//	sse.ServeSSE(hub, w, r, clientID, containerID)
package sse
