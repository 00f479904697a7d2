// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package events provides the in-process pub/sub channel that the crowdfund
// engine publishes its lifecycle events through. Producers emit events by
// type; every channel that has been registered for that event type receives
// the event payload.
package events

import (
	"sync"
)

// listeners is the set of channels subscribed to a single event type, in
// registration order.
type listeners []chan interface{}

// remove returns the set with the provided listener removed. Only the first
// occurrence is removed.
func (l listeners) remove(listener chan interface{}) listeners {
	for i, ch := range l {
		if ch == listener {
			return append(l[:i], l[i+1:]...)
		}
	}
	return l
}

// Manager manages event listeners for different event types.
type Manager struct {
	sync.Mutex
	listeners map[string]listeners
}

// Register registers an event listener (channel) to listen for the provided
// event type.
func (m *Manager) Register(event string, listener chan interface{}) {
	m.Lock()
	defer m.Unlock()

	m.listeners[event] = append(m.listeners[event], listener)
}

// Unregister removes an event listener from the provided event type. It is a
// noop if the listener was never registered.
func (m *Manager) Unregister(event string, listener chan interface{}) {
	m.Lock()
	defer m.Unlock()

	l, ok := m.listeners[event]
	if !ok {
		return
	}
	m.listeners[event] = l.remove(listener)
}

// Emit emits an event by passing it to all channels that have been registered
// to listen for the event. Delivery is synchronous; listeners that are not
// keeping up will block the caller, so listeners should use buffered channels
// and drain them promptly.
func (m *Manager) Emit(event string, data interface{}) {
	m.Lock()
	defer m.Unlock()

	for _, ch := range m.listeners[event] {
		ch <- data
	}
}

// NewManager returns a new Manager context.
func NewManager() *Manager {
	return &Manager{
		listeners: make(map[string]listeners),
	}
}
