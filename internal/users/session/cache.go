// Copyright (c) 2026 Coverdesk. All rights reserved.

/*
Package session maintains the process-local view of the authenticated user.

The portal front end and background jobs both need a cheap answer to "who is
logged in right now" without re-verifying a token on every question. This
package holds that answer in memory and notifies subscribers when it changes.

# Architecture

  - Cache: A mutex-guarded observable holding the current [State].
  - Restorer: Re-establishes identity from a stored token at startup,
    retrying transient failures a bounded number of times.
*/
package session

import (
	"sync"

	"github.com/coverdesk/coverdesk/internal/users/auth"
)

// State is an immutable snapshot of the authentication state.
type State struct {
	IsAuthenticated bool
	Identity        *auth.User
}

// Cache is a thread-safe observable holding the current session state.
//
// # Concurrency
//
// All methods are safe for concurrent use. Broadcasts never block: a
// subscriber that has not drained its channel misses intermediate snapshots
// but always receives the latest one eventually on the next change.
type Cache struct {
	mu          sync.Mutex
	state       State
	subscribers map[chan State]struct{}
}

// NewCache constructs an empty, unauthenticated [Cache].
func NewCache() *Cache {
	return &Cache{
		subscribers: make(map[chan State]struct{}),
	}
}

// Current returns the latest state snapshot.
func (cache *Cache) Current() State {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.state
}

/*
Subscribe registers an observer of state transitions.

Description: Returns a buffered channel that receives every subsequent state
change, plus a cancel function that unregisters the observer and closes the
channel. The current state is NOT replayed; read [Cache.Current] first.

Returns:
  - <-chan State: State change notifications
  - func(): Cancels the subscription
*/
func (cache *Cache) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	cache.mu.Lock()
	cache.subscribers[ch] = struct{}{}
	cache.mu.Unlock()

	cancel := func() {
		cache.mu.Lock()
		defer cache.mu.Unlock()
		if _, ok := cache.subscribers[ch]; ok {
			delete(cache.subscribers, ch)
			close(ch)
		}
	}

	return ch, cancel
}

// SetAuthenticated records a successful login or identity restoration.
func (cache *Cache) SetAuthenticated(user *auth.User) {
	cache.update(State{IsAuthenticated: true, Identity: user})
}

// Clear resets the cache to the unauthenticated state. It is called on
// logout and whenever a stored credential fails verification.
func (cache *Cache) Clear() {
	cache.update(State{})
}

// update swaps the state and broadcasts the new snapshot without blocking.
func (cache *Cache) update(next State) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.state = next

	for ch := range cache.subscribers {
		// Drop-then-send keeps only the freshest snapshot in the buffer.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- next:
		default:
		}
	}
}
