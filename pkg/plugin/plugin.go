/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package plugin implements the plugin container (spec.md §4.6): an
// immutable, registration-ordered vector of named plugins, each
// contributing message-type handlers to the active dispatch set once
// mounted.
package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/adorsys/didcomm-mediator/pkg/errorx"
)

// Handler processes one DIDComm message type's plaintext body and
// returns its reply payload.
type Handler func(ctx context.Context, body []byte) ([]byte, error)

// Plugin is one named unit of protocol support. Mount is invoked once
// per load and must return the handlers it contributes; Unmount
// releases any resources Mount acquired.
type Plugin struct {
	Name    string
	Mount   func(ctx context.Context) (map[string]Handler, error)
	Unmount func(ctx context.Context) error
}

// ErrorMap collects per-plugin failures keyed by plugin name.
type ErrorMap map[string]error

// Error renders the map as a single error so callers can still use
// errors.Is/As on the aggregate when they don't need the per-plugin
// detail.
func (m ErrorMap) Error() string {
	return fmt.Sprintf("%d plugin(s) failed: %v", len(m), map[string]error(m))
}

// Container is the immutable vector of registered plugins plus the
// mutable active-handler set produced by the last successful load
// (spec.md §4.6).
type Container struct {
	mu      sync.Mutex
	plugins []*Plugin
	byName  map[string]*Plugin
	loaded  bool
	routes  map[string]Handler
}

// New builds a container from plugins, detecting duplicate names
// up front: if any two plugins share a name, New returns
// errorx.ErrDuplicateEntry and mounts none (spec.md §4.6, "duplicate
// detection runs before any mount").
func New(plugins []*Plugin) (*Container, error) {
	byName := make(map[string]*Plugin, len(plugins))

	for _, p := range plugins {
		if _, ok := byName[p.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate plugin name %q", errorx.ErrDuplicateEntry, p.Name)
		}

		byName[p.Name] = p
	}

	return &Container{
		plugins: append([]*Plugin(nil), plugins...),
		byName:  byName,
	}, nil
}

// FindPlugin returns the named plugin reference regardless of load
// state, or nil if no plugin has that name.
func (c *Container) FindPlugin(name string) *Plugin {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.byName[name]
}

// Load mounts every plugin in registration order. Plugins that mount
// successfully contribute their handlers to the active set; those that
// fail are collected into the returned ErrorMap rather than aborting
// the rest of the batch. A container already in the loaded state is a
// no-op success: Load may be called repeatedly (spec.md §4.6, "MUST be
// callable repeatedly").
func (c *Container) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	routes := map[string]Handler{}
	failures := ErrorMap{}

	for _, p := range c.plugins {
		handlers, err := p.Mount(ctx)
		if err != nil {
			failures[p.Name] = err
			continue
		}

		for msgType, h := range handlers {
			routes[msgType] = h
		}
	}

	c.routes = routes
	c.loaded = true

	if len(failures) > 0 {
		return failures
	}

	return nil
}

// Unload invokes Unmount on every plugin and clears the active set
// regardless of per-plugin failures, reporting any failures as an
// ErrorMap (spec.md §4.6).
func (c *Container) Unload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	failures := ErrorMap{}

	for _, p := range c.plugins {
		if p.Unmount == nil {
			continue
		}

		if err := p.Unmount(ctx); err != nil {
			failures[p.Name] = err
		}
	}

	c.routes = nil
	c.loaded = false

	if len(failures) > 0 {
		return failures
	}

	return nil
}

// Route returns the handler mounted for msgType. It fails with
// errorx.ErrUnloaded before a successful Load (spec.md §4.6, "Route/
// handler access before a successful load returns Unloaded").
func (c *Container) Route(msgType string) (Handler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return nil, errorx.ErrUnloaded
	}

	h, ok := c.routes[msgType]
	if !ok {
		return nil, fmt.Errorf("%w: no handler mounted for %q", errorx.ErrInvalidMessageType, msgType)
	}

	return h, nil
}

// Loaded reports whether the container is in the loaded state.
func (c *Container) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loaded
}
