// Copyright 2024 The RINA Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dft provides the directory-forwarding-table view the flow
// allocator consults to route create-flow requests: application name to the
// address of the next IPCP on the path toward it, plus the id of the local
// IPC process an application is registered through.
package dft

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/rinaproto/rina/pkg/rina"
)

// Resolver answers directory lookups. Implemented by the namespace manager.
type Resolver interface {
	// NextHop returns the address of the IPCP through which the named
	// application is reachable. ok is false on a directory miss.
	NextHop(name rina.AppName) (address uint32, ok bool)
	// RegisteredIPCPID returns the id of the local IPC process the named
	// application is registered through, 0 if it is a plain application.
	RegisteredIPCPID(name rina.AppName) int16
}

const cleanupInterval = time.Minute

// Table is an in-memory directory forwarding table with per-entry TTLs.
// Entries learned from peers age out; local registrations do not.
type Table struct {
	entries *cache.Cache

	mtx  sync.RWMutex
	regs map[string]int16
}

// NewTable creates a table whose entries expire after defaultTTL. A zero
// defaultTTL disables expiry.
func NewTable(defaultTTL time.Duration) *Table {
	if defaultTTL == 0 {
		defaultTTL = cache.NoExpiration
	}
	return &Table{
		entries: cache.New(defaultTTL, cleanupInterval),
		regs:    make(map[string]int16),
	}
}

// Put inserts or refreshes the next-hop entry for the named application.
func (t *Table) Put(name rina.AppName, address uint32) {
	t.entries.Set(name.String(), address, cache.DefaultExpiration)
}

// Remove drops the entry for the named application.
func (t *Table) Remove(name rina.AppName) {
	t.entries.Delete(name.String())
}

// NextHop implements Resolver.
func (t *Table) NextHop(name rina.AppName) (uint32, bool) {
	v, ok := t.entries.Get(name.String())
	if !ok {
		return 0, false
	}
	return v.(uint32), true
}

// Register records that the named application is registered through the
// local IPC process with the given id.
func (t *Table) Register(name rina.AppName, ipcpID int16) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.regs[name.String()] = ipcpID
}

// Unregister removes a local registration.
func (t *Table) Unregister(name rina.AppName) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	delete(t.regs, name.String())
}

// RegisteredIPCPID implements Resolver.
func (t *Table) RegisteredIPCPID(name rina.AppName) int16 {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return t.regs[name.String()]
}

// Entries returns a snapshot of the live next-hop entries for diagnostics.
func (t *Table) Entries() map[string]uint32 {
	items := t.entries.Items()
	snapshot := make(map[string]uint32, len(items))
	for k, item := range items {
		snapshot[k] = item.Object.(uint32)
	}
	return snapshot
}
