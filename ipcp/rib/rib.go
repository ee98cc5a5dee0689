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

// Package rib models the local view of the Resource Information Base. RIB
// objects are kind-tagged implementations of a single Object interface;
// parent/child relations are expressed through the object names, and the
// registry addresses objects by name rather than by pointer.
package rib

import (
	"sort"
	"strings"
	"sync"

	"github.com/rinaproto/rina/pkg/private/serrors"
)

// Separator joins the components of RIB object names.
const Separator = "/"

// Errors returned by the registry and the default object operations.
var (
	ErrNotFound     = serrors.New("rib object not found")
	ErrDuplicate    = serrors.New("rib object already registered")
	ErrNotSupported = serrors.New("operation not supported on rib object")
)

// Kind tags the variant of a RIB object.
type Kind int

// Object kinds known to the IPCP management plane.
const (
	KindFlowSet Kind = iota
	KindFlow
	KindQoSCubeSet
	KindQoSCube
	KindDataTransferConstants
)

// Object classes as they appear on the wire.
const (
	FlowSetClass               = "FlowSet"
	FlowClass                  = "Flow"
	QoSCubeSetClass            = "QoSCubeSet"
	QoSCubeClass               = "QoSCube"
	DataTransferConstantsClass = "DataTransferConstants"
)

// RemoteID identifies the peer of a CDAP exchange, either by the port-id of
// an open management session or by DIF address.
type RemoteID struct {
	PortID     int
	UseAddress bool
	Address    uint32
}

// Object is a node of the RIB tree. Local mutations arrive through
// CreateObject and DeleteObject; peer-initiated operations arrive through
// the Remote variants with the invoke-id of the CDAP request and the port-id
// of the management session it came in on.
type Object interface {
	Class() string
	Name() string
	Kind() Kind
	Value() any
	Displayable() string

	CreateObject(class, name string, value any) error
	DeleteObject(value any) error
	RemoteCreateObject(value []byte, name string, invokeID int, underlyingPortID int) error
	RemoteDeleteObject(invokeID int, underlyingPortID int) error
	RemoteReadObject(invokeID int, underlyingPortID int) error
}

// BaseObject carries the identity of a RIB object and rejects every
// operation. Concrete objects embed it and override what they support.
type BaseObject struct {
	ObjClass string
	ObjName  string
	ObjKind  Kind
}

// Class returns the object class.
func (o BaseObject) Class() string { return o.ObjClass }

// Name returns the object name.
func (o BaseObject) Name() string { return o.ObjName }

// Kind returns the object kind.
func (o BaseObject) Kind() Kind { return o.ObjKind }

// Value returns nil.
func (o BaseObject) Value() any { return nil }

// Displayable returns an empty representation.
func (o BaseObject) Displayable() string { return "" }

// CreateObject rejects the operation.
func (o BaseObject) CreateObject(class, name string, value any) error {
	return serrors.Join(ErrNotSupported, nil, "op", "createObject", "name", o.ObjName)
}

// DeleteObject rejects the operation.
func (o BaseObject) DeleteObject(value any) error {
	return serrors.Join(ErrNotSupported, nil, "op", "deleteObject", "name", o.ObjName)
}

// RemoteCreateObject rejects the operation.
func (o BaseObject) RemoteCreateObject(value []byte, name string, invokeID,
	underlyingPortID int) error {

	return serrors.Join(ErrNotSupported, nil, "op", "remoteCreateObject", "name", o.ObjName)
}

// RemoteDeleteObject rejects the operation.
func (o BaseObject) RemoteDeleteObject(invokeID, underlyingPortID int) error {
	return serrors.Join(ErrNotSupported, nil, "op", "remoteDeleteObject", "name", o.ObjName)
}

// RemoteReadObject rejects the operation.
func (o BaseObject) RemoteReadObject(invokeID, underlyingPortID int) error {
	return serrors.Join(ErrNotSupported, nil, "op", "remoteReadObject", "name", o.ObjName)
}

// Registry owns the RIB objects of an IPCP, addressed by name. It permits
// concurrent readers and serializes mutations.
type Registry struct {
	mtx     sync.RWMutex
	objects map[string]Object
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]Object)}
}

// Add registers the object under its name.
func (r *Registry) Add(obj Object) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.objects[obj.Name()]; ok {
		return serrors.Join(ErrDuplicate, nil, "name", obj.Name())
	}
	r.objects[obj.Name()] = obj
	return nil
}

// Remove unregisters the object with the given name.
func (r *Registry) Remove(name string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.objects[name]; !ok {
		return serrors.Join(ErrNotFound, nil, "name", name)
	}
	delete(r.objects, name)
	return nil
}

// Get returns the object with the given name.
func (r *Registry) Get(name string) (Object, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	obj, ok := r.objects[name]
	return obj, ok
}

// Children returns the direct children of the object with the given name,
// sorted by name.
func (r *Registry) Children(name string) []Object {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	prefix := name + Separator
	var children []Object
	for n, obj := range r.objects {
		if strings.HasPrefix(n, prefix) && !strings.Contains(n[len(prefix):], Separator) {
			children = append(children, obj)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].Name() < children[j].Name()
	})
	return children
}

// Names returns all registered object names, sorted.
func (r *Registry) Names() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	names := make([]string, 0, len(r.objects))
	for n := range r.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
