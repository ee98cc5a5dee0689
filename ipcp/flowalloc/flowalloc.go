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

// Package flowalloc implements the flow allocator of an IPC process: the
// control-plane subsystem that negotiates, establishes and tears down flows
// with peer IPCPs across a DIF. The allocator owns one instance per port-id
// and brokers events between the kernel EFCP engine, the IPC-Manager, the
// peer flow allocator and the RIB.
package flowalloc

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/rinaproto/rina/ipcp/dft"
	"github.com/rinaproto/rina/ipcp/rib"
	"github.com/rinaproto/rina/pkg/log"
	"github.com/rinaproto/rina/pkg/metrics"
	"github.com/rinaproto/rina/pkg/private/serrors"
	"github.com/rinaproto/rina/pkg/rina"
	"github.com/rinaproto/rina/pkg/rina/flowmsg"
)

// Default configuration values.
const (
	// DefaultTeardownDelay is twice the default maximum packet lifetime.
	DefaultTeardownDelay = 5000 * time.Millisecond
	// DefaultHopCount bounds the directory forwarding of create requests.
	DefaultHopCount = 3
	// DefaultMaxCreateFlowRetries is carried in the flow object for the
	// benefit of a future retry policy; nothing retries today.
	DefaultMaxCreateFlowRetries = 1
)

// Config tunes the flow allocator of one IPCP.
type Config struct {
	// DIFName is the name of the DIF this IPCP is a member of.
	DIFName string
	// Address of this IPCP within the DIF.
	Address uint32
	// TeardownDelay is the wait after deallocation before the flow state
	// is destroyed; it should be twice the maximum packet lifetime.
	TeardownDelay time.Duration
	// PeerResponseTimeout bounds the wait for the peer's answer to a
	// create request. Zero disables the bound.
	PeerResponseTimeout time.Duration
	// HopCount for outgoing create requests.
	HopCount int32
	// MaxCreateFlowRetries for outgoing create requests.
	MaxCreateFlowRetries int32
}

// InitDefaults populates unset fields with default values.
func (cfg *Config) InitDefaults() {
	if cfg.TeardownDelay == 0 {
		cfg.TeardownDelay = DefaultTeardownDelay
	}
	if cfg.HopCount == 0 {
		cfg.HopCount = DefaultHopCount
	}
	if cfg.MaxCreateFlowRetries == 0 {
		cfg.MaxCreateFlowRetries = DefaultMaxCreateFlowRetries
	}
}

// FlowAllocator is the process-wide registry of flow allocator instances.
// All dependencies must be set before Initialize is called; the zero value
// is not usable.
type FlowAllocator struct {
	// Kernel is the kernel IPC manager and EFCP engine.
	Kernel Kernel
	// IPCManager is the IPC-Manager daemon.
	IPCManager IPCManager
	// RIBDaemon sends CDAP messages to peers.
	RIBDaemon RIBDaemon
	// Sessions exposes the open CDAP sessions.
	Sessions CDAPSessions
	// Resolver is the namespace-manager view: directory forwarding table
	// and local registrations.
	Resolver dft.Resolver
	// Security decides on incoming flow requests.
	Security SecurityManager
	// Registry is the local RIB object store.
	Registry *rib.Registry
	// Config tunes the allocator.
	Config Config
	// Metrics are modified during operation, may be empty.
	Metrics Metrics
	// Logger for the allocator, defaults to the root logger.
	Logger log.Logger

	initOnce sync.Once
	initErr  error
	cfg      Config
	logger   log.Logger
	policy   NewFlowRequestPolicy

	mtx       sync.RWMutex
	instances map[int]*Instance

	dtcMtx sync.RWMutex
	dtc    rina.DataTransferConstants
}

// Initialize validates the wiring and prepares the allocator. It is
// idempotent and must be called before any other method.
func (fa *FlowAllocator) Initialize() error {
	fa.initOnce.Do(func() {
		switch {
		case fa.Kernel == nil:
			fa.initErr = serrors.New("kernel must not be nil")
		case fa.IPCManager == nil:
			fa.initErr = serrors.New("IPC manager must not be nil")
		case fa.RIBDaemon == nil:
			fa.initErr = serrors.New("RIB daemon must not be nil")
		case fa.Sessions == nil:
			fa.initErr = serrors.New("CDAP sessions must not be nil")
		case fa.Resolver == nil:
			fa.initErr = serrors.New("resolver must not be nil")
		case fa.Security == nil:
			fa.initErr = serrors.New("security manager must not be nil")
		case fa.Registry == nil:
			fa.initErr = serrors.New("RIB registry must not be nil")
		case fa.Config.DIFName == "":
			fa.initErr = serrors.New("DIF name must not be empty")
		case fa.Config.Address == 0:
			fa.initErr = serrors.New("address must not be zero")
		}
		if fa.initErr != nil {
			return
		}
		fa.cfg = fa.Config
		fa.cfg.InitDefaults()
		fa.logger = fa.Logger
		if fa.logger == nil {
			fa.logger = log.Root()
		}
		fa.logger = fa.logger.New("dif", fa.cfg.DIFName, "addr", fa.cfg.Address)
		fa.policy = &simpleNewFlowRequestPolicy{fa: fa}
		fa.instances = make(map[int]*Instance)
	})
	return fa.initErr
}

// PopulateRIB adds the flow set, QoS cube set and data-transfer constants
// objects to the RIB.
func (fa *FlowAllocator) PopulateRIB() error {
	if err := fa.Initialize(); err != nil {
		return err
	}
	objects := []rib.Object{
		newFlowSetObject(fa),
		newQoSCubeSetObject(fa),
		newDataTransferConstantsObject(fa),
	}
	for _, obj := range objects {
		if err := fa.Registry.Add(obj); err != nil {
			return serrors.Wrap("adding object to the RIB", err, "name", obj.Name())
		}
	}
	return nil
}

// SetDIFConfiguration stores the data-transfer constants and inserts every
// QoS cube of the DIF configuration under the QoS cube set. It is
// idempotent; cubes already present are left alone.
func (fa *FlowAllocator) SetDIFConfiguration(cfg rina.DIFConfig) error {
	if err := fa.Initialize(); err != nil {
		return err
	}
	fa.dtcMtx.Lock()
	fa.dtc = cfg.EFCP.DataTransferConstants
	fa.dtcMtx.Unlock()

	set, ok := fa.Registry.Get(rib.QoSCubeSetName(fa.cfg.DIFName))
	if !ok {
		return serrors.Join(rib.ErrNotFound, nil, "name",
			rib.QoSCubeSetName(fa.cfg.DIFName))
	}
	var errs serrors.List
	for _, cube := range cfg.EFCP.QoSCubes {
		name := rib.QoSCubeName(fa.cfg.DIFName, cube.Name)
		if _, ok := fa.Registry.Get(name); ok {
			continue
		}
		if err := set.CreateObject(rib.QoSCubeClass, name, cube); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.ToError()
}

// DataTransferConstants returns the constants of the DIF.
func (fa *FlowAllocator) DataTransferConstants() rina.DataTransferConstants {
	fa.dtcMtx.RLock()
	defer fa.dtcMtx.RUnlock()
	return fa.dtc
}

// QoSCubes returns the cubes of the DIF, ordered by RIB object name. The
// cubes are owned by the registry and must not be mutated.
func (fa *FlowAllocator) QoSCubes() []*rina.QoSCube {
	var cubes []*rina.QoSCube
	for _, child := range fa.Registry.Children(rib.QoSCubeSetName(fa.cfg.DIFName)) {
		if cube, ok := child.Value().(*rina.QoSCube); ok {
			cubes = append(cubes, cube)
		}
	}
	return cubes
}

// SubmitAllocateRequest starts a flow allocation on behalf of a local
// application.
func (fa *FlowAllocator) SubmitAllocateRequest(event rina.FlowRequestEvent) {
	if err := fa.Initialize(); err != nil {
		log.Root().Error("Flow allocator not initialized", "err", err)
		return
	}
	portID, err := fa.Kernel.AllocatePortID(event.LocalAppName)
	if err != nil {
		fa.logger.Error("Problems requesting an available port-id",
			"err", serrors.Join(ErrResourceExhaustion, err))
		fa.Metrics.allocation(resultError)
		fa.replyToIPCManager(event, -1)
		return
	}
	fa.logger.Debug("Got assigned port-id", "port_id", portID)

	event.PortID = portID
	inst := newInstance(fa, portID, fa.policy)
	fa.addInstance(inst)

	if err := inst.SubmitAllocateRequest(event); err != nil {
		fa.logger.Error("Problems allocating flow", "err", err, "port_id", portID)
		fa.removeInstance(portID)
		if err := fa.Kernel.DeallocatePortID(portID); err != nil {
			fa.logger.Error("Problems releasing port-id", "err", err,
				"port_id", portID)
		}
		fa.Metrics.allocation(resultError)
		fa.replyToIPCManager(event, -1)
	}
}

// CreateFlowRequestMessageReceived handles a create request arriving from a
// peer flow allocator. Requests for applications reachable through this
// IPCP spawn a destination-side instance; anything else is forwarded toward
// the next hop until the hop count expires.
func (fa *FlowAllocator) CreateFlowRequestMessageReceived(flow *rina.Flow,
	objectName string, invokeID int, underlyingPortID int) {

	if err := fa.Initialize(); err != nil {
		log.Root().Error("Flow allocator not initialized", "err", err)
		return
	}
	nextHop, ok := fa.Resolver.NextHop(flow.DestinationNaming)
	if !ok {
		fa.logger.Error("The directory forwarding table returned no entries",
			"dest", flow.DestinationNaming.String())
		fa.Metrics.peerRequest(outcomeDropped)
		return
	}

	if nextHop == fa.cfg.Address {
		portID, err := fa.Kernel.AllocatePortID(flow.DestinationNaming)
		if err != nil {
			fa.logger.Error("Problems requesting an available port-id, "+
				"ignoring the flow allocation request", "err", err)
			fa.Metrics.peerRequest(outcomeDropped)
			return
		}
		fa.logger.Debug("The destination application process is reachable "+
			"through me", "port_id", portID)
		inst := newInstance(fa, portID, nil)
		fa.addInstance(inst)
		inst.CreateFlowRequestMessageReceived(flow, objectName, invokeID,
			underlyingPortID)
		return
	}

	flow.HopCount--
	if flow.HopCount <= 0 {
		fa.logger.Error("Hop count expired for create flow request",
			"dest", flow.DestinationNaming.String())
		fa.Metrics.peerRequest(outcomeHopExpired)
		err := fa.RIBDaemon.RemoteCreateObjectResponse(rib.FlowClass, objectName,
			nil, -1, hopCountReason, invokeID,
			rib.RemoteID{PortID: underlyingPortID})
		if err != nil {
			fa.logger.Error("Problems sending negative create flow response",
				"err", err)
		}
		return
	}

	fa.Metrics.peerRequest(outcomeForwarded)
	err := fa.RIBDaemon.RemoteCreateObject(rib.FlowClass, objectName,
		flowmsg.Encode(flow), rib.RemoteID{UseAddress: true, Address: nextHop}, nil)
	if err != nil {
		fa.logger.Error("Problems forwarding create flow request",
			"err", err, "next_hop", nextHop)
	}
}

// SubmitAllocateResponse delivers the local application's answer to the
// instance that notified it, correlated by the response handle.
func (fa *FlowAllocator) SubmitAllocateResponse(event rina.AllocateFlowResponseEvent) {
	fa.logger.Debug("Local application invoked allocate response",
		"seq_num", event.SequenceNumber, "result", event.Result)

	fa.mtx.RLock()
	instances := make([]*Instance, 0, len(fa.instances))
	for _, inst := range fa.instances {
		instances = append(instances, inst)
	}
	fa.mtx.RUnlock()

	var target *Instance
	for _, inst := range instances {
		if handle, ok := inst.allocateResponseHandle(); ok &&
			handle == event.SequenceNumber {

			target = inst
			break
		}
	}

	if target == nil {
		fa.logger.Error("Could not find FAI with handle",
			"seq_num", event.SequenceNumber)
		return
	}
	target.SubmitAllocateResponse(event)
}

// ProcessCreateConnectionResponse routes a kernel create-connection answer
// to the owning instance.
func (fa *FlowAllocator) ProcessCreateConnectionResponse(
	event rina.CreateConnectionResponseEvent) {

	inst, ok := fa.instance(event.PortID)
	if !ok {
		fa.dropWithRelease("create connection response", event.PortID)
		return
	}
	inst.ProcessCreateConnectionResponse(event)
}

// ProcessCreateConnectionResult routes a kernel connection-arrived answer
// to the owning instance.
func (fa *FlowAllocator) ProcessCreateConnectionResult(
	event rina.CreateConnectionResultEvent) {

	inst, ok := fa.instance(event.PortID)
	if !ok {
		fa.dropWithRelease("create connection result", event.PortID)
		return
	}
	inst.ProcessCreateConnectionResult(event)
}

// ProcessUpdateConnectionResponse routes a kernel update answer to the
// owning instance.
func (fa *FlowAllocator) ProcessUpdateConnectionResponse(
	event rina.UpdateConnectionResponseEvent) {

	inst, ok := fa.instance(event.PortID)
	if !ok {
		fa.dropWithRelease("update connection response", event.PortID)
		return
	}
	inst.ProcessUpdateConnectionResponse(event)
}

// SubmitDeallocate starts the teardown of an allocated flow.
func (fa *FlowAllocator) SubmitDeallocate(event rina.FlowDeallocateRequestEvent) {
	inst, ok := fa.instance(event.PortID)
	if !ok {
		fa.dropWithRelease("deallocate request", event.PortID)
		if err := fa.IPCManager.NotifyFlowDeallocated(event, -1); err != nil {
			fa.logger.Error("Error communicating with the IPC Manager", "err", err)
		}
		return
	}
	inst.SubmitDeallocate(event)
	if err := fa.IPCManager.NotifyFlowDeallocated(event, 0); err != nil {
		fa.logger.Error("Error communicating with the IPC Manager", "err", err)
	}
}

// Instance returns the instance managing the given port-id.
func (fa *FlowAllocator) Instance(portID int) (*Instance, bool) {
	return fa.instance(portID)
}

// RemoveFlowAllocatorInstance erases the instance for the port-id. Unknown
// port-ids are ignored.
func (fa *FlowAllocator) RemoveFlowAllocatorInstance(portID int) {
	fa.removeInstance(portID)
}

// DiagnosticsWrite writes the flow table to the writer.
func (fa *FlowAllocator) DiagnosticsWrite(w io.Writer) {
	fa.mtx.RLock()
	instances := make([]*Instance, 0, len(fa.instances))
	for _, inst := range fa.instances {
		instances = append(instances, inst)
	}
	fa.mtx.RUnlock()
	sort.Slice(instances, func(i, j int) bool {
		return instances[i].PortID() < instances[j].PortID()
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PORT", "STATE", "SOURCE", "DESTINATION",
		"SRC ADDR", "DST ADDR", "FLOW STATE"})
	for _, inst := range instances {
		table.Append(inst.diagnosticsRow())
	}
	table.Render()
}

func (fa *FlowAllocator) replyToIPCManager(event rina.FlowRequestEvent, result int) {
	if err := fa.IPCManager.AllocateFlowRequestResult(event, result); err != nil {
		fa.logger.Error("Problems communicating with the IPC Manager Daemon",
			"err", err)
	}
}

func (fa *FlowAllocator) dropWithRelease(operation string, portID int) {
	fa.logger.Error(fmt.Sprintf("Received %s associated to unknown port-id",
		operation), "port_id", portID)
	if err := fa.Kernel.DeallocatePortID(portID); err != nil {
		fa.logger.Error("Problems requesting IPC Manager to deallocate port-id",
			"err", err, "port_id", portID)
	}
}

func (fa *FlowAllocator) instance(portID int) (*Instance, bool) {
	fa.mtx.RLock()
	defer fa.mtx.RUnlock()
	inst, ok := fa.instances[portID]
	return inst, ok
}

func (fa *FlowAllocator) addInstance(inst *Instance) {
	fa.mtx.Lock()
	defer fa.mtx.Unlock()
	fa.instances[inst.PortID()] = inst
}

func (fa *FlowAllocator) removeInstance(portID int) {
	fa.mtx.Lock()
	defer fa.mtx.Unlock()
	delete(fa.instances, portID)
}

// scheduleTeardown arms the single-shot teardown timer for the port-id. The
// timer holds the identifier, not the instance: if the instance is gone by
// the time it fires, the task is a no-op.
func (fa *FlowAllocator) scheduleTeardown(portID int) {
	time.AfterFunc(fa.cfg.TeardownDelay, func() {
		defer log.HandlePanic()
		inst, ok := fa.instance(portID)
		if !ok {
			return
		}
		inst.destroy()
	})
}

// schedulePeerResponseTimeout bounds the wait for the peer's create
// response when configured.
func (fa *FlowAllocator) schedulePeerResponseTimeout(portID int) {
	if fa.cfg.PeerResponseTimeout == 0 {
		return
	}
	time.AfterFunc(fa.cfg.PeerResponseTimeout, func() {
		defer log.HandlePanic()
		inst, ok := fa.instance(portID)
		if !ok {
			return
		}
		inst.peerResponseTimeout()
	})
}

// openFlowsChanged adjusts the open-flows gauge.
func (fa *FlowAllocator) openFlowsChanged(delta float64) {
	metrics.GaugeAdd(fa.Metrics.OpenFlows, delta)
}
