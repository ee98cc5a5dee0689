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

package flowalloc

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/rinaproto/rina/ipcp/rib"
	"github.com/rinaproto/rina/pkg/log"
	"github.com/rinaproto/rina/pkg/metrics"
	"github.com/rinaproto/rina/pkg/private/serrors"
	"github.com/rinaproto/rina/pkg/rina"
	"github.com/rinaproto/rina/pkg/rina/flowmsg"
)

// State of a flow allocator instance.
type State int

// Instance states. Transitions only follow the allocation protocol; events
// arriving in any other state are logged and dropped.
const (
	StateNull State = iota
	StateConnectionCreateRequested
	StateMessageToPeerFAISent
	StateAppNotifiedOfIncomingFlow
	StateConnectionUpdateRequested
	StateFlowAllocated
	StateWaitingTwoMPL
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "NULL"
	case StateConnectionCreateRequested:
		return "CONNECTION_CREATE_REQUESTED"
	case StateMessageToPeerFAISent:
		return "MESSAGE_TO_PEER_FAI_SENT"
	case StateAppNotifiedOfIncomingFlow:
		return "APP_NOTIFIED_OF_INCOMING_FLOW"
	case StateConnectionUpdateRequested:
		return "CONNECTION_UPDATE_REQUESTED"
	case StateFlowAllocated:
		return "FLOW_ALLOCATED"
	case StateWaitingTwoMPL:
		return "WAITING_2_MPL_BEFORE_TEARING_DOWN"
	case StateFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Instance manages the allocation lifecycle of a single flow, identified by
// its local port-id. An instance owns its Flow exclusively.
//
// The instance mutex is held for the whole duration of a callback. Outbound
// calls are message passing and safe under the lock; the lock is always
// dropped before going back to the allocator registry.
type Instance struct {
	fa     *FlowAllocator
	portID int
	// policy builds the flow object; nil on the destination side.
	policy NewFlowRequestPolicy
	logger log.Logger

	mtx              sync.Mutex
	state            State
	flow             *rina.Flow
	requestEvent     rina.FlowRequestEvent
	objectName       string
	invokeID         int
	underlyingPortID int
	respHandle       uint32
	respHandleSet    bool
	portReleased     bool
}

func newInstance(fa *FlowAllocator, portID int, policy NewFlowRequestPolicy) *Instance {
	inst := &Instance{
		fa:     fa,
		portID: portID,
		policy: policy,
		logger: fa.logger.New("port_id", portID),
		state:  StateNull,
	}
	inst.logger.Debug("Created flow allocator instance")
	return inst
}

// PortID returns the port-id the instance manages.
func (i *Instance) PortID() int {
	return i.portID
}

// State returns the current state.
func (i *Instance) State() State {
	i.mtx.Lock()
	defer i.mtx.Unlock()
	return i.state
}

// Flow returns the flow object. The instance retains ownership.
func (i *Instance) Flow() *rina.Flow {
	i.mtx.Lock()
	defer i.mtx.Unlock()
	return i.flow
}

// IsFinished reports whether the instance reached its terminal state.
func (i *Instance) IsFinished() bool {
	i.mtx.Lock()
	defer i.mtx.Unlock()
	return i.state == StateFinished
}

func (i *Instance) allocateResponseHandle() (uint32, bool) {
	i.mtx.Lock()
	defer i.mtx.Unlock()
	return i.respHandle, i.respHandleSet
}

// SubmitAllocateRequest starts the source side of the allocation. On error
// the caller owns the cleanup: the instance has neither released the
// port-id nor removed itself.
func (i *Instance) SubmitAllocateRequest(event rina.FlowRequestEvent) error {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	flow, err := i.policy.GenerateFlow(event)
	if err != nil {
		return err
	}
	i.requestEvent = event
	i.flow = flow
	i.logger.Debug("Generated flow object")

	destAddress, ok := i.fa.Resolver.NextHop(event.RemoteAppName)
	if !ok {
		return serrors.Join(ErrNotFound, nil,
			"reason", "could not find entry in DFT for application",
			"app", event.RemoteAppName.String())
	}
	i.logger.Debug("The directory forwarding table returned address",
		"address", destAddress)
	active, err := flow.ActiveConnection()
	if err != nil {
		return err
	}
	flow.DestinationAddress = destAddress
	active.DestAddress = destAddress

	sourceAddress := i.fa.cfg.Address
	flow.SourceAddress = sourceAddress
	flow.SourcePortID = i.portID
	i.objectName = rib.FlowName(i.fa.cfg.DIFName, sourceAddress, i.portID)
	if destAddress == sourceAddress {
		return serrors.Join(ErrLocalFlow, nil, "address", sourceAddress)
	}

	i.state = StateConnectionCreateRequested
	if err := i.fa.Kernel.CreateConnection(*active); err != nil {
		return serrors.Join(ErrKernelFailure, err)
	}
	i.logger.Debug("Requested the creation of a connection to the kernel")
	return nil
}

// ProcessCreateConnectionResponse handles the kernel's answer on the source
// side and sends the create request to the peer flow allocator.
func (i *Instance) ProcessCreateConnectionResponse(
	event rina.CreateConnectionResponseEvent) {

	i.mtx.Lock()

	if i.state != StateConnectionCreateRequested {
		i.logger.Error("Received a create connection response event in "+
			"unexpected state, ignoring it", "state", i.state)
		i.mtx.Unlock()
		return
	}

	if event.CEPID < 0 {
		i.logger.Error("The EFCP component could not create a connection "+
			"instance", "cep_id", event.CEPID)
		i.fa.Metrics.allocation(resultError)
		i.replyToIPCManager(-1)
		i.releaseUnlockRemove()
		return
	}
	i.logger.Debug("Created connection", "cep_id", event.CEPID)
	active, err := i.flow.ActiveConnection()
	if err != nil {
		i.logger.Error("Flow has no active connection", "err", err)
		i.fa.Metrics.allocation(resultError)
		i.replyToIPCManager(-1)
		i.releaseUnlockRemove()
		return
	}
	active.SourceCEPID = event.CEPID

	sessionID, ok := i.fa.Sessions.SessionByAddress(i.flow.DestinationAddress)
	if !ok {
		i.logger.Error("No CDAP session to destination address",
			"address", i.flow.DestinationAddress)
		i.fa.Metrics.allocation(resultError)
		i.replyToIPCManager(-1)
		i.releaseUnlockRemove()
		return
	}

	remote := rib.RemoteID{
		PortID:     sessionID,
		UseAddress: true,
		Address:    i.flow.DestinationAddress,
	}
	err = i.fa.RIBDaemon.RemoteCreateObject(rib.FlowClass, i.objectName,
		flowmsg.Encode(i.flow), remote, i)
	if err != nil {
		i.logger.Error("Problems sending M_CREATE <Flow> CDAP message to "+
			"neighbor", "err", serrors.Join(ErrTransportFailure, err))
		i.fa.Metrics.allocation(resultError)
		i.replyToIPCManager(-1)
		i.releaseUnlockRemove()
		return
	}
	i.underlyingPortID = sessionID
	i.state = StateMessageToPeerFAISent
	i.fa.schedulePeerResponseTimeout(i.portID)
	i.mtx.Unlock()
}

// CreateResponse handles the peer's answer to the create request on the
// source side.
func (i *Instance) CreateResponse(result int, reason string, objectValue []byte) {
	i.mtx.Lock()

	if i.state != StateMessageToPeerFAISent {
		i.logger.Error("Received create response in unexpected state, "+
			"ignoring it", "state", i.state)
		i.mtx.Unlock()
		return
	}

	if result != 0 {
		i.logger.Debug("Unsuccessful create flow response message received",
			"object_name", i.objectName, "reason", reason)
		i.fa.Metrics.allocation(resultError)
		i.replyToIPCManager(-1)
		i.releaseUnlockRemove()
		return
	}

	if objectValue != nil {
		received, err := flowmsg.Decode(objectValue)
		if err != nil {
			i.logger.Error("Could not decode flow in create response",
				"err", err)
			i.fa.Metrics.allocation(resultError)
			i.replyToIPCManager(-1)
			i.releaseUnlockRemove()
			return
		}
		i.flow.DestinationPortID = received.DestinationPortID
		if active, err := i.flow.ActiveConnection(); err == nil {
			if peerActive, err := received.ActiveConnection(); err == nil {
				// The peer expresses the connection from its own
				// endpoint; its source cep-id is our destination.
				active.DestCEPID = peerActive.SourceCEPID
			}
		}
	}

	active, err := i.flow.ActiveConnection()
	if err != nil {
		i.logger.Error("Flow has no active connection", "err", err)
		i.fa.Metrics.allocation(resultError)
		i.replyToIPCManager(-1)
		i.releaseUnlockRemove()
		return
	}
	i.state = StateConnectionUpdateRequested
	if err := i.fa.Kernel.UpdateConnection(*active); err != nil {
		i.logger.Error("Problems requesting kernel to update connection",
			"err", serrors.Join(ErrKernelFailure, err))
		i.fa.Metrics.allocation(resultError)
		i.replyToIPCManager(-1)
		i.releaseUnlockRemove()
		return
	}
	i.mtx.Unlock()
}

// ProcessUpdateConnectionResponse completes the source side of the
// allocation.
func (i *Instance) ProcessUpdateConnectionResponse(
	event rina.UpdateConnectionResponseEvent) {

	i.mtx.Lock()

	if i.state != StateConnectionUpdateRequested {
		i.logger.Error("Received update connection response in unexpected "+
			"state, ignoring it", "state", i.state)
		i.mtx.Unlock()
		return
	}

	if event.Result != 0 {
		i.logger.Error("The kernel denied the update of a connection",
			"result", event.Result)
		i.fa.Metrics.allocation(resultError)
		i.requestEvent.PortID = -1
		if err := i.fa.IPCManager.AllocateFlowRequestResult(i.requestEvent,
			event.Result); err != nil {

			i.logger.Error("Problems communicating with the IPC Manager",
				"err", err)
		}
		i.releaseUnlockRemove()
		return
	}

	i.flow.State = rina.FlowStateAllocated
	if err := i.addFlowRIBObject(); err != nil {
		i.logger.Error("Problems requesting the RIB to create a flow object",
			"err", err)
	}
	i.state = StateFlowAllocated
	i.fa.Metrics.allocation(resultOk)
	i.fa.openFlowsChanged(1)

	i.requestEvent.PortID = i.portID
	i.replyToIPCManager(0)
	i.mtx.Unlock()
}

// CreateFlowRequestMessageReceived starts the destination side of the
// allocation with the decoded flow object from the peer. The instance takes
// ownership of the flow.
func (i *Instance) CreateFlowRequestMessageReceived(flow *rina.Flow,
	objectName string, invokeID int, underlyingPortID int) {

	i.mtx.Lock()

	i.logger.Debug("Create flow request received", "flow", flow.String())
	i.flow = flow
	if i.flow.DestinationAddress == 0 {
		i.flow.DestinationAddress = i.fa.cfg.Address
	}
	i.invokeID = invokeID
	i.objectName = objectName
	i.underlyingPortID = underlyingPortID
	i.flow.DestinationPortID = i.portID

	conn, err := i.flow.ActiveConnection()
	if err != nil {
		i.logger.Error("Create flow request without active connection",
			"err", err)
		i.fa.Metrics.peerRequest(outcomeDropped)
		i.releaseUnlockRemove()
		return
	}
	conn.PortID = i.portID
	conn.SourceAddress, conn.DestAddress = conn.DestAddress, conn.SourceAddress
	conn.DestCEPID = conn.SourceCEPID
	conn.FlowUserIPCPID = i.fa.Resolver.RegisteredIPCPID(i.flow.DestinationNaming)
	i.logger.Debug("Target application IPC process id",
		"ipcp_id", conn.FlowUserIPCPID)

	if !i.fa.Security.AcceptFlow(i.flow) {
		i.logger.Info("Security manager denied incoming flow request",
			"src", i.flow.SourceNaming.String())
		i.fa.Metrics.peerRequest(outcomeDenied)
		if err := i.sendCreateResponse(-1, securityDenialReason); err != nil {
			i.logger.Error("Problems sending CDAP message", "err", err)
		}
		i.releaseUnlockRemove()
		return
	}

	i.state = StateConnectionCreateRequested
	if err := i.fa.Kernel.CreateConnectionArrived(*conn); err != nil {
		i.logger.Error("Problems requesting a connection to the kernel",
			"err", serrors.Join(ErrKernelFailure, err))
		i.fa.Metrics.peerRequest(outcomeDropped)
		i.releaseUnlockRemove()
		return
	}
	i.logger.Debug("Requested the creation of a connection to the kernel")
	i.mtx.Unlock()
}

// ProcessCreateConnectionResult handles the kernel's answer on the
// destination side and notifies the local application.
func (i *Instance) ProcessCreateConnectionResult(
	event rina.CreateConnectionResultEvent) {

	i.mtx.Lock()

	if i.state != StateConnectionCreateRequested {
		i.logger.Error("Received a create connection result event in "+
			"unexpected state, ignoring it", "state", i.state)
		i.mtx.Unlock()
		return
	}

	if event.SourceCEPID < 0 {
		i.logger.Error("Create connection operation was unsuccessful",
			"cep_id", event.SourceCEPID)
		i.fa.Metrics.peerRequest(outcomeDropped)
		i.releaseUnlockRemove()
		return
	}
	if active, err := i.flow.ActiveConnection(); err == nil {
		active.SourceCEPID = event.SourceCEPID
	}

	i.state = StateAppNotifiedOfIncomingFlow
	handle, err := i.fa.IPCManager.AllocateFlowRequestArrived(
		i.flow.DestinationNaming, i.flow.SourceNaming, i.flow.FlowSpec, i.portID)
	if err != nil {
		i.logger.Error("Problems informing the IPC Manager about an incoming "+
			"flow allocation request", "err", err)
		i.fa.Metrics.peerRequest(outcomeDropped)
		i.releaseUnlockRemove()
		return
	}
	i.respHandle = handle
	i.respHandleSet = true
	i.logger.Debug("Informed IPC Manager about incoming flow allocation "+
		"request", "handle", handle)
	i.mtx.Unlock()
}

// SubmitAllocateResponse handles the local application's verdict on the
// incoming flow.
func (i *Instance) SubmitAllocateResponse(event rina.AllocateFlowResponseEvent) {
	i.mtx.Lock()

	if i.state != StateAppNotifiedOfIncomingFlow {
		i.logger.Error("Received an allocate response event in unexpected "+
			"state, ignoring it", "state", i.state)
		i.mtx.Unlock()
		return
	}

	if event.Result != 0 {
		if err := i.sendCreateResponse(-1, appRejectedReason); err != nil {
			i.logger.Error("Problems requesting RIB daemon to send CDAP "+
				"message", "err", err)
		}
		i.fa.Metrics.peerRequest(outcomeRejected)
		i.releaseUnlockRemove()
		return
	}

	if err := i.sendCreateResponse(0, ""); err != nil {
		i.logger.Error("Problems requesting RIB daemon to send CDAP message",
			"err", serrors.Join(ErrTransportFailure, err))
		if err := i.fa.IPCManager.FlowDeallocated(i.portID); err != nil {
			i.logger.Error("Problems communicating with the IPC Manager",
				"err", err)
		}
		i.fa.Metrics.peerRequest(outcomeDropped)
		i.releaseUnlockRemove()
		return
	}

	i.flow.State = rina.FlowStateAllocated
	if err := i.addFlowRIBObject(); err != nil {
		i.logger.Error("Error creating flow RIB object", "err", err)
	}
	i.state = StateFlowAllocated
	i.fa.Metrics.peerRequest(outcomeAccepted)
	i.fa.openFlowsChanged(1)
	i.mtx.Unlock()
}

// SubmitDeallocate starts the teardown of an allocated flow from the local
// side: the peer is told to delete the flow object and the state is kept
// for two maximum packet lifetimes.
func (i *Instance) SubmitDeallocate(event rina.FlowDeallocateRequestEvent) {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	if i.state != StateFlowAllocated {
		i.logger.Error("Received deallocate request in unexpected state, "+
			"ignoring it", "state", i.state)
		return
	}

	i.flow.State = rina.FlowStateWaitingTwoMPL
	i.state = StateWaitingTwoMPL

	remote := rib.RemoteID{
		PortID:     i.underlyingPortID,
		UseAddress: true,
		Address:    i.peerAddress(),
	}
	err := i.fa.RIBDaemon.RemoteDeleteObject(rib.FlowClass, i.objectName, remote)
	if err != nil {
		i.logger.Error("Problems sending M_DELETE flow request", "err", err)
	}

	i.fa.scheduleTeardown(i.portID)
}

// DeleteFlowRequestMessageReceived handles the peer-initiated teardown. No
// confirming delete is sent back.
func (i *Instance) DeleteFlowRequestMessageReceived() {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	if i.state != StateFlowAllocated {
		i.logger.Error("Received delete flow request in unexpected state, "+
			"ignoring it", "state", i.state)
		return
	}

	i.flow.State = rina.FlowStateWaitingTwoMPL
	i.state = StateWaitingTwoMPL
	i.fa.scheduleTeardown(i.portID)

	if err := i.fa.IPCManager.FlowDeallocatedRemotely(i.portID, 0); err != nil {
		i.logger.Error("Error communicating with the IPC Manager", "err", err)
	}
}

// peerResponseTimeout synthesizes a negative create response when the peer
// never answered within the configured bound.
func (i *Instance) peerResponseTimeout() {
	i.CreateResponse(-1, "peer response timeout", nil)
}

// destroy finishes the teardown after the 2*MPL wait: the flow RIB object
// and the instance itself are removed.
func (i *Instance) destroy() {
	i.mtx.Lock()

	if i.state != StateWaitingTwoMPL {
		i.logger.Error("Invoked destroy flow allocator instance in "+
			"unexpected state, ignoring it", "state", i.state)
		i.mtx.Unlock()
		return
	}

	if err := i.fa.Registry.Remove(i.objectName); err != nil {
		i.logger.Error("Problems deleting object from RIB", "err", err)
	}
	i.flow.State = rina.FlowStateDeallocated
	i.state = StateFinished
	metrics.CounterInc(i.fa.Metrics.FlowDeallocations)
	i.fa.openFlowsChanged(-1)
	i.releaseUnlockRemove()
}

// replyToIPCManager reports the allocation result for the pending request
// event. Must be called with the instance lock held.
func (i *Instance) replyToIPCManager(result int) {
	event := i.requestEvent
	if result != 0 {
		event.PortID = -1
	}
	if err := i.fa.IPCManager.AllocateFlowRequestResult(event, result); err != nil {
		i.logger.Error("Problems communicating with the IPC Manager Daemon",
			"err", err)
	}
}

// sendCreateResponse answers the pending create request from the peer. Must
// be called with the instance lock held.
func (i *Instance) sendCreateResponse(result int, reason string) error {
	remote := rib.RemoteID{
		PortID:     i.underlyingPortID,
		UseAddress: true,
		Address:    i.flow.SourceAddress,
	}
	return i.fa.RIBDaemon.RemoteCreateObjectResponse(rib.FlowClass,
		i.objectName, flowmsg.Encode(i.flow), result, reason, i.invokeID, remote)
}

// addFlowRIBObject registers the per-flow object under the flow set. Must
// be called with the instance lock held.
func (i *Instance) addFlowRIBObject() error {
	set, ok := i.fa.Registry.Get(rib.FlowSetName(i.fa.cfg.DIFName))
	if !ok {
		return serrors.Join(rib.ErrNotFound, nil,
			"name", rib.FlowSetName(i.fa.cfg.DIFName))
	}
	return set.CreateObject(rib.FlowClass, i.objectName, i)
}

// peerAddress is the address of the other end of the flow.
func (i *Instance) peerAddress() uint32 {
	if i.fa.cfg.Address == i.flow.SourceAddress {
		return i.flow.DestinationAddress
	}
	return i.flow.SourceAddress
}

// releasePortID returns the port-id to the kernel, exactly once over the
// lifetime of the instance.
func (i *Instance) releasePortID() {
	if i.portReleased {
		return
	}
	i.portReleased = true
	if err := i.fa.Kernel.DeallocatePortID(i.portID); err != nil {
		i.logger.Error("Problems releasing port-id", "err", err)
	}
}

// releaseUnlockRemove releases the port-id, drops the instance lock and
// removes the instance from the allocator registry. The lock must be held;
// it is dropped before going back to the allocator to respect the lock
// order between allocator and instance.
func (i *Instance) releaseUnlockRemove() {
	i.releasePortID()
	i.mtx.Unlock()
	i.fa.RemoveFlowAllocatorInstance(i.portID)
}

func (i *Instance) diagnosticsRow() []string {
	i.mtx.Lock()
	defer i.mtx.Unlock()
	src, dst := "-", "-"
	srcAddr, dstAddr, flowState := "-", "-", "-"
	if i.flow != nil {
		src = i.flow.SourceNaming.String()
		dst = i.flow.DestinationNaming.String()
		srcAddr = strconv.FormatUint(uint64(i.flow.SourceAddress), 10)
		dstAddr = strconv.FormatUint(uint64(i.flow.DestinationAddress), 10)
		flowState = i.flow.State.String()
	}
	return []string{
		strconv.Itoa(i.portID), i.state.String(), src, dst,
		srcAddr, dstAddr, flowState,
	}
}
