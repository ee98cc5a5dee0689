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

package flowalloc_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinaproto/rina/ipcp/flowalloc"
	"github.com/rinaproto/rina/ipcp/rib"
	"github.com/rinaproto/rina/pkg/rina"
	"github.com/rinaproto/rina/pkg/rina/flowmsg"
)

const (
	peerSessionID = 8
	invokeID      = 41
)

// incomingFlow is a create request as it looks after decoding on the
// destination side: the connection carries only the qos-id and the
// initiator's cep-id.
func incomingFlow(hopCount int32) *rina.Flow {
	return &rina.Flow{
		SourceNaming:      localApp,
		DestinationNaming: remoteApp,
		SourceAddress:     remoteAddr,
		DestinationAddress: localAddr,
		SourcePortID:      430,
		HopCount:          hopCount,
		State:             rina.FlowStateAllocationInProgress,
		FlowSpec:          rina.FlowSpec{MaxAllowableGap: -1},
		Connections: []*rina.Connection{
			{QoSID: 1, SourceCEPID: 7},
		},
	}
}

func objectName() string {
	return rib.FlowName(testDIF, remoteAddr, 430)
}

// startDestinationAllocation drives a destination-side instance up to the
// point where the application was notified, and returns the response
// handle.
func startDestinationAllocation(t *testing.T, e *env, portID int) uint32 {
	e.directory.Put(remoteApp, localAddr)
	e.directory.Register(remoteApp, 3)

	e.kernel.EXPECT().AllocatePortID(remoteApp).Return(portID, nil)
	e.security.EXPECT().AcceptFlow(gomock.Any()).Return(true)
	var arrived rina.Connection
	e.kernel.EXPECT().CreateConnectionArrived(gomock.Any()).DoAndReturn(
		func(conn rina.Connection) error {
			arrived = conn
			return nil
		})

	e.fa.CreateFlowRequestMessageReceived(incomingFlow(3), objectName(),
		invokeID, peerSessionID)

	inst, ok := e.fa.Instance(portID)
	require.True(t, ok)
	require.Equal(t, flowalloc.StateConnectionCreateRequested, inst.State())
	require.Equal(t, portID, arrived.PortID)
	require.EqualValues(t, 7, arrived.DestCEPID)
	require.EqualValues(t, 3, arrived.FlowUserIPCPID)

	handle := uint32(1234)
	e.ipcm.EXPECT().AllocateFlowRequestArrived(remoteApp, localApp,
		gomock.Any(), portID).Return(handle, nil)

	e.fa.ProcessCreateConnectionResult(rina.CreateConnectionResultEvent{
		PortID:      portID,
		SourceCEPID: 9,
	})
	require.Equal(t, flowalloc.StateAppNotifiedOfIncomingFlow, inst.State())
	return handle
}

func TestDestinationAcceptsFlow(t *testing.T) {
	e := newEnv(t, nil)
	handle := startDestinationAllocation(t, e, 87)

	var payload []byte
	e.ribd.EXPECT().RemoteCreateObjectResponse(rib.FlowClass, objectName(),
		gomock.Any(), 0, "", invokeID, gomock.Any()).
		DoAndReturn(func(class, name string, value []byte, result int,
			reason string, invoke int, remote rib.RemoteID) error {

			payload = value
			assert.Equal(t, peerSessionID, remote.PortID)
			assert.Equal(t, remoteAddr, remote.Address)
			return nil
		})

	e.fa.SubmitAllocateResponse(rina.AllocateFlowResponseEvent{
		SequenceNumber: handle,
		Result:         0,
	})

	inst, ok := e.fa.Instance(87)
	require.True(t, ok)
	require.Equal(t, flowalloc.StateFlowAllocated, inst.State())
	require.Equal(t, rina.FlowStateAllocated, inst.Flow().State)

	flow, err := flowmsg.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, 87, flow.DestinationPortID)
	active, err := flow.ActiveConnection()
	require.NoError(t, err)
	require.EqualValues(t, 9, active.SourceCEPID)
	require.EqualValues(t, 7, active.DestCEPID)

	_, ok = e.registry.Get(objectName())
	require.True(t, ok)
}

func TestDestinationApplicationRejectsFlow(t *testing.T) {
	e := newEnv(t, nil)
	handle := startDestinationAllocation(t, e, 87)

	e.ribd.EXPECT().RemoteCreateObjectResponse(rib.FlowClass, objectName(),
		gomock.Any(), -1, "Application rejected the flow", invokeID,
		gomock.Any()).Return(nil)
	e.kernel.EXPECT().DeallocatePortID(87).Return(nil)

	e.fa.SubmitAllocateResponse(rina.AllocateFlowResponseEvent{
		SequenceNumber: handle,
		Result:         -1,
	})

	_, ok := e.fa.Instance(87)
	require.False(t, ok)
}

func TestSecurityDenial(t *testing.T) {
	e := newEnv(t, nil)
	e.directory.Put(remoteApp, localAddr)

	e.kernel.EXPECT().AllocatePortID(remoteApp).Return(87, nil)
	e.security.EXPECT().AcceptFlow(gomock.Any()).Return(false)
	e.ribd.EXPECT().RemoteCreateObjectResponse(rib.FlowClass, objectName(),
		gomock.Any(), -1, "EncoderConstants::FLOW_RIB_OBJECT_CLASS", invokeID,
		gomock.Any()).Return(nil)
	e.kernel.EXPECT().DeallocatePortID(87).Return(nil)

	e.fa.CreateFlowRequestMessageReceived(incomingFlow(3), objectName(),
		invokeID, peerSessionID)

	_, ok := e.fa.Instance(87)
	require.False(t, ok)
}

func TestHopCountExpiry(t *testing.T) {
	e := newEnv(t, nil)
	// The destination application is reachable through another IPCP.
	e.directory.Put(remoteApp, 30)

	e.ribd.EXPECT().RemoteCreateObjectResponse(rib.FlowClass, objectName(),
		gomock.Any(), -1, gomock.Any(), invokeID, gomock.Any()).
		DoAndReturn(func(class, name string, value []byte, result int,
			reason string, invoke int, remote rib.RemoteID) error {

			assert.Equal(t, peerSessionID, remote.PortID)
			return nil
		})

	e.fa.CreateFlowRequestMessageReceived(incomingFlow(1), objectName(),
		invokeID, peerSessionID)
}

func TestCreateRequestForwarded(t *testing.T) {
	e := newEnv(t, nil)
	e.directory.Put(remoteApp, 30)

	e.ribd.EXPECT().RemoteCreateObject(rib.FlowClass, objectName(),
		gomock.Any(), rib.RemoteID{UseAddress: true, Address: 30}, gomock.Nil()).
		DoAndReturn(func(class, name string, value []byte, remote rib.RemoteID,
			handler flowalloc.CreateResponseHandler) error {

			flow, err := flowmsg.Decode(value)
			require.NoError(t, err)
			assert.EqualValues(t, 2, flow.HopCount)
			return nil
		})

	e.fa.CreateFlowRequestMessageReceived(incomingFlow(3), objectName(),
		invokeID, peerSessionID)
}

func TestDFTMissOnCreateRequestIsDropped(t *testing.T) {
	e := newEnv(t, nil)
	// No expectations: the request is dropped without any outbound call.
	e.fa.CreateFlowRequestMessageReceived(incomingFlow(3), objectName(),
		invokeID, peerSessionID)
}

func TestNormalDeallocationSourceSide(t *testing.T) {
	e := newEnv(t, nil)
	payload, handler := startSourceAllocation(t, e, 430)

	e.kernel.EXPECT().UpdateConnection(gomock.Any()).Return(nil)
	handler.CreateResponse(0, "", peerAcceptPayload(t, payload, 86, 9))
	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), 0).Return(nil)
	e.fa.ProcessUpdateConnectionResponse(rina.UpdateConnectionResponseEvent{
		PortID: 430,
	})

	inst, ok := e.fa.Instance(430)
	require.True(t, ok)
	require.Equal(t, flowalloc.StateFlowAllocated, inst.State())

	e.ribd.EXPECT().RemoteDeleteObject(rib.FlowClass,
		rib.FlowName(testDIF, localAddr, 430), gomock.Any()).
		DoAndReturn(func(class, name string, remote rib.RemoteID) error {
			// The delete goes to the other end of the flow.
			assert.Equal(t, remoteAddr, remote.Address)
			return nil
		})
	e.ipcm.EXPECT().NotifyFlowDeallocated(gomock.Any(), 0).Return(nil)
	e.kernel.EXPECT().DeallocatePortID(430).Return(nil)

	e.fa.SubmitDeallocate(rina.FlowDeallocateRequestEvent{PortID: 430})
	require.Equal(t, flowalloc.StateWaitingTwoMPL, inst.State())
	require.Equal(t, rina.FlowStateWaitingTwoMPL, inst.Flow().State)

	require.Eventually(t, func() bool {
		_, ok := e.fa.Instance(430)
		return !ok
	}, time.Second, 5*time.Millisecond)
	_, ok = e.registry.Get(rib.FlowName(testDIF, localAddr, 430))
	require.False(t, ok)
	require.True(t, inst.IsFinished())
}

func TestRemoteDeallocationDestinationSide(t *testing.T) {
	e := newEnv(t, nil)
	handle := startDestinationAllocation(t, e, 87)

	e.ribd.EXPECT().RemoteCreateObjectResponse(rib.FlowClass, objectName(),
		gomock.Any(), 0, "", invokeID, gomock.Any()).Return(nil)
	e.fa.SubmitAllocateResponse(rina.AllocateFlowResponseEvent{
		SequenceNumber: handle,
	})

	obj, ok := e.registry.Get(objectName())
	require.True(t, ok)

	e.ipcm.EXPECT().FlowDeallocatedRemotely(87, 0).Return(nil)
	e.kernel.EXPECT().DeallocatePortID(87).Return(nil)

	// The peer deletes the flow object; no confirming delete is sent.
	require.NoError(t, obj.RemoteDeleteObject(invokeID, peerSessionID))

	inst, ok := e.fa.Instance(87)
	require.True(t, ok)
	require.Equal(t, flowalloc.StateWaitingTwoMPL, inst.State())

	require.Eventually(t, func() bool {
		_, ok := e.fa.Instance(87)
		return !ok
	}, time.Second, 5*time.Millisecond)
	_, ok = e.registry.Get(objectName())
	require.False(t, ok)
}

func TestDeallocateInUnexpectedStateIsDropped(t *testing.T) {
	e := newEnv(t, nil)
	_, _ = startSourceAllocation(t, e, 430)

	inst, ok := e.fa.Instance(430)
	require.True(t, ok)

	e.ipcm.EXPECT().NotifyFlowDeallocated(gomock.Any(), 0).Return(nil)
	e.fa.SubmitDeallocate(rina.FlowDeallocateRequestEvent{PortID: 430})
	require.Equal(t, flowalloc.StateMessageToPeerFAISent, inst.State())
}

func TestSubmitAllocateResponseUnknownHandleIsDropped(t *testing.T) {
	e := newEnv(t, nil)
	_ = startDestinationAllocation(t, e, 87)

	// A handle nobody waits for is logged and dropped.
	e.fa.SubmitAllocateResponse(rina.AllocateFlowResponseEvent{
		SequenceNumber: 77777,
	})

	inst, ok := e.fa.Instance(87)
	require.True(t, ok)
	require.Equal(t, flowalloc.StateAppNotifiedOfIncomingFlow, inst.State())
}
