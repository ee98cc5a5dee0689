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
	"math"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinaproto/rina/ipcp/dft"
	"github.com/rinaproto/rina/ipcp/flowalloc"
	"github.com/rinaproto/rina/ipcp/flowalloc/mock_flowalloc"
	"github.com/rinaproto/rina/ipcp/rib"
	"github.com/rinaproto/rina/pkg/log"
	"github.com/rinaproto/rina/pkg/rina"
	"github.com/rinaproto/rina/pkg/rina/flowmsg"
)

const (
	testDIF     = "normal.DIF"
	localAddr   = uint32(10)
	remoteAddr  = uint32(20)
	sessionID   = 5
	teardownDur = 20 * time.Millisecond
)

var (
	localApp  = rina.AppName{ProcessName: "rina.apps.echo.client", ProcessInstance: "1"}
	remoteApp = rina.AppName{ProcessName: "rina.apps.echo.server", ProcessInstance: "1"}
)

type env struct {
	ctrl      *gomock.Controller
	kernel    *mock_flowalloc.MockKernel
	ipcm      *mock_flowalloc.MockIPCManager
	ribd      *mock_flowalloc.MockRIBDaemon
	sessions  *mock_flowalloc.MockCDAPSessions
	security  *mock_flowalloc.MockSecurityManager
	directory *dft.Table
	registry  *rib.Registry
	fa        *flowalloc.FlowAllocator
}

func newEnv(t *testing.T, modify func(*flowalloc.Config)) *env {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	e := &env{
		ctrl:      ctrl,
		kernel:    mock_flowalloc.NewMockKernel(ctrl),
		ipcm:      mock_flowalloc.NewMockIPCManager(ctrl),
		ribd:      mock_flowalloc.NewMockRIBDaemon(ctrl),
		sessions:  mock_flowalloc.NewMockCDAPSessions(ctrl),
		security:  mock_flowalloc.NewMockSecurityManager(ctrl),
		directory: dft.NewTable(0),
		registry:  rib.NewRegistry(),
	}
	cfg := flowalloc.Config{
		DIFName:       testDIF,
		Address:       localAddr,
		TeardownDelay: teardownDur,
	}
	if modify != nil {
		modify(&cfg)
	}
	e.fa = &flowalloc.FlowAllocator{
		Kernel:     e.kernel,
		IPCManager: e.ipcm,
		RIBDaemon:  e.ribd,
		Sessions:   e.sessions,
		Resolver:   e.directory,
		Security:   e.security,
		Registry:   e.registry,
		Config:     cfg,
		Logger:     log.Discard(),
	}
	require.NoError(t, e.fa.PopulateRIB())
	require.NoError(t, e.fa.SetDIFConfiguration(testDIFConfig()))
	return e
}

func testDIFConfig() rina.DIFConfig {
	return rina.DIFConfig{
		EFCP: rina.EFCPConfig{
			QoSCubes: []*rina.QoSCube{
				{
					ID:              1,
					Name:            "unreliablewithflowcontrol",
					OrderedDelivery: true,
					MaxAllowableGap: -1,
					EFCPPolicies: rina.ConnPolicies{
						DTCPPresent: true,
						DTCP:        rina.DTCPConfig{FlowControl: true},
					},
				},
				{
					ID:              2,
					Name:            "reliablewithflowcontrol",
					OrderedDelivery: true,
					EFCPPolicies: rina.ConnPolicies{
						DTCPPresent: true,
						DTCP: rina.DTCPConfig{
							FlowControl: true,
							RtxControl:  true,
						},
					},
				},
			},
			DataTransferConstants: rina.DataTransferConstants{
				AddressLength:  2,
				CEPIDLength:    2,
				MaxPDUSize:     10000,
				MaxPDULifetime: 2500,
			},
		},
	}
}

func requestEvent(portHint int) rina.FlowRequestEvent {
	return rina.FlowRequestEvent{
		LocalAppName:  localApp,
		RemoteAppName: remoteApp,
		FlowSpec:      rina.FlowSpec{MaxAllowableGap: -1},
		PortID:        portHint,
		SequenceNumber: 99,
	}
}

// startSourceAllocation drives a source-side instance to the point where
// the create request was sent to the peer, and returns the captured payload
// and response handler.
func startSourceAllocation(t *testing.T, e *env,
	portID int) ([]byte, flowalloc.CreateResponseHandler) {

	e.directory.Put(remoteApp, remoteAddr)
	e.kernel.EXPECT().AllocatePortID(localApp).Return(portID, nil)
	var created rina.Connection
	e.kernel.EXPECT().CreateConnection(gomock.Any()).DoAndReturn(
		func(conn rina.Connection) error {
			created = conn
			return nil
		})

	e.fa.SubmitAllocateRequest(requestEvent(-1))

	inst, ok := e.fa.Instance(portID)
	require.True(t, ok)
	require.Equal(t, flowalloc.StateConnectionCreateRequested, inst.State())
	require.Equal(t, localAddr, created.SourceAddress)
	require.Equal(t, remoteAddr, created.DestAddress)

	var payload []byte
	var handler flowalloc.CreateResponseHandler
	e.sessions.EXPECT().SessionByAddress(remoteAddr).Return(sessionID, true)
	e.ribd.EXPECT().RemoteCreateObject(rib.FlowClass,
		rib.FlowName(testDIF, localAddr, portID), gomock.Any(), gomock.Any(),
		gomock.Any()).
		DoAndReturn(func(class, name string, value []byte, remote rib.RemoteID,
			h flowalloc.CreateResponseHandler) error {

			payload = value
			handler = h
			assert.Equal(t, sessionID, remote.PortID)
			assert.True(t, remote.UseAddress)
			assert.Equal(t, remoteAddr, remote.Address)
			return nil
		})

	e.fa.ProcessCreateConnectionResponse(rina.CreateConnectionResponseEvent{
		PortID: portID,
		CEPID:  7,
	})
	require.Equal(t, flowalloc.StateMessageToPeerFAISent, inst.State())
	return payload, handler
}

// peerAcceptPayload builds the positive response a destination flow
// allocator would send back for the given request payload.
func peerAcceptPayload(t *testing.T, request []byte, destPortID int,
	destCEPID int32) []byte {

	flow, err := flowmsg.Decode(request)
	require.NoError(t, err)
	flow.DestinationPortID = destPortID
	active, err := flow.ActiveConnection()
	require.NoError(t, err)
	// The destination answers in its own frame: swapped addresses, its
	// kernel-assigned cep-id in the source slot.
	active.SourceAddress, active.DestAddress = active.DestAddress, active.SourceAddress
	active.DestCEPID = active.SourceCEPID
	active.SourceCEPID = destCEPID
	return flowmsg.Encode(flow)
}

func TestHappyPathAllocation(t *testing.T) {
	e := newEnv(t, nil)
	payload, handler := startSourceAllocation(t, e, 430)

	flow, err := flowmsg.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, localAddr, flow.SourceAddress)
	require.Equal(t, remoteAddr, flow.DestinationAddress)
	require.Equal(t, 430, flow.SourcePortID)
	active, err := flow.ActiveConnection()
	require.NoError(t, err)
	require.EqualValues(t, 7, active.SourceCEPID)

	var updated rina.Connection
	e.kernel.EXPECT().UpdateConnection(gomock.Any()).DoAndReturn(
		func(conn rina.Connection) error {
			updated = conn
			return nil
		})
	handler.CreateResponse(0, "", peerAcceptPayload(t, payload, 86, 9))

	inst, ok := e.fa.Instance(430)
	require.True(t, ok)
	require.Equal(t, flowalloc.StateConnectionUpdateRequested, inst.State())
	require.EqualValues(t, 9, updated.DestCEPID)

	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), 0).DoAndReturn(
		func(event rina.FlowRequestEvent, result int) error {
			assert.Equal(t, 430, event.PortID)
			return nil
		})
	e.fa.ProcessUpdateConnectionResponse(rina.UpdateConnectionResponseEvent{
		PortID: 430,
		Result: 0,
	})

	require.Equal(t, flowalloc.StateFlowAllocated, inst.State())
	require.Equal(t, rina.FlowStateAllocated, inst.Flow().State)
	require.Equal(t, 86, inst.Flow().DestinationPortID)
	_, ok = e.registry.Get(rib.FlowName(testDIF, localAddr, 430))
	require.True(t, ok)
}

func TestDFTMiss(t *testing.T) {
	e := newEnv(t, nil)
	// No directory entry for the remote application.
	e.kernel.EXPECT().AllocatePortID(localApp).Return(430, nil)
	e.kernel.EXPECT().DeallocatePortID(430).Return(nil)
	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), -1).Return(nil)

	e.fa.SubmitAllocateRequest(requestEvent(-1))

	_, ok := e.fa.Instance(430)
	require.False(t, ok)
}

func TestSameAddressRefused(t *testing.T) {
	e := newEnv(t, nil)
	e.directory.Put(remoteApp, localAddr)
	e.kernel.EXPECT().AllocatePortID(localApp).Return(430, nil)
	e.kernel.EXPECT().DeallocatePortID(430).Return(nil)
	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), -1).Return(nil)

	e.fa.SubmitAllocateRequest(requestEvent(-1))

	_, ok := e.fa.Instance(430)
	require.False(t, ok)
}

func TestPortIDExhaustion(t *testing.T) {
	e := newEnv(t, nil)
	e.kernel.EXPECT().AllocatePortID(localApp).
		Return(0, assert.AnError)
	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), -1).Return(nil)

	e.fa.SubmitAllocateRequest(requestEvent(-1))
}

func TestNoSuitableQoSCube(t *testing.T) {
	e := newEnv(t, nil)
	e.directory.Put(remoteApp, remoteAddr)
	e.kernel.EXPECT().AllocatePortID(localApp).Return(430, nil)
	e.kernel.EXPECT().DeallocatePortID(430).Return(nil)
	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), -1).Return(nil)

	// Remove every cube of the set; a bounded-gap request can no longer be
	// satisfied.
	set, ok := e.registry.Get(rib.QoSCubeSetName(testDIF))
	require.True(t, ok)
	require.NoError(t, set.DeleteObject(nil))

	event := requestEvent(-1)
	event.FlowSpec.MaxAllowableGap = 0
	e.fa.SubmitAllocateRequest(event)

	_, ok = e.fa.Instance(430)
	require.False(t, ok)
}

func TestQoSCubeSelection(t *testing.T) {
	t.Run("any gap picks first cube", func(t *testing.T) {
		e := newEnv(t, nil)
		e.directory.Put(remoteApp, remoteAddr)
		e.kernel.EXPECT().AllocatePortID(localApp).Return(430, nil)
		var created rina.Connection
		e.kernel.EXPECT().CreateConnection(gomock.Any()).DoAndReturn(
			func(conn rina.Connection) error {
				created = conn
				return nil
			})

		event := requestEvent(-1)
		event.FlowSpec.MaxAllowableGap = -1
		e.fa.SubmitAllocateRequest(event)

		assert.False(t, created.Policies.DTCP.RtxControl)
		assert.EqualValues(t, math.MaxInt32, created.Policies.MaxSDUGap)
		assert.True(t, created.Policies.InOrderDelivery)
		assert.EqualValues(t, 1, created.QoSID)
	})

	t.Run("bounded gap picks cube with rtx control", func(t *testing.T) {
		e := newEnv(t, nil)
		e.directory.Put(remoteApp, remoteAddr)
		e.kernel.EXPECT().AllocatePortID(localApp).Return(430, nil)
		var created rina.Connection
		e.kernel.EXPECT().CreateConnection(gomock.Any()).DoAndReturn(
			func(conn rina.Connection) error {
				created = conn
				return nil
			})

		event := requestEvent(-1)
		event.FlowSpec.MaxAllowableGap = 0
		e.fa.SubmitAllocateRequest(event)

		assert.True(t, created.Policies.DTCP.RtxControl)
		assert.EqualValues(t, 0, created.Policies.MaxSDUGap)
	})
}

func TestPeerRejectsFlow(t *testing.T) {
	e := newEnv(t, nil)
	_, handler := startSourceAllocation(t, e, 430)

	e.kernel.EXPECT().DeallocatePortID(430).Return(nil)
	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), -1).DoAndReturn(
		func(event rina.FlowRequestEvent, result int) error {
			assert.Equal(t, -1, event.PortID)
			return nil
		})

	handler.CreateResponse(-1, "Application rejected the flow", nil)

	_, ok := e.fa.Instance(430)
	require.False(t, ok)
}

func TestPeerResponseTimeout(t *testing.T) {
	e := newEnv(t, func(cfg *flowalloc.Config) {
		cfg.PeerResponseTimeout = 50 * time.Millisecond
	})
	_, _ = startSourceAllocation(t, e, 430)

	e.kernel.EXPECT().DeallocatePortID(430).Return(nil)
	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), -1).Return(nil)

	require.Eventually(t, func() bool {
		_, ok := e.fa.Instance(430)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestKernelRefusesConnection(t *testing.T) {
	e := newEnv(t, nil)
	e.directory.Put(remoteApp, remoteAddr)
	e.kernel.EXPECT().AllocatePortID(localApp).Return(430, nil)
	e.kernel.EXPECT().CreateConnection(gomock.Any()).Return(nil)

	e.fa.SubmitAllocateRequest(requestEvent(-1))

	e.kernel.EXPECT().DeallocatePortID(430).Return(nil)
	e.ipcm.EXPECT().AllocateFlowRequestResult(gomock.Any(), -1).Return(nil)

	e.fa.ProcessCreateConnectionResponse(rina.CreateConnectionResponseEvent{
		PortID: 430,
		CEPID:  -1,
	})

	_, ok := e.fa.Instance(430)
	require.False(t, ok)
}

func TestEventInUnexpectedStateIsDropped(t *testing.T) {
	e := newEnv(t, nil)
	e.directory.Put(remoteApp, remoteAddr)
	e.kernel.EXPECT().AllocatePortID(localApp).Return(430, nil)
	e.kernel.EXPECT().CreateConnection(gomock.Any()).Return(nil)

	e.fa.SubmitAllocateRequest(requestEvent(-1))
	inst, ok := e.fa.Instance(430)
	require.True(t, ok)

	// An update response in CONNECTION_CREATE_REQUESTED must not cause a
	// transition nor any outbound call.
	e.fa.ProcessUpdateConnectionResponse(rina.UpdateConnectionResponseEvent{
		PortID: 430,
		Result: 0,
	})
	require.Equal(t, flowalloc.StateConnectionCreateRequested, inst.State())
}

func TestEventForUnknownPortIDReleasesPortID(t *testing.T) {
	e := newEnv(t, nil)
	e.kernel.EXPECT().DeallocatePortID(999).Return(nil)
	e.fa.ProcessCreateConnectionResult(rina.CreateConnectionResultEvent{
		PortID:      999,
		SourceCEPID: 3,
	})
}

func TestQoSCubeSetRejectsRemoteCreate(t *testing.T) {
	e := newEnv(t, nil)
	set, ok := e.registry.Get(rib.QoSCubeSetName(testDIF))
	require.True(t, ok)
	err := set.RemoteCreateObject(nil, rib.QoSCubeName(testDIF, "gold"), 1, 2)
	require.ErrorIs(t, err, rib.ErrNotSupported)
}

func TestDataTransferConstantsRemoteRead(t *testing.T) {
	e := newEnv(t, nil)
	obj, ok := e.registry.Get(rib.DataTransferConstantsName(testDIF))
	require.True(t, ok)

	e.ribd.EXPECT().RemoteReadObjectResponse(rib.DataTransferConstantsClass,
		rib.DataTransferConstantsName(testDIF), gomock.Any(), 0, "", 17,
		rib.RemoteID{PortID: peerSessionID}).
		DoAndReturn(func(class, name string, value []byte, result int,
			reason string, invoke int, remote rib.RemoteID) error {

			constants, err := flowmsg.DecodeDataTransferConstants(value)
			require.NoError(t, err)
			assert.EqualValues(t, 2500,
				constants.MaxPDULifetime)
			return nil
		})

	require.NoError(t, obj.RemoteReadObject(17, peerSessionID))
}

func TestSetDIFConfigurationIsIdempotent(t *testing.T) {
	e := newEnv(t, nil)
	require.NoError(t, e.fa.SetDIFConfiguration(testDIFConfig()))
	require.Len(t, e.fa.QoSCubes(), 2)
}

func TestRegistryHasOneInstancePerPortID(t *testing.T) {
	e := newEnv(t, nil)
	_, _ = startSourceAllocation(t, e, 430)

	inst, ok := e.fa.Instance(430)
	require.True(t, ok)
	require.Equal(t, 430, inst.PortID())

	other, ok := e.fa.Instance(431)
	require.False(t, ok)
	require.Nil(t, other)
}
