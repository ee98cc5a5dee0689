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
	"github.com/rinaproto/rina/ipcp/rib"
	"github.com/rinaproto/rina/pkg/rina"
)

// Kernel is the kernel IPC manager: port-id accounting and the EFCP
// connection engine. The connection calls are asynchronous; their outcomes
// arrive later as events on the IPCP main loop.
type Kernel interface {
	AllocatePortID(appName rina.AppName) (int, error)
	DeallocatePortID(portID int) error
	// CreateConnection requests a connection on the initiating side. The
	// outcome arrives as a CreateConnectionResponseEvent.
	CreateConnection(conn rina.Connection) error
	// CreateConnectionArrived requests a connection on the responding
	// side. The outcome arrives as a CreateConnectionResultEvent.
	CreateConnectionArrived(conn rina.Connection) error
	// UpdateConnection completes a connection with the peer endpoint data.
	// The outcome arrives as an UpdateConnectionResponseEvent.
	UpdateConnection(conn rina.Connection) error
}

// IPCManager is the IPC-Manager daemon, the application-facing side of flow
// allocation.
type IPCManager interface {
	AllocateFlowRequestResult(event rina.FlowRequestEvent, result int) error
	// AllocateFlowRequestArrived notifies a local application of an
	// incoming flow and returns the handle that correlates the
	// application's answer.
	AllocateFlowRequestArrived(dest, src rina.AppName, spec rina.FlowSpec,
		portID int) (uint32, error)
	NotifyFlowDeallocated(event rina.FlowDeallocateRequestEvent, result int) error
	FlowDeallocated(portID int) error
	FlowDeallocatedRemotely(portID int, reason int) error
}

// CreateResponseHandler receives the peer's answer to a remote create
// request.
type CreateResponseHandler interface {
	CreateResponse(result int, reason string, objectValue []byte)
}

// RIBDaemon sends CDAP messages on behalf of RIB objects. Local object
// storage lives in the rib.Registry; inbound CDAP operations are dispatched
// by the CDAP layer to the registered objects directly.
type RIBDaemon interface {
	RemoteCreateObject(class, name string, value []byte, remote rib.RemoteID,
		handler CreateResponseHandler) error
	RemoteCreateObjectResponse(class, name string, value []byte, result int,
		reason string, invokeID int, remote rib.RemoteID) error
	RemoteDeleteObject(class, name string, remote rib.RemoteID) error
	RemoteReadObjectResponse(class, name string, value []byte, result int,
		reason string, invokeID int, remote rib.RemoteID) error
}

// CDAPSessions exposes the open management sessions of the IPCP.
type CDAPSessions interface {
	// SessionByAddress returns the port-id of the open session whose peer
	// is the IPCP with the given address.
	SessionByAddress(address uint32) (int, bool)
	// SessionIDs returns the port-ids of all open sessions.
	SessionIDs() []int
}

// SecurityManager decides whether an incoming flow request is acceptable.
type SecurityManager interface {
	AcceptFlow(flow *rina.Flow) bool
}
