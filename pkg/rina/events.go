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

package rina

// FlowRequestEvent is the IPC-Manager request to allocate a flow on behalf
// of a local application.
type FlowRequestEvent struct {
	LocalAppName  AppName
	RemoteAppName AppName
	FlowSpec      FlowSpec
	// PortID assigned to the flow, -1 until allocation succeeds.
	PortID int
	// RequestorIPCPID is non-zero when the flow user is another IPC
	// process rather than an application.
	RequestorIPCPID int16
	// SequenceNumber correlates the request with its result.
	SequenceNumber uint32
}

// AllocateFlowResponseEvent is the local application's answer to an incoming
// flow request.
type AllocateFlowResponseEvent struct {
	// SequenceNumber is the handle returned when the application was
	// notified of the incoming flow.
	SequenceNumber uint32
	// Result is 0 when the application accepts the flow.
	Result int
}

// FlowDeallocateRequestEvent asks for the deallocation of a flow.
type FlowDeallocateRequestEvent struct {
	PortID         int
	SequenceNumber uint32
}

// CreateConnectionResponseEvent is the kernel's answer to a createConnection
// call on the source side.
type CreateConnectionResponseEvent struct {
	PortID int
	// CEPID is the connection-endpoint id assigned by EFCP, negative on
	// failure.
	CEPID int32
}

// CreateConnectionResultEvent is the kernel's answer to a
// createConnectionArrived call on the destination side.
type CreateConnectionResultEvent struct {
	PortID int
	// SourceCEPID is negative on failure.
	SourceCEPID int32
}

// UpdateConnectionResponseEvent is the kernel's answer to an
// updateConnection call.
type UpdateConnectionResponseEvent struct {
	PortID int
	// Result is 0 on success.
	Result int
}
