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
	"errors"
)

// Error kinds of the flow allocator, matched with errors.Is.
var (
	// ErrResourceExhaustion indicates a port-id could not be allocated.
	ErrResourceExhaustion = errors.New("resource exhaustion")
	// ErrNotFound indicates a directory, instance or session lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrHopCountExpired indicates a create request ran out of hops.
	ErrHopCountExpired = errors.New("hop count expired")
	// ErrSecurityDenied indicates the security manager refused the flow.
	ErrSecurityDenied = errors.New("security denied")
	// ErrKernelFailure indicates the EFCP engine refused a connection.
	ErrKernelFailure = errors.New("kernel failure")
	// ErrTransportFailure indicates a CDAP message could not be sent.
	ErrTransportFailure = errors.New("transport failure")
	// ErrProtocolViolation indicates an event arrived in an unexpected
	// state.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrNoSuitableQoSCube indicates no configured cube can satisfy the
	// requested flow specification.
	ErrNoSuitableQoSCube = errors.New("no suitable QoS cube")
	// ErrLocalFlow indicates source and destination are the same IPCP.
	ErrLocalFlow = errors.New("flows between local applications not supported")
)

// Reason strings sent to peers in negative create responses. The security
// denial reason is a historical artifact preserved verbatim for wire
// compatibility with deployed peers.
const (
	securityDenialReason = "EncoderConstants::FLOW_RIB_OBJECT_CLASS"
	appRejectedReason    = "Application rejected the flow"
	hopCountReason       = "hop count expired before reaching the destination application"
)
