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

import (
	"fmt"
	"strings"
)

// Connection is one EFCP endpoint pair supporting a flow.
type Connection struct {
	PortID        int
	SourceAddress uint32
	DestAddress   uint32
	SourceCEPID   int32
	DestCEPID     int32
	QoSID         uint32
	// FlowUserIPCPID identifies the IPC process using the flow, 0 if the
	// user is an application.
	FlowUserIPCPID int16
	Policies       ConnPolicies
}

// FlowState is the wire-visible state of a flow.
type FlowState int32

// Flow states.
const (
	FlowStateEmpty FlowState = iota
	FlowStateAllocationInProgress
	FlowStateAllocated
	FlowStateWaitingTwoMPL
	FlowStateDeallocated
)

func (s FlowState) String() string {
	switch s {
	case FlowStateEmpty:
		return "NULL"
	case FlowStateAllocationInProgress:
		return "ALLOCATION_IN_PROGRESS"
	case FlowStateAllocated:
		return "ALLOCATED"
	case FlowStateWaitingTwoMPL:
		return "WAITING_2_MPL_BEFORE_TEARING_DOWN"
	case FlowStateDeallocated:
		return "DEALLOCATED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(s))
	}
}

// Flow is the object negotiated between two flow allocators. It is the value
// of the per-flow RIB object and the payload of the create-flow request.
type Flow struct {
	SourceNaming      AppName
	DestinationNaming AppName
	SourcePortID      int
	DestinationPortID int
	SourceAddress     uint32
	// DestinationAddress is filled in by the source side after directory
	// resolution, or by the destination side on arrival.
	DestinationAddress uint32
	// Connections supporting this flow. Exactly one is active.
	Connections            []*Connection
	CurrentConnectionIndex int
	State                  FlowState
	FlowSpec               FlowSpec
	// AccessControl is an opaque policy-defined byte string, may be nil.
	AccessControl []byte
	MaxCreateFlowRetries int32
	CreateFlowRetries    int32
	HopCount             int32
	// Source is true on the side that initiated the allocation. Not part
	// of the wire representation.
	Source bool
}

// ActiveConnection returns the connection at the current connection index.
func (f *Flow) ActiveConnection() (*Connection, error) {
	if f.CurrentConnectionIndex < 0 || f.CurrentConnectionIndex >= len(f.Connections) {
		return nil, fmt.Errorf("no active connection at index %d", f.CurrentConnectionIndex)
	}
	return f.Connections[f.CurrentConnectionIndex], nil
}

// String renders the flow for logs and RIB inspection.
func (f *Flow) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "* State: %s\n", f.State)
	fmt.Fprintf(&b, "* Is this IPC Process the requestor of the flow? %t\n", f.Source)
	fmt.Fprintf(&b, "* Max create flow retries: %d\n", f.MaxCreateFlowRetries)
	fmt.Fprintf(&b, "* Hop count: %d\n", f.HopCount)
	fmt.Fprintf(&b, "* Source AP Naming Info: %s\n", f.SourceNaming)
	fmt.Fprintf(&b, "* Source address: %d\n", f.SourceAddress)
	fmt.Fprintf(&b, "* Source port id: %d\n", f.SourcePortID)
	fmt.Fprintf(&b, "* Destination AP Naming Info: %s\n", f.DestinationNaming)
	fmt.Fprintf(&b, "* Destination address: %d\n", f.DestinationAddress)
	fmt.Fprintf(&b, "* Destination port id: %d\n", f.DestinationPortID)
	if len(f.Connections) > 0 {
		fmt.Fprintf(&b, "* Connection ids of the connection supporting this flow:\n")
		for _, c := range f.Connections {
			fmt.Fprintf(&b, "\t- QoS id: %d; Source CEP-id: %d; Dest CEP-id: %d\n",
				c.QoSID, c.SourceCEPID, c.DestCEPID)
		}
	}
	fmt.Fprintf(&b, "* Index of the current active connection for this flow: %d",
		f.CurrentConnectionIndex)
	return b.String()
}
