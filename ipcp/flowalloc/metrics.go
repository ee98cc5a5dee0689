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
	"github.com/rinaproto/rina/pkg/metrics"
)

// Metrics are the metrics modified during the operation of the flow
// allocator. If empty, no metrics are reported.
type Metrics struct {
	// FlowAllocations counts finished local allocation attempts, with
	// the label "result" set to ok or error.
	FlowAllocations metrics.Counter
	// FlowDeallocations counts flow teardowns.
	FlowDeallocations metrics.Counter
	// PeerCreateRequests counts create requests received from peers,
	// with the label "outcome" set to accepted, denied, rejected,
	// forwarded, hop_expired or dropped.
	PeerCreateRequests metrics.Counter
	// OpenFlows is the number of flows currently allocated.
	OpenFlows metrics.Gauge
}

// Label values for the FlowAllocations result label.
const (
	resultOk    = "ok"
	resultError = "error"
)

// Label values for the PeerCreateRequests outcome label.
const (
	outcomeAccepted   = "accepted"
	outcomeDenied     = "denied"
	outcomeRejected   = "rejected"
	outcomeForwarded  = "forwarded"
	outcomeHopExpired = "hop_expired"
	outcomeDropped    = "dropped"
)

func (m Metrics) allocation(result string) {
	metrics.CounterInc(metrics.CounterWith(m.FlowAllocations, "result", result))
}

func (m Metrics) peerRequest(outcome string) {
	metrics.CounterInc(metrics.CounterWith(m.PeerCreateRequests, "outcome", outcome))
}
