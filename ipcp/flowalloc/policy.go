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
	"math"

	"github.com/rinaproto/rina/pkg/private/serrors"
	"github.com/rinaproto/rina/pkg/rina"
)

// NewFlowRequestPolicy builds the Flow object for a local allocation
// request. Only the initiating side carries a policy.
type NewFlowRequestPolicy interface {
	GenerateFlow(event rina.FlowRequestEvent) (*rina.Flow, error)
}

// simpleNewFlowRequestPolicy creates a flow with a single connection over
// the first cube that can satisfy the requested flow specification.
type simpleNewFlowRequestPolicy struct {
	fa *FlowAllocator
}

func (p *simpleNewFlowRequestPolicy) GenerateFlow(
	event rina.FlowRequestEvent) (*rina.Flow, error) {

	cube, err := p.selectQoSCube(event.FlowSpec)
	if err != nil {
		return nil, err
	}
	p.fa.logger.Debug("Selected QoS cube", "cube", cube.Name)

	policies := cube.EFCPPolicies
	policies.InOrderDelivery = cube.OrderedDelivery
	policies.PartialDelivery = cube.PartialDelivery
	if event.FlowSpec.MaxAllowableGap < 0 {
		policies.MaxSDUGap = math.MaxInt32
	} else {
		policies.MaxSDUGap = cube.MaxAllowableGap
	}

	conn := &rina.Connection{
		PortID:         event.PortID,
		SourceAddress:  p.fa.cfg.Address,
		QoSID:          1,
		FlowUserIPCPID: event.RequestorIPCPID,
		Policies:       policies,
	}

	return &rina.Flow{
		SourceNaming:           event.LocalAppName,
		DestinationNaming:      event.RemoteAppName,
		Source:                 true,
		State:                  rina.FlowStateAllocationInProgress,
		HopCount:               p.fa.cfg.HopCount,
		MaxCreateFlowRetries:   p.fa.cfg.MaxCreateFlowRetries,
		Connections:            []*rina.Connection{conn},
		CurrentConnectionIndex: 0,
		FlowSpec:               event.FlowSpec,
	}, nil
}

// selectQoSCube picks the first cube when any gap is acceptable, otherwise
// the first cube whose EFCP policies run DTCP with retransmission control.
func (p *simpleNewFlowRequestPolicy) selectQoSCube(
	spec rina.FlowSpec) (*rina.QoSCube, error) {

	cubes := p.fa.QoSCubes()
	if len(cubes) == 0 {
		return nil, serrors.Join(ErrNoSuitableQoSCube, nil,
			"reason", "no QoS cubes configured")
	}
	if spec.MaxAllowableGap < 0 {
		return cubes[0], nil
	}
	for _, cube := range cubes {
		if cube.EFCPPolicies.DTCPPresent && cube.EFCPPolicies.DTCP.RtxControl {
			return cube, nil
		}
	}
	return nil, serrors.Join(ErrNoSuitableQoSCube, nil,
		"reason", "no cube with retransmission control")
}
