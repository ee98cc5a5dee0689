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
)

// FlowSpec carries the QoS parameters an application requests for a flow. A
// negative MaxAllowableGap means the application tolerates any loss.
type FlowSpec struct {
	// AverageBandwidth in bytes/s.
	AverageBandwidth uint32
	// AverageSDUBandwidth in SDUs/s.
	AverageSDUBandwidth uint32
	// PeakBandwidthDuration in ms.
	PeakBandwidthDuration uint32
	// PeakSDUBandwidthDuration in ms.
	PeakSDUBandwidthDuration uint32
	// UndetectedBitErrorRate that can be tolerated.
	UndetectedBitErrorRate float64
	// PartialDelivery of SDUs is allowed.
	PartialDelivery bool
	// OrderedDelivery of SDUs is required.
	OrderedDelivery bool
	// MaxAllowableGap between SDUs; negative means any gap is acceptable.
	MaxAllowableGap int32
	// Delay in ms.
	Delay uint32
	// Jitter in ms.
	Jitter uint32
}

// DTCPConfig is the configuration of the control half of EFCP.
type DTCPConfig struct {
	FlowControl   bool
	RtxControl    bool
	InitialATimer uint32
}

// ConnPolicies are the EFCP policies of a connection.
type ConnPolicies struct {
	DTCPPresent     bool
	DTCP            DTCPConfig
	SeqRollover     bool
	InOrderDelivery bool
	PartialDelivery bool
	// MaxSDUGap tolerated before the connection is declared broken.
	MaxSDUGap int32
}

// QoSCube is a named bundle of service parameters and EFCP policies offered
// by a DIF. Cubes are configured at DIF assignment and are immutable
// afterwards.
type QoSCube struct {
	ID   uint32
	Name string

	AverageBandwidth         uint32
	AverageSDUBandwidth      uint32
	PeakBandwidthDuration    uint32
	PeakSDUBandwidthDuration uint32
	UndetectedBitErrorRate   float64
	PartialDelivery          bool
	OrderedDelivery          bool
	MaxAllowableGap          int32
	Delay                    uint32
	Jitter                   uint32

	EFCPPolicies ConnPolicies
}

// Displayable renders the cube for RIB inspection.
func (c *QoSCube) Displayable() string {
	return fmt.Sprintf(
		"Name: %s; Id: %d; Jitter: %d; Delay: %d\n"+
			"In order delivery: %t; Partial delivery allowed: %t\n"+
			"Max allowed gap between SDUs: %d; Undetected bit error rate: %g\n"+
			"Average bandwidth (bytes/s): %d; Average SDU bandwidth (bytes/s): %d\n"+
			"Peak bandwidth duration (ms): %d; Peak SDU bandwidth duration (ms): %d",
		c.Name, c.ID, c.Jitter, c.Delay,
		c.OrderedDelivery, c.PartialDelivery,
		c.MaxAllowableGap, c.UndetectedBitErrorRate,
		c.AverageBandwidth, c.AverageSDUBandwidth,
		c.PeakBandwidthDuration, c.PeakSDUBandwidthDuration,
	)
}
