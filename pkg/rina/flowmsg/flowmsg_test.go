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

package flowmsg_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rinaproto/rina/pkg/rina"
	"github.com/rinaproto/rina/pkg/rina/flowmsg"
)

func fullFlow() *rina.Flow {
	return &rina.Flow{
		SourceNaming: rina.AppName{
			ProcessName:     "rina.apps.echo.client",
			ProcessInstance: "1",
			EntityName:      "echo",
			EntityInstance:  "2",
		},
		DestinationNaming: rina.AppName{
			ProcessName:     "rina.apps.echo.server",
			ProcessInstance: "1",
		},
		SourcePortID:       430,
		DestinationPortID:  86,
		SourceAddress:      10,
		DestinationAddress: 20,
		Connections: []*rina.Connection{
			{
				QoSID:       1,
				SourceCEPID: 7,
				DestCEPID:   9,
				Policies: rina.ConnPolicies{
					DTCPPresent: true,
					DTCP: rina.DTCPConfig{
						FlowControl:   true,
						RtxControl:    true,
						InitialATimer: 300,
					},
					InOrderDelivery: true,
					MaxSDUGap:       12,
				},
			},
		},
		CurrentConnectionIndex: 0,
		State:                  rina.FlowStateAllocated,
		FlowSpec: rina.FlowSpec{
			AverageBandwidth:         1000000,
			AverageSDUBandwidth:      1000,
			PeakBandwidthDuration:    200,
			PeakSDUBandwidthDuration: 100,
			UndetectedBitErrorRate:   1e-9,
			PartialDelivery:          false,
			OrderedDelivery:          true,
			MaxAllowableGap:          -1,
			Delay:                    30,
			Jitter:                   5,
		},
		AccessControl:        []byte{0xca, 0xfe},
		MaxCreateFlowRetries: 1,
		CreateFlowRetries:    0,
		HopCount:             3,
	}
}

// wireFields strips the members that are not part of the wire
// representation before comparing.
func wireFields(f *rina.Flow) *rina.Flow {
	c := *f
	c.Source = false
	conns := make([]*rina.Connection, 0, len(c.Connections))
	for _, conn := range c.Connections {
		cc := *conn
		cc.PortID = 0
		cc.SourceAddress = 0
		cc.DestAddress = 0
		cc.FlowUserIPCPID = 0
		conns = append(conns, &cc)
	}
	c.Connections = conns
	return &c
}

func TestRoundTripFull(t *testing.T) {
	f := fullFlow()
	decoded, err := flowmsg.Decode(flowmsg.Encode(f))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(wireFields(f), decoded))
}

func TestRoundTripMinimal(t *testing.T) {
	f := &rina.Flow{
		SourceNaming:      rina.AppName{ProcessName: "a"},
		DestinationNaming: rina.AppName{ProcessName: "b"},
		HopCount:          3,
	}
	decoded, err := flowmsg.Decode(flowmsg.Encode(f))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(f, decoded))
}

func TestAccessControlAbsent(t *testing.T) {
	f := fullFlow()
	f.AccessControl = nil
	decoded, err := flowmsg.Decode(flowmsg.Encode(f))
	require.NoError(t, err)
	assert.Nil(t, decoded.AccessControl)
}

func TestNegativeValuesSurvive(t *testing.T) {
	f := fullFlow()
	f.FlowSpec.MaxAllowableGap = -1
	f.Connections[0].SourceCEPID = -5
	decoded, err := flowmsg.Decode(flowmsg.Encode(f))
	require.NoError(t, err)
	assert.EqualValues(t, -1, decoded.FlowSpec.MaxAllowableGap)
	active, err := decoded.ActiveConnection()
	require.NoError(t, err)
	assert.EqualValues(t, -5, active.SourceCEPID)
}

func TestUnknownFieldRejected(t *testing.T) {
	b := flowmsg.Encode(fullFlow())
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)

	_, err := flowmsg.Decode(b)
	require.ErrorIs(t, err, flowmsg.ErrMalformedMessage)
}

func TestUnknownFieldInNamingRejected(t *testing.T) {
	var naming []byte
	naming = protowire.AppendTag(naming, 1, protowire.BytesType)
	naming = protowire.AppendString(naming, "app")
	naming = protowire.AppendTag(naming, 9, protowire.BytesType)
	naming = protowire.AppendString(naming, "bogus")

	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, naming)

	_, err := flowmsg.Decode(b)
	require.ErrorIs(t, err, flowmsg.ErrMalformedMessage)
}

func TestTruncatedMessageRejected(t *testing.T) {
	b := flowmsg.Encode(fullFlow())
	_, err := flowmsg.Decode(b[:len(b)-1])
	require.ErrorIs(t, err, flowmsg.ErrMalformedMessage)
}

func TestWireTypeMismatchRejected(t *testing.T) {
	// Field 3 (sourcePortId) is a varint; send bytes instead.
	var b []byte
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{1, 2, 3})

	_, err := flowmsg.Decode(b)
	require.ErrorIs(t, err, flowmsg.ErrMalformedMessage)
}

func TestDataTransferConstantsRoundTrip(t *testing.T) {
	c := rina.DataTransferConstants{
		AddressLength:        2,
		CEPIDLength:          2,
		LengthLength:         2,
		PortIDLength:         2,
		QoSIDLength:          1,
		SequenceNumberLength: 4,
		MaxPDUSize:           10000,
		MaxPDULifetime:       2500,
		DIFIntegrity:         true,
	}
	decoded, err := flowmsg.DecodeDataTransferConstants(
		flowmsg.EncodeDataTransferConstants(c))
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}
