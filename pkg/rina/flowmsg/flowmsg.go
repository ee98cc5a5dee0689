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

// Package flowmsg implements the wire representation of the Flow object
// exchanged between peer flow allocators. The format is the protobuf
// encoding of the Flow message of the management protocol; the codec is
// written against the raw wire format so the decoder can reject messages
// carrying unknown fields.
package flowmsg

import (
	"errors"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rinaproto/rina/pkg/private/serrors"
	"github.com/rinaproto/rina/pkg/rina"
)

// ErrMalformedMessage is returned when a message cannot be decoded.
var ErrMalformedMessage = errors.New("malformed flow message")

// Field numbers of the Flow message.
const (
	fieldSourceNaming      = 1
	fieldDestinationNaming = 2
	fieldSourcePortID      = 3
	fieldDestinationPortID = 4
	fieldSourceAddress     = 5
	fieldDestAddress       = 6
	fieldConnectionIDs     = 7
	fieldCurrentConnection = 8
	fieldState             = 9
	fieldQoSParameters     = 10
	fieldConnPolicies      = 11
	fieldAccessControl     = 12
	fieldMaxCreateRetries  = 13
	fieldCreateRetries     = 14
	fieldHopCount          = 15
)

// Field numbers of the applicationProcessNamingInfo message.
const (
	fieldProcessName     = 1
	fieldProcessInstance = 2
	fieldEntityName      = 3
	fieldEntityInstance  = 4
)

// Field numbers of the connectionId message.
const (
	fieldQoSID       = 1
	fieldSourceCEPID = 2
	fieldDestCEPID   = 3
)

// Field numbers of the qosSpecification message.
const (
	fieldQoSName              = 1
	fieldQoSSpecID            = 2
	fieldAvgBandwidth         = 3
	fieldAvgSDUBandwidth      = 4
	fieldPeakBandwidthDur     = 5
	fieldPeakSDUBandwidthDur  = 6
	fieldUndetectedBitErrRate = 7
	fieldQoSPartialDelivery   = 8
	fieldQoSOrder             = 9
	fieldMaxAllowableGapSDU   = 10
	fieldQoSDelay             = 11
	fieldQoSJitter            = 12
)

// Field numbers of the connectionPolicies message.
const (
	fieldDTCPPresent     = 1
	fieldDTCPConfig      = 2
	fieldSeqRollover     = 4
	fieldInOrderDelivery = 5
	fieldPartialDelivery = 6
	fieldMaxSDUGap       = 7
)

// Field numbers of the dtcpConfig message.
const (
	fieldFlowControl   = 1
	fieldRtxControl    = 2
	fieldInitialATimer = 3
)

// Encode serializes the flow. The connection policies on the wire are those
// of the active connection; a flow without an active connection is encoded
// without them.
func Encode(f *rina.Flow) []byte {
	var b []byte
	b = appendMessage(b, fieldSourceNaming, encodeNaming(f.SourceNaming))
	b = appendMessage(b, fieldDestinationNaming, encodeNaming(f.DestinationNaming))
	b = appendInt(b, fieldSourcePortID, int64(f.SourcePortID))
	b = appendInt(b, fieldDestinationPortID, int64(f.DestinationPortID))
	b = appendUint(b, fieldSourceAddress, uint64(f.SourceAddress))
	b = appendUint(b, fieldDestAddress, uint64(f.DestinationAddress))
	for _, c := range f.Connections {
		b = appendMessage(b, fieldConnectionIDs, encodeConnectionID(c))
	}
	b = appendInt(b, fieldCurrentConnection, int64(f.CurrentConnectionIndex))
	b = appendInt(b, fieldState, int64(f.State))
	b = appendMessage(b, fieldQoSParameters, encodeFlowSpec(f.FlowSpec))
	if active, err := f.ActiveConnection(); err == nil {
		b = appendMessage(b, fieldConnPolicies, encodePolicies(active.Policies))
	}
	if f.AccessControl != nil {
		b = protowire.AppendTag(b, fieldAccessControl, protowire.BytesType)
		b = protowire.AppendBytes(b, f.AccessControl)
	}
	b = appendInt(b, fieldMaxCreateRetries, int64(f.MaxCreateFlowRetries))
	b = appendInt(b, fieldCreateRetries, int64(f.CreateFlowRetries))
	b = appendInt(b, fieldHopCount, int64(f.HopCount))
	return b
}

// Decode parses a flow from its wire representation. Messages with unknown
// fields or wire-type mismatches are rejected with ErrMalformedMessage.
func Decode(b []byte) (*rina.Flow, error) {
	f := &rina.Flow{}
	var policies *rina.ConnPolicies
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, v value) error {
		switch num {
		case fieldSourceNaming:
			if err := decodeNaming(v.bytes(typ), &f.SourceNaming); err != nil {
				return err
			}
		case fieldDestinationNaming:
			if err := decodeNaming(v.bytes(typ), &f.DestinationNaming); err != nil {
				return err
			}
		case fieldSourcePortID:
			f.SourcePortID = int(v.signed(typ))
		case fieldDestinationPortID:
			f.DestinationPortID = int(v.signed(typ))
		case fieldSourceAddress:
			f.SourceAddress = uint32(v.varint(typ))
		case fieldDestAddress:
			f.DestinationAddress = uint32(v.varint(typ))
		case fieldConnectionIDs:
			conn := &rina.Connection{}
			if err := decodeConnectionID(v.bytes(typ), conn); err != nil {
				return err
			}
			f.Connections = append(f.Connections, conn)
		case fieldCurrentConnection:
			f.CurrentConnectionIndex = int(v.signed(typ))
		case fieldState:
			f.State = rina.FlowState(v.signed(typ))
		case fieldQoSParameters:
			if err := decodeFlowSpec(v.bytes(typ), &f.FlowSpec); err != nil {
				return err
			}
		case fieldConnPolicies:
			policies = &rina.ConnPolicies{}
			if err := decodePolicies(v.bytes(typ), policies); err != nil {
				return err
			}
		case fieldAccessControl:
			f.AccessControl = append(make([]byte, 0), v.bytes(typ)...)
		case fieldMaxCreateRetries:
			f.MaxCreateFlowRetries = int32(v.signed(typ))
		case fieldCreateRetries:
			f.CreateFlowRetries = int32(v.signed(typ))
		case fieldHopCount:
			f.HopCount = int32(v.signed(typ))
		default:
			return serrors.Join(ErrMalformedMessage, nil, "unknown_field", int(num))
		}
		return v.err()
	})
	if err != nil {
		return nil, err
	}
	if policies != nil {
		if active, err := f.ActiveConnection(); err == nil {
			active.Policies = *policies
		}
	}
	return f, nil
}

func encodeNaming(n rina.AppName) []byte {
	var b []byte
	b = appendString(b, fieldProcessName, n.ProcessName)
	b = appendString(b, fieldProcessInstance, n.ProcessInstance)
	b = appendString(b, fieldEntityName, n.EntityName)
	b = appendString(b, fieldEntityInstance, n.EntityInstance)
	return b
}

func decodeNaming(b []byte, n *rina.AppName) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v value) error {
		switch num {
		case fieldProcessName:
			n.ProcessName = string(v.bytes(typ))
		case fieldProcessInstance:
			n.ProcessInstance = string(v.bytes(typ))
		case fieldEntityName:
			n.EntityName = string(v.bytes(typ))
		case fieldEntityInstance:
			n.EntityInstance = string(v.bytes(typ))
		default:
			return serrors.Join(ErrMalformedMessage, nil, "unknown_field", int(num))
		}
		return v.err()
	})
}

func encodeConnectionID(c *rina.Connection) []byte {
	var b []byte
	b = appendUint(b, fieldQoSID, uint64(c.QoSID))
	b = appendInt(b, fieldSourceCEPID, int64(c.SourceCEPID))
	b = appendInt(b, fieldDestCEPID, int64(c.DestCEPID))
	return b
}

func decodeConnectionID(b []byte, c *rina.Connection) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v value) error {
		switch num {
		case fieldQoSID:
			c.QoSID = uint32(v.varint(typ))
		case fieldSourceCEPID:
			c.SourceCEPID = int32(v.signed(typ))
		case fieldDestCEPID:
			c.DestCEPID = int32(v.signed(typ))
		default:
			return serrors.Join(ErrMalformedMessage, nil, "unknown_field", int(num))
		}
		return v.err()
	})
}

func encodeFlowSpec(s rina.FlowSpec) []byte {
	var b []byte
	b = appendUint(b, fieldAvgBandwidth, uint64(s.AverageBandwidth))
	b = appendUint(b, fieldAvgSDUBandwidth, uint64(s.AverageSDUBandwidth))
	b = appendUint(b, fieldPeakBandwidthDur, uint64(s.PeakBandwidthDuration))
	b = appendUint(b, fieldPeakSDUBandwidthDur, uint64(s.PeakSDUBandwidthDuration))
	if s.UndetectedBitErrorRate != 0 {
		b = protowire.AppendTag(b, fieldUndetectedBitErrRate, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(s.UndetectedBitErrorRate))
	}
	b = appendBool(b, fieldQoSPartialDelivery, s.PartialDelivery)
	b = appendBool(b, fieldQoSOrder, s.OrderedDelivery)
	b = appendInt(b, fieldMaxAllowableGapSDU, int64(s.MaxAllowableGap))
	b = appendUint(b, fieldQoSDelay, uint64(s.Delay))
	b = appendUint(b, fieldQoSJitter, uint64(s.Jitter))
	return b
}

func decodeFlowSpec(b []byte, s *rina.FlowSpec) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v value) error {
		switch num {
		case fieldQoSName, fieldQoSSpecID:
			// Carried by some peers, no local representation.
		case fieldAvgBandwidth:
			s.AverageBandwidth = uint32(v.varint(typ))
		case fieldAvgSDUBandwidth:
			s.AverageSDUBandwidth = uint32(v.varint(typ))
		case fieldPeakBandwidthDur:
			s.PeakBandwidthDuration = uint32(v.varint(typ))
		case fieldPeakSDUBandwidthDur:
			s.PeakSDUBandwidthDuration = uint32(v.varint(typ))
		case fieldUndetectedBitErrRate:
			s.UndetectedBitErrorRate = math.Float64frombits(v.fixed64(typ))
		case fieldQoSPartialDelivery:
			s.PartialDelivery = v.varint(typ) != 0
		case fieldQoSOrder:
			s.OrderedDelivery = v.varint(typ) != 0
		case fieldMaxAllowableGapSDU:
			s.MaxAllowableGap = int32(v.signed(typ))
		case fieldQoSDelay:
			s.Delay = uint32(v.varint(typ))
		case fieldQoSJitter:
			s.Jitter = uint32(v.varint(typ))
		default:
			return serrors.Join(ErrMalformedMessage, nil, "unknown_field", int(num))
		}
		return v.err()
	})
}

func encodePolicies(p rina.ConnPolicies) []byte {
	var b []byte
	b = appendBool(b, fieldDTCPPresent, p.DTCPPresent)
	if p.DTCP != (rina.DTCPConfig{}) {
		b = appendMessage(b, fieldDTCPConfig, encodeDTCP(p.DTCP))
	}
	b = appendBool(b, fieldSeqRollover, p.SeqRollover)
	b = appendBool(b, fieldInOrderDelivery, p.InOrderDelivery)
	b = appendBool(b, fieldPartialDelivery, p.PartialDelivery)
	b = appendInt(b, fieldMaxSDUGap, int64(p.MaxSDUGap))
	return b
}

func decodePolicies(b []byte, p *rina.ConnPolicies) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v value) error {
		switch num {
		case fieldDTCPPresent:
			p.DTCPPresent = v.varint(typ) != 0
		case fieldDTCPConfig:
			if err := decodeDTCP(v.bytes(typ), &p.DTCP); err != nil {
				return err
			}
		case fieldSeqRollover:
			p.SeqRollover = v.varint(typ) != 0
		case fieldInOrderDelivery:
			p.InOrderDelivery = v.varint(typ) != 0
		case fieldPartialDelivery:
			p.PartialDelivery = v.varint(typ) != 0
		case fieldMaxSDUGap:
			p.MaxSDUGap = int32(v.signed(typ))
		default:
			return serrors.Join(ErrMalformedMessage, nil, "unknown_field", int(num))
		}
		return v.err()
	})
}

func encodeDTCP(c rina.DTCPConfig) []byte {
	var b []byte
	b = appendBool(b, fieldFlowControl, c.FlowControl)
	b = appendBool(b, fieldRtxControl, c.RtxControl)
	b = appendUint(b, fieldInitialATimer, uint64(c.InitialATimer))
	return b
}

func decodeDTCP(b []byte, c *rina.DTCPConfig) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, v value) error {
		switch num {
		case fieldFlowControl:
			c.FlowControl = v.varint(typ) != 0
		case fieldRtxControl:
			c.RtxControl = v.varint(typ) != 0
		case fieldInitialATimer:
			c.InitialATimer = uint32(v.varint(typ))
		default:
			return serrors.Join(ErrMalformedMessage, nil, "unknown_field", int(num))
		}
		return v.err()
	})
}
