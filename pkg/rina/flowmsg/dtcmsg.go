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

package flowmsg

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rinaproto/rina/pkg/private/serrors"
	"github.com/rinaproto/rina/pkg/rina"
)

// Field numbers of the dataTransferConstants message.
const (
	fieldMaxPDUSize     = 1
	fieldAddressLength  = 2
	fieldPortIDLength   = 3
	fieldCEPIDLength    = 4
	fieldQoSIDLength    = 5
	fieldSeqNumLength   = 6
	fieldLengthLength   = 7
	fieldMaxPDULifetime = 8
	fieldDIFIntegrity   = 9
)

// EncodeDataTransferConstants serializes the data-transfer constants for a
// remote read response.
func EncodeDataTransferConstants(c rina.DataTransferConstants) []byte {
	var b []byte
	b = appendUint(b, fieldMaxPDUSize, uint64(c.MaxPDUSize))
	b = appendUint(b, fieldAddressLength, uint64(c.AddressLength))
	b = appendUint(b, fieldPortIDLength, uint64(c.PortIDLength))
	b = appendUint(b, fieldCEPIDLength, uint64(c.CEPIDLength))
	b = appendUint(b, fieldQoSIDLength, uint64(c.QoSIDLength))
	b = appendUint(b, fieldSeqNumLength, uint64(c.SequenceNumberLength))
	b = appendUint(b, fieldLengthLength, uint64(c.LengthLength))
	b = appendUint(b, fieldMaxPDULifetime, uint64(c.MaxPDULifetime))
	b = appendBool(b, fieldDIFIntegrity, c.DIFIntegrity)
	return b
}

// DecodeDataTransferConstants parses data-transfer constants. Unknown
// fields are rejected with ErrMalformedMessage.
func DecodeDataTransferConstants(b []byte) (rina.DataTransferConstants, error) {
	var c rina.DataTransferConstants
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, v value) error {
		switch num {
		case fieldMaxPDUSize:
			c.MaxPDUSize = uint32(v.varint(typ))
		case fieldAddressLength:
			c.AddressLength = uint16(v.varint(typ))
		case fieldPortIDLength:
			c.PortIDLength = uint16(v.varint(typ))
		case fieldCEPIDLength:
			c.CEPIDLength = uint16(v.varint(typ))
		case fieldQoSIDLength:
			c.QoSIDLength = uint16(v.varint(typ))
		case fieldSeqNumLength:
			c.SequenceNumberLength = uint16(v.varint(typ))
		case fieldLengthLength:
			c.LengthLength = uint16(v.varint(typ))
		case fieldMaxPDULifetime:
			c.MaxPDULifetime = uint32(v.varint(typ))
		case fieldDIFIntegrity:
			c.DIFIntegrity = v.varint(typ) != 0
		default:
			return serrors.Join(ErrMalformedMessage, nil, "unknown_field", int(num))
		}
		return v.err()
	})
	if err != nil {
		return rina.DataTransferConstants{}, err
	}
	return c, nil
}
