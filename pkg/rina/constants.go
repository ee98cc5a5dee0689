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

// DataTransferConstants are the EFCP field sizes and limits of a DIF. They
// are fixed at DIF assignment, before enrollment.
type DataTransferConstants struct {
	// AddressLength in bytes.
	AddressLength uint16
	// CEPIDLength in bytes.
	CEPIDLength uint16
	// LengthLength is the size of the PDU length field, in bytes.
	LengthLength uint16
	// PortIDLength in bytes.
	PortIDLength uint16
	// QoSIDLength in bytes.
	QoSIDLength uint16
	// SequenceNumberLength in bytes.
	SequenceNumberLength uint16
	// MaxPDUSize in bytes.
	MaxPDUSize uint32
	// MaxPDULifetime in ms. The flow allocator's teardown delay is
	// configured separately and is not derived from this value.
	MaxPDULifetime uint32
	// DIFIntegrity indicates whether PDUs carry integrity protection.
	DIFIntegrity bool
}

// Displayable renders the constants for RIB inspection.
func (c DataTransferConstants) Displayable() string {
	return fmt.Sprintf(
		"Address length (bytes): %d; CEP-id length (bytes): %d; Length length (bytes): %d\n"+
			"Port-id length (bytes): %d; QoS-id length (bytes): %d; Seq number length (bytes): %d\n"+
			"Max PDU size (bytes): %d; Max PDU lifetime (ms): %d; Integrity? %t",
		c.AddressLength, c.CEPIDLength, c.LengthLength,
		c.PortIDLength, c.QoSIDLength, c.SequenceNumberLength,
		c.MaxPDUSize, c.MaxPDULifetime, c.DIFIntegrity,
	)
}
