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
)

// value is one decoded field payload. Accessors validate the wire type; a
// mismatch is reported through err.
type value struct {
	b        []byte
	u        uint64
	mismatch *bool
}

func (v value) bytes(typ protowire.Type) []byte {
	if typ != protowire.BytesType {
		*v.mismatch = true
		return nil
	}
	return v.b
}

func (v value) varint(typ protowire.Type) uint64 {
	if typ != protowire.VarintType {
		*v.mismatch = true
		return 0
	}
	return v.u
}

func (v value) signed(typ protowire.Type) int64 {
	return int64(v.varint(typ))
}

func (v value) fixed64(typ protowire.Type) uint64 {
	if typ != protowire.Fixed64Type {
		*v.mismatch = true
		return 0
	}
	return v.u
}

func (v value) err() error {
	if *v.mismatch {
		return serrors.Join(ErrMalformedMessage, nil, "reason", "wire type mismatch")
	}
	return nil
}

// walkFields iterates the fields of a wire-encoded message. Truncated input
// and unsupported wire types fail with ErrMalformedMessage.
func walkFields(b []byte, fn func(protowire.Number, protowire.Type, value) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return serrors.Join(ErrMalformedMessage, nil, "reason", "bad tag")
		}
		b = b[n:]
		mismatch := false
		v := value{mismatch: &mismatch}
		switch typ {
		case protowire.VarintType:
			u, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return serrors.Join(ErrMalformedMessage, nil,
					"field", int(num), "reason", "truncated varint")
			}
			v.u = u
			b = b[n:]
		case protowire.Fixed64Type:
			u, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return serrors.Join(ErrMalformedMessage, nil,
					"field", int(num), "reason", "truncated fixed64")
			}
			v.u = u
			b = b[n:]
		case protowire.Fixed32Type:
			u, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return serrors.Join(ErrMalformedMessage, nil,
					"field", int(num), "reason", "truncated fixed32")
			}
			v.u = uint64(u)
			b = b[n:]
		case protowire.BytesType:
			bs, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return serrors.Join(ErrMalformedMessage, nil,
					"field", int(num), "reason", "truncated bytes")
			}
			v.b = bs
			b = b[n:]
		default:
			return serrors.Join(ErrMalformedMessage, nil,
				"field", int(num), "reason", "unsupported wire type")
		}
		if err := fn(num, typ, v); err != nil {
			return err
		}
	}
	return nil
}

func appendUint(b []byte, num protowire.Number, u uint64) []byte {
	if u == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, u)
}

func appendInt(b []byte, num protowire.Number, i int64) []byte {
	return appendUint(b, num, uint64(i))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendUint(b, num, 1)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	if len(msg) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
