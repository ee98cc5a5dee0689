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

// Package rina contains the shared data model of an IPC Process: application
// naming, flow specifications, QoS cubes, EFCP connections and flows.
package rina

import (
	"strings"
)

// AppName is the structured name of an application process within a DIF.
type AppName struct {
	ProcessName     string
	ProcessInstance string
	EntityName      string
	EntityInstance  string
}

// IsEmpty reports whether no component of the name is set.
func (n AppName) IsEmpty() bool {
	return n == AppName{}
}

// String returns the encoded form of the name. Trailing empty components are
// omitted.
func (n AppName) String() string {
	parts := []string{n.ProcessName, n.ProcessInstance, n.EntityName, n.EntityInstance}
	end := len(parts)
	for end > 1 && parts[end-1] == "" {
		end--
	}
	return strings.Join(parts[:end], "/")
}
