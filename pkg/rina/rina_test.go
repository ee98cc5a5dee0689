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

package rina_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinaproto/rina/pkg/rina"
)

func TestAppNameString(t *testing.T) {
	testCases := map[string]struct {
		name     rina.AppName
		expected string
	}{
		"full": {
			name: rina.AppName{
				ProcessName:     "rina.apps.echo.server",
				ProcessInstance: "1",
				EntityName:      "echo",
				EntityInstance:  "2",
			},
			expected: "rina.apps.echo.server/1/echo/2",
		},
		"process only": {
			name:     rina.AppName{ProcessName: "rina.apps.echo.server"},
			expected: "rina.apps.echo.server",
		},
		"gap in middle": {
			name: rina.AppName{
				ProcessName: "rina.apps.echo.server",
				EntityName:  "echo",
			},
			expected: "rina.apps.echo.server//echo",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.name.String())
		})
	}
}

func TestActiveConnection(t *testing.T) {
	f := &rina.Flow{}
	_, err := f.ActiveConnection()
	require.Error(t, err)

	f.Connections = []*rina.Connection{{QoSID: 1}, {QoSID: 2}}
	f.CurrentConnectionIndex = 1
	active, err := f.ActiveConnection()
	require.NoError(t, err)
	assert.EqualValues(t, 2, active.QoSID)
}

func TestFlowStateString(t *testing.T) {
	assert.Equal(t, "ALLOCATED", rina.FlowStateAllocated.String())
	assert.Equal(t, "WAITING_2_MPL_BEFORE_TEARING_DOWN",
		rina.FlowStateWaitingTwoMPL.String())
}

func TestFlowString(t *testing.T) {
	f := &rina.Flow{
		SourceNaming:      rina.AppName{ProcessName: "a"},
		DestinationNaming: rina.AppName{ProcessName: "b"},
		SourceAddress:     10,
		SourcePortID:      430,
		State:             rina.FlowStateAllocated,
		Connections:       []*rina.Connection{{QoSID: 1, SourceCEPID: 7}},
	}
	s := f.String()
	assert.Contains(t, s, "ALLOCATED")
	assert.Contains(t, s, "Source port id: 430")
	assert.Contains(t, s, "QoS id: 1")
}
