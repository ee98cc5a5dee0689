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

package rib

import (
	"fmt"
)

// FlowSetName is the name of the flow set object of a DIF.
func FlowSetName(dif string) string {
	return dif + Separator + "flows"
}

// FlowName is the name of the object for the flow allocated by the IPCP
// with the given address on the given port-id.
func FlowName(dif string, sourceAddress uint32, portID int) string {
	return fmt.Sprintf("%s%s%d-%d", FlowSetName(dif), Separator, sourceAddress, portID)
}

// QoSCubeSetName is the name of the QoS cube set object of a DIF.
func QoSCubeSetName(dif string) string {
	return dif + Separator + "qoscubes"
}

// QoSCubeName is the name of the object for the given cube.
func QoSCubeName(dif, cube string) string {
	return QoSCubeSetName(dif) + Separator + cube
}

// DataTransferConstantsName is the well-known name of the data-transfer
// constants object of a DIF.
func DataTransferConstantsName(dif string) string {
	return dif + Separator + "datatransferconstants"
}
