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
	"github.com/rinaproto/rina/ipcp/rib"
	"github.com/rinaproto/rina/pkg/private/serrors"
	"github.com/rinaproto/rina/pkg/rina"
	"github.com/rinaproto/rina/pkg/rina/flowmsg"
)

// flowSetObject is the parent of the per-flow objects. Peer create requests
// on the set are flow allocation requests.
type flowSetObject struct {
	rib.BaseObject
	fa *FlowAllocator
}

func newFlowSetObject(fa *FlowAllocator) *flowSetObject {
	return &flowSetObject{
		BaseObject: rib.BaseObject{
			ObjClass: rib.FlowSetClass,
			ObjName:  rib.FlowSetName(fa.cfg.DIFName),
			ObjKind:  rib.KindFlowSet,
		},
		fa: fa,
	}
}

func (o *flowSetObject) RemoteCreateObject(value []byte, name string,
	invokeID, underlyingPortID int) error {

	flow, err := flowmsg.Decode(value)
	if err != nil {
		// Malformed requests are dropped without creating an instance.
		return serrors.Wrap("decoding flow object", err, "name", name)
	}
	o.fa.CreateFlowRequestMessageReceived(flow, name, invokeID, underlyingPortID)
	return nil
}

func (o *flowSetObject) CreateObject(class, name string, value any) error {
	inst, ok := value.(*Instance)
	if !ok {
		return serrors.New("flow set child must be a flow allocator instance",
			"name", name)
	}
	return o.fa.Registry.Add(newFlowObject(class, name, inst))
}

// flowObject is the RIB view of one allocated flow. Its value is owned by
// the flow allocator instance.
type flowObject struct {
	rib.BaseObject
	inst *Instance
}

func newFlowObject(class, name string, inst *Instance) *flowObject {
	return &flowObject{
		BaseObject: rib.BaseObject{
			ObjClass: class,
			ObjName:  name,
			ObjKind:  rib.KindFlow,
		},
		inst: inst,
	}
}

func (o *flowObject) Value() any {
	return o.inst.Flow()
}

func (o *flowObject) Displayable() string {
	if flow := o.inst.Flow(); flow != nil {
		return flow.String()
	}
	return ""
}

func (o *flowObject) RemoteDeleteObject(invokeID, underlyingPortID int) error {
	o.inst.DeleteFlowRequestMessageReceived()
	return nil
}

// qosCubeSetObject holds the cubes of the DIF. The set is configured
// locally at DIF assignment; peers may read it but not grow it.
type qosCubeSetObject struct {
	rib.BaseObject
	fa *FlowAllocator
}

func newQoSCubeSetObject(fa *FlowAllocator) *qosCubeSetObject {
	return &qosCubeSetObject{
		BaseObject: rib.BaseObject{
			ObjClass: rib.QoSCubeSetClass,
			ObjName:  rib.QoSCubeSetName(fa.cfg.DIFName),
			ObjKind:  rib.KindQoSCubeSet,
		},
		fa: fa,
	}
}

func (o *qosCubeSetObject) CreateObject(class, name string, value any) error {
	cube, ok := value.(*rina.QoSCube)
	if !ok {
		return serrors.New("QoS cube set child must be a QoS cube", "name", name)
	}
	return o.fa.Registry.Add(newQoSCubeObject(class, name, cube))
}

func (o *qosCubeSetObject) DeleteObject(value any) error {
	if value != nil {
		o.fa.logger.Info("Object value should have been nil")
	}
	var errs serrors.List
	for _, child := range o.fa.Registry.Children(o.Name()) {
		if err := o.fa.Registry.Remove(child.Name()); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.ToError()
}

func (o *qosCubeSetObject) RemoteCreateObject(value []byte, name string,
	invokeID, underlyingPortID int) error {

	return serrors.Join(rib.ErrNotSupported, nil,
		"reason", "QoS cubes are configured via DIF assignment", "name", name)
}

// qosCubeObject is one cube of the set.
type qosCubeObject struct {
	rib.BaseObject
	cube *rina.QoSCube
}

func newQoSCubeObject(class, name string, cube *rina.QoSCube) *qosCubeObject {
	return &qosCubeObject{
		BaseObject: rib.BaseObject{
			ObjClass: class,
			ObjName:  name,
			ObjKind:  rib.KindQoSCube,
		},
		cube: cube,
	}
}

func (o *qosCubeObject) Value() any {
	return o.cube
}

func (o *qosCubeObject) Displayable() string {
	return o.cube.Displayable()
}

// dataTransferConstantsObject serves the EFCP constants of the DIF. The
// constants are fixed before enrollment, so peer create requests are
// silently ignored.
type dataTransferConstantsObject struct {
	rib.BaseObject
	fa *FlowAllocator
}

func newDataTransferConstantsObject(fa *FlowAllocator) *dataTransferConstantsObject {
	return &dataTransferConstantsObject{
		BaseObject: rib.BaseObject{
			ObjClass: rib.DataTransferConstantsClass,
			ObjName:  rib.DataTransferConstantsName(fa.cfg.DIFName),
			ObjKind:  rib.KindDataTransferConstants,
		},
		fa: fa,
	}
}

func (o *dataTransferConstantsObject) Value() any {
	return o.fa.DataTransferConstants()
}

func (o *dataTransferConstantsObject) Displayable() string {
	return o.fa.DataTransferConstants().Displayable()
}

func (o *dataTransferConstantsObject) RemoteReadObject(invokeID,
	underlyingPortID int) error {

	value := flowmsg.EncodeDataTransferConstants(o.fa.DataTransferConstants())
	return o.fa.RIBDaemon.RemoteReadObjectResponse(o.Class(), o.Name(), value,
		0, "", invokeID, rib.RemoteID{PortID: underlyingPortID})
}

func (o *dataTransferConstantsObject) RemoteCreateObject(value []byte,
	name string, invokeID, underlyingPortID int) error {

	// Data transfer constants are set before enrollment via DIF
	// assignment.
	return nil
}

func (o *dataTransferConstantsObject) CreateObject(class, name string,
	value any) error {

	constants, ok := value.(rina.DataTransferConstants)
	if !ok {
		return serrors.New("value must be data transfer constants", "name", name)
	}
	o.fa.dtcMtx.Lock()
	defer o.fa.dtcMtx.Unlock()
	o.fa.dtc = constants
	return nil
}
