// Package degu contains the messages declared in degu.proto.
//
// The types are maintained by hand in protoc-gen-go v1.3 form, without a
// file descriptor. Keep them in sync with degu.proto.
package degu

import (
	"fmt"

	"github.com/golang/protobuf/proto"
)

// Typed wraps an encoded message with its type.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

type CommandOK struct {
}

func (m *CommandOK) Reset()         { *m = CommandOK{} }
func (m *CommandOK) String() string { return proto.CompactTextString(m) }
func (*CommandOK) ProtoMessage()    {}

type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *CommandErr) Reset()         { *m = CommandErr{} }
func (m *CommandErr) String() string { return proto.CompactTextString(m) }
func (*CommandErr) ProtoMessage()    {}

type CheckUpdate struct {
}

func (m *CheckUpdate) Reset()         { *m = CheckUpdate{} }
func (m *CheckUpdate) String() string { return proto.CompactTextString(m) }
func (*CheckUpdate) ProtoMessage()    {}

type UpdateStatus struct {
	Status int32 `protobuf:"varint,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *UpdateStatus) Reset()         { *m = UpdateStatus{} }
func (m *UpdateStatus) String() string { return proto.CompactTextString(m) }
func (*UpdateStatus) ProtoMessage()    {}

type ShadowGet struct {
}

func (m *ShadowGet) Reset()         { *m = ShadowGet{} }
func (m *ShadowGet) String() string { return proto.CompactTextString(m) }
func (*ShadowGet) ProtoMessage()    {}

type Shadow struct {
	Code     uint32 `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Document []byte `protobuf:"bytes,2,opt,name=document,proto3" json:"document,omitempty"`
}

func (m *Shadow) Reset()         { *m = Shadow{} }
func (m *Shadow) String() string { return proto.CompactTextString(m) }
func (*Shadow) ProtoMessage()    {}

type ShadowUpdate struct {
	Document []byte `protobuf:"bytes,1,opt,name=document,proto3" json:"document,omitempty"`
}

func (m *ShadowUpdate) Reset()         { *m = ShadowUpdate{} }
func (m *ShadowUpdate) String() string { return proto.CompactTextString(m) }
func (*ShadowUpdate) ProtoMessage()    {}

type ShadowUpdated struct {
	Code uint32 `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
}

func (m *ShadowUpdated) Reset()         { *m = ShadowUpdated{} }
func (m *ShadowUpdated) String() string { return proto.CompactTextString(m) }
func (*ShadowUpdated) ProtoMessage()    {}

type Suspend struct {
	Seconds       uint32 `protobuf:"varint,1,opt,name=seconds,proto3" json:"seconds,omitempty"`
	ExternalAwake bool   `protobuf:"varint,2,opt,name=external_awake,json=externalAwake,proto3" json:"external_awake,omitempty"`
}

func (m *Suspend) Reset()         { *m = Suspend{} }
func (m *Suspend) String() string { return proto.CompactTextString(m) }
func (*Suspend) ProtoMessage()    {}

type WakeSource struct {
	Controller string `protobuf:"bytes,1,opt,name=controller,proto3" json:"controller,omitempty"`
	Pin        uint32 `protobuf:"varint,2,opt,name=pin,proto3" json:"pin,omitempty"`
}

func (m *WakeSource) Reset()         { *m = WakeSource{} }
func (m *WakeSource) String() string { return proto.CompactTextString(m) }
func (*WakeSource) ProtoMessage()    {}

type PowerDown struct {
	ExternalAwake bool          `protobuf:"varint,1,opt,name=external_awake,json=externalAwake,proto3" json:"external_awake,omitempty"`
	WakeSources   []*WakeSource `protobuf:"bytes,2,rep,name=wake_sources,json=wakeSources,proto3" json:"wake_sources,omitempty"`
}

func (m *PowerDown) Reset()         { *m = PowerDown{} }
func (m *PowerDown) String() string { return proto.CompactTextString(m) }
func (*PowerDown) ProtoMessage()    {}

type PowerEvent_Phase int32

const (
	PowerEvent_SUSPENDING    PowerEvent_Phase = 0
	PowerEvent_RESUMED       PowerEvent_Phase = 1
	PowerEvent_POWERING_DOWN PowerEvent_Phase = 2
)

var PowerEvent_Phase_name = map[int32]string{
	0: "SUSPENDING",
	1: "RESUMED",
	2: "POWERING_DOWN",
}

var PowerEvent_Phase_value = map[string]int32{
	"SUSPENDING":    0,
	"RESUMED":       1,
	"POWERING_DOWN": 2,
}

func (x PowerEvent_Phase) String() string {
	if name, ok := PowerEvent_Phase_name[int32(x)]; ok {
		return name
	}
	return fmt.Sprintf("%d", int32(x))
}

// PowerEvent is published around sleep cycles and before power down.
type PowerEvent struct {
	Phase   PowerEvent_Phase `protobuf:"varint,1,opt,name=phase,proto3,enum=degu.v1.PowerEvent_Phase" json:"phase,omitempty"`
	Seconds uint32           `protobuf:"varint,2,opt,name=seconds,proto3" json:"seconds,omitempty"`
	Channel uint32           `protobuf:"varint,3,opt,name=channel,proto3" json:"channel,omitempty"`
}

func (m *PowerEvent) Reset()         { *m = PowerEvent{} }
func (m *PowerEvent) String() string { return proto.CompactTextString(m) }
func (*PowerEvent) ProtoMessage()    {}

func init() {
	proto.RegisterEnum("degu.v1.PowerEvent_Phase", PowerEvent_Phase_name, PowerEvent_Phase_value)
	proto.RegisterType((*Typed)(nil), "degu.v1.Typed")
	proto.RegisterType((*CommandOK)(nil), "degu.v1.CommandOK")
	proto.RegisterType((*CommandErr)(nil), "degu.v1.CommandErr")
	proto.RegisterType((*CheckUpdate)(nil), "degu.v1.CheckUpdate")
	proto.RegisterType((*UpdateStatus)(nil), "degu.v1.UpdateStatus")
	proto.RegisterType((*ShadowGet)(nil), "degu.v1.ShadowGet")
	proto.RegisterType((*Shadow)(nil), "degu.v1.Shadow")
	proto.RegisterType((*ShadowUpdate)(nil), "degu.v1.ShadowUpdate")
	proto.RegisterType((*ShadowUpdated)(nil), "degu.v1.ShadowUpdated")
	proto.RegisterType((*Suspend)(nil), "degu.v1.Suspend")
	proto.RegisterType((*WakeSource)(nil), "degu.v1.WakeSource")
	proto.RegisterType((*PowerDown)(nil), "degu.v1.PowerDown")
	proto.RegisterType((*PowerEvent)(nil), "degu.v1.PowerEvent")
}
