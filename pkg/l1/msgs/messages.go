package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/degu.go/pkg/framework"
	pb "github.com/robotalks/degu.go/pkg/proto/degu/v1"
)

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupShadow  uint32 = 0x00010000
	GroupPower   uint32 = 0x00020000
	GroupUpdate  uint32 = 0x00030000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID     uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID    uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	ShadowGetTypeID     uint32 = GroupShadow | 0x0000
	ShadowTypeID        uint32 = ShadowGetTypeID | TypeIDMaskReply
	ShadowUpdateTypeID  uint32 = GroupShadow | 0x0001
	ShadowUpdatedTypeID uint32 = ShadowUpdateTypeID | TypeIDMaskReply
	SuspendTypeID       uint32 = GroupPower | 0x0000
	PowerDownTypeID     uint32 = GroupPower | 0x0001
	PowerEventTypeID    uint32 = TypeIDKindEvent | GroupPower | 0x0000
	CheckUpdateTypeID   uint32 = GroupUpdate | 0x0000
	UpdateStatusTypeID  uint32 = CheckUpdateTypeID | TypeIDMaskReply
)

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]SerializableMessage{
	CommandOKTypeID:     (*CommandOK)(nil),
	CommandErrTypeID:    (*CommandErr)(nil),
	ShadowGetTypeID:     (*ShadowGet)(nil),
	ShadowTypeID:        (*Shadow)(nil),
	ShadowUpdateTypeID:  (*ShadowUpdate)(nil),
	ShadowUpdatedTypeID: (*ShadowUpdated)(nil),
	SuspendTypeID:       (*Suspend)(nil),
	PowerDownTypeID:     (*PowerDown)(nil),
	PowerEventTypeID:    (*PowerEvent)(nil),
	CheckUpdateTypeID:   (*CheckUpdate)(nil),
	UpdateStatusTypeID:  (*UpdateStatus)(nil),
}

var typeNames = map[uint32]string{
	CommandOKTypeID:     "CommandOK",
	CommandErrTypeID:    "CommandErr",
	ShadowGetTypeID:     "ShadowGet",
	ShadowTypeID:        "Shadow",
	ShadowUpdateTypeID:  "ShadowUpdate",
	ShadowUpdatedTypeID: "ShadowUpdated",
	SuspendTypeID:       "Suspend",
	PowerDownTypeID:     "PowerDown",
	PowerEventTypeID:    "PowerEvent",
	CheckUpdateTypeID:   "CheckUpdate",
	UpdateStatusTypeID:  "UpdateStatus",
}

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
	pb.CommandOK
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return &m.CommandOK }

// CommandErr is the generic reply of a failed command.
type CommandErr struct {
	pb.CommandErr
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{CommandErr: pb.CommandErr{Message: err.Error()}}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return &m.CommandErr }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// CheckUpdate asks the device to look for a firmware update.
type CheckUpdate struct {
	pb.CheckUpdate
}

// NewMessage implements Message.
func (m *CheckUpdate) NewMessage() fx.Message { return &CheckUpdate{} }

// TypeID implements SerializableMessage.
func (m *CheckUpdate) TypeID() uint32 { return CheckUpdateTypeID }

// Serializable implements SerializableMessage.
func (m *CheckUpdate) Serializable() proto.Message { return &m.CheckUpdate }

// UpdateStatus replies CheckUpdate.
type UpdateStatus struct {
	pb.UpdateStatus
}

// NewMessage implements Message.
func (m *UpdateStatus) NewMessage() fx.Message { return &UpdateStatus{} }

// TypeID implements SerializableMessage.
func (m *UpdateStatus) TypeID() uint32 { return UpdateStatusTypeID }

// Serializable implements SerializableMessage.
func (m *UpdateStatus) Serializable() proto.Message { return &m.UpdateStatus }

// ShadowGet fetches the device shadow.
type ShadowGet struct {
	pb.ShadowGet
}

// NewMessage implements Message.
func (m *ShadowGet) NewMessage() fx.Message { return &ShadowGet{} }

// TypeID implements SerializableMessage.
func (m *ShadowGet) TypeID() uint32 { return ShadowGetTypeID }

// Serializable implements SerializableMessage.
func (m *ShadowGet) Serializable() proto.Message { return &m.ShadowGet }

// Shadow replies ShadowGet.
type Shadow struct {
	pb.Shadow
}

// NewMessage implements Message.
func (m *Shadow) NewMessage() fx.Message { return &Shadow{} }

// TypeID implements SerializableMessage.
func (m *Shadow) TypeID() uint32 { return ShadowTypeID }

// Serializable implements SerializableMessage.
func (m *Shadow) Serializable() proto.Message { return &m.Shadow }

// ShadowUpdate posts a document to the device shadow.
type ShadowUpdate struct {
	pb.ShadowUpdate
}

// NewMessage implements Message.
func (m *ShadowUpdate) NewMessage() fx.Message { return &ShadowUpdate{} }

// TypeID implements SerializableMessage.
func (m *ShadowUpdate) TypeID() uint32 { return ShadowUpdateTypeID }

// Serializable implements SerializableMessage.
func (m *ShadowUpdate) Serializable() proto.Message { return &m.ShadowUpdate }

// ShadowUpdated replies ShadowUpdate.
type ShadowUpdated struct {
	pb.ShadowUpdated
}

// NewMessage implements Message.
func (m *ShadowUpdated) NewMessage() fx.Message { return &ShadowUpdated{} }

// TypeID implements SerializableMessage.
func (m *ShadowUpdated) TypeID() uint32 { return ShadowUpdatedTypeID }

// Serializable implements SerializableMessage.
func (m *ShadowUpdated) Serializable() proto.Message { return &m.ShadowUpdated }

// Suspend runs one sleep cycle.
type Suspend struct {
	pb.Suspend
}

// NewMessage implements Message.
func (m *Suspend) NewMessage() fx.Message { return &Suspend{} }

// TypeID implements SerializableMessage.
func (m *Suspend) TypeID() uint32 { return SuspendTypeID }

// Serializable implements SerializableMessage.
func (m *Suspend) Serializable() proto.Message { return &m.Suspend }

// PowerDown hibernates the device.
type PowerDown struct {
	pb.PowerDown
}

// NewMessage implements Message.
func (m *PowerDown) NewMessage() fx.Message { return &PowerDown{} }

// TypeID implements SerializableMessage.
func (m *PowerDown) TypeID() uint32 { return PowerDownTypeID }

// Serializable implements SerializableMessage.
func (m *PowerDown) Serializable() proto.Message { return &m.PowerDown }

// PowerEvent reports power transitions.
type PowerEvent struct {
	pb.PowerEvent
}

// NewMessage implements Message.
func (m *PowerEvent) NewMessage() fx.Message { return &PowerEvent{} }

// TypeID implements SerializableMessage.
func (m *PowerEvent) TypeID() uint32 { return PowerEventTypeID }

// Serializable implements SerializableMessage.
func (m *PowerEvent) Serializable() proto.Message { return &m.PowerEvent }
