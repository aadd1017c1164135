// Package canbus is the field-bus transport: it decodes module telemetry
// into the shared state and transmits queued actuation commands.
package canbus

import "habitat-go/types"

// MaxDataLen is the classic CAN payload size.
const MaxDataLen = 8

// Frame is a classic CAN data frame with a standard identifier.
type Frame struct {
	ID   uint32
	Len  uint8
	Data [MaxDataLen]byte
}

// Payload returns the valid bytes of the frame.
func (f *Frame) Payload() []byte {
	n := f.Len
	if n > MaxDataLen {
		n = MaxDataLen
	}
	return f.Data[:n]
}

// Inbound telemetry identifiers.
const (
	TankStatusID     uint32 = 0x010
	GrowStatusID     uint32 = 0x020
	NutrientStatusID uint32 = 0x030
	FeederStatusID   uint32 = 0x040
)

// CommandBaseID is OR-ed with the target module to form a command identifier.
const CommandBaseID uint32 = 0x100

// StatusID returns the telemetry identifier of a field module, or 0.
func StatusID(m types.ModuleID) uint32 {
	if !m.IsField() {
		return 0
	}
	return uint32(m) << 4
}

// EncodeCommand builds the outbound frame:
// ID = 0x100|target, [code, param big-endian, 0, 0, 0].
func EncodeCommand(c types.Command) Frame {
	p := uint32(c.Param)
	return Frame{
		ID:  CommandBaseID | uint32(c.Target),
		Len: MaxDataLen,
		Data: [MaxDataLen]byte{
			byte(c.Code),
			byte(p >> 24),
			byte(p >> 16),
			byte(p >> 8),
			byte(p),
		},
	}
}

// DecodeCommand is the inverse of EncodeCommand.
func DecodeCommand(f Frame) (types.Command, bool) {
	if f.ID&^0xFF != CommandBaseID || f.Len < 5 {
		return types.Command{}, false
	}
	d := &f.Data
	p := uint32(d[1])<<24 | uint32(d[2])<<16 | uint32(d[3])<<8 | uint32(d[4])
	return types.Command{
		Target: types.ModuleID(f.ID & 0xFF),
		Code:   types.CommandCode(d[0]),
		Param:  int32(p),
	}, true
}
