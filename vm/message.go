package vm

import "fmt"

// MessageType classifies a trace Message, mirroring the teacher VM's
// Messages-channel pattern adapted to Zagros's opcode set and scheduler.
type MessageType int

const (
	_ MessageType = iota
	MsgDispatch   // an opcode was fetched and is about to execute
	MsgCoreSwitch // select_next_core chose a new current core
	MsgInterrupt  // TI fired and interrupts were enabled
	MsgIO         // II invoked an IoTable slot
	MsgHalt       // the interpreter loop is returning a terminal Error (not sent for HS's SystemHalt)
)

func (mt MessageType) String() string {
	switch mt {
	case MsgDispatch:
		return "Dispatch"
	case MsgCoreSwitch:
		return "CoreSwitch"
	case MsgInterrupt:
		return "Interrupt"
	case MsgIO:
		return "IO"
	case MsgHalt:
		return "Halt"
	default:
		return "Unknown"
	}
}

// Message is one trace event. CoreID identifies which core produced it;
// it is -1 for messages not tied to a specific core.
type Message struct {
	Type   MessageType
	CoreID int
	Text   string
}

// NewMessage builds a Message, formatting Text the way fmt.Sprintf would.
func NewMessage(mt MessageType, coreID int, format string, args ...any) Message {
	return Message{Type: mt, CoreID: coreID, Text: fmt.Sprintf(format, args...)}
}
