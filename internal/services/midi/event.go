package midi

import "fmt"

// EventKind classifies a raw transport event. The closed set keeps the
// unhandled cases explicit in the listener's switch.
type EventKind int

const (
	KindControlChange EventKind = iota
	KindNoteOn
	KindNoteOff
	KindOther
)

// String returns a readable name for the kind.
func (k EventKind) String() string {
	switch k {
	case KindControlChange:
		return "control_change"
	case KindNoteOn:
		return "note_on"
	case KindNoteOff:
		return "note_off"
	case KindOther:
		return "other"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one discrete message from the MIDI transport. Control carries
// the controller number for control-change events and the note number for
// note events. Value is the controller value or velocity, always in [0,127].
type Event struct {
	Kind    EventKind
	Channel uint8
	Control uint8
	Value   uint8
}
