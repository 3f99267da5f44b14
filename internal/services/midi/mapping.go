package midi

// ControlType categorizes the physical control a mapping is meant for.
type ControlType string

const (
	ControlDial   ControlType = "dial"
	ControlSlider ControlType = "slider"
	ControlButton ControlType = "button"
	ControlKnob   ControlType = "knob"
	ControlFader  ControlType = "fader"
)

// SourceMax is the top of the fixed MIDI source range [0,127].
const SourceMax = 127

// Mapping describes how one raw control drives one target function.
// TargetMin/TargetMax must satisfy TargetMin < TargetMax for an enabled
// mapping; the dispatcher does not validate this.
type Mapping struct {
	Control        uint8
	Channel        uint8
	Type           ControlType
	TargetFunction string
	TargetMin      float64
	TargetMax      float64
	Enabled        bool
	Description    string
}

// NamedMapping pairs a mapping with its unique table name.
type NamedMapping struct {
	Name    string
	Mapping Mapping
}

// MappingInfo is the wire-friendly snapshot of a table entry.
type MappingInfo struct {
	Name           string      `json:"name"`
	Control        uint8       `json:"control"`
	Channel        uint8       `json:"channel"`
	Type           ControlType `json:"type"`
	TargetFunction string      `json:"targetFunction"`
	TargetMin      float64     `json:"targetMin"`
	TargetMax      float64     `json:"targetMax"`
	Enabled        bool        `json:"enabled"`
	Description    string      `json:"description"`
}

// mappingTable is an insertion-ordered collection of named mappings. Names
// are unique; overwriting a name keeps its original position. Matching
// iterates in insertion order, so the first enabled entry for a
// (control, channel) pair wins over later duplicates.
type mappingTable struct {
	entries []NamedMapping
	index   map[string]int
}

func newMappingTable() *mappingTable {
	return &mappingTable{index: make(map[string]int)}
}

func (t *mappingTable) set(name string, m Mapping) {
	if i, ok := t.index[name]; ok {
		t.entries[i].Mapping = m
		return
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, NamedMapping{Name: name, Mapping: m})
}

func (t *mappingTable) remove(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.entries); j++ {
		t.index[t.entries[j].Name] = j
	}
	return true
}

func (t *mappingTable) get(name string) (Mapping, bool) {
	i, ok := t.index[name]
	if !ok {
		return Mapping{}, false
	}
	return t.entries[i].Mapping, true
}

func (t *mappingTable) setEnabled(name string, enabled bool) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.entries[i].Mapping.Enabled = enabled
	return true
}

// firstEnabledMatch returns the first-inserted enabled mapping for the
// given (control, channel) pair.
func (t *mappingTable) firstEnabledMatch(control, channel uint8) (NamedMapping, bool) {
	for _, e := range t.entries {
		if e.Mapping.Enabled && e.Mapping.Control == control && e.Mapping.Channel == channel {
			return e, true
		}
	}
	return NamedMapping{}, false
}

func (t *mappingTable) snapshot() []MappingInfo {
	infos := make([]MappingInfo, 0, len(t.entries))
	for _, e := range t.entries {
		infos = append(infos, MappingInfo{
			Name:           e.Name,
			Control:        e.Mapping.Control,
			Channel:        e.Mapping.Channel,
			Type:           e.Mapping.Type,
			TargetFunction: e.Mapping.TargetFunction,
			TargetMin:      e.Mapping.TargetMin,
			TargetMax:      e.Mapping.TargetMax,
			Enabled:        e.Mapping.Enabled,
			Description:    e.Mapping.Description,
		})
	}
	return infos
}
