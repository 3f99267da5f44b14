// Package dial defines the numeric ranges of the UI dials that MIDI
// controls can drive.
package dial

// Range describes a dial's travel: minimum, startup value, maximum.
type Range struct {
	Min  float64
	Init float64
	Max  float64
}

// AsTuple returns the range as (min, init, max).
func (r Range) AsTuple() (float64, float64, float64) {
	return r.Min, r.Init, r.Max
}

// Camera, fog, clipping and surface dial ranges. These match the dial
// widgets in the viewer; MIDI mappings normalize into them.
var (
	Zoom = Range{Min: -320, Init: -130, Max: 100}

	RotX = Range{Min: 0, Init: 0, Max: 360}
	RotY = Range{Min: 0, Init: 0, Max: 360}
	RotZ = Range{Min: 0, Init: 0, Max: 360}

	TranslateX = Range{Min: -60, Init: 0, Max: 60}
	TranslateY = Range{Min: -60, Init: 0, Max: 60}

	FogDensity = Range{Min: 0.0, Init: 0.1, Max: 0.3}
	FogNear    = Range{Min: 30, Init: 70, Max: 100}
	FogFar     = Range{Min: 70, Init: 100, Max: 200}

	ClipZ     = Range{Min: -100, Init: 20, Max: 100}
	ClipDepth = Range{Min: 1.0, Init: 50.0, Max: 100.0}
)
