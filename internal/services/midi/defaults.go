package midi

import (
	"time"

	"github.com/markxbrooks/Mol-MiDial/internal/dial"
)

// Target function names the default mappings drive. The viewer registers a
// handler per name; unknown names are simply never dispatched.
const (
	TargetCameraZoom   = "camera_zoom"
	TargetCameraRotX   = "camera_rot_x"
	TargetCameraRotY   = "camera_rot_y"
	TargetCameraRotZ   = "camera_rot_z"
	TargetCameraTransX = "camera_trans_x"
	TargetCameraTransY = "camera_trans_y"

	TargetSurfaceTransparency = "connolly_transparency"
	TargetSurfaceProbeRadius  = "connolly_probe_radius"

	TargetFogDensity = "fog_density"
	TargetFogNear    = "fog_near"
	TargetFogFar     = "fog_far"

	TargetClipZ     = "clip_z"
	TargetClipDepth = "clip_depth"

	TargetIsosurfaceLevel = "isosurface_level"
)

// defaultExpensiveThrottles are the per-function throttle overrides for
// operations that force a surface re-extraction or full redraw.
func defaultExpensiveThrottles() map[string]time.Duration {
	return map[string]time.Duration{
		TargetSurfaceTransparency: 200 * time.Millisecond,
		TargetSurfaceProbeRadius:  200 * time.Millisecond,
		TargetIsosurfaceLevel:     100 * time.Millisecond,
	}
}

// DefaultMappings returns the stock control layout: CC1-CC14 on channel 0
// driving the camera, fog, clipping and surface dials.
func DefaultMappings() []NamedMapping {
	return []NamedMapping{
		{Name: "zoom", Mapping: Mapping{
			Control: 1, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetCameraZoom,
			TargetMin:      dial.Zoom.Min, TargetMax: dial.Zoom.Max,
			Enabled: true, Description: "Camera Zoom",
		}},
		{Name: "rotation_x", Mapping: Mapping{
			Control: 2, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetCameraRotX,
			TargetMin:      dial.RotX.Min, TargetMax: dial.RotX.Max,
			Enabled: true, Description: "X Rotation",
		}},
		{Name: "rotation_y", Mapping: Mapping{
			Control: 3, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetCameraRotY,
			TargetMin:      dial.RotY.Min, TargetMax: dial.RotY.Max,
			Enabled: true, Description: "Y Rotation",
		}},
		{Name: "rotation_z", Mapping: Mapping{
			Control: 4, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetCameraRotZ,
			TargetMin:      dial.RotZ.Min, TargetMax: dial.RotZ.Max,
			Enabled: true, Description: "Z Rotation",
		}},
		{Name: "translate_x", Mapping: Mapping{
			Control: 5, Channel: 0, Type: ControlFader,
			TargetFunction: TargetCameraTransX,
			TargetMin:      dial.TranslateX.Min, TargetMax: dial.TranslateX.Max,
			Enabled: true, Description: "X Translation",
		}},
		{Name: "translate_y", Mapping: Mapping{
			Control: 6, Channel: 0, Type: ControlFader,
			TargetFunction: TargetCameraTransY,
			TargetMin:      dial.TranslateY.Min, TargetMax: dial.TranslateY.Max,
			Enabled: true, Description: "Y Translation",
		}},
		{Name: "connolly_transparency", Mapping: Mapping{
			Control: 7, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetSurfaceTransparency,
			TargetMin:      0.0, TargetMax: 1.0,
			Enabled: true, Description: "Connolly Surface Transparency",
		}},
		{Name: "connolly_probe_radius", Mapping: Mapping{
			Control: 8, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetSurfaceProbeRadius,
			TargetMin:      0.5, TargetMax: 3.0,
			Enabled: true, Description: "Connolly Probe Radius",
		}},
		{Name: "fog_density", Mapping: Mapping{
			Control: 9, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetFogDensity,
			TargetMin:      dial.FogDensity.Min, TargetMax: dial.FogDensity.Max,
			Enabled: true, Description: "Fog Density",
		}},
		{Name: "isosurface_level", Mapping: Mapping{
			Control: 10, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetIsosurfaceLevel,
			TargetMin:      0.01, TargetMax: 1.0,
			Enabled: true, Description: "Isosurface Level",
		}},
		{Name: "fog_near", Mapping: Mapping{
			Control: 11, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetFogNear,
			TargetMin:      dial.FogNear.Min, TargetMax: dial.FogNear.Max,
			Enabled: true, Description: "Fog Near Distance",
		}},
		{Name: "fog_far", Mapping: Mapping{
			Control: 12, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetFogFar,
			TargetMin:      dial.FogFar.Min, TargetMax: dial.FogFar.Max,
			Enabled: true, Description: "Fog Far Distance",
		}},
		{Name: "clip_z", Mapping: Mapping{
			Control: 13, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetClipZ,
			TargetMin:      dial.ClipZ.Min, TargetMax: dial.ClipZ.Max,
			Enabled: true, Description: "Clipping Z Position",
		}},
		{Name: "clip_depth", Mapping: Mapping{
			Control: 14, Channel: 0, Type: ControlKnob,
			TargetFunction: TargetClipDepth,
			TargetMin:      dial.ClipDepth.Min, TargetMax: dial.ClipDepth.Max,
			Enabled: true, Description: "Clipping Depth",
		}},
	}
}
