// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package waveform holds the persisted waveform display enums and the
// tables that translate values written by older releases.
package waveform

// Type is the persisted waveform widget type. Raw values are stored in the
// settings file and must never be renumbered.
type Type int

const (
	TypeEmpty     Type = 0
	TypeSimple    Type = 5
	TypeFiltered  Type = 7
	TypeHSV       Type = 8
	TypeVSyncTest Type = 9
	TypeRGB       Type = 11
	TypeStacked   Type = 25
)

// DefaultType is what unknown or retired types fall back to.
const DefaultType = TypeRGB

// Types lists every current type.
var Types = []Type{TypeEmpty, TypeSimple, TypeFiltered, TypeHSV, TypeVSyncTest, TypeRGB, TypeStacked}

// Valid reports whether t is a current type.
func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

func (t Type) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypeSimple:
		return "simple"
	case TypeFiltered:
		return "filtered"
	case TypeHSV:
		return "hsv"
	case TypeVSyncTest:
		return "vsync-test"
	case TypeRGB:
		return "rgb"
	case TypeStacked:
		return "stacked"
	default:
		return "invalid"
	}
}

// Backend is the rendering backend stored under use_hardware_acceleration.
type Backend int

const (
	BackendNone      Backend = 0
	BackendGL        Backend = 1
	BackendGLSL      Backend = 2
	BackendAllShader Backend = 3
)

func (b Backend) String() string {
	switch b {
	case BackendNone:
		return "none"
	case BackendGL:
		return "gl"
	case BackendGLSL:
		return "glsl"
	case BackendAllShader:
		return "allshader"
	default:
		return "invalid"
	}
}

// Options is the renderer option bitmask.
type Options int

const (
	OptionNone              Options = 0
	OptionSplitStereoSignal Options = 1 << 0
	OptionHighDetail        Options = 1 << 1

	AllOptionsCombined = OptionSplitStereoSignal | OptionHighDetail
)

// Has reports whether every bit of o2 is set in o.
func (o Options) Has(o2 Options) bool { return o&o2 == o2 }

// VSyncMode is the persisted display sync mode.
type VSyncMode int

const (
	VSyncDefault VSyncMode = iota
	// deprecated, only ever read from old settings
	vsyncMesaVblankMode1
	vsyncSGIVideoSync
	vsyncOMLSyncControl
	VSyncFree
	VSyncPLL
	VSyncTimer
	vsyncCount
)

func (m VSyncMode) String() string {
	switch m {
	case VSyncDefault:
		return "default"
	case VSyncFree:
		return "free"
	case VSyncPLL:
		return "pll"
	case VSyncTimer:
		return "timer"
	default:
		return "deprecated"
	}
}
