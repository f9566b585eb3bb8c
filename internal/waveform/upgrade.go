// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package waveform

// legacyMapping describes where a raw type code written by an older release
// lands. name is the widget name in the release that wrote the code;
// noAllShader marks types without an all-shader renderer, whose backend
// becomes None.
type legacyMapping struct {
	name        string
	target      Type
	options     Options
	noAllShader bool
}

// legacyTypes maps raw type codes from the pre-2.6 widget list. Several
// codes collide with current Type values (5, 7, 8, 9, 25); for those the
// historical meaning and the current meaning coincide.
var legacyTypes = map[int]legacyMapping{
	// 1.x - 2.3 software and Qt widgets
	0:  {name: "EmptyWaveform", target: TypeEmpty, noAllShader: true},
	2:  {name: "SoftwareWaveform", target: TypeFiltered},
	3:  {name: "QtSimpleWaveform", target: TypeSimple},
	4:  {name: "QtWaveform", target: TypeFiltered},
	13: {name: "QtVSyncTest", target: TypeVSyncTest, noAllShader: true},
	14: {name: "QtHSVWaveform", target: TypeHSV},

	// 1.x - 2.3 OpenGL widgets
	5:  {name: "GLSimpleWaveform", target: TypeSimple},
	6:  {name: "GLFilteredWaveform", target: TypeFiltered},
	7:  {name: "GLSLFilteredWaveform", target: TypeFiltered, options: OptionHighDetail},
	8:  {name: "HSVWaveform", target: TypeHSV},
	9:  {name: "GLVSyncTest", target: TypeVSyncTest, noAllShader: true},
	12: {name: "GLSLRGBWaveform", target: DefaultType, options: OptionHighDetail},
	25: {name: "GLSLRGBStackedWaveform", target: TypeStacked, options: OptionHighDetail},

	// 2.4 - 2.5 all-shader widgets
	18: {name: "AllShaderLRRGBWaveform", target: DefaultType, options: OptionSplitStereoSignal},
	19: {name: "AllShaderFilteredWaveform", target: TypeFiltered},
	20: {name: "AllShaderSimpleWaveform", target: TypeSimple},
	21: {name: "AllShaderHSVWaveform", target: TypeHSV},
	22: {name: "AllShaderTexturedFiltered", target: TypeFiltered, options: OptionHighDetail},
	23: {name: "AllShaderTexturedRGB", target: DefaultType, options: OptionHighDetail},
	24: {name: "AllShaderTexturedStacked", target: TypeStacked, options: OptionHighDetail},
	26: {name: "AllShaderRGBStackedWaveform", target: TypeStacked},
}

// allShaderTypes are passed through untouched when the backend is already
// all-shader.
var allShaderTypes = map[Type]bool{
	TypeSimple:   true,
	TypeFiltered: true,
	TypeHSV:      true,
	TypeStacked:  true,
	TypeEmpty:    true,
}

// UpgradeToAllShaders moves a persisted (type, backend, options) triple onto
// the all-shader renderer. Inputs are raw integers because stored values can
// be outside every enum. The result is always a valid Type.
func UpgradeToAllShaders(rawType, rawBackend, rawOptions int) (Type, Backend, Options) {
	if Backend(rawBackend) == BackendAllShader {
		opts := Options(rawOptions) & AllOptionsCombined
		if t := Type(rawType); allShaderTypes[t] {
			return t, BackendAllShader, opts
		}
		return DefaultType, BackendAllShader, opts
	}

	m, ok := legacyTypes[rawType]
	if !ok {
		// unknown, retired RGB variants and out-of-range values
		return DefaultType, BackendAllShader, OptionNone
	}
	backend := BackendAllShader
	if m.noAllShader {
		backend = BackendNone
	}
	return m.target, backend, m.options
}

// UpgradeDeprecatedVSyncMode maps a stored sync mode onto a current one.
// Deprecated and out-of-range values become VSyncDefault.
func UpgradeDeprecatedVSyncMode(raw int) VSyncMode {
	if raw < 0 || raw >= int(vsyncCount) {
		return VSyncDefault
	}
	switch m := VSyncMode(raw); m {
	case VSyncFree, VSyncPLL, VSyncTimer:
		return m
	default:
		return VSyncDefault
	}
}

// LegacyName returns the widget name a raw type code had in the release
// that wrote it.
func LegacyName(raw int) (string, bool) {
	m, ok := legacyTypes[raw]
	if !ok {
		return "", false
	}
	return m.name, true
}
