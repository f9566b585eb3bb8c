// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package settings

import "fmt"

// Key addresses one value: the bracketed group and the item inside it.
type Key struct {
	Group string // includes brackets, e.g. "[Config]"
	Item  string
}

// NewKey builds a Key.
func NewKey(group, item string) Key {
	return Key{Group: group, Item: item}
}

func (k Key) String() string {
	return fmt.Sprintf("%s,%s", k.Group, k.Item)
}

// Well-known keys touched by the upgrade ladder.
var (
	KeyVersion                = NewKey("[Config]", "Version")
	KeyVSync                  = NewKey("[Waveform]", "VSync")
	KeyFrameRate              = NewKey("[Waveform]", "FrameRate")
	KeyWaveformType           = NewKey("[Waveform]", "WaveformType")
	KeyWaveformBackend        = NewKey("[Waveform]", "use_hardware_acceleration")
	KeyWaveformOptions        = NewKey("[Waveform]", "waveform_options")
	KeyReplayGainBoost        = NewKey("[ReplayGain]", "InitialReplayGainBoost")
	KeyReanalyzeOnChange      = NewKey("[BPM]", "ReanalyzeWhenSettingsChange")
	KeyLegacyLibraryDirectory = NewKey("[Playlist]", "Directory")
)
