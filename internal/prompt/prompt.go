// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package prompt provides the blocking yes/no questions asked during a
// settings upgrade behind an injectable Confirmer.
package prompt

import (
	"context"
)

// Prompt is one yes/no question.
type Prompt struct {
	ID      string
	Title   string
	Text    string
	Accept  string // label of the "yes" answer
	Reject  string // label of the "no" answer
	Default bool   // answer used when nobody can be asked
}

// Confirmer answers prompts. Implementations block until answered.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, p Prompt) bool

// Confirm calls f.
func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) bool { return f(ctx, p) }

// Defaults answers every prompt with its Default.
var Defaults Confirmer = ConfirmerFunc(func(_ context.Context, p Prompt) bool { return p.Default })

// Always answers every prompt with answer.
func Always(answer bool) Confirmer {
	return ConfirmerFunc(func(context.Context, Prompt) bool { return answer })
}

// Prompt identifiers.
const (
	IDRescanLibrary  = "rescan_library"
	IDReanalyzeBeats = "reanalyze_beats"
)

// RescanLibrary asks whether to scan the library for cover art now.
var RescanLibrary = Prompt{
	ID:    IDRescanLibrary,
	Title: "Upgrading Mixxx",
	Text: "Mixxx now supports displaying cover art.\n" +
		"Do you want to scan your library for cover files now?",
	Accept:  "Scan",
	Reject:  "Later",
	Default: true,
}

// ReanalyzeBeats asks whether tracks should get regenerated beat grids.
var ReanalyzeBeats = Prompt{
	ID:    IDReanalyzeBeats,
	Title: "Upgrading Mixxx from v1.9.x/1.10.x.",
	Text: "Mixxx has a new and improved beat detector.\n\n" +
		"When you load tracks, Mixxx can re-analyze them and generate new, " +
		"more accurate beatgrids. This will make automatic beatsync and " +
		"looping more reliable.\n\n" +
		"This does not affect saved cues, hotcues, playlists, or crates.\n\n" +
		"If you do not want Mixxx to re-analyze your tracks, choose " +
		"\"Keep Current Beatgrids\". You can change this setting at any time " +
		"from the \"Beat Detection\" section of the Preferences.",
	Accept:  "Generate New Beatgrids",
	Reject:  "Keep Current Beatgrids",
	Default: true,
}
