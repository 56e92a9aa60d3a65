// demo_song.go - Built-in demo sequence for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

// timedEvent is a note event pinned to an absolute frame position.
type timedEvent struct {
	frame int
	ev    NoteEvent
}

const (
	demoBPM      = 112
	demoGate     = 0.8 // fraction of a step the note is held
	demoVelocity = 96
)

// demoPattern is a C minor arpeggio with a walking bass note on the
// downbeat, one entry per eighth-note step. Zero means rest.
var demoPattern = []uint8{
	36, 60, 63, 67, 70, 67, 63, 60,
	34, 58, 62, 65, 70, 65, 62, 58,
	32, 56, 60, 63, 68, 63, 60, 56,
	31, 55, 58, 62, 67, 62, 58, 55,
}

// demoScore expands the pattern into timed events. seconds == 0 yields one
// full pass of the pattern; otherwise the pattern loops to fill the
// duration, and every sounding note gets a matching note-off so a render
// decays to silence.
func demoScore(sampleRate int, seconds float64) []timedEvent {
	stepFrames := sampleRate * 60 / (demoBPM * 2)
	gateFrames := int(float64(stepFrames) * demoGate)

	steps := len(demoPattern)
	if seconds > 0 {
		steps = int(seconds*float64(sampleRate)) / stepFrames
	}

	score := make([]timedEvent, 0, steps*2)
	for i := 0; i < steps; i++ {
		note := demoPattern[i%len(demoPattern)]
		if note == 0 {
			continue
		}
		at := i * stepFrames
		score = append(score,
			timedEvent{at, NoteEvent{Kind: EventNoteOn, Note: note, Velocity: demoVelocity}},
			timedEvent{at + gateFrames, NoteEvent{Kind: EventNoteOff, Note: note}},
		)
	}

	// Events interleave on/off out of frame order above; restore order so
	// replay can walk the slice linearly.
	for i := 1; i < len(score); i++ {
		for j := i; j > 0 && score[j].frame < score[j-1].frame; j-- {
			score[j], score[j-1] = score[j-1], score[j]
		}
	}
	return score
}

// scoredRenderer wraps the engine for offline rendering: events due inside
// the next block are enqueued before the block renders, mirroring how a
// live control context would land them at block boundaries.
type scoredRenderer struct {
	engine *SynthEngine
	score  []timedEvent
	next   int
	frame  int
}

func newScoredRenderer(engine *SynthEngine, score []timedEvent) *scoredRenderer {
	return &scoredRenderer{engine: engine, score: score}
}

func (r *scoredRenderer) ProcessBlock(out []int16, channels int) {
	if channels < 1 {
		channels = 1
	}
	frames := len(out) / channels

	for r.next < len(r.score) && r.score[r.next].frame < r.frame+frames {
		pushEvent(r.engine, r.score[r.next].ev)
		r.next++
	}

	r.engine.ProcessBlock(out, channels)
	r.frame += frames
}
