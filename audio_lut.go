// audio_lut.go - Precomputed lookup tables for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import "math"

const (
	sineLUTSize = 1024
	sineLUTMask = sineLUTSize - 1
)

// sineLUT holds one cycle of a sine wave in Fix15, indexed by the integer
// part of a phase accumulator wrapping at sineLUTSize.
var sineLUT [sineLUTSize]Fix15

// midiNoteFreq maps a 7-bit MIDI note number to its equal-tempered frequency
// in Hz (A4 = note 69 = 440 Hz).
var midiNoteFreq [128]float64

func init() {
	for i := 0; i < sineLUTSize; i++ {
		angle := 2 * math.Pi * float64(i) / float64(sineLUTSize)
		sineLUT[i] = fixFromFloat(math.Sin(angle))
	}
	for n := 0; n < 128; n++ {
		midiNoteFreq[n] = 440.0 * math.Pow(2, float64(n-69)/12.0)
	}
}

// noteToFreq returns the frequency for a MIDI note, clamping out-of-range
// note numbers into 0-127 before the table lookup.
func noteToFreq(note int) float64 {
	if note < 0 {
		note = 0
	}
	if note > 127 {
		note = 127
	}
	return midiNoteFreq[note]
}
