// audio_output.go - Audio backend interface and factory for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import "fmt"

const (
	// AUDIO_BACKEND_NONE runs the engine with no output attached; callers
	// pull blocks themselves (offline rendering, tests).
	AUDIO_BACKEND_NONE = iota
	AUDIO_BACKEND_OTO
)

// BlockRenderer is what a backend pulls audio from: the synth engine, or
// anything else that can fill interleaved 16-bit blocks on demand.
type BlockRenderer interface {
	ProcessBlock(out []int16, channels int)
}

// AudioOutput is the minimal lifecycle contract a backend must implement.
// Backends pull from their BlockRenderer on the device's schedule; the
// engine never pushes.
type AudioOutput interface {
	Start()
	Stop()
	Close()
	IsStarted() bool
}

// NewAudioOutput constructs the requested backend bound to the renderer.
func NewAudioOutput(backend int, sampleRate int, renderer BlockRenderer) (AudioOutput, error) {
	switch backend {
	case AUDIO_BACKEND_NONE:
		return nil, nil
	case AUDIO_BACKEND_OTO:
		return NewOtoPlayer(sampleRate, renderer)
	default:
		return nil, fmt.Errorf("unknown audio backend %d", backend)
	}
}
