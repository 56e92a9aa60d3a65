//go:build headless

// audio_backend_headless.go - No-op audio output for headless builds

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

type OtoPlayer struct {
	started bool
}

func NewOtoPlayer(sampleRate int, renderer BlockRenderer) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) Start() {
	op.started = true
}

func (op *OtoPlayer) Stop() {
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.started = false
}

func (op *OtoPlayer) IsStarted() bool {
	return op.started
}
