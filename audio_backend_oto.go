//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

const otoChannels = 2

// OtoPlayer drives a real audio device through oto v3. oto pulls bytes via
// io.Reader on its own goroutine; Read renders whole blocks from the engine
// into a pre-allocated int16 scratch buffer and serializes them little-endian.
// No allocation on the pull path after the first Read.
type OtoPlayer struct {
	ctx      *oto.Context
	player   *oto.Player
	renderer BlockRenderer
	blockBuf []int16
	started  bool
	mutex    sync.Mutex // setup/control only, never held during Read
}

func NewOtoPlayer(sampleRate int, renderer BlockRenderer) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: otoChannels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &OtoPlayer{
		ctx:      ctx,
		renderer: renderer,
		blockBuf: make([]int16, 4096),
	}
	p.player = ctx.NewPlayer(p)
	return p, nil
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	numSamples := len(p) / 2
	if len(op.blockBuf) < numSamples {
		op.blockBuf = make([]int16, numSamples)
	}
	samples := op.blockBuf[:numSamples]

	op.renderer.ProcessBlock(samples, otoChannels)

	for i, s := range samples {
		p[2*i] = byte(s)
		p[2*i+1] = byte(s >> 8)
	}
	return numSamples * 2, nil
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started && op.player != nil {
		op.player.Pause()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}
