// audio_engine_race_test.go - Control/audio context race tests

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import (
	"sync"
	"testing"
	"time"
)

// TestEngine_ControlAudioConcurrency runs the two execution contexts the way
// the live system does: a control goroutine hammering the parameter store and
// the note queue while the audio goroutine renders blocks flat out. Run with
// -race; the engine's only cross-context paths are the atomic ParamStore and
// the SPSC queue, so this must come out clean.
func TestEngine_ControlAudioConcurrency(t *testing.T) {
	e, err := NewSynthEngine(AUDIO_BACKEND_NONE, NewParamStore())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Control context: parameter writes and note on/off churn.
	wg.Add(1)
	go func() {
		defer wg.Done()
		cutoff := e.params.Get(ParamFilterCutoff)
		attack := e.params.Get(ParamAttack)
		iter := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			cutoff.Set(float64(iter%100) / 100.0)
			attack.SetNormalized(float64(iter%50) / 50.0)
			note := uint8(48 + iter%24)
			e.NoteOn(note, uint8(1+iter%127))
			if iter%3 == 0 {
				e.NoteOff(note)
			}
			if iter%1000 == 999 {
				e.AllNotesOff()
			}
			iter++
		}
	}()

	// Audio context: renders stereo blocks as fast as it can.
	wg.Add(1)
	go func() {
		defer wg.Done()
		out := make([]int16, 512*2)
		for {
			select {
			case <-stop:
				return
			default:
			}
			e.ProcessBlock(out, 2)
		}
	}()

	time.Sleep(200 * time.Millisecond)
	close(stop)
	wg.Wait()
}

// TestMidiStyleCCWrites exercises the CC path the MIDI listener uses while
// the audio context reads, mirroring a knob twist during playback.
func TestMidiStyleCCWrites(t *testing.T) {
	e, err := NewSynthEngine(AUDIO_BACKEND_NONE, NewParamStore())
	if err != nil {
		t.Fatal(err)
	}
	e.NoteOn(60, 100)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		val := uint8(0)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if p := e.params.GetByCC(74); p != nil {
				p.SetNormalized(float64(val) / 127.0)
			}
			val = (val + 1) & 0x7F
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		out := make([]int16, 256)
		for {
			select {
			case <-stop:
				return
			default:
			}
			e.ProcessBlock(out, 1)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	close(stop)
	wg.Wait()
}
