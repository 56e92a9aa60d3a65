// audio_engine_test.go - Engine block-processing tests

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import "testing"

const engineTestBlock = 512

func newTestEngine(t *testing.T) *SynthEngine {
	t.Helper()
	e, err := NewSynthEngine(AUDIO_BACKEND_NONE, NewParamStore())
	if err != nil {
		t.Fatalf("NewSynthEngine: %v", err)
	}
	return e
}

func TestEngine_SilenceIsExactZero(t *testing.T) {
	e := newTestEngine(t)
	out := make([]int16, engineTestBlock)

	for block := 0; block < 20; block++ {
		e.ProcessBlock(out, 1)
		for i, s := range out {
			if s != 0 {
				t.Fatalf("block %d sample %d: silent engine output %d, want 0", block, i, s)
			}
		}
	}
}

func TestEngine_NoteProducesAudio(t *testing.T) {
	e := newTestEngine(t)
	out := make([]int16, engineTestBlock)

	if !e.NoteOn(60, 100) {
		t.Fatal("NoteOn rejected")
	}

	nonZero := 0
	for block := 0; block < 10; block++ {
		e.ProcessBlock(out, 1)
		for _, s := range out {
			if s != 0 {
				nonZero++
			}
		}
	}
	if nonZero == 0 {
		t.Fatal("gated note produced only silence")
	}

	if !e.IsVoiceActive(0) {
		t.Error("no active voice after note-on was drained")
	}
	if e.VoiceNote(0) != 60 {
		t.Errorf("voice 0 bound to note %d, want 60", e.VoiceNote(0))
	}
	if e.ActiveVoices() != 1 {
		t.Errorf("ActiveVoices = %d, want 1", e.ActiveVoices())
	}
}

func TestEngine_EventsApplyAtBlockStart(t *testing.T) {
	e := newTestEngine(t)
	out := make([]int16, engineTestBlock)

	e.NoteOn(60, 100)
	// Before any block renders, the event is still queued: no voice active.
	if e.ActiveVoices() != 0 {
		t.Error("event took effect before a block was processed")
	}

	e.ProcessBlock(out, 1)
	if e.ActiveVoices() != 1 {
		t.Error("event not drained at block start")
	}

	e.NoteOff(60)
	if e.VoiceState(0) == EnvRelease {
		t.Error("note-off took effect before a block was processed")
	}
	e.ProcessBlock(out, 1)
	if e.VoiceState(0) != EnvRelease {
		t.Errorf("voice state = %v after note-off block, want Release", e.VoiceState(0))
	}
}

func TestEngine_EventOrderPreserved(t *testing.T) {
	e := newTestEngine(t)
	out := make([]int16, engineTestBlock)

	// On/off pairs for the same note within one block must cancel in order:
	// the voice ends up releasing, not re-gated.
	e.NoteOn(60, 100)
	e.NoteOff(60)
	e.ProcessBlock(out, 1)
	if e.VoiceState(0) != EnvRelease {
		t.Errorf("on-then-off left voice in %v, want Release", e.VoiceState(0))
	}

	// And off-then-on the other way: voice gated.
	e2 := newTestEngine(t)
	e2.NoteOn(60, 100)
	e2.ProcessBlock(out, 1)
	e2.NoteOff(60)
	e2.NoteOn(60, 100)
	e2.ProcessBlock(out, 1)
	if e2.VoiceState(0) == EnvRelease || !e2.IsVoiceActive(0) {
		t.Errorf("off-then-on left voice in %v, want gated", e2.VoiceState(0))
	}
}

func TestEngine_DeterministicOutput(t *testing.T) {
	t.Log("same events, same block sizes: output must be bit-identical across runs")

	render := func() []int16 {
		e, err := NewSynthEngine(AUDIO_BACKEND_NONE, NewParamStore())
		if err != nil {
			t.Fatalf("NewSynthEngine: %v", err)
		}
		e.params.Set(ParamNoiseLevel, 0.3) // include the seeded noise path
		e.NoteOn(60, 100)
		e.NoteOn(64, 90)

		out := make([]int16, 0, engineTestBlock*40)
		block := make([]int16, engineTestBlock)
		for i := 0; i < 40; i++ {
			if i == 20 {
				e.NoteOff(60)
			}
			e.ProcessBlock(block, 1)
			out = append(out, block...)
		}
		return out
	}

	a := render()
	b := render()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between runs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestEngine_DecaysToExactSilence(t *testing.T) {
	e := newTestEngine(t)
	e.params.Set(ParamRelease, 0.05)
	out := make([]int16, engineTestBlock)

	e.NoteOn(60, 100)
	e.ProcessBlock(out, 1)
	e.AllNotesOff()

	// 0.05s release: run half a second of blocks, then demand exact zeros.
	for i := 0; i < SAMPLE_RATE/2/engineTestBlock; i++ {
		e.ProcessBlock(out, 1)
	}
	if e.ActiveVoices() != 0 {
		t.Fatalf("%d voices still active after release", e.ActiveVoices())
	}

	e.ProcessBlock(out, 1)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d after decay: %d, want exact 0", i, s)
		}
	}
}

func TestEngine_StereoInterleave(t *testing.T) {
	e := newTestEngine(t)
	out := make([]int16, engineTestBlock*2)

	e.NoteOn(60, 100)
	for block := 0; block < 5; block++ {
		e.ProcessBlock(out, 2)
		for f := 0; f < engineTestBlock; f++ {
			if out[2*f] != out[2*f+1] {
				t.Fatalf("frame %d: channels differ (%d vs %d)", f, out[2*f], out[2*f+1])
			}
		}
	}
}

func TestEngine_PolyphonyAndStealBound(t *testing.T) {
	e := newTestEngine(t)
	out := make([]int16, engineTestBlock)

	// NUM_VOICES+4 simultaneous notes: active voices never exceed the pool.
	for n := 0; n < NUM_VOICES+4; n++ {
		e.NoteOn(uint8(48+n), 100)
	}
	e.ProcessBlock(out, 1)

	if got := e.ActiveVoices(); got != NUM_VOICES {
		t.Errorf("ActiveVoices = %d, want the full pool of %d", got, NUM_VOICES)
	}

	// The most recent notes all kept a voice; steals displaced older ones.
	have := map[int]bool{}
	for i := 0; i < NUM_VOICES; i++ {
		have[e.VoiceNote(i)] = true
	}
	for n := NUM_VOICES + 4 - 1; n >= 4; n-- {
		if !have[48+n] {
			t.Errorf("recent note %d lost its voice", 48+n)
		}
	}
}

func TestEngine_StoppedEngineOutputsZero(t *testing.T) {
	e := newTestEngine(t)
	out := make([]int16, engineTestBlock)

	e.NoteOn(60, 100)
	e.ProcessBlock(out, 1)
	e.Stop()

	e.ProcessBlock(out, 1)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d after Stop: %d, want 0", i, s)
		}
	}
}

func TestEngine_MasterVolumeZeroSilences(t *testing.T) {
	e := newTestEngine(t)
	e.params.Set(ParamMasterVol, 0)
	out := make([]int16, engineTestBlock)

	e.NoteOn(60, 127)
	// Give the master smoother time to ramp to zero from its default.
	for i := 0; i < SAMPLE_RATE/4/engineTestBlock; i++ {
		e.ProcessBlock(out, 1)
	}

	e.ProcessBlock(out, 1)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d with master at 0: %d", i, s)
		}
	}
}

func BenchmarkEngine_ProcessBlock(b *testing.B) {
	e, err := NewSynthEngine(AUDIO_BACKEND_NONE, NewParamStore())
	if err != nil {
		b.Fatal(err)
	}
	for n := 0; n < NUM_VOICES; n++ {
		e.NoteOn(uint8(48+n), 100)
	}
	out := make([]int16, engineTestBlock*2)
	e.ProcessBlock(out, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ProcessBlock(out, 2)
	}
}
