// audio_allocator_test.go - Voice allocation policy tests

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import "testing"

const allocTestRate = 44100.0

func newTestPool(n int) ([]*Voice, *VoiceAllocator) {
	voices := make([]*Voice, n)
	for i := range voices {
		v := NewVoice(allocTestRate, uint32(i+1))
		voices[i] = &v
	}
	return voices, NewVoiceAllocator(voices)
}

func advancePool(voices []*Voice, samples int) {
	p := voiceParams{sawLevel: fixOne, cutoff: fixOne}
	for i := 0; i < samples; i++ {
		for _, v := range voices {
			v.Next(&p)
		}
	}
}

func TestAllocator_PrefersIdleVoices(t *testing.T) {
	voices, a := newTestPool(4)

	got := map[*Voice]bool{}
	for n := 60; n < 64; n++ {
		v := a.NoteOn(n, 100)
		if got[v] {
			t.Fatalf("note %d reused a busy voice with idle voices available", n)
		}
		got[v] = true
	}
	if len(got) != 4 {
		t.Errorf("4 notes used %d distinct voices", len(got))
	}
	_ = voices
}

func TestAllocator_RetriggersSameNote(t *testing.T) {
	voices, a := newTestPool(4)

	first := a.NoteOn(60, 100)
	advancePool(voices, 100)

	second := a.NoteOn(60, 80)
	if second != first {
		t.Error("re-striking a sounding note allocated a second voice")
	}
	if first.State() != EnvStealFade {
		t.Errorf("retriggered voice state = %v, want StealFade", first.State())
	}

	active := 0
	for _, v := range voices {
		if v.IsActive() {
			active++
		}
	}
	if active != 1 {
		t.Errorf("%d active voices after retrigger, want 1", active)
	}
}

func TestAllocator_PrefersReleasingVoice(t *testing.T) {
	voices, a := newTestPool(4)

	for n := 60; n < 64; n++ {
		a.NoteOn(n, 100)
	}
	advancePool(voices, 500)
	a.NoteOff(61)
	advancePool(voices, 10)

	var releasing *Voice
	for _, v := range voices {
		if v.State() == EnvRelease {
			releasing = v
		}
	}
	if releasing == nil {
		t.Fatal("test setup: no releasing voice")
	}

	v := a.NoteOn(70, 100)
	if v != releasing {
		t.Error("allocator stole a held voice while a releasing voice was available")
	}
}

func TestAllocator_StealsQuietestWhenFull(t *testing.T) {
	voices, a := newTestPool(4)

	t.Log("pool of 4, all held: the 5th note must steal exactly one voice, the quietest")

	// Stagger the note-ons so envelope levels differ mid-attack.
	a.NoteOn(60, 100)
	advancePool(voices, 300)
	a.NoteOn(61, 100)
	advancePool(voices, 300)
	a.NoteOn(62, 100)
	advancePool(voices, 300)
	a.NoteOn(63, 100)
	advancePool(voices, 50) // note 63 is earliest in its attack: quietest

	var quietest *Voice
	for _, v := range voices {
		if quietest == nil || v.env.Level() < quietest.env.Level() {
			quietest = v
		}
	}

	stolen := a.NoteOn(70, 100)
	if stolen != quietest {
		t.Errorf("stole voice at level %v, quietest was %v",
			stolen.env.Level().Float(), quietest.env.Level().Float())
	}
	if stolen.note != 70 {
		t.Errorf("stolen voice bound to note %d, want 70", stolen.note)
	}
	if stolen.State() != EnvStealFade {
		t.Errorf("stolen voice state = %v, want StealFade", stolen.State())
	}

	// Exactly one voice was displaced; the other three still hold their notes.
	held := map[int]bool{}
	for _, v := range voices {
		held[v.note] = true
	}
	for _, n := range []int{60, 61, 62, 70} {
		if !held[n] {
			t.Errorf("note %d lost its voice", n)
		}
	}
}

func TestAllocator_NoteOffUnknownIsNoOp(t *testing.T) {
	voices, a := newTestPool(4)
	a.NoteOn(60, 100)
	advancePool(voices, 10)

	a.NoteOff(72) // never played
	if voices[0].State() == EnvRelease {
		t.Error("note-off for an unplayed note released a voice")
	}

	a.NoteOff(60)
	a.NoteOff(60) // second off for the same note: also a no-op
	releasing := 0
	for _, v := range voices {
		if v.State() == EnvRelease {
			releasing++
		}
	}
	if releasing != 1 {
		t.Errorf("%d releasing voices, want 1", releasing)
	}
}

func TestAllocator_AllNotesOff(t *testing.T) {
	voices, a := newTestPool(4)
	for n := 60; n < 64; n++ {
		a.NoteOn(n, 100)
	}
	advancePool(voices, 500)

	a.AllNotesOff()
	for i, v := range voices {
		if v.State() != EnvRelease {
			t.Errorf("voice %d state = %v after AllNotesOff, want Release", i, v.State())
		}
	}

	// Eventually everything decays to true idle silence.
	advancePool(voices, 44100)
	for i, v := range voices {
		if v.IsActive() || v.env.Level() != 0 {
			t.Errorf("voice %d still sounding after decay", i)
		}
	}
}
