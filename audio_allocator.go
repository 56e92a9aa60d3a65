// audio_allocator.go - Voice allocation policy for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

// VoiceAllocator maps note events onto the fixed voice pool. Priority for a
// new note:
//
//  1. a voice already sounding that exact note is retriggered in place
//  2. else the first fully idle voice
//  3. else the first voice already in Release
//  4. else steal: scan round-robin from the cursor and take the voice with
//     the lowest envelope level (the closest to inaudible), advancing the
//     cursor so repeated steals rotate through the pool
//
// The pool never grows or shrinks; a steal always displaces exactly one
// existing voice, and the envelope's StealFade keeps the displacement
// click-free.
type VoiceAllocator struct {
	voices      []*Voice
	stealCursor int
}

func NewVoiceAllocator(voices []*Voice) *VoiceAllocator {
	return &VoiceAllocator{voices: voices}
}

// NoteOn routes a note-on to a voice per the priority order above.
func (a *VoiceAllocator) NoteOn(note int, velocity uint8) *Voice {
	if note < 0 {
		note = 0
	}
	if note > 127 {
		note = 127
	}

	// 1. Retrigger the voice already playing this note.
	for _, v := range a.voices {
		if v.IsActive() && v.note == note {
			v.NoteOn(note, velocity)
			return v
		}
	}

	// 2. First fully idle voice.
	for _, v := range a.voices {
		if !v.IsActive() && v.env.Level() == 0 {
			v.NoteOn(note, velocity)
			return v
		}
	}

	// 3. First releasing voice; it was on its way out anyway.
	for _, v := range a.voices {
		if v.State() == EnvRelease {
			v.NoteOn(note, velocity)
			return v
		}
	}

	// 4. Steal. Round-robin scan, preferring the quietest envelope.
	n := len(a.voices)
	best := a.voices[a.stealCursor%n]
	for i := 0; i < n; i++ {
		v := a.voices[(a.stealCursor+i)%n]
		if v.env.Level() < best.env.Level() {
			best = v
		}
	}
	a.stealCursor = (a.stealCursor + 1) % n
	best.NoteOn(note, velocity)
	return best
}

// NoteOff releases the voice bound to the note. At most one voice holds a
// given note (retriggering reuses it), and a note-off with no match is a
// normal no-op, not an error.
func (a *VoiceAllocator) NoteOff(note int) {
	for _, v := range a.voices {
		if v.note == note && v.IsActive() && v.State() != EnvRelease {
			v.NoteOff()
			return
		}
	}
}

// AllNotesOff forces every active voice into Release. The panic/reset
// control; by the next block everything is on its way to silence.
func (a *VoiceAllocator) AllNotesOff() {
	for _, v := range a.voices {
		if v.IsActive() {
			v.NoteOff()
		}
	}
}
