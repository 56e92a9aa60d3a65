// terminal_io.go - Interactive terminal keyboard control for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	// termGate is how long a terminal-triggered note sounds. The terminal
	// reports presses only, never releases, so each press gets a fixed gate
	// and a timed note-off.
	termGate = 300 * time.Millisecond

	// termNudge is the normalized step a parameter key moves its value by.
	termNudge = 0.05

	termDefaultOctave = 4
	termVelocity      = 100
)

// noteKeys lays a piano octave over the bottom letter row, tracker style:
// white keys on z..m, sharps on the row above.
var noteKeys = map[byte]int{
	'z': 0, 's': 1, 'x': 2, 'd': 3, 'c': 4, 'v': 5, 'g': 6,
	'b': 7, 'h': 8, 'n': 9, 'j': 10, 'm': 11, ',': 12,
}

// paramKey is one down/up key pair bound to a parameter, in the spirit of a
// single control table being the only place keys are defined.
type paramKey struct {
	label    string
	down, up byte
	id       string
}

var paramKeys = []paramKey{
	{"Attack", 'q', 'w', ParamAttack},
	{"Decay", 'e', 'r', ParamDecay},
	{"Sustain", 't', 'y', ParamSustain},
	{"Release", 'u', 'i', ParamRelease},
	{"Cutoff", 'o', 'p', ParamFilterCutoff},
	{"Resonance", 'k', 'l', ParamFilterResonance},
	{"Volume", '-', '=', ParamMasterVol},
	{"Pulse width", '[', ']', ParamPulseWidth},
}

// TerminalControl turns raw stdin keystrokes into engine events and
// parameter writes. It is a control-context component: all it ever touches
// is the note queue and the ParamStore.
type TerminalControl struct {
	engine *SynthEngine
	params *ParamStore

	octave int

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	oldState *term.State

	// pending timed note-offs, keyed by note number
	mu     sync.Mutex
	timers map[uint8]*time.Timer
}

func NewTerminalControl(engine *SynthEngine, params *ParamStore) *TerminalControl {
	return &TerminalControl{
		engine: engine,
		params: params,
		octave: termDefaultOctave,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		timers: map[uint8]*time.Timer{},
	}
}

// Run puts the terminal in raw mode and processes keys until quit (ESC or
// Ctrl-C) or Stop. It blocks; callers run it on the main goroutine.
func (t *TerminalControl) Run() error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	t.oldState = oldState
	defer func() {
		_ = term.Restore(fd, t.oldState)
		close(t.doneCh)
	}()

	t.printHelp()

	buf := make([]byte, 1)
	for {
		select {
		case <-t.stopCh:
			return nil
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil
		}
		if n == 0 {
			continue
		}

		b := buf[0]
		switch b {
		case 0x1B, 0x03: // ESC, Ctrl-C
			t.engine.AllNotesOff()
			return nil
		case ' ':
			t.engine.AllNotesOff()
			t.cancelTimers()
			continue
		case '1':
			if t.octave > 0 {
				t.octave--
			}
			fmt.Printf("octave %d\r\n", t.octave)
			continue
		case '2':
			if t.octave < 8 {
				t.octave++
			}
			fmt.Printf("octave %d\r\n", t.octave)
			continue
		case '?':
			t.printHelp()
			continue
		}

		if offset, ok := noteKeys[b]; ok {
			t.playNote(offset)
			continue
		}
		t.handleParamKey(b)
	}
}

// Stop asks Run to exit and waits for the terminal state to be restored.
func (t *TerminalControl) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	<-t.doneCh
	t.cancelTimers()
}

// playNote triggers the key's note at the current octave with a timed gate.
// Re-pressing before the gate expires retriggers and rearms the timer.
func (t *TerminalControl) playNote(offset int) {
	note := (t.octave+1)*12 + offset
	if note > 127 {
		note = 127
	}
	n := uint8(note)

	t.engine.NoteOn(n, termVelocity)

	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[n]; ok {
		timer.Stop()
	}
	t.timers[n] = time.AfterFunc(termGate, func() {
		t.engine.NoteOff(n)
		t.mu.Lock()
		delete(t.timers, n)
		t.mu.Unlock()
	})
}

func (t *TerminalControl) cancelTimers() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for n, timer := range t.timers {
		timer.Stop()
		delete(t.timers, n)
	}
}

func (t *TerminalControl) handleParamKey(b byte) {
	for _, pk := range paramKeys {
		if b != pk.down && b != pk.up {
			continue
		}
		p := t.params.Get(pk.id)
		if p == nil {
			return
		}
		step := termNudge
		if b == pk.down {
			step = -step
		}
		p.SetNormalized(p.Normalized() + step)
		fmt.Printf("%s: %.3f\r\n", pk.label, p.Value())
		return
	}
}

func (t *TerminalControl) printHelp() {
	fmt.Print("\r\nkeys: z..m play notes (s d g h j sharps), , is the high C\r\n")
	fmt.Print("1/2 octave down/up, space all notes off, ESC quit\r\n")
	for _, pk := range paramKeys {
		fmt.Printf("%c/%c %s  ", pk.down, pk.up, pk.label)
	}
	fmt.Print("\r\n\r\n")
}
