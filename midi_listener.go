// midi_listener.go - MIDI input for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
)

// ccAllSoundOff and ccAllNotesOff are channel-mode messages, not parameter
// CCs; both map to the engine's panic.
const (
	ccAllSoundOff = 120
	ccAllNotesOff = 123
)

// MidiListener bridges a hardware MIDI port into the engine's control
// context: notes become queue events, control changes become ParamStore
// writes. Everything it does is control-side; the audio context never sees
// it directly.
type MidiListener struct {
	engine *SynthEngine
	params *ParamStore
	stop   func()
	port   string
}

// StartMidiListener opens a MIDI input and begins forwarding. With an empty
// name the first available port is used; a non-empty name must match a port
// substring. Returns an error when no usable port exists.
func StartMidiListener(engine *SynthEngine, params *ParamStore, portName string) (*MidiListener, error) {
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		return nil, fmt.Errorf("no MIDI input ports available")
	}

	in := ins[0]
	if portName != "" {
		found := false
		for _, candidate := range ins {
			if strings.Contains(candidate.String(), portName) {
				in = candidate
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("MIDI input %q not found (have: %v)", portName, ins)
		}
	}

	l := &MidiListener{engine: engine, params: params, port: in.String()}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		l.handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", in, err)
	}
	l.stop = stop
	return l, nil
}

func (l *MidiListener) Port() string { return l.port }

func (l *MidiListener) Close() {
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
}

// handle runs on the driver's listener goroutine. Note messages go straight
// into the SPSC queue; CCs resolve through the store's CC map. Unmapped CCs
// and unrelated messages are ignored.
func (l *MidiListener) handle(msg midi.Message) {
	var ch, key, vel, cc, val uint8

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		l.engine.NoteOn(key, vel)
	case msg.GetNoteEnd(&ch, &key):
		l.engine.NoteOff(key)
	case msg.GetControlChange(&ch, &cc, &val):
		if cc == ccAllSoundOff || cc == ccAllNotesOff {
			l.engine.AllNotesOff()
			return
		}
		if p := l.params.GetByCC(cc); p != nil {
			p.SetNormalized(float64(val) / 127.0)
		}
	}
}
