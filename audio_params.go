// audio_params.go - Shared parameter store for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import (
	"math"
	"sync/atomic"
)

// Parameter is a single named control with a clamped physical value. The
// control context is the sole writer of the raw value; the audio context
// reads it once per block. The value is exchanged through an atomic word so
// a reader may see a slightly stale value but never a torn one.
type Parameter struct {
	id       string
	name     string
	min, max float64
	cc       uint8 // MIDI continuous-controller number, 0-127

	bits atomic.Uint64 // float64 bit pattern of the current value
}

func NewParameter(id, name string, min, max, def float64, cc uint8) *Parameter {
	p := &Parameter{id: id, name: name, min: min, max: max, cc: cc}
	p.Set(def)
	return p
}

// Set clamps the value into [min, max] and publishes it. Out-of-range writes
// are silent; clamping is the error handling here.
func (p *Parameter) Set(v float64) {
	if v < p.min {
		v = p.min
	}
	if v > p.max {
		v = p.max
	}
	p.bits.Store(math.Float64bits(v))
}

func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.bits.Load())
}

// SetNormalized maps a 0-1 control position onto the parameter range.
func (p *Parameter) SetNormalized(norm float64) {
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	p.Set(p.min + norm*(p.max-p.min))
}

func (p *Parameter) Normalized() float64 {
	return (p.Value() - p.min) / (p.max - p.min)
}

func (p *Parameter) ID() string   { return p.id }
func (p *Parameter) Name() string { return p.name }
func (p *Parameter) Min() float64 { return p.min }
func (p *Parameter) Max() float64 { return p.max }
func (p *Parameter) CC() uint8    { return p.cc }

// Engine parameter IDs. Stable keys; everything that touches a parameter goes
// through these.
const (
	ParamAttack          = "attack"
	ParamDecay           = "decay"
	ParamSustain         = "sustain"
	ParamRelease         = "release"
	ParamMasterVol       = "masterVol"
	ParamSawLevel        = "sawLevel"
	ParamPulseLevel      = "pulseLevel"
	ParamSubLevel        = "subLevel"
	ParamNoiseLevel      = "noiseLevel"
	ParamSineLevel       = "sineLevel"
	ParamPulseWidth      = "pulseWidth"
	ParamFilterCutoff    = "filterCutoff"
	ParamFilterResonance = "filterResonance"
	ParamFilterEnvAmount = "filterEnvAmount"
	ParamFilterKeytrack  = "filterKeytrack"
)

// ParamStore is the fixed, initialization-time-populated collection of all
// synth parameters. No allocation happens after NewParamStore returns; both
// lookup maps are read-only from then on, so concurrent Get from the audio
// context needs no lock.
type ParamStore struct {
	params []*Parameter
	byID   map[string]*Parameter
	byCC   [128]*Parameter
}

func NewParamStore() *ParamStore {
	s := &ParamStore{byID: make(map[string]*Parameter)}

	add := func(id, name string, min, max, def float64, cc uint8) {
		s.register(NewParameter(id, name, min, max, def, cc))
	}

	add(ParamAttack, "Attack", 0.001, 2.0, 0.01, 73)
	add(ParamDecay, "Decay", 0.001, 3.0, 0.2, 75)
	add(ParamSustain, "Sustain", 0.0, 1.0, 0.7, 79)
	add(ParamRelease, "Release", 0.001, 5.0, 0.5, 72)
	add(ParamMasterVol, "Master Volume", 0.0, 1.0, 0.5, 7)
	add(ParamSawLevel, "Saw Level", 0.0, 1.0, 0.8, 20)
	add(ParamPulseLevel, "Pulse Level", 0.0, 1.0, 0.0, 21)
	add(ParamSubLevel, "Sub Level", 0.0, 1.0, 0.0, 22)
	add(ParamNoiseLevel, "Noise Level", 0.0, 1.0, 0.0, 23)
	add(ParamSineLevel, "Sine Level", 0.0, 1.0, 0.0, 24)
	add(ParamPulseWidth, "Pulse Width", 0.05, 0.95, 0.5, 76)
	add(ParamFilterCutoff, "Filter Cutoff", 0.0, 1.0, 1.0, 74)
	add(ParamFilterResonance, "Filter Resonance", 0.0, 1.0, 0.0, 71)
	add(ParamFilterEnvAmount, "Filter Env Amount", 0.0, 1.0, 0.0, 77)
	add(ParamFilterKeytrack, "Filter Keytrack", 0.0, 1.0, 0.0, 78)

	return s
}

func (s *ParamStore) register(p *Parameter) {
	s.params = append(s.params, p)
	s.byID[p.id] = p
	s.byCC[p.cc&0x7F] = p
}

// Get returns the parameter with the given ID, or nil if it does not exist.
func (s *ParamStore) Get(id string) *Parameter {
	return s.byID[id]
}

// GetByCC returns the parameter mapped to a MIDI CC number, or nil.
func (s *ParamStore) GetByCC(cc uint8) *Parameter {
	if cc > 127 {
		return nil
	}
	return s.byCC[cc]
}

// Set writes a physical value to the named parameter. Unknown IDs are ignored.
func (s *ParamStore) Set(id string, v float64) {
	if p := s.byID[id]; p != nil {
		p.Set(v)
	}
}

// Value reads the named parameter's current physical value. Unknown IDs read
// as zero.
func (s *ParamStore) Value(id string) float64 {
	if p := s.byID[id]; p != nil {
		return p.Value()
	}
	return 0
}

// All returns the parameters in registration order, for control surfaces.
func (s *ParamStore) All() []*Parameter {
	return s.params
}
