// audio_osc.go - Phase-accumulator oscillator bank for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

// phaseAcc is a Fix15 phase accumulator. It advances by a frequency-derived
// increment each sample and wraps at a configurable limit (1.0 for the simple
// waveforms, the table size for the sine LUT).
type phaseAcc struct {
	phase Fix15
	inc   Fix15
}

func (p *phaseAcc) reset() {
	p.phase = fixZero
}

// setFrequency recomputes the per-sample increment. Float math is fine here;
// this only runs on note events, never per sample.
func (p *phaseAcc) setFrequency(hz, sampleRate float64, wrap Fix15) {
	p.inc = fixFromFloat(hz * wrap.Float() / sampleRate)
}

// next returns the phase before the increment, advancing and wrapping.
func (p *phaseAcc) next(wrap Fix15) Fix15 {
	current := p.phase
	p.phase += p.inc
	if p.phase >= wrap {
		p.phase -= wrap
	}
	return current
}

func (p *phaseAcc) current() Fix15 { return p.phase }

// sawOsc is a plain rising ramp across the wrap period, scaled to [-1, 1).
type sawOsc struct {
	phase phaseAcc
}

func (o *sawOsc) setFrequency(hz, sampleRate float64) {
	o.phase.setFrequency(hz, sampleRate, fixOne)
}

func (o *sawOsc) next() Fix15 {
	p := o.phase.next(fixOne)
	return (p << 1) - fixOne
}

// Pulse width clamp. A width pinned at 0% or 100% degenerates into DC, so the
// usable range stops short of the rails.
const (
	minPulseWidth = fixOne / 20      // 5%
	maxPulseWidth = fixOne - fixOne/20 // 95%
)

// pulseOsc is a variable-width pulse. The polarity is inverted relative to
// the saw (low while phase < width) so the two do not cancel when mixed at
// equal levels.
//
// The accumulator wraps at 2.0 while the increment is sized for one pulse
// cycle per 1.0: the low 15 bits cycle at the note frequency and bit 15
// toggles once per pulse cycle, which is the sub-octave square. Deriving the
// sub from the same accumulator keeps it phase-locked with no separate drift.
type pulseOsc struct {
	phase phaseAcc
	width Fix15
}

func (o *pulseOsc) setFrequency(hz, sampleRate float64) {
	// Increment for a 1.0-wide cycle; the 2.0 wrap happens in next().
	o.phase.setFrequency(hz, sampleRate, fixOne)
}

func (o *pulseOsc) setWidth(w Fix15) {
	o.width = w.Clamp(minPulseWidth, maxPulseWidth)
}

func (o *pulseOsc) next() Fix15 {
	p := o.phase.next(fixTwo) & (fixOne - 1)
	if p < o.width {
		return -fixOne
	}
	return fixOne
}

// nextSub reads the sub-octave square for the pulse's current phase. It does
// not advance the accumulator; call it after next() in the same sample.
func (o *pulseOsc) nextSub() Fix15 {
	if o.phase.current()&fixOne != 0 {
		return -fixOne
	}
	return fixOne
}

// noiseOsc is a linear congruential generator (Numerical Recipes constants).
// The seed is set once at construction and never reseeded, so the sequence is
// deterministic for a given seed and call count.
type noiseOsc struct {
	seed uint32
}

func newNoiseOsc(seed uint32) noiseOsc {
	if seed == 0 {
		seed = 1
	}
	return noiseOsc{seed: seed}
}

func (o *noiseOsc) next() Fix15 {
	o.seed = o.seed*1664525 + 1013904223
	// Top 16 bits reinterpreted as a signed sample already span the Fix15
	// [-1, 1) range.
	return Fix15(int16(o.seed >> 16))
}

// sineOsc reads the shared sine table with linear interpolation between
// adjacent entries. Wrap limit is the table size so the integer part of the
// phase indexes directly.
type sineOsc struct {
	phase phaseAcc
}

func (o *sineOsc) setFrequency(hz, sampleRate float64) {
	o.phase.setFrequency(hz, sampleRate, fixFromInt(sineLUTSize))
}

func (o *sineOsc) next() Fix15 {
	p := o.phase.next(fixFromInt(sineLUTSize))
	idx := p.Int() & sineLUTMask
	frac := p & 0x7FFF
	s0 := sineLUT[idx]
	s1 := sineLUT[(idx+1)&sineLUTMask]
	return s0 + frac.Mul(s1-s0)
}

// OscillatorBank is one voice's set of generators: saw, variable-width pulse,
// sub-octave square locked to the pulse, noise, and a sine (normally mixed at
// zero). All run from the same note frequency except the noise, which is
// unpitched.
type OscillatorBank struct {
	saw   sawOsc
	pulse pulseOsc
	noise noiseOsc
	sine  sineOsc

	sampleRate float64
}

func NewOscillatorBank(sampleRate float64, noiseSeed uint32) OscillatorBank {
	b := OscillatorBank{
		noise:      newNoiseOsc(noiseSeed),
		sampleRate: sampleRate,
	}
	b.pulse.width = fixHalf
	return b
}

// SetFrequency retunes the pitched oscillators. The phase accumulators keep
// running, so a retrigger on a sounding voice stays click-free.
func (b *OscillatorBank) SetFrequency(hz float64) {
	b.saw.setFrequency(hz, b.sampleRate)
	b.pulse.setFrequency(hz, b.sampleRate)
	b.sine.setFrequency(hz, b.sampleRate)
}

func (b *OscillatorBank) SetPulseWidth(w Fix15) {
	b.pulse.setWidth(w)
}

// ResetPhase rewinds all accumulators to zero. Used when a stolen voice
// restarts from silence.
func (b *OscillatorBank) ResetPhase() {
	b.saw.phase.reset()
	b.pulse.phase.reset()
	b.sine.phase.reset()
}

// Next produces one mixed sample. Each source is scaled by its level, the sum
// is divided by four so four full-scale sources cannot leave the mix range
// (the sine rides on top at its usually-zero level and is caught by the
// downstream clamps).
func (b *OscillatorBank) Next(sawL, pulseL, subL, noiseL, sineL Fix15) Fix15 {
	mix := b.saw.next().Mul(sawL)
	mix += b.pulse.next().Mul(pulseL)
	mix += b.pulse.nextSub().Mul(subL)
	mix += b.noise.next().Mul(noiseL)
	mix += b.sine.next().Mul(sineL)
	return mix >> 2
}
