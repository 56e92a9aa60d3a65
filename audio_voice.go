// audio_voice.go - Single synth voice for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

const (
	// velocityRampSeconds smooths the velocity step on retriggers.
	velocityRampSeconds = 0.005

	// keytrackRefNote is the note whose keytrack contribution is zero;
	// notes above open the filter, notes below close it.
	keytrackRefNote = 60
)

// voiceParams is the per-sample parameter snapshot shared by every voice in
// a block: the engine advances one set of smoothers per sample and hands the
// values down, so all voices hear identical, zipper-free control signals.
type voiceParams struct {
	sawLevel   Fix15
	pulseLevel Fix15
	subLevel   Fix15
	noiseLevel Fix15
	sineLevel  Fix15
	pulseWidth Fix15
	cutoff     Fix15
	resonance  Fix15
	envAmount  Fix15
	keytrack   Fix15
}

// Voice is one slot of the fixed pool: an oscillator bank, an ADSR envelope
// and a ladder filter, plus its current note binding. Voices are allocated
// once at engine construction and reused forever; a voice is "gone" only in
// the sense that its envelope sits in Idle at level zero, which also makes
// it eligible for immediate reuse.
type Voice struct {
	bank     OscillatorBank
	env      Envelope
	filter   LadderFilter
	velocity Smoother

	note int // MIDI note this voice is bound to; meaningful while active

	// keytrackOctaves caches (note - keytrackRefNote)/12 as Fix15 so the
	// per-sample cutoff modulation is a single multiply.
	keytrackOctaves Fix15
}

func NewVoice(sampleRate float64, noiseSeed uint32) Voice {
	v := Voice{
		bank: NewOscillatorBank(sampleRate, noiseSeed),
		env:  NewEnvelope(sampleRate),
		note: -1,
	}
	v.velocity.SetRampLength(smootherRampSamples(sampleRate, velocityRampSeconds))
	return v
}

// NoteOn binds the voice to a note and (re)triggers its envelope. The note
// number is clamped before the frequency lookup. If the voice was silent the
// oscillators and filter restart from a clean state; if it is still sounding
// the envelope's StealFade handles the transition and the running phase
// state is kept so the fade stays continuous.
func (v *Voice) NoteOn(note int, velocity uint8) {
	if note < 0 {
		note = 0
	}
	if note > 127 {
		note = 127
	}

	wasSilent := !v.env.IsActive() && v.env.Level() == 0
	v.note = note
	v.keytrackOctaves = fixFromFloat(float64(note-keytrackRefNote) / 12.0)
	v.bank.SetFrequency(noteToFreq(note))

	vel := Fix15(int32(velocity&0x7F)) * fixOne / 127
	if wasSilent {
		v.bank.ResetPhase()
		v.filter.Reset()
		v.velocity.SnapTo(vel)
	} else {
		v.velocity.SetTarget(vel)
	}

	v.env.NoteOn()
}

func (v *Voice) NoteOff() {
	v.env.NoteOff()
}

// IsActive reports whether the envelope is in any non-Idle state.
func (v *Voice) IsActive() bool { return v.env.IsActive() }

func (v *Voice) State() EnvState { return v.env.State() }

// Next renders one sample. A fully idle voice returns exact zero - no
// filter tail, no denormal-ish residue - so silence mixes as silence.
func (v *Voice) Next(p *voiceParams) Fix15 {
	env := v.env.Next()
	if env == 0 && v.env.State() == EnvIdle {
		return 0
	}

	vel := v.velocity.Next()

	v.bank.SetPulseWidth(p.pulseWidth)
	osc := v.bank.Next(p.sawLevel, p.pulseLevel, p.subLevel, p.noiseLevel, p.sineLevel)

	// Cutoff modulation: envelope opens the filter by envAmount, keytrack
	// shifts it by the note's distance in octaves from the reference.
	// Clamp back into 0-1 before the coefficient mapping.
	cutoff := p.cutoff + p.envAmount.Mul(env) + p.keytrack.Mul(v.keytrackOctaves)
	cutoff = cutoff.Clamp(fixZero, fixOne)

	out := v.filter.Process(osc, cutoff, p.resonance)

	return out.Mul(env).Mul(vel)
}
