// audio_envelope.go - ADSR envelope state machine for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

// EnvState is the envelope phase. StealFade is the extra anti-click phase: a
// voice taken over while still sounding ramps to zero over a few milliseconds
// before its new attack begins, instead of snapping.
type EnvState int32

const (
	EnvIdle EnvState = iota
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease
	EnvStealFade
)

func (s EnvState) String() string {
	switch s {
	case EnvIdle:
		return "Idle"
	case EnvAttack:
		return "Attack"
	case EnvDecay:
		return "Decay"
	case EnvSustain:
		return "Sustain"
	case EnvRelease:
		return "Release"
	case EnvStealFade:
		return "StealFade"
	}
	return "Unknown"
}

const (
	// stealFadeSeconds is short enough to be inaudible as a fade but long
	// enough that the takeover does not click.
	stealFadeSeconds = 0.005

	// minEnvSeconds floors every timed phase so increments never divide by
	// zero and a "zero" time still takes one control step.
	minEnvSeconds = 0.001

	// sustainRampSeconds smooths live sustain-level changes.
	sustainRampSeconds = 0.01
)

// Envelope is a per-voice ADSR generator. Each timed phase counts elapsed
// samples and interpolates linearly between the phase's start and end level;
// the progress division is widened to 64 bits so multi-second phases cannot
// overflow the fixed-point math. Phase boundaries force the level to the
// exact endpoint (0, 1.0, or the sustain level), so rounding inside a phase
// never accumulates.
//
// Next is the audio context's only entry point. The setters are also called
// from the audio context, during the engine's block-start parameter refresh;
// the control context never touches an Envelope directly.
type Envelope struct {
	sampleRate float64

	state   EnvState
	level   Fix15
	counter uint32 // samples elapsed in the current timed phase

	attackSamples  uint32
	decaySamples   uint32
	releaseSamples uint32
	stealSamples   uint32

	sustain Smoother

	releaseStart Fix15 // level when Release began
	stealStart   Fix15 // level when StealFade began
}

func NewEnvelope(sampleRate float64) Envelope {
	e := Envelope{sampleRate: sampleRate}
	e.sustain.SetRampLength(smootherRampSamples(sampleRate, sustainRampSeconds))
	e.sustain.SnapTo(fixFromFloat(0.7))
	e.attackSamples = e.timeToSamples(0.01)
	e.decaySamples = e.timeToSamples(0.2)
	e.releaseSamples = e.timeToSamples(0.5)
	e.stealSamples = e.timeToSamples(stealFadeSeconds)
	return e
}

func (e *Envelope) timeToSamples(seconds float64) uint32 {
	if seconds < minEnvSeconds {
		seconds = minEnvSeconds
	}
	n := uint32(seconds * e.sampleRate)
	if n < 1 {
		n = 1
	}
	return n
}

// phaseProgress returns elapsed/total as Fix15 in [0, 1.0], using 64-bit
// intermediates so long envelope times cannot overflow.
func phaseProgress(elapsed, total uint32) Fix15 {
	if total == 0 {
		return fixOne
	}
	p := (int64(elapsed) << 15) / int64(total)
	if p > int64(fixOne) {
		p = int64(fixOne)
	}
	return Fix15(p)
}

// counterForProgress inverts phaseProgress: the elapsed-sample count that
// corresponds to a given progress through a phase of the given length.
func counterForProgress(progress Fix15, total uint32) uint32 {
	if progress < 0 {
		return 0
	}
	c := (int64(progress) * int64(total)) >> 15
	if c > int64(total) {
		c = int64(total)
	}
	return uint32(c)
}

// NoteOn starts a new note. A voice that is still sounding (any level above
// zero, whatever the state) fades out first via StealFade; a silent voice
// goes straight to Attack from exactly zero.
func (e *Envelope) NoteOn() {
	if e.level > 0 {
		e.stealStart = e.level
		e.state = EnvStealFade
		e.counter = 0
		return
	}
	e.level = fixZero
	e.state = EnvAttack
	e.counter = 0
}

// NoteOff moves any non-idle state to Release, starting from the current
// level. On an idle voice it is a no-op.
func (e *Envelope) NoteOff() {
	if e.state == EnvIdle {
		return
	}
	e.releaseStart = e.level
	e.state = EnvRelease
	e.counter = 0
}

func (e *Envelope) IsActive() bool  { return e.state != EnvIdle }
func (e *Envelope) State() EnvState { return e.state }
func (e *Envelope) Level() Fix15    { return e.level }

// SetAttackTime updates the attack length. Mid-attack the elapsed counter is
// re-derived from the current level, so the level keeps rising continuously
// instead of jumping to the new timeline's idea of "now".
func (e *Envelope) SetAttackTime(seconds float64) {
	n := e.timeToSamples(seconds)
	if n == e.attackSamples {
		return
	}
	e.attackSamples = n
	if e.state == EnvAttack {
		e.counter = counterForProgress(e.level, n)
	}
}

func (e *Envelope) SetDecayTime(seconds float64) {
	n := e.timeToSamples(seconds)
	if n == e.decaySamples {
		return
	}
	e.decaySamples = n
	if e.state == EnvDecay {
		e.counter = counterForProgress(e.decayProgress(), n)
	}
}

// decayProgress recovers how far through the decay the current level sits:
// level = 1 - progress*(1 - sustain).
func (e *Envelope) decayProgress() Fix15 {
	span := fixOne - e.sustain.Current()
	if span <= 0 {
		return fixOne
	}
	return (fixOne - e.level).Div(span).Clamp(fixZero, fixOne)
}

// SetSustainLevel retargets the smoothed sustain. An exact-zero parameter
// becomes an exact-zero target; Sustain then outputs true silence even while
// the smoother is still settling.
func (e *Envelope) SetSustainLevel(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	if level == 0 {
		e.sustain.SetTarget(fixZero)
		return
	}
	e.sustain.SetTarget(fixFromFloat(level))
}

func (e *Envelope) SetReleaseTime(seconds float64) {
	n := e.timeToSamples(seconds)
	if n == e.releaseSamples {
		return
	}
	e.releaseSamples = n
	if e.state == EnvRelease && e.releaseStart > 0 {
		progress := fixOne - e.level.Div(e.releaseStart).Clamp(fixZero, fixOne)
		e.counter = counterForProgress(progress, n)
	}
}

// Next advances one sample and returns the amplitude multiplier in [0, 1.0].
func (e *Envelope) Next() Fix15 {
	sus := e.sustain.Next()

	switch e.state {
	case EnvStealFade:
		e.counter++
		if e.counter >= e.stealSamples {
			e.level = fixZero
			e.state = EnvAttack
			e.counter = 0
		} else {
			e.level = e.stealStart.Mul(fixOne - phaseProgress(e.counter, e.stealSamples))
		}

	case EnvAttack:
		e.counter++
		if e.counter >= e.attackSamples {
			e.level = fixOne
			e.state = EnvDecay
			e.counter = 0
		} else {
			e.level = phaseProgress(e.counter, e.attackSamples)
		}

	case EnvDecay:
		e.counter++
		if e.counter >= e.decaySamples {
			e.level = sus
			e.state = EnvSustain
			e.counter = 0
		} else {
			progress := phaseProgress(e.counter, e.decaySamples)
			e.level = fixOne - progress.Mul(fixOne-sus)
		}

	case EnvSustain:
		e.level = sus
		if e.sustain.Target() == fixZero {
			e.level = fixZero
		}

	case EnvRelease:
		e.counter++
		if e.counter >= e.releaseSamples {
			e.level = fixZero
			e.state = EnvIdle
			e.counter = 0
		} else {
			e.level = e.releaseStart.Mul(fixOne - phaseProgress(e.counter, e.releaseSamples))
		}

	case EnvIdle:
		e.level = fixZero
	}

	return e.level
}
