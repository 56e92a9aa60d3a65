// audio_smoother.go - Linear parameter smoothing for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

// Smoother ramps a Fix15 value toward a target over a configured number of
// samples, removing the audible step ("zipper noise") a raw parameter change
// would cause. Re-targeting mid-ramp recomputes the increment from the
// current value, so the trajectory never jumps. On the final ramp sample the
// value snaps exactly to the target; fixed-point rounding in the step cannot
// leave residual drift.
//
// Not safe for concurrent use. The audio context owns every Smoother; the
// control context only ever influences it indirectly via the ParamStore.
type Smoother struct {
	current   Fix15
	target    Fix15
	step      Fix15
	remaining int
	rampLen   int
}

// SetRampLength sets the ramp window in samples for subsequent retargets.
// Values below 1 disable smoothing (targets apply instantly).
func (s *Smoother) SetRampLength(samples int) {
	if samples < 1 {
		samples = 0
	}
	s.rampLen = samples
}

// SetTarget starts a ramp from the current value to v. Re-targeting to the
// value already being ramped to is a no-op.
func (s *Smoother) SetTarget(v Fix15) {
	if v == s.target {
		return
	}
	s.target = v
	if s.rampLen == 0 {
		s.current = v
		s.remaining = 0
		s.step = 0
		return
	}
	s.remaining = s.rampLen
	s.step = Fix15((int64(v) - int64(s.current)) / int64(s.rampLen))
}

// SnapTo sets current and target to v immediately, cancelling any ramp.
func (s *Smoother) SnapTo(v Fix15) {
	s.current = v
	s.target = v
	s.remaining = 0
	s.step = 0
}

// Next advances one sample and returns the new current value.
func (s *Smoother) Next() Fix15 {
	if s.remaining > 0 {
		s.remaining--
		if s.remaining == 0 {
			s.current = s.target
		} else {
			s.current += s.step
		}
	} else {
		s.current = s.target
	}
	return s.current
}

func (s *Smoother) Current() Fix15 { return s.current }
func (s *Smoother) Target() Fix15  { return s.target }

func (s *Smoother) IsRamping() bool { return s.remaining > 0 }

// smootherRampSamples converts a ramp time in seconds to samples for
// SetRampLength.
func smootherRampSamples(sampleRate float64, seconds float64) int {
	n := int(sampleRate*seconds + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
