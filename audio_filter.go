// audio_filter.go - Resonant ladder filter for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

// Fixed-point filter constants. The cutoff coefficient maps a normalized 0-1
// parameter into a musically useful g range of 0.001-0.85; resonance scales
// into 0-3.9 feedback. Clamps bound every recirculating value so the filter
// cannot diverge regardless of parameter extremes - prevention is the only
// stability strategy, there is no detection.
const (
	filterGSlope     Fix15 = 27787  // 0.849
	filterGOffset    Fix15 = 33     // 0.001
	filterResScale   Fix15 = 127795 // 3.9
	filterInClamp    Fix15 = 524288 // 16.0
	filterStageClamp Fix15 = 262144 // 8.0
	filterMakeup     Fix15 = 81920  // 2.5x, compensates the ladder's passband loss
)

// LadderFilter is a 4-stage low-pass with resonance feedback from the last
// stage into the input. Each stage integrates toward its predecessor:
// stage += g * (prev - stage).
type LadderFilter struct {
	stage1 Fix15
	stage2 Fix15
	stage3 Fix15
	stage4 Fix15
}

// Reset zeroes the stage registers. Called when a voice restarts from
// silence so a stolen voice does not replay the previous note's tail.
func (f *LadderFilter) Reset() {
	f.stage1 = 0
	f.stage2 = 0
	f.stage3 = 0
	f.stage4 = 0
}

// Process filters one sample. cutoff and resonance are normalized 0-1
// Fix15 values; the caller clamps any modulated cutoff back into range
// before mapping.
func (f *LadderFilter) Process(in, cutoff, resonance Fix15) Fix15 {
	g := cutoff.Mul(filterGSlope) + filterGOffset
	res := resonance.Mul(filterResScale)

	fbInput := (in - res.Mul(f.stage4)).Clamp(-filterInClamp, filterInClamp)

	f.stage1 += g.Mul(fbInput - f.stage1)
	f.stage2 += g.Mul(f.stage1 - f.stage2)
	f.stage3 += g.Mul(f.stage2 - f.stage3)
	f.stage4 += g.Mul(f.stage3 - f.stage4)

	f.stage4 = f.stage4.Clamp(-filterStageClamp, filterStageClamp)

	return f.stage4.Mul(filterMakeup).Clamp(-filterInClamp, filterInClamp)
}
