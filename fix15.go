// fix15.go - 16.15 signed fixed-point arithmetic for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

// Fix15 is a signed fixed-point number with 1 sign bit, 16 integer bits and
// 15 fractional bits. Range is ±65536 with a resolution of ~0.00003. The
// whole hot path of the engine runs on this type; floating point only appears
// in boundary computations (frequency mapping, envelope time conversion).
type Fix15 int32

const (
	fixZero Fix15 = 0
	fixOne  Fix15 = 1 << 15 // 1.0
	fixHalf Fix15 = 1 << 14 // 0.5
	fixTwo  Fix15 = 1 << 16 // 2.0
)

// fixFromFloat converts a float to Fix15. Only for boundary computations,
// never in the per-sample path.
func fixFromFloat(f float64) Fix15 {
	return Fix15(f * 32768.0)
}

// Float converts back to floating point for diagnostics and tests.
func (x Fix15) Float() float64 {
	return float64(x) / 32768.0
}

func fixFromInt(i int) Fix15 {
	return Fix15(i << 15)
}

func (x Fix15) Int() int {
	return int(x >> 15)
}

// Mul multiplies two Fix15 values using a widened 64-bit intermediate so the
// product cannot silently overflow before the shift.
func (x Fix15) Mul(y Fix15) Fix15 {
	return Fix15((int64(x) * int64(y)) >> 15)
}

// Div divides x by y. Slow compared to Mul; keep it out of per-sample code.
func (x Fix15) Div(y Fix15) Fix15 {
	return Fix15((int64(x) << 15) / int64(y))
}

func (x Fix15) Clamp(lo, hi Fix15) Fix15 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func (x Fix15) Abs() Fix15 {
	if x < 0 {
		return -x
	}
	return x
}

// Sample16 converts a Fix15 audio sample in [-1.0, 1.0] to a signed 16-bit
// PCM value. A full-scale 1.0 is 32768 which does not fit int16, so the
// positive rail saturates at 32767.
func (x Fix15) Sample16() int16 {
	if x > 32767 {
		return 32767
	}
	if x < -32768 {
		return -32768
	}
	return int16(x)
}
