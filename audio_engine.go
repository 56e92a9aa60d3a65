// audio_engine.go - Polyphonic engine core for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import "sync/atomic"

const (
	SAMPLE_RATE = 44100

	// NUM_VOICES is the fixed polyphony. The pool is allocated once at
	// construction and never resized.
	NUM_VOICES = 8

	// eventQueueCap bounds the cross-context note queue. 256 pending
	// events is far beyond anything a human or sequencer produces in one
	// audio block.
	eventQueueCap = 256

	controlRampSeconds = 0.02
	masterRampSeconds  = 0.05
)

// noiseSeedBase spreads distinct LCG seeds across the voice pool so voices
// do not share a noise sequence. Seeds are fixed, so output is deterministic.
const noiseSeedBase = 0x2F6E2B1

// SynthEngine owns the voice pool and runs the audio-context side of the
// synth: drain pending note events, refresh smoother targets from the
// ParamStore, then render and mix one block. ProcessBlock never blocks,
// locks or allocates; everything it touches is sized at construction.
//
// The control context talks to the engine only through the ParamStore and
// the note-event queue.
type SynthEngine struct {
	sampleRate int
	params     *ParamStore
	events     *SPSCQueue[NoteEvent]
	voices     []*Voice
	alloc      *VoiceAllocator

	// Cached parameter handles, resolved once so the per-block refresh
	// does no map lookups.
	pAttack, pDecay, pSustain, pRelease            *Parameter
	pMasterVol                                     *Parameter
	pSaw, pPulse, pSub, pNoise, pSine, pPulseWidth *Parameter
	pCutoff, pResonance, pEnvAmount, pKeytrack     *Parameter

	// Block-shared smoothers, advanced once per sample.
	sMasterVol                                     Smoother
	sSaw, sPulse, sSub, sNoise, sSine, sPulseWidth Smoother
	sCutoff, sResonance, sEnvAmount, sKeytrack     Smoother

	// mixShift rescales the voice sum: 1<<mixShift >= NUM_VOICES, so the
	// widened accumulator divides back into the sample range.
	mixShift uint

	output  AudioOutput
	enabled atomic.Bool
}

// NewSynthEngine builds the engine and its audio backend. Pass
// AUDIO_BACKEND_NONE to run without an output (offline rendering, tests).
func NewSynthEngine(backend int, params *ParamStore) (*SynthEngine, error) {
	e := &SynthEngine{
		sampleRate: SAMPLE_RATE,
		params:     params,
		events:     NewSPSCQueue[NoteEvent](eventQueueCap),
	}

	e.voices = make([]*Voice, NUM_VOICES)
	for i := range e.voices {
		v := NewVoice(float64(SAMPLE_RATE), uint32(noiseSeedBase*(i+1)))
		e.voices[i] = &v
	}
	e.alloc = NewVoiceAllocator(e.voices)

	for e.mixShift = 0; 1<<e.mixShift < NUM_VOICES; e.mixShift++ {
	}

	e.pAttack = params.Get(ParamAttack)
	e.pDecay = params.Get(ParamDecay)
	e.pSustain = params.Get(ParamSustain)
	e.pRelease = params.Get(ParamRelease)
	e.pMasterVol = params.Get(ParamMasterVol)
	e.pSaw = params.Get(ParamSawLevel)
	e.pPulse = params.Get(ParamPulseLevel)
	e.pSub = params.Get(ParamSubLevel)
	e.pNoise = params.Get(ParamNoiseLevel)
	e.pSine = params.Get(ParamSineLevel)
	e.pPulseWidth = params.Get(ParamPulseWidth)
	e.pCutoff = params.Get(ParamFilterCutoff)
	e.pResonance = params.Get(ParamFilterResonance)
	e.pEnvAmount = params.Get(ParamFilterEnvAmount)
	e.pKeytrack = params.Get(ParamFilterKeytrack)

	ctrl := smootherRampSamples(float64(SAMPLE_RATE), controlRampSeconds)
	for _, s := range []*Smoother{
		&e.sSaw, &e.sPulse, &e.sSub, &e.sNoise, &e.sSine, &e.sPulseWidth,
		&e.sCutoff, &e.sResonance, &e.sEnvAmount, &e.sKeytrack,
	} {
		s.SetRampLength(ctrl)
	}
	e.sMasterVol.SetRampLength(smootherRampSamples(float64(SAMPLE_RATE), masterRampSeconds))

	// Start smoothers at the stores' defaults so the first block does not
	// ramp up from zero.
	e.sMasterVol.SnapTo(fixFromFloat(e.pMasterVol.Value()))
	e.sSaw.SnapTo(fixFromFloat(e.pSaw.Value()))
	e.sPulse.SnapTo(fixFromFloat(e.pPulse.Value()))
	e.sSub.SnapTo(fixFromFloat(e.pSub.Value()))
	e.sNoise.SnapTo(fixFromFloat(e.pNoise.Value()))
	e.sSine.SnapTo(fixFromFloat(e.pSine.Value()))
	e.sPulseWidth.SnapTo(fixFromFloat(e.pPulseWidth.Value()))
	e.sCutoff.SnapTo(fixFromFloat(e.pCutoff.Value()))
	e.sResonance.SnapTo(fixFromFloat(e.pResonance.Value()))
	e.sEnvAmount.SnapTo(fixFromFloat(e.pEnvAmount.Value()))
	e.sKeytrack.SnapTo(fixFromFloat(e.pKeytrack.Value()))

	output, err := NewAudioOutput(backend, SAMPLE_RATE, e)
	if err != nil {
		return nil, err
	}
	e.output = output

	e.enabled.Store(true)
	return e, nil
}

func (e *SynthEngine) SampleRate() int { return e.sampleRate }

// NoteOn enqueues a note-on from the control context. Returns false if the
// queue is full (the event is dropped, the engine keeps running).
func (e *SynthEngine) NoteOn(note, velocity uint8) bool {
	return e.events.Push(NoteEvent{Kind: EventNoteOn, Note: note & 0x7F, Velocity: velocity & 0x7F})
}

// NoteOff enqueues a note-off from the control context.
func (e *SynthEngine) NoteOff(note uint8) bool {
	return e.events.Push(NoteEvent{Kind: EventNoteOff, Note: note & 0x7F})
}

// AllNotesOff enqueues the panic event from the control context.
func (e *SynthEngine) AllNotesOff() bool {
	return e.events.Push(NoteEvent{Kind: EventAllNotesOff})
}

// drainEvents applies every pending event in enqueue order. Runs at the
// start of each block, so an event's effect is visible from the block in
// which it was drained.
func (e *SynthEngine) drainEvents() {
	for {
		ev, ok := e.events.Pop()
		if !ok {
			return
		}
		switch ev.Kind {
		case EventNoteOn:
			e.alloc.NoteOn(int(ev.Note), ev.Velocity)
		case EventNoteOff:
			e.alloc.NoteOff(int(ev.Note))
		case EventAllNotesOff:
			e.alloc.AllNotesOff()
		}
	}
}

// refreshControls pulls current parameter values once per block and feeds
// them to the smoothers and envelopes. This is the only place the audio
// context reads the ParamStore.
func (e *SynthEngine) refreshControls() {
	attack := e.pAttack.Value()
	decay := e.pDecay.Value()
	sustain := e.pSustain.Value()
	release := e.pRelease.Value()
	for _, v := range e.voices {
		v.env.SetAttackTime(attack)
		v.env.SetDecayTime(decay)
		v.env.SetSustainLevel(sustain)
		v.env.SetReleaseTime(release)
	}

	e.sMasterVol.SetTarget(fixFromFloat(e.pMasterVol.Value()))
	e.sSaw.SetTarget(fixFromFloat(e.pSaw.Value()))
	e.sPulse.SetTarget(fixFromFloat(e.pPulse.Value()))
	e.sSub.SetTarget(fixFromFloat(e.pSub.Value()))
	e.sNoise.SetTarget(fixFromFloat(e.pNoise.Value()))
	e.sSine.SetTarget(fixFromFloat(e.pSine.Value()))
	e.sPulseWidth.SetTarget(fixFromFloat(e.pPulseWidth.Value()))
	e.sCutoff.SetTarget(fixFromFloat(e.pCutoff.Value()))
	e.sResonance.SetTarget(fixFromFloat(e.pResonance.Value()))
	e.sEnvAmount.SetTarget(fixFromFloat(e.pEnvAmount.Value()))
	e.sKeytrack.SetTarget(fixFromFloat(e.pKeytrack.Value()))
}

// ProcessBlock fills out with interleaved 16-bit frames: len(out)/channels
// frames, the same mono mix on every channel. It is a pure function of the
// engine state plus the events drained at block start - no I/O, no clock.
func (e *SynthEngine) ProcessBlock(out []int16, channels int) {
	if channels < 1 {
		channels = 1
	}
	frames := len(out) / channels

	if !e.enabled.Load() {
		for i := range out[:frames*channels] {
			out[i] = 0
		}
		return
	}

	e.drainEvents()
	e.refreshControls()

	for f := 0; f < frames; f++ {
		var p voiceParams
		p.sawLevel = e.sSaw.Next()
		p.pulseLevel = e.sPulse.Next()
		p.subLevel = e.sSub.Next()
		p.noiseLevel = e.sNoise.Next()
		p.sineLevel = e.sSine.Next()
		p.pulseWidth = e.sPulseWidth.Next()
		p.cutoff = e.sCutoff.Next()
		p.resonance = e.sResonance.Next()
		p.envAmount = e.sEnvAmount.Next()
		p.keytrack = e.sKeytrack.Next()
		master := e.sMasterVol.Next()

		// Widened accumulator: NUM_VOICES full-scale voices cannot
		// overflow an int64.
		var acc int64
		for _, v := range e.voices {
			acc += int64(v.Next(&p))
		}

		sample := Fix15(acc >> e.mixShift).Mul(master).Clamp(-fixOne, fixOne)
		pcm := sample.Sample16()

		base := f * channels
		for c := 0; c < channels; c++ {
			out[base+c] = pcm
		}
	}
}

// IsVoiceActive reports whether voice i's envelope is non-idle.
func (e *SynthEngine) IsVoiceActive(i int) bool {
	if i < 0 || i >= len(e.voices) {
		return false
	}
	return e.voices[i].IsActive()
}

// VoiceState returns voice i's envelope state for diagnostics.
func (e *SynthEngine) VoiceState(i int) EnvState {
	if i < 0 || i >= len(e.voices) {
		return EnvIdle
	}
	return e.voices[i].State()
}

// VoiceNote returns the note voice i is bound to, or -1.
func (e *SynthEngine) VoiceNote(i int) int {
	if i < 0 || i >= len(e.voices) {
		return -1
	}
	return e.voices[i].note
}

// ActiveVoices counts non-idle voices.
func (e *SynthEngine) ActiveVoices() int {
	n := 0
	for _, v := range e.voices {
		if v.IsActive() {
			n++
		}
	}
	return n
}

// Start enables the engine and its audio backend.
func (e *SynthEngine) Start() {
	e.enabled.Store(true)
	if e.output != nil {
		e.output.Start()
	}
}

// Stop silences the engine and shuts the backend down.
func (e *SynthEngine) Stop() {
	e.enabled.Store(false)
	if e.output != nil {
		e.output.Stop()
		e.output.Close()
	}
}
