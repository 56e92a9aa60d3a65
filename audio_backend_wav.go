// audio_backend_wav.go - Offline WAV rendering for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavRenderBlock = 512

// RenderWAV runs the renderer offline for the given number of seconds and
// writes a 16-bit stereo PCM file. The engine is pulled block by block, same
// as a live backend would, so the file is bit-identical to what the device
// would have played.
func RenderWAV(renderer BlockRenderer, sampleRate int, channels int, seconds float64, path string) error {
	if seconds <= 0 {
		return fmt.Errorf("render length must be positive, got %gs", seconds)
	}
	if channels < 1 {
		channels = 1
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, sampleRate, 16, channels, 1)

	totalFrames := int(seconds * float64(sampleRate))
	block := make([]int16, wavRenderBlock*channels)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, 0, wavRenderBlock*channels),
		SourceBitDepth: 16,
	}

	for rendered := 0; rendered < totalFrames; {
		frames := wavRenderBlock
		if remaining := totalFrames - rendered; remaining < frames {
			frames = remaining
		}
		chunk := block[:frames*channels]
		renderer.ProcessBlock(chunk, channels)

		buf.Data = buf.Data[:0]
		for _, s := range chunk {
			buf.Data = append(buf.Data, int(s))
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		rendered += frames
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}
	return nil
}
