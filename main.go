// main.go - Main entry point for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;80;200;255m ▄▄▄·▪   ▄▄·       .▄▄ ·  ▄· ▄▌ ▐ ▄ ▄▄▄▄▄ ▄ .▄\033[0m")
	fmt.Println("\033[38;2;110;210;255m▐█ ▄███ ▐█ ▌▪▪     ▐█ ▀. ▐█▪██▌•█▌▐█•██  ██▪▐█\033[0m")
	fmt.Println("\033[38;2;140;220;255m ██▀·▐█·██ ▄▄ ▄█▀▄ ▄▀▀▀█▄▐█▌▐█▪▐█▐▐▌ ▐█.▪██▀▐█\033[0m")
	fmt.Println("\033[38;2;170;230;255m▐█▪·•▐█▌▐███▌▐█▌.▐▌▐█▄▪▐█ ▐█▀·.██▐█▌ ▐█▌·██▌▐▀\033[0m")
	fmt.Println("\033[38;2;200;240;255m.▀   ▀▀▀·▀▀▀  ▀█▄▀▪ ▀▀▀▀   ▀ • ▀▀ █▪ ▀▀▀ ▀▀▀ ·\033[0m")
	fmt.Println("\nA fixed-point polyphonic synthesizer voice engine.")
	fmt.Println("(c) 2025 - 2026 Char Culbert")
	fmt.Println("https://github.com/charCulbert/picosynth")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	boilerPlate()

	var (
		renderPath    string
		renderSeconds float64
		useMidi       bool
		midiPort      string
		demo          bool
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&renderPath, "render", "", "Render the demo sequence to a WAV file and exit")
	flagSet.Float64Var(&renderSeconds, "seconds", 8, "Length of the WAV render in seconds")
	flagSet.BoolVar(&useMidi, "midi", false, "Listen on a MIDI input port")
	flagSet.StringVar(&midiPort, "midiport", "", "MIDI input port name substring (default: first port)")
	flagSet.BoolVar(&demo, "demo", false, "Play the built-in demo sequence")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./picosynth [-midi [-midiport name]] [-demo] [-render out.wav [-seconds 8]]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			flagSet.Usage()
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	params := NewParamStore()

	if renderPath != "" {
		engine, err := NewSynthEngine(AUDIO_BACKEND_NONE, params)
		if err != nil {
			fmt.Printf("Failed to initialize engine: %v\n", err)
			os.Exit(1)
		}
		score := demoScore(SAMPLE_RATE, renderSeconds)
		renderer := newScoredRenderer(engine, score)
		fmt.Printf("Rendering %.1fs to %s...\n", renderSeconds, renderPath)
		if err := RenderWAV(renderer, SAMPLE_RATE, 2, renderSeconds, renderPath); err != nil {
			fmt.Printf("Render failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done.")
		return
	}

	engine, err := NewSynthEngine(AUDIO_BACKEND_OTO, params)
	if err != nil {
		fmt.Printf("Failed to initialize sound: %v\n", err)
		os.Exit(1)
	}
	engine.Start()
	defer engine.Stop()

	if useMidi {
		listener, err := StartMidiListener(engine, params, midiPort)
		if err != nil {
			fmt.Printf("MIDI unavailable: %v\n", err)
		} else {
			fmt.Printf("MIDI input: %s\n", listener.Port())
			defer listener.Close()
		}
	}

	tc := NewTerminalControl(engine, params)

	if demo {
		go playDemoLive(engine, demoScore(SAMPLE_RATE, 0))
	}

	if err := tc.Run(); err != nil {
		fmt.Printf("Terminal error: %v\n", err)
		os.Exit(1)
	}
}

// playDemoLive replays a score in real time on the control context. It loops
// until the process exits.
func playDemoLive(engine *SynthEngine, score []timedEvent) {
	if len(score) == 0 {
		return
	}
	for {
		start := time.Now()
		for _, te := range score {
			at := time.Duration(te.frame) * time.Second / SAMPLE_RATE
			if d := time.Until(start.Add(at)); d > 0 {
				time.Sleep(d)
			}
			pushEvent(engine, te.ev)
		}
	}
}

func pushEvent(engine *SynthEngine, ev NoteEvent) {
	switch ev.Kind {
	case EventNoteOn:
		engine.NoteOn(ev.Note, ev.Velocity)
	case EventNoteOff:
		engine.NoteOff(ev.Note)
	case EventAllNotesOff:
		engine.AllNotesOff()
	}
}
