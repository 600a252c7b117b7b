// Command retrosim is the host binary: it loads a ROM/firmware image,
// wires the selected machine (Genesis or Computie) to the ebiten/oto/
// x-term host glue in internal/ebitenhost, and optionally drives a
// register-dump debug console on stdin. Grounded on the teacher's
// main.go command-line dispatch (CPU-mode flag, ROM argument, GUI
// construction, "go cpu.Execute()" plus a blocking GUI show loop), using
// the standard library's flag package rather than a CLI framework —
// the teacher itself parses os.Args by hand with no flag library in the
// retrieval pack either; see DESIGN.md.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"retrosim/cmd/retrosim/romload"
	"retrosim/internal/clock"
	"retrosim/internal/debug"
	"retrosim/internal/debugconsole"
	"retrosim/internal/ebitenhost"
	"retrosim/internal/logx"
	"retrosim/internal/machine/computie"
	"retrosim/internal/machine/genesis"
)

func main() {
	machineFlag := flag.String("machine", "genesis", "machine to run: genesis or computie")
	romFlag := flag.String("rom", "", "path to the cartridge/firmware image")
	debugFlag := flag.Bool("debug", false, "start the register-dump debug console on stdin/stdout instead of the video window")
	logLevelFlag := flag.String("log-level", "warn", "log level: silent, warn, info, debug")
	flag.Parse()

	if *romFlag == "" {
		fmt.Fprintln(os.Stderr, "retrosim: -rom is required")
		os.Exit(1)
	}

	logger := logx.New(os.Stderr, parseLogLevel(*logLevelFlag))

	image, err := romload.Load(*romFlag)
	if err != nil {
		log.Fatalf("retrosim: loading %s: %v", *romFlag, err)
	}

	switch *machineFlag {
	case "genesis":
		runGenesis(image, logger, *debugFlag)
	case "computie":
		runComputie(image, logger, *debugFlag)
	default:
		fmt.Fprintf(os.Stderr, "retrosim: unknown machine %q (want genesis or computie)\n", *machineFlag)
		os.Exit(1)
	}
}

func parseLogLevel(s string) logx.Level {
	switch s {
	case "silent":
		return logx.LevelSilent
	case "info":
		return logx.LevelInfo
	case "debug":
		return logx.LevelDebug
	default:
		return logx.LevelWarn
	}
}

func runGenesis(image []byte, logger *logx.Logger, debugMode bool) {
	g, err := genesis.New(image, logger)
	if err != nil {
		log.Fatalf("retrosim: %v", err)
	}
	g.Reset()

	if debugMode {
		cpus := map[string]debug.DebuggableCPU{
			"m68k": debug.NewM68KAdapter(g.CPU),
			"z80":  debug.NewZ80Adapter(g.Z80),
		}
		debugconsole.New(g, os.Stdin, os.Stdout, cpus).Run()
		return
	}

	go runLoop(g)

	host := ebitenhost.New()
	host.AddWindow(ebitenhost.NewVDPFrameSource(g), "retrosim - Genesis")

	sink, err := host.AddAudioSource(1, 44100)
	if err != nil {
		log.Fatalf("retrosim: audio: %v", err)
	}
	go pumpAudio(g, sink)

	if err := host.Run(); err != nil {
		log.Fatalf("retrosim: %v", err)
	}
}

func runComputie(image []byte, logger *logx.Logger, debugMode bool) {
	c, err := computie.New(image, logger)
	if err != nil {
		log.Fatalf("retrosim: %v", err)
	}
	c.Reset()

	if debugMode {
		cpus := map[string]debug.DebuggableCPU{"m68k": debug.NewM68KAdapter(c.CPU)}
		debugconsole.New(c, os.Stdin, os.Stdout, cpus).Run()
		return
	}

	pty, err := ebitenhost.CreatePTY("computie")
	if err != nil {
		log.Fatalf("retrosim: pty: %v", err)
	}
	c.Serial.OnOutput(func(b byte) { _, _ = pty.Write([]byte{b}) })
	pty.OnInput(func(b byte) { c.Serial.PushInput([]byte{b}) })
	if err := pty.Start(); err != nil {
		log.Fatalf("retrosim: pty start: %v", err)
	}
	defer pty.Stop()

	runLoop(c)
}

// runLoop advances m in fixed simulated-time slices for as long as it
// reports itself running, the same "go cpu.Execute()" shape the
// teacher's main.go starts its CPU under, generalized to any machine
// satisfying debugconsole.Machine.
func runLoop(m debugconsole.Machine) {
	const slice = clock.Duration(16_666_667) // ~1/60s of simulated time per slice
	for m.Running() {
		m.RunFor(slice)
	}
}

// audioPuller is implemented by genesis.Genesis; computie has no audio
// chip to pull from.
type audioPuller interface {
	PullAudio() []float32
	Running() bool
}

// pumpAudio forwards samples from m to sink at roughly real-time pace
// until the machine stops running.
func pumpAudio(m audioPuller, sink ebitenhost.AudioSink) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if !m.Running() {
			return
		}
		samples := m.PullAudio()
		if len(samples) > 0 {
			sink.PushSamples(samples)
		}
	}
}
