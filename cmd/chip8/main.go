package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/disasm"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/statsview"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

func main() {
	app := newApp()

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 interpreter"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Output backend: terminal, sdl2 or headless",
			Value: "terminal",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing for interactive backends: adaptive or ticker",
			Value: "adaptive",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "ips",
			Usage: "Instructions executed per second",
			Value: chip8.DefaultInstructionsPerSecond,
		},
		cli.IntFlag{
			Name:  "width",
			Usage: "Display width in pixels",
			Value: video.FramebufferWidth,
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "Display height in pixels",
			Value: video.FramebufferHeight,
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale factor (sdl2 backend)",
			Value: chip8.DefaultScale,
		},
		cli.StringFlag{
			Name:  "fg",
			Usage: "Foreground color as RRGGBB or RRGGBBAA hex",
			Value: "FFFFFFFF",
		},
		cli.StringFlag{
			Name:  "bg",
			Usage: "Background color as RRGGBB or RRGGBBAA hex",
			Value: "000000FF",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for the random number instruction (0 = random)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "snapshot-text",
			Usage: "Also write text renderings of headless snapshots",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the debug panel (registers, disassembly, logs)",
		},
		cli.BoolFlag{
			Name:  "statsview",
			Usage: "Log machine rates and serve runtime statistics over HTTP (requires the statsview build tag)",
		},
	}
	app.Action = runEmulator
	app.Commands = []cli.Command{
		{
			Name:      "disasm",
			Usage:     "Print the disassembly of a ROM file",
			ArgsUsage: "<ROM file>",
			Action:    runDisassembler,
		},
	}

	return app
}

func romPathFrom(c *cli.Context) (string, error) {
	if romPath := c.String("rom"); romPath != "" {
		return romPath, nil
	}
	if c.NArg() > 0 {
		return c.Args().Get(0), nil
	}
	cli.ShowAppHelp(c)
	return "", errors.New("no ROM path provided")
}

func configFrom(c *cli.Context) (chip8.Config, error) {
	cfg := chip8.DefaultConfig()
	cfg.Width = c.Int("width")
	cfg.Height = c.Int("height")
	cfg.Scale = c.Int("scale")
	cfg.InstructionsPerSecond = c.Int("ips")
	cfg.Seed = c.Uint64("seed")

	var err error
	if cfg.Foreground, err = video.ParseColor(c.String("fg")); err != nil {
		return cfg, err
	}
	if cfg.Background, err = video.ParseColor(c.String("bg")); err != nil {
		return cfg, err
	}
	if cfg.Foreground == cfg.Background {
		return cfg, fmt.Errorf("%w: foreground and background colors are both %s", chip8.ErrInvalidConfig, cfg.Foreground)
	}

	return cfg, cfg.Validate()
}

func runEmulator(c *cli.Context) error {
	romPath, err := romPathFrom(c)
	if err != nil {
		return err
	}

	cfg, err := configFrom(c)
	if err != nil {
		return err
	}

	m, err := chip8.NewWithFile(romPath, cfg)
	if err != nil {
		return err
	}

	romName := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))

	var b backend.Backend
	var limiter timing.Limiter
	switch c.String("backend") {
	case "headless":
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}

		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return err
		}
		snapshotConfig.Text = c.Bool("snapshot-text")

		// Set up debug logging for headless mode
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))

		b = headless.New(frames, snapshotConfig)
		limiter = timing.NewNoOpLimiter()
	case "terminal":
		b = terminal.New()
	case "sdl2":
		b = sdl2.New()
	default:
		return fmt.Errorf("unknown backend %q", c.String("backend"))
	}

	if limiter == nil {
		switch c.String("limiter") {
		case "adaptive":
			limiter = timing.NewAdaptiveLimiter()
		case "ticker":
			ticker := timing.NewTickerLimiter()
			defer ticker.Stop()
			limiter = ticker
		default:
			return fmt.Errorf("unknown limiter %q", c.String("limiter"))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("statsview") {
		statsview.Launch(ctx, os.Stdout, m)
	}

	logger := slog.Default()
	if err := b.Init(backend.BackendConfig{
		Title:         "CHIP-8 - " + romName,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Scale:         cfg.Scale,
		Foreground:    cfg.Foreground,
		Background:    cfg.Background,
		ShowDebug:     c.Bool("debug"),
		DebugProvider: m,
	}); err != nil {
		return err
	}

	runErr := chip8.Run(ctx, m, b, limiter, input.NewManager(m.Keypad()))

	if err := b.Cleanup(); err != nil {
		slog.Warn("Backend cleanup failed", "error", err)
	}
	// backends may have redirected logging
	slog.SetDefault(logger)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if fault := m.Fault(); fault != nil {
		return fmt.Errorf("machine fault: %w", fault)
	}

	slog.Info("Emulation finished", "frames", m.FrameCount(), "instructions", m.InstructionCount())
	return nil
}

func runDisassembler(c *cli.Context) error {
	romPath, err := romPathFrom(c)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}

	return writeDisassembly(c.App.Writer, data)
}

func writeDisassembly(w io.Writer, data []byte) error {
	if len(data) > memory.MaxROMSize {
		return fmt.Errorf("%w: %d bytes", memory.ErrROMTooLarge, len(data))
	}

	for _, line := range disasm.DisassembleRange(memory.ProgramStart, data) {
		if _, err := fmt.Fprintf(w, "0x%03X  %04X  %s\n", line.Address, line.Opcode, line.Instruction); err != nil {
			return err
		}
	}
	return nil
}
