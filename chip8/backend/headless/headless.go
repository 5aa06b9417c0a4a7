package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend implements the Backend interface for automated testing and batch processing
type Backend struct {
	config         backend.BackendConfig
	presented      bool
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig

	lastFrame   *video.FrameBuffer
	soundActive bool
	soundFrames int
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
	Text      bool   // Also write a text rendering next to each PNG
}

// New creates a headless backend that requests quit once maxFrames frames have run.
// The first Update presents the initial state and is not counted as a frame.
// A non-positive maxFrames runs until the machine stops on its own.
func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update processes a frame and handles snapshots
func (h *Backend) Update(frame *video.FrameBuffer, soundActive bool) ([]backend.InputEvent, error) {
	var events []backend.InputEvent

	if frame != nil {
		h.lastFrame = frame
	}

	if !h.presented {
		h.presented = true
		return events, nil
	}

	if soundActive != h.soundActive {
		slog.Debug("Sound state changed", "active", soundActive, "frame", h.frameCount)
		h.soundActive = soundActive
	}
	if soundActive {
		h.soundFrames++
	}

	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot()
	}

	// Log progress periodically
	if h.frameCount%60 == 0 {
		slog.Info("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.maxFrames > 0 && h.frameCount >= h.maxFrames {
		// Save final snapshot if enabled and we haven't just saved one
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot()
		}

		if h.snapshotConfig.Enabled {
			slog.Info("Headless execution completed", "frames", h.maxFrames, "snapshots_saved_to", h.snapshotConfig.Directory)
		} else {
			slog.Info("Headless execution completed", "frames", h.maxFrames)
		}

		// Signal completion via quit event
		events = append(events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	}

	return events, nil
}

func (h *Backend) Cleanup() error {
	slog.Info("Headless backend stopped", "frames", h.frameCount, "sound_frames", h.soundFrames)
	return nil
}

// FrameCount returns how many frames have run, not counting the initial presentation.
func (h *Backend) FrameCount() int { return h.frameCount }

// LastFrame returns the most recent frame presented.
func (h *Backend) LastFrame() *video.FrameBuffer { return h.lastFrame }

// SoundFrames returns the number of updates during which the sound signal was active.
func (h *Backend) SoundFrames() int { return h.soundFrames }

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	// Set up snapshot directory
	if directory == "" {
		tempDir, err := os.MkdirTemp("", "chip8-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	// Extract ROM name for snapshot filenames
	config.ROMName = filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(config.ROMName, filepath.Ext(config.ROMName))

	return config, nil
}

// saveSnapshot saves a PNG snapshot of the last presented frame
func (h *Backend) saveSnapshot() {
	if h.lastFrame == nil {
		return
	}

	baseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)
	if _, err := debug.SaveFramePNGToDir(h.lastFrame, baseName, h.snapshotConfig.Directory); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
	}

	if !h.snapshotConfig.Text {
		return
	}

	path := filepath.Join(h.snapshotConfig.Directory, baseName+".txt")
	file, err := os.Create(path)
	if err != nil {
		slog.Error("Failed to save text snapshot", "frame", h.frameCount, "error", err)
		return
	}
	defer file.Close()

	if err := debug.WriteTextSnapshot(file, h.lastFrame, h.config.Foreground, uint64(h.frameCount)); err != nil {
		slog.Error("Failed to save text snapshot", "frame", h.frameCount, "error", err)
	}
}
