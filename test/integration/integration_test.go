package integration

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

type ROMTestCase struct {
	ROMPath   string
	MaxFrames int
	Name      string
}

func GetROMTests() []ROMTestCase {
	baseDir := "../../test-roms/chip8-test-suite"

	return []ROMTestCase{
		{
			ROMPath:   filepath.Join(baseDir, "1-chip8-logo.ch8"),
			MaxFrames: 60,
			Name:      "chip8-logo",
		},
		{
			ROMPath:   filepath.Join(baseDir, "2-ibm-logo.ch8"),
			MaxFrames: 60,
			Name:      "ibm-logo",
		},
		{
			ROMPath:   filepath.Join(baseDir, "3-corax+.ch8"),
			MaxFrames: 120,
			Name:      "corax+",
		},
		{
			ROMPath:   filepath.Join(baseDir, "4-flags.ch8"),
			MaxFrames: 120,
			Name:      "flags",
		},
	}
}

func assemble(opcodes ...uint16) []byte {
	out := make([]byte, 0, len(opcodes)*2)
	for _, op := range opcodes {
		out = append(out, byte(op>>8), byte(op))
	}
	return out
}

// runHeadless runs m through the main loop for maxFrames frames.
func runHeadless(t *testing.T, m *chip8.Machine, maxFrames int) *headless.Backend {
	t.Helper()

	b := headless.New(maxFrames, headless.SnapshotConfig{})
	require.NoError(t, b.Init(backend.BackendConfig{Title: t.Name()}))
	defer b.Cleanup()

	require.NoError(t, chip8.Run(context.Background(), m, b, timing.NewNoOpLimiter(), nil))
	return b
}

// screenData returns one byte per pixel, 1 for lit pixels.
func screenData(fb *video.FrameBuffer, fg video.Color) []byte {
	out := make([]byte, 0, fb.Width()*fb.Height())
	for y := uint(0); y < fb.Height(); y++ {
		for x := uint(0); x < fb.Width(); x++ {
			if fb.GetPixel(x, y) == uint32(fg) {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

func TestFontGlyphProgram(t *testing.T) {
	for digit := uint8(0); digit < 16; digit++ {
		t.Run(fmt.Sprintf("%X", digit), func(t *testing.T) {
			m := chip8.New(chip8.DefaultConfig())
			require.NoError(t, m.LoadROM(assemble(
				0x6000|uint16(digit), // LD V0, digit
				0x610A,               // LD V1, 10
				0x6205,               // LD V2, 5
				0xF029,               // LD F, V0
				0xD125,               // DRW V1, V2, 5
				0x120A,               // JP 0x20A
			)))

			b := runHeadless(t, m, 5)
			require.NotNil(t, b.LastFrame())

			cfg := m.Config()
			glyph := memory.Glyph(digit)
			for row := 0; row < memory.GlyphSize; row++ {
				for col := 0; col < 8; col++ {
					want := glyph[row]&(0x80>>col) != 0
					got := b.LastFrame().GetPixel(uint(10+col), uint(5+row)) == uint32(cfg.Foreground)
					assert.Equal(t, want, got, "pixel (%d,%d)", 10+col, 5+row)
				}
			}
			assert.NoError(t, m.Fault())
		})
	}
}

func TestDelayTimerProgram(t *testing.T) {
	m := chip8.New(chip8.DefaultConfig())
	require.NoError(t, m.LoadROM(assemble(
		0x601E, // 0x200: LD V0, 30
		0xF015, // 0x202: LD DT, V0
		0xF107, // 0x204: LD V1, DT
		0x3100, // 0x206: SE V1, 0
		0x1204, // 0x208: JP 0x204
		0x6000, // 0x20A: LD V0, 0
		0xF029, // 0x20C: LD F, V0
		0xD005, // 0x20E: DRW V0, V0, 5
		0x1210, // 0x210: JP 0x210
	)))

	fg := uint32(m.Config().Foreground)

	b := runHeadless(t, m, 10)
	require.NotNil(t, b.LastFrame())
	assert.NotEqual(t, fg, b.LastFrame().GetPixel(0, 0), "nothing is drawn while the delay timer runs")
	assert.False(t, m.Dirty())

	m.SetState(chip8.Running)
	b = runHeadless(t, m, 60)
	require.NotNil(t, b.LastFrame())
	assert.Equal(t, fg, b.LastFrame().GetPixel(0, 0))
}

func TestCallOverflowEndsRun(t *testing.T) {
	m := chip8.New(chip8.DefaultConfig())
	require.NoError(t, m.LoadROM(assemble(0x2200))) // CALL 0x200

	b := runHeadless(t, m, 1000)

	assert.ErrorIs(t, m.Fault(), cpu.ErrStackOverflow)
	assert.Equal(t, chip8.Quit, m.State())
	assert.Less(t, b.FrameCount(), 10)
}

func TestSoundTimerProgram(t *testing.T) {
	m := chip8.New(chip8.DefaultConfig())
	require.NoError(t, m.LoadROM(assemble(
		0x6005, // LD V0, 5
		0xF018, // LD ST, V0
		0x1204, // JP 0x204
	)))

	b := runHeadless(t, m, 30)

	// ST is set and ticked once in the first frame, so it stays active for 4 presentations.
	assert.Equal(t, 4, b.SoundFrames())
	assert.False(t, m.SoundActive())
}

func runROMTest(t *testing.T, testCase ROMTestCase) {
	if _, err := os.Stat(testCase.ROMPath); os.IsNotExist(err) {
		t.Skipf("Test ROM not found: %s", testCase.ROMPath)
	}

	t.Logf("Running ROM test: %s (%s)", testCase.Name, testCase.ROMPath)
	m, err := chip8.NewWithFile(testCase.ROMPath, chip8.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create machine: %v", err)
	}

	b := runHeadless(t, m, testCase.MaxFrames)
	if fault := m.Fault(); fault != nil {
		t.Fatalf("Machine fault: %v", fault)
	}

	fb := m.Frame()
	binaryData := screenData(fb, m.Config().Foreground)
	hash := fmt.Sprintf("%x", md5.Sum(binaryData))
	t.Logf("Ran %d frames", b.FrameCount())

	screenDataPath := filepath.Join("testdata", fmt.Sprintf("%s.bin", testCase.Name))
	snapshotDir := filepath.Join("testdata", "snapshots")

	if os.Getenv("CHIP8_GENERATE_GOLDEN") == "true" {
		if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
			t.Fatalf("Failed to create snapshots directory: %v", err)
		}
		if err := os.WriteFile(screenDataPath, binaryData, 0o644); err != nil {
			t.Fatalf("Failed to write screen data file: %v", err)
		}
		if _, err := debug.SaveFramePNGToDir(fb, testCase.Name, snapshotDir); err != nil {
			t.Fatalf("Failed to write snapshot PNG file: %v", err)
		}
		t.Logf("Reference files generated - hash: %s", hash)
		return
	}

	expectedData, err := os.ReadFile(screenDataPath)
	if os.IsNotExist(err) {
		t.Skipf("Screen data file not found: %s. Run with CHIP8_GENERATE_GOLDEN=true to generate it.", screenDataPath)
	}
	require.NoError(t, err)

	expectedHash := fmt.Sprintf("%x", md5.Sum(expectedData))
	if hash != expectedHash {
		actualPath, _ := debug.SaveFramePNGToDir(fb, testCase.Name+"_actual", t.TempDir())
		t.Errorf("Test output differs from expected\n  Expected hash: %s\n  Actual hash:   %s\n  Snapshot:      %s",
			expectedHash, hash, actualPath)
	}
}

func TestROMSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping ROM tests in short mode")
	}

	for _, testCase := range GetROMTests() {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()
			runROMTest(t, testCase)
		})
	}
}
