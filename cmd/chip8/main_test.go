package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/memory"
)

func writeROM(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestWriteDisassembly(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeDisassembly(&buf, []byte{0x00, 0xE0, 0x12, 0x00}))

	assert.Equal(t, "0x200  00E0  CLS\n0x202  1200  JP 0x200\n", buf.String())
}

func TestWriteDisassembly_TooLarge(t *testing.T) {
	err := writeDisassembly(&bytes.Buffer{}, make([]byte, memory.MaxROMSize+1))
	assert.ErrorIs(t, err, memory.ErrROMTooLarge)
}

func TestDisasmCommand(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	err := app.Run([]string{"chip8", "disasm", writeROM(t, []byte{0x60, 0x05})})

	require.NoError(t, err)
	assert.Equal(t, "0x200  6005  LD V0, 0x05\n", buf.String())
}

func TestRunHeadless(t *testing.T) {
	app := newApp()
	rom := writeROM(t, []byte{0x12, 0x00})

	err := app.Run([]string{"chip8", "--backend", "headless", "--frames", "5", rom})

	assert.NoError(t, err)
}

func TestRunHeadless_Fault(t *testing.T) {
	app := newApp()
	rom := writeROM(t, []byte{0x00, 0xEE})

	err := app.Run([]string{"chip8", "--backend", "headless", "--frames", "5", rom})

	assert.ErrorContains(t, err, "machine fault")
}

func TestRunErrors(t *testing.T) {
	rom := writeROM(t, []byte{0x12, 0x00})

	tests := []struct {
		name string
		args []string
	}{
		{"headless without frames", []string{"--backend", "headless", rom}},
		{"unknown backend", []string{"--backend", "vga", rom}},
		{"unknown limiter", []string{"--limiter", "spin", rom}},
		{"bad color", []string{"--fg", "nope", rom}},
		{"same colors", []string{"--fg", "000000", "--bg", "000000", rom}},
		{"ips too low", []string{"--ips", "10", rom}},
		{"missing rom", []string{"--backend", "headless", "--frames", "1", filepath.Join(t.TempDir(), "missing.ch8")}},
		{"empty rom", []string{"--backend", "headless", "--frames", "1", writeROM(t, nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Writer = &bytes.Buffer{}
			err := app.Run(append([]string{"chip8"}, tt.args...))
			assert.Error(t, err)
		})
	}
}
