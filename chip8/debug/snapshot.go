package debug

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-chip8/chip8/video"
)

// TakeSnapshot handles the snapshot hotkey for backends, saving to the working directory.
func TakeSnapshot(frame *video.FrameBuffer) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}

	if _, err := SaveFramePNGToDir(frame, "chip8_snapshot", ""); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// FrameImage converts a framebuffer to an image, each pixel scaled to a scale×scale block.
func FrameImage(frame *video.FrameBuffer, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	width, height := int(frame.Width()), int(frame.Height())
	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := video.Color(frame.GetPixel(uint(x), uint(y))).RGBA()
			c := color.RGBA{R: r, G: g, B: b, A: a}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetRGBA(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}

	return img
}

// SaveFramePNGToDir saves a framebuffer as PNG with timestamp to a specific directory
// and returns the path written. An empty directory means the working directory.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, FrameImage(frame, 1)); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", frame.Width(), frame.Height()), "format", "PNG")
	return filePath, nil
}

// WriteTextSnapshot writes the frame as text, one character per pixel.
// Pixels matching fg are drawn as '█', everything else as '·'.
func WriteTextSnapshot(w io.Writer, frame *video.FrameBuffer, fg video.Color, frameNumber uint64) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# CHIP-8 Frame Snapshot\n")
	fmt.Fprintf(bw, "# Frame: %d\n", frameNumber)
	fmt.Fprintf(bw, "# Resolution: %dx%d pixels\n", frame.Width(), frame.Height())
	fmt.Fprintf(bw, "# Legend: █=on ·=off\n")
	fmt.Fprintf(bw, "#\n")

	for y := uint(0); y < frame.Height(); y++ {
		for x := uint(0); x < frame.Width(); x++ {
			if frame.GetPixel(x, y) == uint32(fg) {
				bw.WriteRune('█')
			} else {
				bw.WriteRune('·')
			}
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}
