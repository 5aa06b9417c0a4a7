package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bradleyjkemp/memviz"
)

// WriteStateGraph writes a Graphviz dot description of the debug data to w.
func WriteStateGraph(w io.Writer, data *Data) error {
	if data == nil {
		return fmt.Errorf("no debug data to dump")
	}

	memviz.Map(w, data)
	return nil
}

// DumpStateGraph writes the state graph to a timestamped .dot file in directory
// (the working directory if empty) and returns its path.
func DumpStateGraph(data *Data, directory string) (string, error) {
	if directory == "" {
		directory = "."
	}

	filePath := filepath.Join(directory, fmt.Sprintf("chip8_state_%s.dot", time.Now().Format("20060102_150405")))
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := WriteStateGraph(file, data); err != nil {
		return "", err
	}

	slog.Info("State graph saved", "path", filePath, "render", "dot -Tsvg "+filePath)
	return filePath, nil
}
