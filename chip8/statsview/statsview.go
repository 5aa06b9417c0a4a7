//go:build statsview

package statsview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const Address = "localhost:12600"
const url = "/debug/statsview"

// monitorInterval matches the one second refresh of the runtime charts.
const monitorInterval = time.Second

// Launch serves the runtime charts and logs the machine's frame and
// instruction rates once per second until ctx is done.
func Launch(ctx context.Context, output io.Writer, source RateSource) {
	viewer.SetConfiguration(viewer.WithAddr(Address))

	go func() {
		mgr := statsview.New()
		mgr.Start()
		slog.Warn("Stats server stopped")
	}()

	if source != nil {
		go Monitor(ctx, source, monitorInterval)
	}

	fmt.Fprintf(output, "stats server available at %s%s\n", Address, url)
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return true
}
