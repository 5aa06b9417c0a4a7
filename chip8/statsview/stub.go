//go:build !statsview

package statsview

import (
	"context"
	"fmt"
	"io"
)

const Address = ""

// Launch reports that the stats server was not built in. Nothing is started.
func Launch(ctx context.Context, output io.Writer, source RateSource) {
	fmt.Fprintln(output, "stats server not available - build with -tags statsview to enable")
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
