//go:build !linux

package capture

import (
	"fmt"
	"runtime"

	"firestige.xyz/pcapreport/internal/core"
)

// OpenAFPacket is only available on linux.
func OpenAFPacket(opts Options) (Source, error) {
	return nil, fmt.Errorf("%w: af_packet is not supported on %s", core.ErrCaptureUnavailable, runtime.GOOS)
}
