package providers

import (
	"fmt"
	"os"
	"time"
)

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// sseHeartbeat keeps idle event streams alive through proxies.
	sseHeartbeat = 30 * time.Second
)

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
