// Package tools wraps the external programs used for rasterization and
// document conversion.
package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// commandRunner runs name with args and returns the combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// runWithTimeout bounds run by timeout; zero means no bound.
func runWithTimeout(ctx context.Context, run commandRunner, timeout time.Duration, name string, args ...string) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := run(ctx, name, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
