package mcp

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// DefaultWatchInterval is how often WatchParent polls the parent pid.
const DefaultWatchInterval = 2 * time.Second

var getppid = os.Getppid

// WatchParent calls cancel when the process that launched the server goes
// away, so an orphaned stdio server does not linger after the host exits.
//
// It never reads stdin: the stdio transport owns it, and stolen bytes would
// corrupt the JSON-RPC stream. The goroutine exits when ctx is done.
func WatchParent(ctx context.Context, cancel context.CancelFunc, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ppid := getppid()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if now := getppid(); now != ppid {
					logger.Warn("parent process exited, shutting down", "old_ppid", ppid, "ppid", now)
					cancel()
					return
				}
			}
		}
	}()
}
