// Package autoreload restarts a running server when its binary is replaced.
// When the file behind the /proc/self/exe symlink is swapped out, the process execs the new version
// of the binary. Flags and Environment variables are preserved.
// Only works on Linux. (Maybe other Unixes?)
package autoreload

import (
	"context"
	"os"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const deleted = " (deleted)"

// replaced reports the path of the new binary if link says the running one has been deleted.
func replaced(link string) (string, bool) {
	return strings.CutSuffix(link, deleted)
}

// Watch checks every so often whether the binary changed and execs it if it has. It returns when
// ctx is done or the exec failed.
func Watch(ctx context.Context, log *zap.Logger, every time.Duration) {
	s, _ := os.Readlink("/proc/self/exe")
	log.Info("will restart with the same flags and environment when the binary changes", zap.String("binary", s))

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		s, err := os.Readlink("/proc/self/exe")
		if err != nil {
			log.Warn("couldn't read the binary path", zap.Error(err))
			continue
		}
		if p, ok := replaced(s); ok {
			log.Info("restarting", zap.String("binary", p))
			if err := syscall.Exec(p, os.Args, os.Environ()); err != nil {
				log.Error("autoreload failed", zap.String("binary", p), zap.Error(err))
				return
			}
		}
	}
}
