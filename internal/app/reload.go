package app

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// BinaryWatcher notices when the running executable is rebuilt, so a
// development session can offer a restart.
type BinaryWatcher struct {
	path     string
	baseline time.Time
}

// NewBinaryWatcher watches path, or the current executable when path is
// empty. It returns nil if the file cannot be found.
func NewBinaryWatcher(path string) *BinaryWatcher {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil
		}
		path = exe
	}
	// go build replaces the file behind any symlink
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return &BinaryWatcher{path: path, baseline: info.ModTime()}
}

// Changed reports whether the binary is newer than the baseline.
func (w *BinaryWatcher) Changed() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	return info.ModTime().After(w.baseline)
}

// Accept makes the current binary the new baseline.
func (w *BinaryWatcher) Accept() {
	if info, err := os.Stat(w.path); err == nil {
		w.baseline = info.ModTime()
	}
}

// Watch polls every interval and calls onChange once when the binary
// changes. It returns when ctx is done or after onChange.
func (w *BinaryWatcher) Watch(ctx context.Context, interval time.Duration, onChange func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.Changed() {
				onChange()
				return
			}
		}
	}
}

// Restart replaces the process with the new binary, keeping arguments and
// environment. It does not return on success.
func (w *BinaryWatcher) Restart() error {
	return syscall.Exec(w.path, os.Args, os.Environ())
}
