package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogRotation moves an oversized or stale log file aside before it is
// reopened. Rotation only happens at startup.
type LogRotation struct {
	maxSize int64
	maxAge  time.Duration
}

var DefaultRotation = NewLogRotation(50<<20, 7*24*time.Hour)

func NewLogRotation(maxSize int64, maxAge time.Duration) *LogRotation {
	return &LogRotation{
		maxSize: maxSize,
		maxAge:  maxAge,
	}
}

func (lr *LogRotation) ShouldRotate(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return false
	}

	if info.Size() >= lr.maxSize {
		return true
	}

	return time.Since(info.ModTime()) >= lr.maxAge
}

func (lr *LogRotation) Rotate(path string) (string, error) {
	timestamp := time.Now().Format("20060102-150405")
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	newPath := fmt.Sprintf("%s-%s%s", base, timestamp, ext)
	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("failed to rotate %s: %w", path, err)
	}
	return newPath, nil
}
