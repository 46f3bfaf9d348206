package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	logFilePrefix = "vault-"
	logFileSuffix = ".log"

	// maxKeptLogFiles bounds local disk usage across restarts.
	maxKeptLogFiles = 10
)

// OpenLogFile opens a timestamped log file under dir for this process run
// and prunes runs older than the retention window. The caller owns the
// returned handle. Opened in append mode so two starts within the same
// second share a file instead of truncating each other.
func OpenLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := logFilePrefix + time.Now().Format("20060102-150405") + logFileSuffix
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	if err := pruneLogFiles(dir, maxKeptLogFiles); err != nil {
		// Pruning is housekeeping; a failure must not take down startup.
		slog.Warn("failed to prune old log files", "dir", dir, "error", err)
	}

	return f, nil
}

// pruneLogFiles deletes the oldest log files in dir, keeping at most keep.
// The timestamp in the filename makes lexical order chronological.
func pruneLogFiles(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var runs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, logFileSuffix) {
			continue
		}
		runs = append(runs, name)
	}

	if len(runs) <= keep {
		return nil
	}

	sort.Strings(runs)
	for _, name := range runs[:len(runs)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}

	return nil
}
