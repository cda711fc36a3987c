// internal/snipelist/snipelist.go
// Package snipelist holds the optional allow-list of token mints the listener acts on.
package snipelist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// DefaultFileName is the file looked up next to the executable when no path is configured.
const DefaultFileName = "snipe-list.txt"

// snapshot is an immutable view of one loaded file.
type snapshot struct {
	entries []string
	index   map[string]struct{}
}

// List is a newline-delimited allow-list that is replaced wholesale on every load.
type List struct {
	enabled bool
	path    string
	logger  *zap.Logger
	current atomic.Pointer[snapshot]
}

// New creates a list. When enabled is false every key is accepted and Load is a no-op.
func New(enabled bool, path string, logger *zap.Logger) *List {
	l := &List{
		enabled: enabled,
		path:    path,
		logger:  logger.Named("snipe-list"),
	}
	l.current.Store(&snapshot{index: map[string]struct{}{}})
	return l
}

// DefaultPath returns DefaultFileName resolved against the running executable's directory.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// Enabled reports whether allow-list mode is on.
func (l *List) Enabled() bool {
	return l.enabled
}

// Load reads the file and swaps in its entries. A read failure leaves the previous entries in place.
func (l *List) Load() error {
	if !l.enabled {
		return nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("failed to read snipe list %s: %w", l.path, err)
	}

	entries := Parse(string(data))
	snap := &snapshot{
		entries: entries,
		index:   make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		snap.index[e] = struct{}{}
		if !isMintAddress(e) {
			l.logger.Warn("Snipe list entry is not a valid mint address", zap.String("entry", e))
		}
	}
	l.current.Store(snap)

	l.logger.Info(fmt.Sprintf("Loaded snipe list: %d", len(entries)))
	return nil
}

// Contains reports whether key passes the allow-list.
func (l *List) Contains(key string) bool {
	if !l.enabled {
		return true
	}
	_, ok := l.current.Load().index[key]
	return ok
}

// Entries returns a copy of the current entries in file order.
func (l *List) Entries() []string {
	snap := l.current.Load()
	out := make([]string, len(snap.entries))
	copy(out, snap.entries)
	return out
}

// Len returns the number of loaded entries.
func (l *List) Len() int {
	return len(l.current.Load().entries)
}

// Run reloads the list every interval until ctx is done. It returns immediately when the list is disabled.
func (l *List) Run(ctx context.Context, interval time.Duration) {
	if !l.enabled || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.Load(); err != nil {
				l.logger.Error("Failed to reload snipe list", zap.Error(err))
			}
		}
	}
}

// Parse splits raw file content into trimmed, non-empty entries.
func Parse(raw string) []string {
	lines := strings.Split(raw, "\n")
	entries := make([]string, 0, len(lines))
	for _, line := range lines {
		if e := strings.TrimSpace(line); e != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func isMintAddress(s string) bool {
	b, err := base58.Decode(s)
	return err == nil && len(b) == 32
}
