package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Marker records migration completion per user as a small file on disk, so
// the application can tell on startup whether this user's dataset already
// lives remotely without asking the server.
type Marker struct {
	dir string
}

// NewMarker stores completion files under dir, creating it on first write.
func NewMarker(dir string) *Marker { return &Marker{dir: dir} }

func (m *Marker) path(user string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, user)
	return filepath.Join(m.dir, fmt.Sprintf("migrated-%s", safe))
}

// Complete writes the user's completion marker.
func (m *Marker) Complete(user string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}
	body := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(m.path(user), []byte(body), 0o644); err != nil {
		return fmt.Errorf("write migration marker: %w", err)
	}
	return nil
}

// IsComplete reports whether the user has a completion marker.
func (m *Marker) IsComplete(user string) bool {
	_, err := os.Stat(m.path(user))
	return err == nil
}

// Clear removes the user's marker, e.g. when the remote dataset was
// replaced from another device.
func (m *Marker) Clear(user string) error {
	err := os.Remove(m.path(user))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
