// Package layout loads the poster template and infers the drawing region
// behind each chart placeholder. The template is plain text to us; markers
// look like {{NAME}} and region sizes are read off nearby rectangle
// primitives.
package layout

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Manager owns the template text. The content is immutable between
// explicit Reload calls, so concurrent readers never need a copy.
type Manager struct {
	path string

	mu      sync.RWMutex
	content string
}

// NewManager reads the template at path. A missing or unreadable template
// is the one fatal precondition of poster generation.
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads the template from disk. Callers serialize reloads with
// respect to in-flight generation themselves; the manager only guards the
// content swap.
func (m *Manager) Reload() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("poster template not found: %s: %w", m.path, err)
	}

	m.mu.Lock()
	m.content = string(data)
	m.mu.Unlock()

	slog.Info("poster template loaded", "path", m.path, "bytes", len(data))
	return nil
}

// Path returns the template file path.
func (m *Manager) Path() string {
	return m.path
}

// Content returns the current template text.
func (m *Manager) Content() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.content
}

// Compose substitutes every replacement into the text. Keys may be given
// bare ("DISTANCE") or already delimited ("{{DISTANCE}}"). Markers with no
// matching replacement are left untouched so callers can omit optional
// fragments.
func Compose(text string, replacements map[string]string) string {
	for key, value := range replacements {
		marker := key
		if !strings.HasPrefix(marker, "{{") || !strings.HasSuffix(marker, "}}") {
			marker = "{{" + marker + "}}"
		}
		text = strings.ReplaceAll(text, marker, value)
	}
	return text
}

// ComposePoster applies the replacements to the current template content.
func (m *Manager) ComposePoster(replacements map[string]string) string {
	return Compose(m.Content(), replacements)
}
