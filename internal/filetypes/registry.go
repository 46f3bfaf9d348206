// Package filetypes resolves content types for inline preview. Known
// extensions come from an embedded YAML table; anything else falls back
// to the platform MIME database and finally to a generic binary type.
package filetypes

import (
	"embed"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// DefaultContentType is served for unknown extensions
const DefaultContentType = "application/octet-stream"

// Registry maps file extensions to MIME content types
type Registry struct {
	types map[string]string
	mu    sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded YAML table
func NewRegistry() (*Registry, error) {
	r := &Registry{
		types: make(map[string]string),
	}

	if err := r.loadFile("config/types.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load content types: %w", err)
	}

	return r, nil
}

// loadFile loads an extension-to-MIME YAML file
func (r *Registry) loadFile(filename string) error {
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var table struct {
		Types map[string]string `yaml:"types"`
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	r.mu.Lock()
	for ext, contentType := range table.Types {
		r.types[strings.ToLower(ext)] = contentType
	}
	r.mu.Unlock()

	return nil
}

// Lookup returns the content type for a filename
func (r *Registry) Lookup(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return DefaultContentType
	}

	r.mu.RLock()
	contentType, ok := r.types[ext]
	r.mu.RUnlock()
	if ok {
		return contentType
	}

	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}

	return DefaultContentType
}
