package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// New creates an empty manifest with defaults.
func New(profileName string) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		BasePath:    "./",
		Sprites:     make(map[string]Sprite),
	}
}

// ComputeStats recalculates aggregate statistics from sprites. Source
// bytes of an image file placed several times are counted once.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalSprites = len(m.Sprites)
	seen := make(map[string]bool)
	for _, sp := range m.Sprites {
		s.TotalOutputBytes += sp.Size
		if sp.Legacy != nil {
			s.LegacyVariants++
			s.TotalOutputBytes += sp.Legacy.Size
		}
		s.TotalImages += len(sp.Images)
		for _, img := range sp.Images {
			if img.Shared {
				s.SharedImages++
			}
			if !seen[img.Path] {
				seen[img.Path] = true
				s.TotalInputBytes += img.Size
			}
		}
	}
	m.Stats = s
}

// WriteJSON serializes the manifest to a JSON file with stable ordering.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// Read loads a manifest written by WriteJSON.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
