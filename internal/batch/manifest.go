package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry describes one rendered preview frame.
type ManifestEntry struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
	Image string  `json:"image"`
	Error string  `json:"error,omitempty"`
}

// WriteManifest writes entries as indented JSON.
func WriteManifest(path string, entries []ManifestEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
