package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shrutikmk/startgg-match-insights/internal/pipeline"
)

// DefaultBundleName is the default JSON bundle filename.
const DefaultBundleName = "players.json"

// WriteJSON serializes a bundle to <outDir>/<name>, creating the directory
// when needed. Returns the written path.
func WriteJSON(bundle *pipeline.Bundle, outDir, name string) (string, error) {
	if name == "" {
		name = DefaultBundleName
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal bundle: %w", err)
	}

	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write bundle: %w", err)
	}
	return path, nil
}

// ReadJSON loads a bundle previously written by WriteJSON.
func ReadJSON(path string) (*pipeline.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var bundle pipeline.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &bundle, nil
}
