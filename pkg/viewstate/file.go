package viewstate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// FileVersion is the current on-disk format.
const FileVersion = 1

type fileFormat struct {
	Version   int      `json:"version"`
	Workspace string   `json:"workspace"`
	Open      []string `json:"open"`
}

// DefaultPath returns the state file for a workspace directory:
// <user config dir>/jsonsync/state/<hash>.json.
func DefaultPath(workspace string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(dir, "jsonsync", "state", hex.EncodeToString(sum[:8])+".json"), nil
}

// Save writes the open-group set to path.
func (s *State) Save(path, workspace string) error {
	data, err := json.MarshalIndent(fileFormat{
		Version:   FileVersion,
		Workspace: workspace,
		Open:      s.OpenIDs(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write view state: %w", err)
	}
	return nil
}

// LoadState reads a state file. A missing, corrupt or foreign-version
// file yields a fresh state; only unexpected read errors are returned.
func LoadState(path string) (*State, error) {
	s := New()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read view state: %w", err)
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil || f.Version != FileVersion {
		return s, nil
	}
	for _, id := range f.Open {
		s.open[id] = true
	}
	return s, nil
}
