package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const stateFile = "state.json"

// State is editor state remembered between runs.
type State struct {
	LastCutscene string `json:"last_cutscene,omitempty"`
}

func statePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "cutscenes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFile), nil
}

func Save(s State) error {
	path, err := statePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the saved state; a missing file is an empty state.
func Load() (State, error) {
	path, err := statePath()
	if err != nil {
		return State{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	return s, nil
}

// RememberCutscene records id as the last opened cutscene.
func RememberCutscene(id string) error {
	s, err := Load()
	if err != nil {
		s = State{}
	}
	s.LastCutscene = id
	return Save(s)
}
