package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	resumeFile = "resume.json"
)

// ResumeState records the conversation the user last worked with.
type ResumeState struct {
	// ConversationID identifies the conversation to resume.
	ConversationID string `json:"conversation_id"`

	// Namespace is the storage scope the conversation lives in.
	Namespace string `json:"namespace,omitempty"`

	// Files and URLs are the inputs the conversation was last opened with,
	// kept so a resumed request reconstructs the same identity.
	Files []string `json:"files"`
	URLs  []string `json:"urls"`
}

// LoadResumeState loads the resume state from a target .gista/resume.json.
// Returns nil, nil if no resume state exists.
// If overrideDir is non-empty, it is used instead of the default ~/.gista/ location.
func (m *Manager) LoadResumeState(overrideDir string) (*ResumeState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, resumeFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading resume state: %w", err)
	}

	state := &ResumeState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing resume state: %w", err)
	}

	return state, nil
}

// SaveResumeState persists the resume state to a target .gista/resume.json.
func (m *Manager) SaveResumeState(state *ResumeState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil resume state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding resume state: %w", err)
	}

	path := filepath.Join(dir, resumeFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing resume state: %w", err)
	}

	return nil
}

// ClearResumeState removes any persisted resume state. Clearing when none
// exists is a no-op.
func (m *Manager) ClearResumeState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(dir, resumeFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing resume state: %w", err)
	}
	return nil
}
