package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Settings edits the settings file directly, without environment overrides,
// so values written are exactly what the user asked to persist.
type Settings struct {
	path string
	k    *koanf.Koanf
}

// OpenSettings reads the settings file at path. A missing file yields empty
// settings that Save will create.
func OpenSettings(path string) (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &Settings{path: path, k: k}, nil
}

// Path returns the settings file location.
func (s *Settings) Path() string {
	return s.path
}

// MondayToken returns the saved token.
func (s *Settings) MondayToken() string {
	return s.k.String("monday.token")
}

// Selection returns the saved board and group ids.
func (s *Settings) Selection() (boardID, groupID string) {
	return s.k.String("board.id"), s.k.String("board.group_id")
}

// SetToken stores a token. Changing the token clears the board selection,
// since boards belong to an account.
func (s *Settings) SetToken(token string) error {
	if token != s.MondayToken() {
		s.k.Delete("board")
	}
	return s.k.Set("monday.token", token)
}

// SetSelection stores the board and group to file into.
func (s *Settings) SetSelection(boardID, groupID string) error {
	if err := s.k.Set("board.id", boardID); err != nil {
		return err
	}
	return s.k.Set("board.group_id", groupID)
}

// Set stores an arbitrary dotted key.
func (s *Settings) Set(key string, value interface{}) error {
	return s.k.Set(key, value)
}

// All returns a flat copy of every stored key.
func (s *Settings) All() map[string]interface{} {
	return s.k.All()
}

// Save writes the settings file with owner-only permissions.
func (s *Settings) Save() error {
	data, err := s.k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the settings file and forgets every stored value.
func (s *Settings) Clear() error {
	s.k = koanf.New(".")
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}
	return nil
}
