// Package auth provides monday.com API token management.
// It implements a simple interface with multiple providers following the
// "deep modules" principle - simple interface, complex implementation hidden.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// TokenEnvVar is the environment variable read by EnvProvider.
const TokenEnvVar = "MONDAY_TOKEN"

// Credential wraps an opaque monday API token.
// The zero value is an absent credential.
type Credential struct {
	token string
}

// New wraps token in a Credential. Surrounding whitespace is dropped.
func New(token string) Credential {
	return Credential{token: strings.TrimSpace(token)}
}

// Present reports whether a non-empty token is held.
func (c Credential) Present() bool {
	return c.token != ""
}

// Token returns the raw token.
func (c Credential) Token() string {
	return c.token
}

// String masks the token so a Credential can be logged safely.
func (c Credential) String() string {
	if c.token == "" {
		return "<not set>"
	}
	if len(c.token) <= 4 {
		return "<set>"
	}
	return c.token[:4] + "..." + strings.Repeat("*", 3)
}

// TokenProvider defines the interface for obtaining a monday API token.
// Implementations may use different sources (environment, settings file, etc).
type TokenProvider interface {
	GetToken() (string, error)
}

// EnvProvider obtains tokens from the MONDAY_TOKEN environment variable.
type EnvProvider struct{}

// GetToken reads the MONDAY_TOKEN environment variable.
// Returns an error if the variable is not set or is empty.
func (e *EnvProvider) GetToken() (string, error) {
	token := strings.TrimSpace(os.Getenv(TokenEnvVar))
	if token == "" {
		return "", errors.New(TokenEnvVar + " environment variable not set or empty")
	}
	return token, nil
}

// SettingsReader is the slice of the settings store the provider needs.
type SettingsReader interface {
	MondayToken() string
}

// SettingsProvider obtains tokens from the persisted settings file.
type SettingsProvider struct {
	Settings SettingsReader
}

// GetToken returns the token saved with `bugdrop config set-token`.
func (s *SettingsProvider) GetToken() (string, error) {
	if s.Settings == nil {
		return "", errors.New("no settings loaded")
	}
	token := strings.TrimSpace(s.Settings.MondayToken())
	if token == "" {
		return "", errors.New("no token saved in settings")
	}
	return token, nil
}

// Resolve tries each provider in order and returns the first token found.
// When every provider fails, the error lists each failure and how to fix it.
func Resolve(providers ...TokenProvider) (Credential, error) {
	var failures []string
	for _, p := range providers {
		token, err := p.GetToken()
		if err == nil {
			return New(token), nil
		}
		failures = append(failures, err.Error())
	}

	return Credential{}, fmt.Errorf(
		"failed to obtain monday.com token (%s).\n"+
			"Please either:\n"+
			"  1. Run 'bugdrop config set-token <token>' to save a token, or\n"+
			"  2. Set the %s environment variable with a personal API token",
		strings.Join(failures, "; "), TokenEnvVar,
	)
}
