package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct{ token string }

func (f fakeSettings) MondayToken() string { return f.token }

type failingProvider struct{ msg string }

func (f failingProvider) GetToken() (string, error) { return "", errors.New(f.msg) }

func TestCredential_Present(t *testing.T) {
	assert.False(t, Credential{}.Present())
	assert.False(t, New("   ").Present())
	assert.True(t, New("abc").Present())
	assert.Equal(t, "abc", New("  abc\n").Token())
}

func TestCredential_StringMasksToken(t *testing.T) {
	assert.Equal(t, "<not set>", Credential{}.String())
	assert.Equal(t, "<set>", New("abcd").String())
	assert.Equal(t, "eyJh...***", New("eyJhbGciOiJIUzI1NiJ9").String())
}

func TestEnvProvider_GetToken_Success(t *testing.T) {
	t.Setenv(TokenEnvVar, "monday_test_token_123")

	provider := &EnvProvider{}
	token, err := provider.GetToken()

	require.NoError(t, err)
	assert.Equal(t, "monday_test_token_123", token)
}

func TestEnvProvider_GetToken_Missing(t *testing.T) {
	t.Setenv(TokenEnvVar, "")

	provider := &EnvProvider{}
	token, err := provider.GetToken()

	assert.Error(t, err)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), TokenEnvVar)
}

func TestSettingsProvider_GetToken(t *testing.T) {
	token, err := (&SettingsProvider{Settings: fakeSettings{token: "saved"}}).GetToken()
	require.NoError(t, err)
	assert.Equal(t, "saved", token)

	_, err = (&SettingsProvider{Settings: fakeSettings{}}).GetToken()
	assert.Error(t, err)

	_, err = (&SettingsProvider{}).GetToken()
	assert.Error(t, err)
}

func TestResolve_FirstProviderWins(t *testing.T) {
	cred, err := Resolve(
		failingProvider{msg: "env empty"},
		&SettingsProvider{Settings: fakeSettings{token: "from-settings"}},
	)

	require.NoError(t, err)
	assert.Equal(t, "from-settings", cred.Token())
}

func TestResolve_AllFail(t *testing.T) {
	cred, err := Resolve(failingProvider{msg: "env empty"}, failingProvider{msg: "no file"})

	require.Error(t, err)
	assert.False(t, cred.Present())
	assert.Contains(t, err.Error(), "env empty")
	assert.Contains(t, err.Error(), "no file")
	assert.Contains(t, err.Error(), "bugdrop config set-token")
}

func TestTokenProvider_Interface(t *testing.T) {
	// Verify both implementations satisfy the interface
	var _ TokenProvider = &EnvProvider{}
	var _ TokenProvider = &SettingsProvider{}
}
