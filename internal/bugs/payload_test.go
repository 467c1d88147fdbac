package bugs

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	b64 := base64.StdEncoding.EncodeToString(png)

	tests := []struct {
		name    string
		payload string
		want    []byte
		wantErr bool
	}{
		{name: "data url", payload: "data:image/png;base64," + b64, want: png},
		{name: "bare base64", payload: b64, want: png},
		{name: "surrounding whitespace", payload: "  " + b64 + "\n", want: png},
		{name: "data url with charset", payload: "data:text/plain;charset=utf-8;base64,aGk=", want: []byte("hi")},
		{name: "empty", payload: "", wantErr: true},
		{name: "garbage", payload: "not base64!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePayload(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodePayload(t *testing.T) {
	data := []byte("plain log line\n")

	encoded := EncodePayload("console.log", data)

	assert.True(t, strings.HasPrefix(encoded, "data:"), encoded)
	decoded, err := DecodePayload(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEncodePayload_UsesExtension(t *testing.T) {
	encoded := EncodePayload("shot.png", []byte{0x89, 'P', 'N', 'G'})

	assert.True(t, strings.HasPrefix(encoded, "data:image/png"), encoded)
}

func TestReadAttachments(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "shot.png")
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(shot, []byte{0x89, 'P', 'N', 'G'}, 0o600))
	require.NoError(t, os.WriteFile(notes, []byte("steps"), 0o600))

	got, err := ReadAttachments([]string{shot, notes})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "shot.png", got[0].Name)
	assert.True(t, strings.HasPrefix(got[0].Payload, "data:image/png;base64,"))
	assert.Equal(t, "notes.txt", got[1].Name)

	data, err := DecodePayload(got[1].Payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("steps"), data)
}

func TestReadAttachments_MissingFile(t *testing.T) {
	_, err := ReadAttachments([]string{filepath.Join(t.TempDir(), "gone.png")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.png")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadAttachments_None(t *testing.T) {
	got, err := ReadAttachments(nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}
