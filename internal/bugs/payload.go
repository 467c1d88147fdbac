package bugs

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/vincent-petithory/dataurl"
)

// ErrEmptyPayload is returned for an attachment with no content.
var ErrEmptyPayload = errors.New("attachment payload is empty")

// DecodePayload turns an attachment payload into bytes. It accepts an
// RFC 2397 data URL or bare standard base64.
func DecodePayload(payload string) ([]byte, error) {
	p := strings.TrimSpace(payload)
	if p == "" {
		return nil, ErrEmptyPayload
	}

	if strings.HasPrefix(p, "data:") {
		du, err := dataurl.DecodeString(p)
		if err != nil {
			return nil, fmt.Errorf("invalid data URL: %w", err)
		}
		return du.Data, nil
	}

	data, err := base64.StdEncoding.DecodeString(p)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}

// EncodePayload wraps file contents as a data URL. The media type comes from
// the file extension, falling back to content sniffing.
func EncodePayload(name string, data []byte) string {
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	// dataurl wants the bare type; parameters are passed separately.
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = mt
	}
	return dataurl.New(data, mediaType).String()
}

// ReadAttachments reads each path and encodes it as an attachment named after
// the file's base name. It fails on the first unreadable path so nothing is
// filed with a silently missing file.
func ReadAttachments(paths []string) ([]domain.Attachment, error) {
	attachments := make([]domain.Attachment, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %s: %w", p, err)
		}
		name := filepath.Base(p)
		attachments = append(attachments, domain.Attachment{
			Name:    name,
			Payload: EncodePayload(name, data),
		})
	}
	return attachments, nil
}
