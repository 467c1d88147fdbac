package bugs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/h0rv/bugdrop/internal/domain"
	"go.uber.org/zap"
)

// AttachmentsUpdateBody is the body of the container update files are added to.
const AttachmentsUpdateBody = "Attachments"

// UploadAPI is the subset of the monday client the uploader needs.
type UploadAPI interface {
	CreateUpdate(ctx context.Context, itemID, body string) (domain.Update, error)
	AddFileToUpdate(ctx context.Context, updateID, name string, data []byte) (domain.Asset, error)
}

// AttachmentOutcome is the result of uploading one attachment.
type AttachmentOutcome struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	AssetID string `json:"assetId,omitempty"`
	Err     error  `json:"-"`
}

// OK reports whether the file was stored.
func (o AttachmentOutcome) OK() bool {
	return o.Err == nil
}

// MarshalJSON adds the upload status so a single outcome reads on its own.
func (o AttachmentOutcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Index   int    `json:"index"`
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		AssetID string `json:"assetId,omitempty"`
		Error   string `json:"error,omitempty"`
	}{
		Index:   o.Index,
		Name:    o.Name,
		OK:      o.OK(),
		AssetID: o.AssetID,
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

// AttachResult holds the container update and one outcome per input file,
// in input order.
type AttachResult struct {
	UpdateID string
	Outcomes []AttachmentOutcome
}

// Failed returns the outcomes that did not upload.
func (r AttachResult) Failed() []AttachmentOutcome {
	var failed []AttachmentOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Uploader adds files to an item through a single container update.
type Uploader struct {
	api    UploadAPI
	logger *zap.Logger
}

// NewUploader creates an uploader. A nil logger discards output.
func NewUploader(api UploadAPI, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{api: api, logger: logger}
}

// Attach creates the container update on itemID and uploads files into it
// one at a time, in order. An error is returned only when the container
// could not be created; per-file failures are reported in the outcomes and
// never stop the remaining files.
func (u *Uploader) Attach(ctx context.Context, itemID string, files []domain.Attachment) (AttachResult, error) {
	update, err := u.api.CreateUpdate(ctx, itemID, AttachmentsUpdateBody)
	if err != nil {
		return AttachResult{}, fmt.Errorf("failed to create attachments update: %w", err)
	}

	result := AttachResult{
		UpdateID: update.ID,
		Outcomes: make([]AttachmentOutcome, 0, len(files)),
	}
	for i, file := range files {
		outcome := u.upload(ctx, update.ID, i, file)
		if outcome.Err != nil {
			u.logger.Warn("attachment upload failed",
				zap.String("item_id", itemID),
				zap.Int("index", i),
				zap.String("name", file.Name),
				zap.Error(outcome.Err))
		} else {
			u.logger.Debug("attachment uploaded",
				zap.String("item_id", itemID),
				zap.Int("index", i),
				zap.String("asset_id", outcome.AssetID))
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

func (u *Uploader) upload(ctx context.Context, updateID string, index int, file domain.Attachment) AttachmentOutcome {
	outcome := AttachmentOutcome{Index: index, Name: file.Name}

	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}

	data, err := DecodePayload(file.Payload)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	asset, err := u.api.AddFileToUpdate(ctx, updateID, file.Name, data)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.AssetID = asset.ID
	return outcome
}
