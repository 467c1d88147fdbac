package bugs

import (
	"context"
	"errors"

	"github.com/h0rv/bugdrop/internal/domain"
	"go.uber.org/zap"
)

// API is the subset of the monday client used to file a bug.
type API interface {
	UploadAPI
	CreateItem(ctx context.Context, boardID, groupID, name string) (domain.Item, error)
}

// Target is the board group a bug is filed into.
type Target struct {
	BoardID string
	GroupID string
}

// ErrNoTarget is returned when a board or group id is missing.
var ErrNoTarget = errors.New("board and group must be selected")

// Validate checks that both ids are set.
func (t Target) Validate() error {
	if t.BoardID == "" || t.GroupID == "" {
		return ErrNoTarget
	}
	return nil
}

// Step names an optional stage of filing.
type Step string

const (
	StepDetails     Step = "details"
	StepAttachments Step = "attachments"
	StepUpload      Step = "upload"
)

// Diagnostic records an optional step that failed after the item existed.
type Diagnostic struct {
	Step    Step   `json:"step"`
	Name    string `json:"name,omitempty"` // attachment name for StepUpload
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func newDiagnostic(step Step, name string, err error) Diagnostic {
	return Diagnostic{Step: step, Name: name, Message: err.Error(), Err: err}
}

// Result is a filed bug. Item is always set; the rest describe the
// best-effort enrichment.
type Result struct {
	Item                domain.Item         `json:"item"`
	DetailsUpdateID     string              `json:"detailsUpdateId,omitempty"`
	AttachmentsUpdateID string              `json:"attachmentsUpdateId,omitempty"`
	Attachments         []AttachmentOutcome `json:"attachments,omitempty"`
	Diagnostics         []Diagnostic        `json:"diagnostics,omitempty"`
}

// Complete reports whether every optional step succeeded.
func (r *Result) Complete() bool {
	return len(r.Diagnostics) == 0
}

// Creator files bug reports.
type Creator struct {
	api      API
	uploader *Uploader
	logger   *zap.Logger
}

// NewCreator creates a Creator. A nil logger discards output.
func NewCreator(api API, logger *zap.Logger) *Creator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Creator{
		api:      api,
		uploader: NewUploader(api, logger),
		logger:   logger,
	}
}

// Create files report into target. The item is created first and its error
// is returned unchanged; once it exists the details note and attachments
// are attempted in turn and their failures become diagnostics on the result.
func (c *Creator) Create(ctx context.Context, target Target, report domain.BugReport, attachments []domain.Attachment) (*Result, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	item, err := c.api.CreateItem(ctx, target.BoardID, target.GroupID, report.Title())
	if err != nil {
		return nil, err
	}
	c.logger.Info("bug item created",
		zap.String("item_id", item.ID),
		zap.String("board_id", target.BoardID),
		zap.String("group_id", target.GroupID))

	result := &Result{Item: item}

	update, err := c.api.CreateUpdate(ctx, item.ID, Compose(report))
	if err != nil {
		c.logger.Warn("failed to add bug details", zap.String("item_id", item.ID), zap.Error(err))
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(StepDetails, "", err))
	} else {
		result.DetailsUpdateID = update.ID
	}

	if len(attachments) == 0 {
		return result, nil
	}

	attached, err := c.uploader.Attach(ctx, item.ID, attachments)
	if err != nil {
		c.logger.Warn("failed to attach files", zap.String("item_id", item.ID), zap.Error(err))
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(StepAttachments, "", err))
		return result, nil
	}

	result.AttachmentsUpdateID = attached.UpdateID
	result.Attachments = attached.Outcomes
	for _, o := range attached.Failed() {
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(StepUpload, o.Name, o.Err))
	}

	return result, nil
}
