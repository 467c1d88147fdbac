package bugs

import (
	"context"
	"errors"
	"testing"

	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testTarget = Target{BoardID: "1829301", GroupID: "topics"}

func TestCreate_FullSuccess(t *testing.T) {
	api := newFakeAPI()
	creator := NewCreator(api, nil)

	result, err := creator.Create(context.Background(), testTarget,
		domain.BugReport{Description: "Crash on save", Platform: "iOS"},
		[]domain.Attachment{attachment("log.txt", "trace")})

	require.NoError(t, err)
	assert.Equal(t, "item-1", result.Item.ID)
	assert.Equal(t, "Crash on save", result.Item.Name)
	assert.NotEmpty(t, result.Item.URL)
	assert.Equal(t, "update-details", result.DetailsUpdateID)
	assert.Equal(t, "update-Attachments", result.AttachmentsUpdateID)
	assert.Len(t, result.Attachments, 1)
	assert.True(t, result.Complete())
	assert.Equal(t, []string{
		"create_item:Crash on save",
		"create_update:details",
		"create_update:Attachments",
		"add_file:log.txt",
	}, api.Calls())
}

func TestCreate_DefaultTitle(t *testing.T) {
	api := newFakeAPI()

	result, err := NewCreator(api, nil).Create(context.Background(), testTarget, domain.BugReport{}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultItemName, result.Item.Name)
}

func TestCreate_NoAttachmentsSkipsUploader(t *testing.T) {
	api := newFakeAPI()

	result, err := NewCreator(api, nil).Create(context.Background(), testTarget, domain.BugReport{Description: "x"}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"create_item:x", "create_update:details"}, api.Calls())
	assert.Empty(t, result.AttachmentsUpdateID)
	assert.Nil(t, result.Attachments)
}

func TestCreate_CreateItemFailureIsFatal(t *testing.T) {
	api := newFakeAPI()
	itemErr := errors.New("monday API error: 500 Internal Server Error")
	api.createItemErr = itemErr

	result, err := NewCreator(api, nil).Create(context.Background(), testTarget,
		domain.BugReport{Description: "x"},
		[]domain.Attachment{attachment("A", "a")})

	assert.Nil(t, result)
	assert.Same(t, itemErr, err, "create-item error must propagate unchanged")
	assert.Equal(t, []string{"create_item:x"}, api.Calls())
}

func TestCreate_DetailsFailureKeepsItem(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	api := newFakeAPI()
	api.updateErr["details"] = errors.New("monday API error: 502 Bad Gateway")

	result, err := NewCreator(api, zap.New(core)).Create(context.Background(), testTarget,
		domain.BugReport{Description: "x"},
		[]domain.Attachment{attachment("A", "a")})

	require.NoError(t, err)
	assert.Equal(t, "item-1", result.Item.ID)
	assert.Empty(t, result.DetailsUpdateID)
	assert.False(t, result.Complete())
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, StepDetails, result.Diagnostics[0].Step)
	assert.Contains(t, result.Diagnostics[0].Message, "502")

	// Attachments are still attempted.
	assert.Contains(t, api.Calls(), "add_file:A")
	assert.Equal(t, 1, logs.FilterMessage("failed to add bug details").Len())
}

func TestCreate_UploadFailuresBecomeDiagnostics(t *testing.T) {
	api := newFakeAPI()
	api.uploadErr["B"] = errors.New("too large")

	result, err := NewCreator(api, nil).Create(context.Background(), testTarget,
		domain.BugReport{Description: "x"},
		[]domain.Attachment{attachment("A", "a"), attachment("B", "b"), attachment("C", "c")})

	require.NoError(t, err)
	assert.Equal(t, "item-1", result.Item.ID)
	require.Len(t, result.Attachments, 3)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, Diagnostic{Step: StepUpload, Name: "B", Message: "too large", Err: api.uploadErr["B"]}, result.Diagnostics[0])
	assert.Equal(t, []string{
		"create_item:x",
		"create_update:details",
		"create_update:Attachments",
		"add_file:A",
		"add_file:B",
		"add_file:C",
	}, api.Calls())
}

func TestCreate_ContainerFailureBecomesDiagnostic(t *testing.T) {
	api := newFakeAPI()
	api.updateErr[AttachmentsUpdateBody] = errors.New("boom")

	result, err := NewCreator(api, nil).Create(context.Background(), testTarget,
		domain.BugReport{Description: "x"},
		[]domain.Attachment{attachment("A", "a")})

	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, StepAttachments, result.Diagnostics[0].Step)
	assert.NotContains(t, api.Calls(), "add_file:A")
}

func TestCreate_MissingTarget(t *testing.T) {
	api := newFakeAPI()

	_, err := NewCreator(api, nil).Create(context.Background(), Target{BoardID: "1"}, domain.BugReport{}, nil)

	assert.ErrorIs(t, err, ErrNoTarget)
	assert.Empty(t, api.Calls())
}
