package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/h0rv/bugdrop/internal/bridge"
	"github.com/h0rv/bugdrop/internal/bugs"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"file", "boards", "recent", "ping", "history", "config", "serve"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, name := range []string{"show", "set-token", "select", "clear"} {
		cmd, _, err := root.Find([]string{"config", name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestFileFlags(t *testing.T) {
	cmd := newFileCmd()

	for _, flag := range []string{"description", "platform", "env", "version", "steps", "actual", "expected", "attach", "board", "group"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
	assert.Equal(t, "d", cmd.Flags().Lookup("description").Shorthand)
}

func TestPrintResult(t *testing.T) {
	result := &bugs.Result{
		Item: domain.Item{ID: "991", Name: "Crash on save", URL: "https://acme.monday.com/boards/1/pulses/991"},
		Attachments: []bugs.AttachmentOutcome{
			{Index: 0, Name: "a.png", AssetID: "a1"},
			{Index: 1, Name: "b.png", Err: errors.New("too large")},
		},
		Diagnostics: []bugs.Diagnostic{{Step: bugs.StepUpload, Name: "b.png", Message: "too large"}},
	}

	var buf bytes.Buffer
	printResult(&buf, result)

	assert.Equal(t, "Filed Crash on save\n"+
		"https://acme.monday.com/boards/1/pulses/991\n"+
		"1 of 2 attachments uploaded\n"+
		"warning: upload b.png: too large\n", buf.String())
}

func TestRespond(t *testing.T) {
	var buf bytes.Buffer

	assert.NoError(t, respond(&buf, bridge.Response{Success: true}))

	err := respond(&buf, bridge.Response{Error: "monday.com token not configured"})
	assert.EqualError(t, err, "monday.com token not configured")
	assert.Empty(t, buf.String(), "no JSON without --json")

	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
	_ = respond(&buf, bridge.Response{Error: "boom"})
	assert.Contains(t, buf.String(), `"success": false`)
	assert.Contains(t, buf.String(), `"error": "boom"`)
}
