package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/bugdrop/internal/bugs"
	"github.com/h0rv/bugdrop/internal/domain"
)

// Form field order. Description comes first because it becomes the item name.
const (
	fieldDescription = iota
	fieldPlatform
	fieldEnvironment
	fieldVersion
	fieldSteps
	fieldActual
	fieldExpected
	fieldAttachments
	fieldCount
)

var (
	areaFocusedBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))

	areaBlurredBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))
)

// formField is either a single-line input or a multi-line area.
type formField struct {
	label     string
	multiline bool
	input     textinput.Model
	area      textarea.Model
}

func newInputField(label, placeholder string) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 1024
	return formField{label: label, input: ti}
}

func newAreaField(label, placeholder string) formField {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = 65535
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(60)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = areaFocusedBorder
	ta.BlurredStyle.Base = areaBlurredBorder
	return formField{label: label, multiline: true, area: ta}
}

func (f *formField) focus() tea.Cmd {
	if f.multiline {
		return f.area.Focus()
	}
	return f.input.Focus()
}

func (f *formField) blur() {
	if f.multiline {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f formField) value() string {
	if f.multiline {
		return strings.TrimSpace(f.area.Value())
	}
	return strings.TrimSpace(f.input.Value())
}

func (f *formField) setWidth(w int) {
	if f.multiline {
		f.area.SetWidth(w)
		return
	}
	f.input.Width = w
}

func (f *formField) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.multiline {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

func (f formField) view() string {
	if f.multiline {
		return f.area.View()
	}
	return f.input.View()
}

// attachmentErrorMsg reports an attachment path that could not be read.
type attachmentErrorMsg struct {
	err error
}

// FormModel collects a bug report and files it on submit.
type FormModel struct {
	creator *bugs.Creator
	target  bugs.Target
	ctx     context.Context
	title   string

	keymap  FormKeyMap
	keys    keyReference
	spinner spinner.Model

	fields []formField
	focus  int

	submitting  bool
	confirmExit bool
	errorMsg    string

	width  int
	height int
}

// NewFormModel creates an empty bug form for target. title names the
// destination in the header.
func NewFormModel(creator *bugs.Creator, target bugs.Target, ctx context.Context, title string) FormModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	fields := make([]formField, fieldCount)
	fields[fieldDescription] = newInputField("Description", "What went wrong? (becomes the item name)")
	fields[fieldPlatform] = newInputField("Platform", "iOS, Android, Web...")
	fields[fieldEnvironment] = newInputField("Environment", "production, staging...")
	fields[fieldVersion] = newInputField("Version", "1.2.3")
	fields[fieldSteps] = newAreaField("Steps to Reproduce", "1. Open the app\n2. ...")
	fields[fieldActual] = newAreaField("Actual Result", "What happened")
	fields[fieldExpected] = newAreaField("Expected Result", "What should have happened")
	fields[fieldAttachments] = newInputField("Attachments", "comma-separated file paths")

	m := FormModel{
		creator: creator,
		target:  target,
		ctx:     ctx,
		title:   title,
		keymap:  DefaultFormKeyMap(),
		keys:    newKeyReference("Bug form", DefaultFormKeyMap()),
		spinner: sp,
		fields:  fields,
	}
	m.fields[fieldDescription].focus()
	return m
}

// Init initializes the form.
func (m FormModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.WindowSize())
}

// Update handles messages.
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.fields {
			m.fields[i].setWidth(m.fieldWidth())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bugFiledMsg:
		// Only failures reach the form; success moves to the result screen.
		m.submitting = false
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Failed to create bug: %v", msg.err)
		}
		return m, nil

	case attachmentErrorMsg:
		m.submitting = false
		m.errorMsg = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, m.fields[m.focus].update(msg)
}

func (m FormModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Swallow input while the request is in flight.
	if m.submitting {
		return m, nil
	}

	if m.confirmExit {
		switch msg.String() {
		case "y", "Y":
			m.confirmExit = false
			return m, func() tea.Msg { return closeFormMsg{} }
		case "n", "N", "esc":
			m.confirmExit = false
		case "s", "S":
			m.confirmExit = false
			return m.submit()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.dirty() {
			m.confirmExit = true
			return m, nil
		}
		return m, func() tea.Msg { return closeFormMsg{} }
	case "ctrl+s":
		return m.submit()
	case "tab":
		cmd := (&m).moveFocus(1)
		return m, cmd
	case "shift+tab":
		cmd := (&m).moveFocus(-1)
		return m, cmd
	}

	return m, m.fields[m.focus].update(msg)
}

func (m *FormModel) moveFocus(delta int) tea.Cmd {
	m.fields[m.focus].blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].focus()
}

func (m FormModel) dirty() bool {
	for _, f := range m.fields {
		if f.value() != "" {
			return true
		}
	}
	return false
}

// Report builds the bug report from the current field values.
func (m FormModel) Report() domain.BugReport {
	return domain.BugReport{
		Description:      m.fields[fieldDescription].value(),
		Platform:         m.fields[fieldPlatform].value(),
		Environment:      m.fields[fieldEnvironment].value(),
		Version:          m.fields[fieldVersion].value(),
		StepsToReproduce: m.fields[fieldSteps].value(),
		ActualResult:     m.fields[fieldActual].value(),
		ExpectedResult:   m.fields[fieldExpected].value(),
	}
}

// AttachmentPaths splits the attachments field into trimmed, non-empty paths.
func (m FormModel) AttachmentPaths() []string {
	var paths []string
	for _, p := range strings.Split(m.fields[fieldAttachments].value(), ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (m FormModel) submit() (tea.Model, tea.Cmd) {
	m.submitting = true
	m.errorMsg = ""

	creator, target, ctx := m.creator, m.target, m.ctx
	report, paths := m.Report(), m.AttachmentPaths()

	file := func() tea.Msg {
		attachments, err := bugs.ReadAttachments(paths)
		if err != nil {
			return attachmentErrorMsg{err: err}
		}
		result, err := creator.Create(ctx, target, report, attachments)
		return bugFiledMsg{report: report, result: result, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, file)
}

func (m FormModel) fieldWidth() int {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	if w > 100 {
		w = 100
	}
	return w
}

// View renders the form.
func (m FormModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("New Bug · " + m.title))
	b.WriteString("\n")

	for i, f := range m.fields {
		label := LabelStyle.Render(f.label)
		if i == m.focus {
			label = FocusedLabelStyle.Render("> " + f.label)
		}
		b.WriteString(label + "\n")
		b.WriteString(f.view() + "\n")
	}

	switch {
	case m.confirmExit:
		b.WriteString(WarningStyle.Render("Discard this bug? [Y]discard [N]keep editing [S]file it"))
	case m.submitting:
		b.WriteString(m.spinner.View() + " Filing bug...")
	case m.errorMsg != "":
		b.WriteString(ErrorStyle.Render(m.errorMsg))
	default:
		b.WriteString(HelpStyle.Render(m.keys.line(m.fieldWidth())))
	}

	return b.String()
}
