package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wave/internal/device"
	"github.com/muurk/wave/internal/form"
	"github.com/muurk/wave/internal/painter"
	"github.com/muurk/wave/internal/paramsync"
)

// Messages for async engine operations
type mountedMsg struct{ err error }

type engineEventMsg struct {
	event paramsync.Event
	ok    bool
}

type saveDoneMsg struct{ err error }

type reloadDoneMsg struct{ err error }

// Model is the params editor screen. It renders the engine's form and
// turns key presses into form edits; the engine decides when to write.
type Model struct {
	Engine   *paramsync.Engine
	Endpoint string

	form    *form.Controller
	options []painter.Option

	// Mount state
	Mounting bool
	MountErr error

	// Navigation
	Cursor  int
	Editing bool
	Input   textinput.Model

	// Status line
	Status    string
	StatusErr error
	Busy      bool // save or reload in progress

	// UI state
	Width     int
	Height    int
	Spinner   spinner.Model
	Help      help.Model
	Keys      keyMap
	InputKeys inputKeyMap
}

// NewModel creates the editor for engine. The engine is mounted by Init.
func NewModel(engine *paramsync.Engine, endpoint string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.CharLimit = 64
	input.Width = 32

	return Model{
		Engine:    engine,
		Endpoint:  endpoint,
		options:   engine.Painters(),
		Mounting:  true,
		Input:     input,
		Spinner:   s,
		Help:      help.New(),
		Keys:      newKeyMap(),
		InputKeys: newInputKeyMap(),
	}
}

// Init mounts the engine
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, mountCmd(m.Engine))
}

func mountCmd(engine *paramsync.Engine) tea.Cmd {
	return func() tea.Msg {
		return mountedMsg{err: engine.Mount(context.Background())}
	}
}

func waitForEvent(events <-chan paramsync.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return engineEventMsg{event: ev, ok: ok}
	}
}

func saveCmd(engine *paramsync.Engine) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{err: engine.Save(context.Background())}
	}
}

func reloadCmd(engine *paramsync.Engine) tea.Cmd {
	return func() tea.Msg {
		return reloadDoneMsg{err: engine.Reload(context.Background())}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case mountedMsg:
		m.Mounting = false
		if msg.err != nil && !errors.Is(msg.err, paramsync.ErrAlreadyMounted) {
			m.MountErr = msg.err
			return m, nil
		}
		m.MountErr = nil
		m.form, _ = m.Engine.Form()
		m.Status = fmt.Sprintf("Loaded from device (%s mode)", m.Engine.Mode())
		return m, waitForEvent(m.Engine.Events())

	case engineEventMsg:
		if !msg.ok {
			return m, nil
		}
		m.applyEvent(msg.event)
		return m, waitForEvent(m.Engine.Events())

	case saveDoneMsg:
		m.Busy = false
		if msg.err != nil {
			m.StatusErr = msg.err
			m.Status = ""
		} else {
			m.StatusErr = nil
			m.Status = "Saved to device"
		}
		return m, nil

	case reloadDoneMsg:
		m.Busy = false
		if msg.err != nil {
			m.StatusErr = msg.err
		} else {
			m.StatusErr = nil
			m.Status = "Reloaded from device"
			m.clampCursor()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Mounting && !m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Mounting {
			if key.Matches(msg, m.Keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.MountErr != nil {
			return m.updateMountFailed(msg)
		}
		if m.Editing {
			return m.updateInput(msg)
		}
		return m.updateNormalMode(msg)
	}

	if m.Editing {
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyEvent(ev paramsync.Event) {
	switch ev.Type {
	case paramsync.EventWriteFailed:
		m.StatusErr = ev.Err
	case paramsync.EventWriteSucceeded:
		m.StatusErr = nil
		if m.Engine.Mode() == paramsync.ModeLive {
			m.Status = "Written to device"
		}
	case paramsync.EventRestored:
		m.StatusErr = nil
		m.Status = "Edits discarded"
		m.clampCursor()
	}
}

func (m Model) updateMountFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Reload):
		m.Mounting = true
		m.MountErr = nil
		return m, tea.Batch(m.Spinner.Tick, mountCmd(m.Engine))
	}
	return m, nil
}

// updateNormalMode handles navigation and single-key edits
func (m Model) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	current := rows[m.Cursor]

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Up):
		m.Cursor--
		if m.Cursor < 0 {
			m.Cursor = len(rows) - 1
		}

	case key.Matches(msg, m.Keys.Down):
		m.Cursor++
		if m.Cursor >= len(rows) {
			m.Cursor = 0
		}

	case key.Matches(msg, m.Keys.Left):
		m.adjust(current, -1)

	case key.Matches(msg, m.Keys.Right):
		m.adjust(current, 1)

	case key.Matches(msg, m.Keys.Enter):
		return m.startEditing(current)

	case key.Matches(msg, m.Keys.Add):
		idx := m.form.AppendColor()
		m.Cursor = m.rowOfColor(idx)
		m.Status = fmt.Sprintf("Added secondary %d", idx+1)

	case key.Matches(msg, m.Keys.Remove):
		if current.kind != rowSecondary {
			m.Status = "Select a secondary color to remove"
			return m, nil
		}
		m.report(m.form.RemoveColorAt(current.index))
		m.clampCursor()

	case key.Matches(msg, m.Keys.Save):
		if m.Engine.Mode() == paramsync.ModeLive {
			m.Status = "Live mode writes every edit"
			return m, nil
		}
		m.Busy = true
		m.Status = "Saving..."
		return m, tea.Batch(m.Spinner.Tick, saveCmd(m.Engine))

	case key.Matches(msg, m.Keys.Restore):
		m.report(m.Engine.Load())
		m.clampCursor()

	case key.Matches(msg, m.Keys.Reload):
		m.Busy = true
		m.Status = "Reloading..."
		return m, tea.Batch(m.Spinner.Tick, reloadCmd(m.Engine))

	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
	}

	return m, nil
}

// adjust handles left/right on the current row
func (m *Model) adjust(r row, dir int) {
	p := m.form.Value()
	switch {
	case r.kind == rowPainter:
		m.report(m.form.SetField(r.path, painter.NextOption(m.options, p.Painter, dir)))
	case r.isNumber():
		m.report(m.form.SetField(r.path, r.nudge(r.numberValue(p), dir)))
	case r.kind == rowBidirectional:
		m.report(m.form.SetField(r.path, !p.Bidirectional))
	}
}

func (m Model) startEditing(r row) (tea.Model, tea.Cmd) {
	switch r.kind {
	case rowBidirectional:
		m.report(m.form.SetField(r.path, !m.form.Value().Bidirectional))
		return m, nil
	case rowAddColor:
		idx := m.form.AppendColor()
		m.Cursor = m.rowOfColor(idx)
		return m, nil
	}

	m.Editing = true
	m.StatusErr = nil
	m.Input.SetValue(r.text(m.form.Value()))
	m.Input.CursorEnd()
	switch {
	case r.isColor():
		m.Input.Placeholder = "#rrggbb, rgb(…), hsv(…), hsl(…)"
	case r.kind == rowPainter:
		m.Input.Placeholder = "painter name"
	default:
		m.Input.Placeholder = "number"
	}
	return m, m.Input.Focus()
}

// updateInput handles keys while the text input is open
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.InputKeys.Cancel):
		m.stopEditing()
		return m, nil

	case key.Matches(msg, m.InputKeys.Confirm):
		r := m.rows()[m.Cursor]
		text := strings.TrimSpace(m.Input.Value())
		var err error
		if r.isColor() {
			err = m.form.SetColorText(r.path, text)
		} else {
			err = m.form.SetFieldText(r.path, text)
		}
		if err != nil {
			// keep the input open so the text can be corrected
			m.StatusErr = err
			return m, nil
		}
		m.StatusErr = nil
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.Editing = false
	m.Input.Blur()
	m.Input.SetValue("")
}

func (m *Model) report(err error) {
	if err != nil {
		m.StatusErr = err
		return
	}
	m.StatusErr = nil
}

func (m Model) rows() []row {
	if m.form == nil {
		return nil
	}
	return buildRows(m.form.Value())
}

func (m Model) rowOfColor(idx int) int {
	for i, r := range m.rows() {
		if r.kind == rowSecondary && r.index == idx {
			return i
		}
	}
	return m.Cursor
}

func (m *Model) clampCursor() {
	if n := len(m.rows()); m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// View renders the editor screen
func (m Model) View() string {
	var content, helpText string
	switch {
	case m.Mounting:
		content = "\n  " + m.Spinner.View() + " Reading params from " + m.Endpoint + "\n"
		helpText = "q quit"
	case m.MountErr != nil:
		content = m.renderMountFailed()
		helpText = "r retry • q quit"
	default:
		content = m.renderForm()
		if m.Editing {
			helpText = m.Help.View(m.InputKeys)
		} else {
			helpText = m.Help.View(m.Keys)
		}
	}
	return RenderApplicationContainer(m.Endpoint, content, helpText, m.Width, m.Height)
}

func (m Model) renderMountFailed() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderError("Could not read params: " + device.GetShortErrorMessage(m.MountErr)))
	b.WriteString("\n\n")
	b.WriteString(SubtitleStyle.Render("  " + device.GetTroubleshootingHint(m.MountErr)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderForm() string {
	p := m.form.Value()
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Painter parameters · %s mode · %s", m.Engine.Mode(), m.Engine.State())))
	b.WriteString("\n")

	for i, r := range buildRows(p) {
		b.WriteString(m.renderRow(r, p, i == m.Cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, w := range painter.Validate(p, m.options) {
		b.WriteString(WarningStyle.Render("  ⚠ " + w.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderRow(r row, p painter.Params, selected bool) string {
	marker, label := "  ", LabelStyle.Render(r.label)
	if selected {
		marker, label = "→ ", SelectedLabelStyle.Render(r.label)
	}

	if selected && m.Editing {
		return lipgloss.JoinHorizontal(lipgloss.Center, marker+label, InputBoxStyle.Render(m.Input.View()))
	}

	var value string
	switch {
	case r.kind == rowPainter:
		value = fmt.Sprintf("%s  ‹ %s ›", painter.DisplayName(m.options, p.Painter), p.Painter)
	case r.isNumber():
		value = formatNumber(r.numberValue(p))
	case r.kind == rowBidirectional:
		value = "off"
		if p.Bidirectional {
			value = "on"
		}
	case r.isColor():
		c := r.colorValue(p)
		value = lipgloss.JoinHorizontal(lipgloss.Top, Swatch(c), " ", c.String())
	case r.kind == rowAddColor:
		return marker + label
	}
	return marker + label + ValueStyle.Render(value)
}

func (m Model) renderStatus() string {
	var parts []string
	if m.Busy {
		parts = append(parts, m.Spinner.View())
	}
	if n := m.Engine.Pending(); n > 0 {
		parts = append(parts, WarningStyle.Render(fmt.Sprintf("%d write(s) in flight", n)))
	}
	if m.Engine.Mode() == paramsync.ModeManual && m.Engine.Dirty() {
		parts = append(parts, WarningStyle.Render("unsaved changes"))
	}
	if m.StatusErr != nil {
		parts = append(parts, ErrorStyle.Render("✗ "+device.GetShortErrorMessage(m.StatusErr)))
	} else if m.Status != "" {
		parts = append(parts, SuccessStyle.Render(m.Status))
	}
	return "  " + strings.Join(parts, "  ")
}
