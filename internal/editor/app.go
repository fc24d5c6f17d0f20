package editor

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/wave/internal/paramsync"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenPicker Screen = "picker"
	ScreenEditor Screen = "editor"
)

// EngineFactory builds an unmounted engine for a params URL
type EngineFactory func(endpoint string) (*paramsync.Engine, error)

// AppModel switches between the picker and the editor. It owns the
// engine once one is created and closes it on quit.
type AppModel struct {
	CurrentScreen Screen

	Picker PickerModel
	Editor Model

	newEngine EngineFactory
	engine    *paramsync.Engine
	LastError error

	Width  int
	Height int
}

// NewAppModel starts on the editor when endpoint is set, otherwise on
// the picker.
func NewAppModel(endpoint string, newEngine EngineFactory, picker PickerModel) AppModel {
	m := AppModel{
		CurrentScreen: ScreenPicker,
		Picker:        picker,
		newEngine:     newEngine,
	}
	if endpoint != "" {
		if err := m.openEditor(endpoint); err != nil {
			m.LastError = err
		}
	}
	return m
}

func (m *AppModel) openEditor(endpoint string) error {
	engine, err := m.newEngine(endpoint)
	if err != nil {
		return fmt.Errorf("open %s: %w", endpoint, err)
	}
	m.engine = engine
	m.Editor = NewModel(engine, endpoint)
	m.Editor.Width, m.Editor.Height = m.Width, m.Height
	m.Editor.Help.Width = m.Width
	m.CurrentScreen = ScreenEditor
	return nil
}

// Engine returns the engine of the editor screen, nil before one is opened
func (m AppModel) Engine() *paramsync.Engine {
	return m.engine
}

// Init initializes the current screen
func (m AppModel) Init() tea.Cmd {
	if m.CurrentScreen == ScreenEditor {
		return m.Editor.Init()
	}
	return m.Picker.Init()
}

// Update routes messages to the current screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.Width, m.Height = size.Width, size.Height
		picker, _ := m.Picker.Update(size)
		m.Picker = picker.(PickerModel)
		if m.CurrentScreen == ScreenEditor {
			editor, _ := m.Editor.Update(size)
			m.Editor = editor.(Model)
		}
		return m, nil
	}

	switch m.CurrentScreen {
	case ScreenPicker:
		updated, cmd := m.Picker.Update(msg)
		m.Picker = updated.(PickerModel)
		if m.Picker.Chosen == "" {
			return m, cmd
		}
		endpoint := m.Picker.Chosen
		m.Picker.Chosen = ""
		if err := m.openEditor(endpoint); err != nil {
			m.Picker.Err = err
			return m, cmd
		}
		return m, tea.Batch(cmd, m.Editor.Init())

	case ScreenEditor:
		updated, cmd := m.Editor.Update(msg)
		m.Editor = updated.(Model)
		return m, cmd
	}
	return m, nil
}

// View renders the current screen
func (m AppModel) View() string {
	if m.CurrentScreen == ScreenEditor {
		return m.Editor.View()
	}
	return m.Picker.View()
}

// Options configures Run
type Options struct {
	// Endpoint skips the picker when set
	Endpoint string

	NewEngine   EngineFactory
	Scan        ScanFunc
	ScanTimeout time.Duration

	// ProgramOptions are passed to tea.NewProgram after the defaults
	ProgramOptions []tea.ProgramOption
}

// Run starts the editor and blocks until the operator quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	app := NewAppModel(opts.Endpoint, opts.NewEngine, NewPickerModel(opts.Scan, opts.ScanTimeout))
	if app.LastError != nil {
		return app.LastError
	}

	programOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts.ProgramOptions...)
	final, err := tea.NewProgram(app, programOpts...).Run()

	if m, ok := final.(AppModel); ok && m.engine != nil {
		if closeErr := m.engine.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
