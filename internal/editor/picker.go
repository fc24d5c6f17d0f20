package editor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wave/internal/device"
	"github.com/muurk/wave/internal/discovery"
)

type scanStartMsg struct{}

type scanCompleteMsg struct {
	devices []*discovery.Device
	err     error
}

// ScanFunc finds painters on the network
type ScanFunc func(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error)

// pickerKeyMap defines key bindings for the picker screen
type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *discovery.Device
}

func (d deviceItem) FilterValue() string {
	return d.device.Instance + " " + d.device.IP + " " + d.device.Hostname
}

func (d deviceItem) Title() string { return d.device.Instance }

func (d deviceItem) Description() string { return d.device.ParamsURL() }

// deviceDelegate renders one line per painter
type deviceDelegate struct{}

func (d deviceDelegate) Height() int                               { return 2 }
func (d deviceDelegate) Spacing() int                              { return 1 }
func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(deviceItem)
	if !ok {
		return
	}
	name := "  " + it.Title()
	if index == m.Index() {
		name = SelectedLabelStyle.Render("→ " + it.Title())
	}
	fmt.Fprintf(w, "%s\n    %s", name, SubtitleStyle.Render(it.Description()))
}

// PickerModel is the device selection screen
type PickerModel struct {
	Scanning   bool
	DeviceList list.Model
	Err        error

	// Chosen is the params URL picked by the operator
	Chosen string

	ManualMode bool
	URLInput   textinput.Model
	InputErr   error

	ScanTimeout   time.Duration
	scan          ScanFunc
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          pickerKeyMap
	InputKeys     inputKeyMap
}

// NewPickerModel creates the picker. A nil scan uses mDNS discovery.
func NewPickerModel(scan ScanFunc, timeout time.Duration) PickerModel {
	if scan == nil {
		scan = discovery.Scan
	}
	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	urlInput := textinput.New()
	urlInput.Placeholder = "192.168.1.20:8080"
	urlInput.CharLimit = 256
	urlInput.Width = 40

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	deviceList := list.New([]list.Item{}, deviceDelegate{}, 0, 0)
	deviceList.Title = "Discovered painters"
	deviceList.SetShowStatusBar(false)
	deviceList.SetShowHelp(false)
	deviceList.Styles.Title = TitleStyle

	return PickerModel{
		DeviceList:  deviceList,
		URLInput:    urlInput,
		ScanTimeout: timeout,
		scan:        scan,
		Spinner:     s,
		ProgressBar: progressBar,
		Help:        help.New(),
		Keys: pickerKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Enter:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "edit")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter URL")),
			Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		InputKeys: newInputKeyMap(),
	}
}

// Init starts the first scan
func (m PickerModel) Init() tea.Cmd {
	return m.startScan()
}

func (m PickerModel) startScan() tea.Cmd {
	scan, timeout := m.scan, m.ScanTimeout
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			devices, err := scan(context.Background(), timeout)
			return scanCompleteMsg{devices: devices, err: err}
		},
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 10)
		return m, nil

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.devices))
		for i, dev := range msg.devices {
			items[i] = deviceItem{device: dev}
		}
		return m, m.DeviceList.SetItems(items)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m PickerModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.InputErr = nil
		m.URLInput.SetValue("")
		return m, m.URLInput.Focus()
	}

	if m.Scanning {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Enter):
		if it, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
			m.Chosen = it.device.ParamsURL()
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		m.Err = nil
		return m, tea.Batch(m.DeviceList.SetItems(nil), m.startScan())
	}

	var cmd tea.Cmd
	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

func (m PickerModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.InputKeys.Cancel):
		m.ManualMode = false
		m.URLInput.Blur()
		return m, nil

	case key.Matches(msg, m.InputKeys.Confirm):
		endpoint, err := device.ParseEndpoint(strings.TrimSpace(m.URLInput.Value()))
		if err != nil {
			m.InputErr = err
			return m, nil
		}
		m.ManualMode = false
		m.URLInput.Blur()
		m.Chosen = endpoint
		return m, nil
	}

	var cmd tea.Cmd
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// View renders the picker screen
func (m PickerModel) View() string {
	width := m.Width
	if width == 0 {
		width = 72
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.InputKeys)
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = "m enter URL • q quit"
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}
	return RenderApplicationContainer("", content, helpText, m.Width, m.Height)
}

func (m PickerModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	ratio := float64(elapsed) / float64(m.ScanTimeout)
	if ratio > 1 {
		ratio = 1
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR PAINTERS"),
		SubtitleStyle.Render("Browsing "+discovery.ServiceType+" on the local network..."),
		"",
		m.ProgressBar.ViewAs(ratio),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
	)
	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m PickerModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString(pickerHints)
	case len(m.DeviceList.Items()) == 0:
		b.WriteString("  ")
		b.WriteString(WarningStyle.Render("⚠ No painters found on your network"))
		b.WriteString("\n\n")
		b.WriteString(pickerHints)
	default:
		b.WriteString(m.DeviceList.View())
	}
	return b.String()
}

const pickerHints = `  Troubleshooting:
    • Ensure the painter is powered on and on the same network
    • mDNS may be blocked; press 'm' to enter the URL directly
    • Press 'r' to rescan
`

func (m PickerModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Enter painter URL"))
	b.WriteString("\n")
	b.WriteString("  URL: ")
	b.WriteString(InputBoxStyle.Render(m.URLInput.View()))
	b.WriteString("\n\n")
	if m.InputErr != nil {
		b.WriteString(RenderError(m.InputErr.Error()))
		b.WriteString("\n")
	}
	return b.String()
}
