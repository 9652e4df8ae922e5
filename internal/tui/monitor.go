package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goastro/indigo/internal/model"
	"github.com/goastro/indigo/internal/protocol"
)

// modelUpdatedMsg signals that the mirrored property tree changed
type modelUpdatedMsg struct{}

// monitorKeyMap defines key bindings for the monitor screen
type monitorKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Quit},
	}
}

// Snapshot types. The View never touches the live model; Update copies what it
// needs under the client lock and the renderer works from the copy.

type itemSnapshot struct {
	name  string
	value string
}

type propertySnapshot struct {
	name  string
	label string
	state protocol.PropertyState
	items []itemSnapshot
}

type groupSnapshot struct {
	name  string
	props []propertySnapshot
}

type deviceSnapshot struct {
	name   string
	server string
	groups []groupSnapshot
}

type serverSnapshot struct {
	name  string
	state model.ConnectionState
}

// MonitorModel is the live property monitor. It subscribes to model
// notifications and redraws whenever the mirrored tree changes.
type MonitorModel struct {
	client   *model.Client
	listener *model.Listener
	updates  chan struct{}

	servers     []serverSnapshot
	devices     []deviceSnapshot
	lastMessage string

	selected int // index into devices

	width   int
	height  int
	spinner spinner.Model
	help    help.Model
	keys    monitorKeyMap
}

// NewMonitor creates a monitor bound to a client. The client's servers should
// already be connecting; the monitor only observes.
func NewMonitor(client *model.Client) *MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	keys := monitorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous device"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next device"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	m := &MonitorModel{
		client:  client,
		updates: make(chan struct{}, 1),
		spinner: s,
		help:    help.New(),
		keys:    keys,
	}

	// Notification callbacks run under the model lock, so they only poke a
	// buffered channel; the snapshot happens later on the Bubble Tea loop
	poke := func() {
		select {
		case m.updates <- struct{}{}:
		default:
		}
	}
	m.listener = &model.Listener{
		ServerConnected:    func(*model.Server) { poke() },
		ServerDisconnected: func(*model.Server) { poke() },
		ServerMessage:      func(*model.Server, string, string) { poke() },
		DeviceAdded:        func(*model.Device) { poke() },
		DeviceRemoved:      func(*model.Device) { poke() },
		GroupAdded:         func(*model.Group) { poke() },
		GroupRemoved:       func(*model.Group) { poke() },
		PropertyAdded:      func(*model.Property) { poke() },
		PropertyUpdated:    func(*model.Property) { poke() },
		PropertyRemoved:    func(*model.Property) { poke() },
	}
	client.AddListener(m.listener)

	m.refresh()
	return m
}

// Close detaches the monitor from the client's notifications
func (m *MonitorModel) Close() {
	m.client.RemoveListener(m.listener)
}

// waitForUpdate blocks until the model pokes the update channel
func (m *MonitorModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return modelUpdatedMsg{}
	}
}

// refresh rebuilds the snapshots from the live model
func (m *MonitorModel) refresh() {
	// Client-level queries lock on their own, so the server list is taken
	// before entering the view
	servers := m.client.Servers()

	m.client.View(func() {
		m.servers = m.servers[:0]
		m.devices = m.devices[:0]

		for _, server := range servers {
			m.servers = append(m.servers, serverSnapshot{
				name:  server.Name(),
				state: server.State(),
			})
			if msg := server.LastMessage(); msg != "" {
				m.lastMessage = msg
			}

			for _, device := range server.Devices() {
				snap := deviceSnapshot{
					name:   device.Name(),
					server: server.Name(),
				}
				for _, group := range device.Groups() {
					gs := groupSnapshot{name: group.Name()}
					for _, prop := range group.Properties() {
						gs.props = append(gs.props, snapshotProperty(prop))
					}
					snap.groups = append(snap.groups, gs)
				}
				m.devices = append(m.devices, snap)
			}
		}
	})

	if m.selected >= len(m.devices) {
		m.selected = len(m.devices) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func snapshotProperty(prop *model.Property) propertySnapshot {
	ps := propertySnapshot{
		name:  prop.Name(),
		label: prop.Label(),
		state: prop.State(),
	}
	for _, item := range prop.Items() {
		ps.items = append(ps.items, itemSnapshot{
			name:  item.Name(),
			value: formatValue(item.Value()),
		})
	}
	return ps
}

// formatValue renders an item value for display
func formatValue(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "On"
		}
		return "Off"
	default:
		return protocol.AsString(value)
	}
}

// Init implements tea.Model
func (m *MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

// Update implements tea.Model
func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.devices)-1 {
				m.selected++
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case modelUpdatedMsg:
		m.refresh()
		return m, m.waitForUpdate()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m *MonitorModel) View() string {
	width := m.width
	if width == 0 {
		width = MinTerminalWidth
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("INDIGO MONITOR"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(m.renderServerLine()))
	b.WriteString("\n\n")

	if len(m.devices) == 0 {
		b.WriteString(fmt.Sprintf("  %s Waiting for property definitions...\n", m.spinner.View()))
	} else {
		b.WriteString(m.renderDeviceList())
		b.WriteString("\n")
		b.WriteString(m.renderDevice(m.devices[m.selected], width))
	}

	if m.lastMessage != "" {
		b.WriteString("\n")
		b.WriteString(MessageStyle.Render("  " + m.lastMessage))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}

// renderServerLine summarizes every server's connection state
func (m *MonitorModel) renderServerLine() string {
	if len(m.servers) == 0 {
		return "no servers"
	}

	parts := make([]string, len(m.servers))
	for i, s := range m.servers {
		parts[i] = fmt.Sprintf("%s: %s", s.name, s.state)
	}
	return strings.Join(parts, "  •  ")
}

// renderDeviceList renders the selectable device names
func (m *MonitorModel) renderDeviceList() string {
	var b strings.Builder
	for i, d := range m.devices {
		if i == m.selected {
			b.WriteString(DeviceStyle.Render("  → " + d.name))
		} else {
			b.WriteString("    " + d.name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderDevice renders one device's groups, properties, and items
func (m *MonitorModel) renderDevice(d deviceSnapshot, width int) string {
	var lines []string

	for _, group := range d.groups {
		lines = append(lines, GroupStyle.Render("  "+group.name))
		for _, prop := range group.props {
			lines = append(lines, renderPropertyLine(prop))
			for _, item := range prop.items {
				lines = append(lines, ItemStyle.Render(fmt.Sprintf("        %s = %s", item.name, item.value)))
			}
		}
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 4).
		Padding(0, 1)
	return border.Render(content)
}

// renderPropertyLine renders one property with its state marker
func renderPropertyLine(prop propertySnapshot) string {
	marker := StateStyle(prop.state).Render(StateMarker(prop.state))
	label := prop.label
	if label == "" {
		label = prop.name
	}
	return fmt.Sprintf("    %s %s", marker, PropertyStyle.Render(label))
}

// RunMonitor runs the monitor until the user quits
func RunMonitor(client *model.Client) error {
	monitor := NewMonitor(client)
	defer monitor.Close()

	p := tea.NewProgram(monitor, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
