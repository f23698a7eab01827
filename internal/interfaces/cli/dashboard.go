package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aigrants.co/cli/internal/application/ports"
	"aigrants.co/cli/internal/application/services"
	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/streaming"
)

const maxDashboardFrames = 500

// runStreamDashboard runs the stream behind a live terminal view
func runStreamDashboard(ctx context.Context, container *CLIContainer, req services.StreamRequest, opts []streaming.Option) error {
	restore := container.muteShutdownNotice()
	defer restore()

	model := newDashboardModel(string(req.StoryID), container.Interrupt)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(container.Out))

	handler := streaming.HandlerFuncs{
		OnFrame: func(msg domain.InboundMessage) { program.Send(frameMsg{msg: msg, at: time.Now()}) },
		OnEvent: func(event streaming.StreamEvent) { program.Send(streamEventMsg(event)) },
	}
	factory := func(cfg domain.ConnectionConfig) ports.Streamer {
		return streaming.NewClient(cfg, container.Logger, append(opts, streaming.WithHandler(handler))...)
	}
	service := services.NewStreamService(container.ConfigSource(), container.SessionGateway(), factory, container.Logger)

	streamCtx, stop := contextWithToken(ctx, req.Token)
	defer stop()

	done := make(chan streamDoneMsg, 1)
	go func() {
		report, err := service.Run(streamCtx, req)
		msg := streamDoneMsg{report: report, err: err}
		done <- msg
		program.Send(msg)
	}()

	if _, err := program.Run(); err != nil {
		req.Token.Cancel("dashboard exited")
		<-done
		return fmt.Errorf("dashboard failed: %w", err)
	}

	result := <-done
	if result.err != nil {
		return result.err
	}
	return reportOutcome(container.Out, result.report)
}

// dashboardModel holds the state for the Bubble Tea stream view
type dashboardModel struct {
	storyID      string
	frames       []frameItem
	received     int
	malformed    int
	state        domain.StreamState
	closing      bool
	finished     bool
	started      time.Time
	windowWidth  int
	windowHeight int
	onQuit       func()
	err          error
}

// frameItem is one received frame prepared for display
type frameItem struct {
	Timestamp string
	Type      string
	Size      string
	Preview   string
	Valid     bool
}

type frameMsg struct {
	msg domain.InboundMessage
	at  time.Time
}

type streamEventMsg streaming.StreamEvent

type streamDoneMsg struct {
	report *services.StreamReport
	err    error
}

func newDashboardModel(storyID string, onQuit func()) dashboardModel {
	if onQuit == nil {
		onQuit = func() {}
	}
	return dashboardModel{
		storyID: storyID,
		state:   domain.StreamStateConnecting,
		started: time.Now(),
		onQuit:  onQuit,
	}
}

// Init implements the Bubble Tea init method
func (m dashboardModel) Init() tea.Cmd {
	return nil
}

// Update implements the Bubble Tea update method
func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.finished {
				return m, tea.Quit
			}
			if !m.closing {
				m.closing = true
				m.onQuit()
			}
		}
		return m, nil

	case frameMsg:
		m.received++
		if !msg.msg.Valid {
			m.malformed++
		}
		m.frames = append(m.frames, toFrameItem(msg.msg, msg.at))
		if len(m.frames) > maxDashboardFrames {
			m.frames = m.frames[len(m.frames)-maxDashboardFrames:]
		}
		return m, nil

	case streamEventMsg:
		switch msg.Type {
		case streaming.StreamEventConnected:
			m.state = domain.StreamStateOpen
		case streaming.StreamEventDisconnected:
			if result, ok := msg.Data.(domain.StreamResult); ok {
				m.state = result.Outcome.State()
			}
		}
		return m, nil

	case streamDoneMsg:
		m.finished = true
		m.err = msg.err
		if msg.report != nil {
			m.state = msg.report.Result.Outcome.State()
		}
		return m, tea.Quit
	}

	return m, nil
}

func toFrameItem(msg domain.InboundMessage, at time.Time) frameItem {
	typ := msg.Type
	switch {
	case !msg.Valid:
		typ = "malformed"
	case typ == "":
		typ = "-"
	}
	return frameItem{
		Timestamp: at.Format("15:04:05"),
		Type:      typ,
		Size:      formatSize(len(msg.Raw)),
		Preview:   previewPayload(msg.Text()),
		Valid:     msg.Valid,
	}
}

// View implements the Bubble Tea view method
func (m dashboardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderFrameTable(), m.renderFooter())
}

func (m dashboardModel) renderHeader() string {
	storyID := m.storyID
	if storyID == "" {
		storyID = "(new)"
	}
	info := fmt.Sprintf("Story: %s | Frames: %d | Malformed: %d | %s",
		truncateString(storyID, 12), m.received, m.malformed, time.Since(m.started).Round(time.Second))

	line1 := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("grantgen stream"),
		"  ",
		info,
		"  ",
		m.stateStyle().Render(stateLabel(m.state, m.closing)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, line1, dimStyle.Render(divider(m.windowWidth)))
}

func (m dashboardModel) stateStyle() lipgloss.Style {
	switch m.state {
	case domain.StreamStateOpen, domain.StreamStateCompleted:
		return successStyle
	case domain.StreamStateCancelled:
		return warnStyle
	case domain.StreamStateClosed:
		return errorStyle
	default:
		return dimStyle
	}
}

func stateLabel(state domain.StreamState, closing bool) string {
	if closing && state == domain.StreamStateOpen {
		return "CLOSING"
	}
	if state == domain.StreamStateOpen {
		return "LIVE"
	}
	return strings.ToUpper(string(state))
}

func (m dashboardModel) renderFrameTable() string {
	if len(m.frames) == 0 {
		return dimStyle.Render("\n  No frames yet. Waiting for the stream...\n")
	}

	header := titleStyle.Render(fmt.Sprintf("%-8s │ %-12s │ %-6s │ %s", "TIME", "TYPE", "SIZE", "PREVIEW"))
	rows := []string{header}

	maxRows := m.windowHeight - 6
	if maxRows < 1 {
		maxRows = 10
	}
	startIdx := 0
	if len(m.frames) > maxRows {
		startIdx = len(m.frames) - maxRows
	}

	previewWidth := 60
	if m.windowWidth > 40 {
		previewWidth = m.windowWidth - 36
	}

	// Latest first.
	for i := len(m.frames) - 1; i >= startIdx; i-- {
		f := m.frames[i]
		row := fmt.Sprintf("%-8s │ %-12s │ %-6s │ %s",
			f.Timestamp, truncateString(f.Type, 12), f.Size, truncateString(f.Preview, previewWidth))
		if !f.Valid {
			row = dimStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m dashboardModel) renderFooter() string {
	controls := "Controls: [q] Stop stream"
	if m.closing {
		controls = "Closing connection gracefully..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		dimStyle.Render(divider(m.windowWidth)),
		labelStyle.Render(controls),
	)
}

func divider(width int) string {
	if width <= 0 {
		width = 80
	}
	return strings.Repeat("─", width)
}
