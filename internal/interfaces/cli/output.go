package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aigrants.co/cli/internal/application/services"
	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/streaming"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// ErrStreamIncomplete is returned when the remote side closed the stream
// before sending the terminate marker.
var ErrStreamIncomplete = errors.New("stream closed before completion")

// streamPrinter writes stream activity as plain lines
type streamPrinter struct {
	out io.Writer
}

func newStreamPrinter(out io.Writer) *streamPrinter {
	return &streamPrinter{out: out}
}

func (p *streamPrinter) HandleFrame(msg domain.InboundMessage) {
	line := "Received: " + msg.Text()
	if !msg.Valid {
		line = dimStyle.Render(line)
	}
	fmt.Fprintln(p.out, line)
}

func (p *streamPrinter) HandleStreamEvent(event streaming.StreamEvent) {
	switch event.Type {
	case streaming.StreamEventConnected:
		fmt.Fprintln(p.out, "Connected to stream. Waiting for messages...")
	case streaming.StreamEventDisconnected:
		fmt.Fprintln(p.out, dimStyle.Render("Connection closed"))
	}
}

// reportOutcome prints the terminal outcome and maps it to the command error
func reportOutcome(out io.Writer, report *services.StreamReport) error {
	result := report.Result
	summary := fmt.Sprintf("%d frames, %d malformed", result.FramesReceived, result.MalformedFrames)

	switch result.Outcome {
	case domain.OutcomeCompleted:
		fmt.Fprintf(out, "%s (%s)\n", successStyle.Render("Stream completed naturally"), summary)
		return nil
	case domain.OutcomeCancelled:
		fmt.Fprintf(out, "%s (%s)\n", warnStyle.Render("Stream cancelled"), summary)
		return nil
	default:
		fmt.Fprintf(out, "%s (%s)\n", errorStyle.Render("Stream closed by remote"), summary)
		if result.Cause != nil {
			return fmt.Errorf("%w: %v", ErrStreamIncomplete, result.Cause)
		}
		return ErrStreamIncomplete
	}
}

// printField writes an aligned "label: value" line
func printField(out io.Writer, label, value string) {
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-14s", label+":")), value)
}

// previewPayload collapses whitespace so a frame fits on one line
func previewPayload(payload string) string {
	return strings.Join(strings.Fields(payload), " ")
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatSize formats a payload size for display
func formatSize(size int) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%dB", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1fK", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1fM", float64(size)/(1024*1024))
	}
}
