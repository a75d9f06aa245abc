package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ConsoleSender prints events as single styled lines.
type ConsoleSender struct {
	mu    sync.Mutex
	out   io.Writer
	plain bool
}

// NewConsoleSender writes to out. With plain set, no ANSI styling is applied.
func NewConsoleSender(out io.Writer, plain bool) *ConsoleSender {
	return &ConsoleSender{out: out, plain: plain}
}

// Name returns the sender name.
func (c *ConsoleSender) Name() string {
	return "console"
}

// Send writes the formatted event.
func (c *ConsoleSender) Send(_ context.Context, event *Event) error {
	line := FormatText(event)

	switch {
	case c.plain && event.Success:
		line = "✓ " + line
	case c.plain:
		line = "✗ " + line
	case event.Success:
		line = successStyle.Render("✓ " + line)
	default:
		line = errorStyle.Render("✗ " + line)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintln(c.out, line)

	return err
}
