package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/mymoney/command"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	errGutterStyle  = lipgloss.NewStyle().Faint(true)
)

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats err. Errors that carry a command position are shown with
// the surrounding lines of the source and the offending line underlined.
func (r *ErrorRenderer) Render(err error) string {
	var positioned interface {
		GetPosition() command.Position
	}
	if errors.As(err, &positioned) && r.source != nil {
		pos := positioned.GetPosition()
		if pos.Line > 0 {
			return r.renderWithSourceContext(pos, err.Error())
		}
	}

	return errorStyle.Render(err.Error())
}

func (r *ErrorRenderer) renderWithSourceContext(pos command.Position, message string) string {
	var buf strings.Builder

	if !strings.HasPrefix(message, pos.String()) {
		message = fmt.Sprintf("%s: %s", pos, message)
	}
	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	sourceLines := strings.Split(strings.TrimRight(string(r.source), "\n"), "\n")

	startLine := max(pos.Line-3, 0)
	endLine := min(pos.Line+1, len(sourceLines)-1)
	gutter := len(fmt.Sprint(endLine + 1))

	for i := startLine; i <= endLine; i++ {
		line := strings.TrimRight(sourceLines[i], "\r")

		buf.WriteString(errGutterStyle.Render(fmt.Sprintf("%*d | ", gutter, i+1)))
		buf.WriteString(errContextStyle.Render(line))
		buf.WriteByte('\n')

		if i == pos.Line-1 {
			buf.WriteString(strings.Repeat(" ", gutter))
			buf.WriteString(errGutterStyle.Render(" | "))
			buf.WriteString(errCaretStyle.Render(strings.Repeat("^", max(runewidth.StringWidth(line), 1))))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}
