// Package output styles the report and telemetry text written to a terminal.
//
// Styles degrade to plain text when the writer is not a terminal, so a
// redirected report is byte-for-byte the same as NewPlainStyles renders it.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// ANSI palette indices.
const (
	red     = "1"
	yellow  = "3"
	magenta = "5"
)

// Styles renders the report table and the timing tree.
type Styles struct {
	out *termenv.Output
}

// NewStyles detects the color profile of w.
func NewStyles(w io.Writer) *Styles {
	return &Styles{out: termenv.NewOutput(w)}
}

// NewPlainStyles never emits escape codes.
func NewPlainStyles(w io.Writer) *Styles {
	return &Styles{out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
}

func (s *Styles) color(text, color string) termenv.Style {
	return s.out.String(text).Foreground(s.out.Color(color))
}

// Header is used for column titles and the root of the timing tree.
func (s *Styles) Header(text string) string {
	return s.out.String(text).Bold().String()
}

// Month labels a report row.
func (s *Styles) Month(text string) string {
	return s.color(text, yellow).String()
}

// Amount renders a holding. A portfolio that lost more than it held shows
// up red.
func (s *Styles) Amount(text string, negative bool) string {
	if negative {
		return s.color(text, red).String()
	}
	return s.color(text, magenta).String()
}

// Muted renders months without data, the desired split and tree lines.
func (s *Styles) Muted(text string) string {
	return s.out.String(text).Faint().String()
}

// Timing renders a duration, red once the operation counts as slow.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.color(text, red).String()
	}
	return s.Muted(text)
}
