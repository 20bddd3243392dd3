// Package formatter rewrites MyMoney command files into a canonical layout.
//
// Keywords and month names are upper-cased, blank lines are dropped and
// CHANGE rates are printed with a fixed number of decimals followed by a
// percent sign. Lines that do not start with a known keyword are copied
// verbatim, so formatting never loses data.
//
// Example usage:
//
//	f := formatter.New(formatter.WithAlignment(true))
//	err := f.Format(ctx, source, os.Stdout)
package formatter

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/mymoney/calendar"
	"github.com/robinvdvleuten/mymoney/command"
	"github.com/robinvdvleuten/mymoney/telemetry"
)

// DefaultRatePrecision is the number of decimals written for CHANGE rates.
const DefaultRatePrecision = 2

// Formatter handles formatting of command files.
type Formatter struct {
	// Align pads every argument column to the widest cell in the file.
	Align bool

	// RatePrecision is the number of decimals written for CHANGE rates.
	RatePrecision int
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithAlignment enables or disables column alignment.
func WithAlignment(align bool) Option {
	return func(f *Formatter) {
		f.Align = align
	}
}

// WithRatePrecision sets the number of decimals written for CHANGE rates.
// Negative values are treated as zero.
func WithRatePrecision(precision int) Option {
	return func(f *Formatter) {
		f.RatePrecision = max(precision, 0)
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		RatePrecision: DefaultRatePrecision,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type cellKind uint8

const (
	textCell cellKind = iota
	numberCell
)

type cell struct {
	text string
	kind cellKind
}

// row is a formatted line. A row without cells is written verbatim.
type row struct {
	cells    []cell
	verbatim string
}

// Format reads source and writes the canonical form to w.
func (f *Formatter) Format(ctx context.Context, source []byte, w io.Writer) error {
	timer := telemetry.StartTimer(ctx, "formatter.format")
	defer timer.End()

	var rows []row
	for _, line := range bytes.Split(source, []byte("\n")) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text := strings.TrimRight(string(line), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		rows = append(rows, f.formatLine(text))
	}

	var widths []int
	if f.Align {
		widths = columnWidths(rows)
	}

	var buf strings.Builder
	buf.Grow(len(source))
	for _, r := range rows {
		if r.cells == nil {
			buf.WriteString(r.verbatim)
			buf.WriteByte('\n')
			continue
		}
		writeRow(&buf, r.cells, widths)
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// formatLine canonicalises a single non-blank line.
func (f *Formatter) formatLine(line string) row {
	fields := strings.Fields(line)
	kind := command.ParseKind(strings.ToUpper(fields[0]))
	if kind == command.Unknown {
		return row{verbatim: line}
	}

	args := fields[1:]
	cells := make([]cell, 0, len(fields))
	cells = append(cells, cell{text: kind.String()})

	switch kind {
	case command.Change:
		for i, arg := range args {
			if i == len(args)-1 {
				cells = append(cells, monthCell(arg))
				continue
			}
			cells = append(cells, f.rateCell(arg))
		}
	case command.Balance:
		for _, arg := range args {
			cells = append(cells, monthCell(arg))
		}
	default:
		for _, arg := range args {
			cells = append(cells, amountCell(arg))
		}
	}

	return row{cells: cells}
}

// rateCell renders a percentage with the configured precision. Values that
// are not numbers are kept as written.
func (f *Formatter) rateCell(arg string) cell {
	v, err := strconv.ParseFloat(strings.ReplaceAll(arg, "%", ""), 64)
	if err != nil {
		return cell{text: arg}
	}
	return cell{text: strconv.FormatFloat(v, 'f', f.RatePrecision, 64) + "%", kind: numberCell}
}

func monthCell(arg string) cell {
	m, err := calendar.Parse(strings.ToUpper(arg))
	if err != nil {
		return cell{text: arg}
	}
	return cell{text: m.String()}
}

func amountCell(arg string) cell {
	if _, err := strconv.ParseInt(arg, 10, 64); err != nil {
		return cell{text: arg}
	}
	return cell{text: arg, kind: numberCell}
}

// columnWidths returns the display width of the widest cell per column.
func columnWidths(rows []row) []int {
	var widths []int
	for _, r := range rows {
		for i, c := range r.cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(c.text))
		}
	}
	return widths
}

// writeRow writes cells separated by single spaces. With widths, numbers are
// right-aligned and text is left-aligned; trailing padding is trimmed.
func writeRow(buf *strings.Builder, cells []cell, widths []int) {
	var line strings.Builder
	for i, c := range cells {
		if i > 0 {
			line.WriteByte(' ')
		}
		switch {
		case widths == nil:
			line.WriteString(c.text)
		case c.kind == numberCell:
			line.WriteString(runewidth.FillLeft(c.text, widths[i]))
		default:
			line.WriteString(runewidth.FillRight(c.text, widths[i]))
		}
	}
	buf.WriteString(strings.TrimRight(line.String(), " "))
	buf.WriteByte('\n')
}
