// Package report renders the month-by-month ledger of a finished run.
//
// The table format lists every month of the year with its holdings and
// total, followed by the desired allocation as percentages. The JSON format
// carries the same data for other tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/mymoney/calendar"
	"github.com/robinvdvleuten/mymoney/interpreter"
	"github.com/robinvdvleuten/mymoney/ledger"
	"github.com/robinvdvleuten/mymoney/output"
)

// Format selects how a report is rendered.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Table, JSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown report format %q (expected %q or %q)", s, Table, JSON)
}

// Input is the data a report is rendered from.
type Input struct {
	Ledger  *ledger.Ledger
	Desired interpreter.Fractions
}

// Renderer writes reports.
type Renderer struct {
	styles *output.Styles
	format Format
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFormat selects the output format. The default is Table.
func WithFormat(format Format) Option {
	return func(r *Renderer) {
		r.format = format
	}
}

// New creates a Renderer. styles may be nil for plain output.
func New(styles *output.Styles, opts ...Option) *Renderer {
	r := &Renderer{styles: styles, format: Table}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the report for in to w.
func (r *Renderer) Render(w io.Writer, in Input) error {
	switch r.format {
	case JSON:
		return r.renderJSON(w, in)
	case Table:
		return r.renderTable(w, in)
	}
	return fmt.Errorf("unknown report format %q", r.format)
}

const missing = "-"

var header = []string{"MONTH", "EQUITY", "DEBT", "GOLD", "TOTAL"}

func (r *Renderer) renderTable(w io.Writer, in Input) error {
	rows := [][]string{header}
	for _, m := range calendar.Months() {
		s, err := in.Ledger.Get(m)
		if err != nil {
			rows = append(rows, []string{m.String(), missing, missing, missing, missing})
			continue
		}
		rows = append(rows, []string{
			m.String(),
			strconv.FormatInt(s.Equity, 10),
			strconv.FormatInt(s.Debt, 10),
			strconv.FormatInt(s.Gold, 10),
			strconv.FormatInt(s.Total(), 10),
		})
	}
	rows = append(rows, []string{
		"DESIRED",
		percent(in.Desired.Equity),
		percent(in.Desired.Debt),
		percent(in.Desired.Gold),
		"",
	})

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var buf strings.Builder
	for i, row := range rows {
		var line strings.Builder
		for j, c := range row {
			if j > 0 {
				line.WriteString("  ")
			}
			if j == 0 {
				line.WriteString(r.styleLabel(runewidth.FillRight(c, widths[j]), i))
				continue
			}
			line.WriteString(r.styleValue(runewidth.FillLeft(c, widths[j]), i, c))
		}
		buf.WriteString(strings.TrimRight(line.String(), " "))
		buf.WriteByte('\n')
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// styleLabel styles the first column: bold header, colored month names.
func (r *Renderer) styleLabel(text string, row int) string {
	switch {
	case r.styles == nil:
		return text
	case row == 0:
		return r.styles.Header(text)
	case row > len(calendar.Months()):
		return r.styles.Muted(text)
	}
	return r.styles.Month(text)
}

func (r *Renderer) styleValue(text string, row int, raw string) string {
	switch {
	case r.styles == nil:
		return text
	case row == 0:
		return r.styles.Header(text)
	case raw == missing:
		return r.styles.Muted(text)
	}
	return r.styles.Amount(text, strings.HasPrefix(raw, "-"))
}

// percent renders a weight as a percentage with two decimals.
func percent(weight float64) string {
	return decimal.NewFromFloat(weight).Shift(2).StringFixed(2) + "%"
}

type jsonMonth struct {
	Month  string `json:"month"`
	Equity int64  `json:"equity"`
	Debt   int64  `json:"debt"`
	Gold   int64  `json:"gold"`
	Total  int64  `json:"total"`
}

type jsonDesired struct {
	Equity string `json:"equity"`
	Debt   string `json:"debt"`
	Gold   string `json:"gold"`
}

type jsonReport struct {
	Months  []jsonMonth `json:"months"`
	Desired jsonDesired `json:"desired"`
}

func (r *Renderer) renderJSON(w io.Writer, in Input) error {
	out := jsonReport{
		Months: []jsonMonth{},
		Desired: jsonDesired{
			Equity: percent(in.Desired.Equity),
			Debt:   percent(in.Desired.Debt),
			Gold:   percent(in.Desired.Gold),
		},
	}
	for _, ms := range in.Ledger.Snapshots() {
		out.Months = append(out.Months, jsonMonth{
			Month:  ms.Month.String(),
			Equity: ms.Equity,
			Debt:   ms.Debt,
			Gold:   ms.Gold,
			Total:  ms.Total(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
