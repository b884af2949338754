// Package render turns scan results into tables, JSON documents and markdown
// reports.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"memscan/internal/analysis"
	"memscan/internal/memscan/styles"
	"memscan/internal/scan"
)

// Row is one candidate as shown to the user.
type Row struct {
	Offset int    `json:"offset"`
	Addr   string `json:"address"`
	Value  string `json:"value"`
	Symbol string `json:"symbol,omitempty"`
}

// Report is the state of a scan after some number of passes.
type Report struct {
	Source    string   `json:"source"`
	Type      string   `json:"type"`
	Region    string   `json:"region"`
	Steps     []string `json:"steps"`
	Total     int      `json:"total"`
	Truncated bool     `json:"truncated"`
	Rows      []Row    `json:"rows"`
}

// Build collects at most limit rows from s. sym may be nil.
func Build(source string, s scan.Scanner, sym *analysis.Symbolizer, steps []string, limit int) Report {
	r := s.Region()
	matches := s.Results()

	rep := Report{
		Source: source,
		Type:   s.Kind().String(),
		Region: r.String(),
		Steps:  append([]string(nil), steps...),
		Total:  len(matches),
		Rows:   []Row{},
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
		rep.Truncated = true
	}
	for _, m := range matches {
		addr := r.AddrOf(m.Offset)
		rep.Rows = append(rep.Rows, Row{
			Offset: m.Offset,
			Addr:   fmt.Sprintf("0x%x", addr),
			Value:  m.Value,
			Symbol: sym.Name(addr),
		})
	}
	return rep
}

func (rep Report) hasSymbols() bool {
	for _, row := range rep.Rows {
		if row.Symbol != "" {
			return true
		}
	}
	return false
}

func (rep Report) summary() string {
	s := fmt.Sprintf("%d candidate(s)", rep.Total)
	if rep.Truncated {
		s += fmt.Sprintf(", showing first %d", len(rep.Rows))
	}
	return s
}

// Table writes rep as a bordered table. color selects styled cells.
func Table(w io.Writer, rep Report, color bool) error {
	headers := []string{"#", "OFFSET", "ADDRESS", "VALUE"}
	withSym := rep.hasSymbols()
	if withSym {
		headers = append(headers, "SYMBOL")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for i, row := range rep.Rows {
		cells := []string{fmt.Sprint(i), fmt.Sprintf("+0x%x", row.Offset), row.Addr, row.Value}
		if withSym {
			cells = append(cells, row.Symbol)
		}
		t.Row(cells...)
	}
	if color {
		t.StyleFunc(func(r, c int) lipgloss.Style {
			if r == table.HeaderRow {
				return styles.Title.Padding(0, 1)
			}
			switch c {
			case 2:
				return styles.Addr.Padding(0, 1)
			case 3:
				return styles.Value.Padding(0, 1)
			case 4:
				return styles.Symbol.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}

	header := fmt.Sprintf("%s %s %s\n", rep.Source, rep.Type, rep.Region)
	if color {
		header = styles.Faint.Render(strings.TrimSuffix(header, "\n")) + "\n"
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if len(rep.Rows) > 0 {
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, rep.summary())
	return err
}

// JSON writes rep as an indented JSON document.
func JSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// Markdown returns rep as a markdown document.
func Markdown(rep Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scan of `%s`\n\n", rep.Source)
	fmt.Fprintf(&b, "- **Type:** %s\n", rep.Type)
	fmt.Fprintf(&b, "- **Region:** `%s`\n", rep.Region)
	fmt.Fprintf(&b, "- **Candidates:** %s\n", rep.summary())

	if len(rep.Steps) > 0 {
		b.WriteString("\n## Passes\n\n")
		for i, s := range rep.Steps {
			fmt.Fprintf(&b, "%d. `%s`\n", i+1, s)
		}
	}
	if len(rep.Rows) == 0 {
		return b.String()
	}

	withSym := rep.hasSymbols()
	b.WriteString("\n## Candidates\n\n")
	if withSym {
		b.WriteString("| Offset | Address | Value | Symbol |\n|---|---|---|---|\n")
	} else {
		b.WriteString("| Offset | Address | Value |\n|---|---|---|\n")
	}
	for _, row := range rep.Rows {
		fmt.Fprintf(&b, "| +0x%x | `%s` | %s |", row.Offset, row.Addr, row.Value)
		if withSym {
			fmt.Fprintf(&b, " %s |", row.Symbol)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Terminal renders the markdown report for a terminal of the given width.
func Terminal(w io.Writer, rep Report, width int) error {
	md := Markdown(rep)
	r := styles.GetMarkdownRenderer(width - 2)
	if r == nil {
		_, err := io.WriteString(w, md)
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
