// Package styles holds the colors shared by memscan's result table, dump
// view and markdown reports.
package styles

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

// VS Code Dark theme colors
const (
	VSCodeForeground = "#D4D4D4"
	VSCodeHeading    = "#569CD6"
	VSCodeInlineCode = "#EACD53"
	VSCodeNumber     = "#B5CEA8"
	VSCodeComment    = "#6A9955"
	VSCodeLineNumber = "#858585"
)

var (
	Title  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	Addr   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	Value  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	Symbol = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	Faint  = lipgloss.NewStyle().Foreground(lipgloss.Color(VSCodeLineNumber))
	Error  = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Cheeky.Hex()))
	Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Malibu.Hex()))

	Menu = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1)
)

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// GetReportStyle returns the glamour style used for markdown scan reports.
func GetReportStyle() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(VSCodeForeground),
			},
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(VSCodeHeading),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(charmtone.Zest.Hex()),
				BackgroundColor: stringPtr(charmtone.Charple.Hex()),
				Bold:            boolPtr(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix: "## ",
			},
		},
		Strong: ansi.StylePrimitive{
			Bold: boolPtr(true),
		},
		Item: ansi.StylePrimitive{
			BlockPrefix: "• ",
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(VSCodeInlineCode),
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: stringPtr(VSCodeNumber),
				},
				Margin: uintPtr(1),
			},
		},
		Table: ansi.StyleTable{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: stringPtr(VSCodeForeground),
				},
			},
		},
		Text: ansi.StylePrimitive{
			Color: stringPtr(VSCodeForeground),
		},
	}
}

// GetMarkdownRenderer returns a glamour TermRenderer for scan reports.
func GetMarkdownRenderer(width int) *glamour.TermRenderer {
	r, _ := glamour.NewTermRenderer(
		glamour.WithStyles(GetReportStyle()),
		glamour.WithWordWrap(width),
	)
	return r
}
