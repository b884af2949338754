package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"memscan/internal/command"
	"memscan/internal/memscan/render"
	"memscan/internal/memscan/styles"
	"memscan/internal/scan"
	"memscan/internal/source"
)

var tuiCmd = &cobra.Command{
	Use:   "tui FILE",
	Short: "Refine a scan interactively",
	Long: `Tui runs the initial pass and then reads refinement commands from a prompt,
re-reading the region before every pass. Commands:

  = 99 | 99        value is now 99
  inc [d], dec [d] value went up or down (by d)
  changed, same    value changed or stayed the same
  range lo hi      value is within [lo, hi]
  any              keep everything, record current values`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	addSourceFlags(tuiCmd)
	tuiCmd.Flags().StringP("value", "v", "", "Initial value; empty or ? keeps every offset")
	tuiCmd.Flags().IntP("max", "n", 0, "Maximum candidates to show (default from config)")
}

func runTUI(c *cobra.Command, args []string) error {
	p, err := openSource(c, args[0])
	if err != nil {
		return err
	}
	defer p.Close()

	kind, err := valueKind(c)
	if err != nil {
		return err
	}
	value, _ := c.Flags().GetString("value")

	m := newTUIModel(args[0], p, kind, value, maxResults(c))
	program := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(c.Context()),
	)
	if _, err := program.Run(); err != nil {
		slog.Error("TUI run error", "error", err)
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}

type tuiModel struct {
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	name     string
	provider *source.Provider
	kind     scan.Kind
	value    string
	limit    int

	// scanner belongs to the running pass while busy is set. Everything the
	// view needs is copied into report by the pass itself.
	scanner scan.Scanner
	report  *render.Report
	status  string
	err     error
	busy    bool

	width  int
	height int
}

// passMsg reports the end of the initial pass or a refinement. report is
// only set when err is nil.
type passMsg struct {
	scanner scan.Scanner
	report  render.Report
	step    string
	elapsed time.Duration
	err     error
}

func newTUIModel(name string, p *source.Provider, kind scan.Kind, value string, limit int) tuiModel {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(21)

	ti := textinput.New()
	ti.Placeholder = "= 99, inc, dec, changed, same, range lo hi"
	ti.Prompt = styles.Prompt.Render("❯ ")
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return tuiModel{
		input:    ti,
		viewport: vp,
		spinner:  s,
		name:     name,
		provider: p,
		kind:     kind,
		value:    value,
		limit:    limit,
		busy:     true,
		width:    80,
		height:   24,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), m.spinner.Tick)
}

func (m tuiModel) startCmd() tea.Cmd {
	name, p, kind, value, limit := m.name, m.provider, m.kind, m.value, m.limit
	return func() tea.Msg {
		start := time.Now()
		step := initialStep(value)
		s, err := scan.Start(kind, p.Region(), value, scan.WithObserver(scanObserver()))
		if err != nil {
			return passMsg{step: step, err: err}
		}
		elapsed := time.Since(start)
		rep := render.Build(name, s, p.Symbolizer(), []string{step}, limit)
		return passMsg{scanner: s, report: rep, step: step, elapsed: elapsed}
	}
}

// refineCmd runs one command off the UI goroutine and renders the result
// there, so the model never reads the scanner while the pass is running.
func (m tuiModel) refineCmd(line string) tea.Cmd {
	name, p, s, limit := m.name, m.provider, m.scanner, m.limit
	var steps []string
	if m.report != nil {
		steps = append(steps, m.report.Steps...)
	}
	return func() tea.Msg {
		start := time.Now()
		crit, err := refine(p, s, line)
		if err != nil {
			return passMsg{scanner: s, step: line, err: err}
		}
		elapsed := time.Since(start)
		rep := render.Build(name, s, p.Symbolizer(), append(steps, crit.String()), limit)
		return passMsg{scanner: s, report: rep, step: crit.String(), elapsed: elapsed}
	}
}

// submit handles a line typed at the prompt.
func (m tuiModel) submit(line string) (tuiModel, tea.Cmd) {
	m.input.Reset()
	if m.busy || m.scanner == nil {
		return m, nil
	}
	if _, err := command.Parse(line); err != nil {
		if !errors.Is(err, command.ErrEmpty) {
			m.err = err
			m.updateContent()
		}
		return m, nil
	}
	m.busy = true
	m.err = nil
	return m, tea.Batch(m.refineCmd(line), m.spinner.Tick)
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case passMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.scanner = msg.scanner
			m.report = &msg.report
			m.status = fmt.Sprintf("%s: %d candidate(s) in %s", msg.step, msg.report.Total, msg.elapsed.Round(time.Microsecond))
		}
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(msg.Height - 3)
		m.updateContent()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit(m.input.Value())
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateContent() {
	var b strings.Builder
	if m.report != nil {
		if err := render.Terminal(&b, *m.report, m.width); err != nil {
			b.Reset()
			b.WriteString(render.Markdown(*m.report))
		}
	}
	if m.err != nil {
		b.WriteString("\n" + styles.Error.Render("error: "+m.err.Error()) + "\n")
	}
	m.viewport.SetContent(b.String())
}

func (m tuiModel) View() string {
	status := m.status
	if m.busy {
		status = m.spinner.View() + " scanning " + m.provider.String()
	}

	menu := " Enter: apply • PgUp/PgDn: scroll • Esc: quit "
	menuStyle := styles.Menu.Width(m.width)

	return m.viewport.View() + "\n" +
		styles.Faint.Render(status) + "\n" +
		m.input.View() + "\n" +
		menuStyle.Render(menu)
}
