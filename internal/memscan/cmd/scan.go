package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"memscan/internal/command"
	"memscan/internal/logging"
	"memscan/internal/memscan/render"
	"memscan/internal/scan"
	"memscan/internal/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "Scan a file once and apply refinements",
	Long: `Scan runs an initial pass over FILE and then one refinement per --then.
Without --value every aligned offset is a candidate, which is useful when the
value is unknown and only its changes are.`,
	Example: `
# Every i32 equal to 100
memscan scan save.bin --value 100

# Unknown start, keep what went up
memscan scan save.bin --snapshot --then inc

# Markdown report of a .data section scan
memscan scan ./game -s .data -t u16 -v 300 --markdown
  `,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	addSourceFlags(scanCmd)
	scanCmd.Flags().StringP("value", "v", "", "Initial value; empty or ? keeps every offset")
	scanCmd.Flags().StringArray("then", nil, "Refinement command applied after the initial pass (repeatable)")
	scanCmd.Flags().BoolP("json", "j", false, "Output results as JSON")
	scanCmd.Flags().BoolP("markdown", "m", false, "Output results as a markdown report")
	scanCmd.Flags().IntP("max", "n", 0, "Maximum candidates to print (default from config)")
}

// initialStep describes the first pass for the report.
func initialStep(value string) string {
	if value == "" || value == "?" {
		return "unknown"
	}
	return scan.CritEqual + " " + value
}

func startScan(c *cobra.Command, p *source.Provider, value string) (scan.Scanner, error) {
	kind, err := valueKind(c)
	if err != nil {
		return nil, err
	}
	return scan.Start(kind, p.Region(), value, scan.WithObserver(scanObserver()))
}

func scanObserver() scan.Observer {
	return logging.ScanObserver(app.logger.Logger)
}

// reloading re-reads its source before every refinement, so each pass sees
// the current bytes and never reads past a file that shrank.
type reloading struct {
	scan.Scanner
	p *source.Provider
}

func (r reloading) Refine(c scan.Criterion) error {
	if err := r.p.Reload(); err != nil {
		return err
	}
	return r.Scanner.Refine(c)
}

// refine applies one command line to s after reloading p.
func refine(p *source.Provider, s scan.Scanner, line string) (scan.Criterion, error) {
	return command.Apply(reloading{Scanner: s, p: p}, line)
}

func maxResults(c *cobra.Command) int {
	if n, _ := c.Flags().GetInt("max"); n > 0 {
		return n
	}
	return app.cfg.MaxResults
}

func runScan(c *cobra.Command, args []string) error {
	p, err := openSource(c, args[0])
	if err != nil {
		return err
	}
	defer p.Close()

	value, _ := c.Flags().GetString("value")
	s, err := startScan(c, p, value)
	if err != nil {
		return err
	}
	steps := []string{initialStep(value)}

	then, _ := c.Flags().GetStringArray("then")
	for _, line := range then {
		crit, err := refine(p, s, line)
		if errors.Is(err, command.ErrEmpty) {
			continue
		}
		if err != nil {
			return fmt.Errorf("--then %q: %w", line, err)
		}
		steps = append(steps, crit.String())
	}

	rep := render.Build(args[0], s, p.Symbolizer(), steps, maxResults(c))
	return writeReport(c, c.OutOrStdout(), rep)
}

func writeReport(c *cobra.Command, w io.Writer, rep render.Report) error {
	asJSON, _ := c.Flags().GetBool("json")
	asMarkdown, _ := c.Flags().GetBool("markdown")
	switch {
	case asJSON:
		return render.JSON(w, rep)
	case asMarkdown && color(w):
		return render.Terminal(w, rep, 100)
	case asMarkdown:
		_, err := io.WriteString(w, render.Markdown(rep))
		return err
	default:
		return render.Table(w, rep, color(w))
	}
}
