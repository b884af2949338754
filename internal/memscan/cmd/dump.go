package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"memscan/internal/memscan/styles"
	"memscan/internal/ui/colorize"
)

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Print a region as rows of typed hex values",
	Example: `
memscan dump save.bin --type u32 --length 256
memscan dump ./game --section .data --type i16 --per-line 8
  `,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	addSourceFlags(dumpCmd)
	dumpCmd.Flags().IntP("per-line", "p", 0, "Values per line (default from config)")
}

func runDump(c *cobra.Command, args []string) error {
	p, err := openSource(c, args[0])
	if err != nil {
		return err
	}
	defer p.Close()

	kind, err := valueKind(c)
	if err != nil {
		return err
	}
	perLine, _ := c.Flags().GetInt("per-line")
	if perLine <= 0 {
		perLine = app.cfg.PerLine
	}

	var b strings.Builder
	if err := dumpAs(kind, &b, p.Region(), perLine); err != nil {
		return err
	}

	out := c.OutOrStdout()
	text := b.String()
	if color(out) {
		fmt.Fprintln(out, styles.Faint.Render(p.String()))
		if colored, err := colorize.ColorizeDump(text); err == nil {
			text = colored
		} else {
			app.logger.Debug("colorize failed", "err", err)
		}
	}
	_, err = fmt.Fprint(out, text)
	return err
}
