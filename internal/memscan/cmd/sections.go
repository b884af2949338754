package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"memscan/internal/elfx"
	"memscan/internal/memscan/styles"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections FILE",
	Short: "List the loadable sections of an ELF file",
	Long: `Sections lists the sections memscan can use as a region with --section.
Sections without file contents (such as .bss) are marked and cannot be
scanned.`,
	Args: cobra.ExactArgs(1),
	RunE: runSections,
}

func runSections(c *cobra.Command, args []string) error {
	path, err := resolveFile(args[0])
	if err != nil {
		return err
	}
	isELF, err := elfx.IsELF(path)
	if err != nil {
		return err
	}
	if !isELF {
		return fmt.Errorf("%s is not an ELF file", args[0])
	}
	img, err := elfx.Open(path)
	if err != nil {
		return err
	}
	defer img.Close()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "ADDRESS", "OFFSET", "SIZE", "FLAGS")
	for _, s := range img.Sections {
		t.Row(s.Name, fmt.Sprintf("0x%x", s.VA), fmt.Sprintf("0x%x", s.Off), strconv.FormatUint(s.Size, 10), sectionFlags(s))
	}
	out := c.OutOrStdout()
	if color(out) {
		t.StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.Title.Padding(0, 1)
			case col == 1:
				return styles.Addr.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}
	fmt.Fprintln(out, t.String())
	fmt.Fprintf(out, "%d section(s), %d symbol(s)\n", len(img.Sections), len(img.Symbols))
	return nil
}

func sectionFlags(s elfx.Section) string {
	f := "r"
	if s.Writable {
		f += "w"
	}
	if s.NoBits {
		f += " nobits"
	}
	return f
}
