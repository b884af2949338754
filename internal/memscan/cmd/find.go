package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"memscan/internal/analysis"
	"memscan/internal/memory"
	"memscan/internal/memscan/styles"
)

var findCmd = &cobra.Command{
	Use:   "find FILE",
	Short: "Search a file for a value, byte pattern or string",
	Long: `Find reports where a value occurs, without starting a scan session.
Typed values (--value) only match at offsets aligned to their size; byte
patterns (--bytes, --string) match anywhere, overlaps included.`,
	Example: `
memscan find save.bin --type u16 --value 0x1f4
memscan find ./game --section .rodata --string "PLAYER"
memscan find dump.bin --bytes "de ad be ef" --first
  `,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	addSourceFlags(findCmd)
	findCmd.Flags().StringP("value", "v", "", "Typed value to search for")
	findCmd.Flags().StringP("bytes", "b", "", "Hex byte pattern, spaces allowed")
	findCmd.Flags().String("string", "", "Literal string to search for")
	findCmd.Flags().Bool("first", false, "Stop at the first match")
	findCmd.MarkFlagsMutuallyExclusive("value", "bytes", "string")
	findCmd.MarkFlagsOneRequired("value", "bytes", "string")
}

func patternFlag(c *cobra.Command) ([]byte, error) {
	if s, _ := c.Flags().GetString("string"); s != "" {
		return []byte(s), nil
	}
	h, _ := c.Flags().GetString("bytes")
	if h == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(strings.Join(strings.Fields(h), ""))
	if err != nil {
		return nil, fmt.Errorf("--bytes: %w", err)
	}
	if len(b) == 0 {
		return nil, errors.New("--bytes: empty pattern")
	}
	return b, nil
}

func runFind(c *cobra.Command, args []string) error {
	p, err := openSource(c, args[0])
	if err != nil {
		return err
	}
	defer p.Close()

	r := p.Region()
	first, _ := c.Flags().GetBool("first")
	pattern, err := patternFlag(c)
	if err != nil {
		return err
	}

	var offsets []int
	var width int
	if pattern != nil {
		offsets = memory.FindBytes(r, pattern)
		if first && len(offsets) > 1 {
			offsets = offsets[:1]
		}
		width = len(pattern)
	} else {
		kind, err := valueKind(c)
		if err != nil {
			return err
		}
		value, _ := c.Flags().GetString("value")
		if offsets, err = findValue(kind, r, value, first); err != nil {
			return err
		}
		width = kind.Size()
	}

	str, _ := c.Flags().GetString("string")
	return printMatches(c, r, p.Symbolizer(), offsets, width, str != "")
}

func printMatches(c *cobra.Command, r *memory.Region, sym *analysis.Symbolizer, offsets []int, width int, asText bool) error {
	out := c.OutOrStdout()
	styled := color(out)
	for _, off := range offsets {
		addr := fmt.Sprintf("0x%016x", r.AddrOf(off))
		if styled {
			addr = styles.Addr.Render(addr)
		}
		line := fmt.Sprintf("%s  +0x%x", addr, off)

		if b, err := r.Slice(off, width); err == nil {
			text, hexs := analysis.Preview(b)
			if asText {
				line += "  " + text
			} else {
				line += "  " + hexs
			}
		}
		if name := sym.Name(r.AddrOf(off)); name != "" {
			if styled {
				name = styles.Symbol.Render(name)
			}
			line += "  " + name
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%d match(es)\n", len(offsets))
	return nil
}
