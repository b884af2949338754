// Package colorize highlights typed memory dumps for the terminal.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Disabled reports whether MEMSCAN_NO_COLOR turns highlighting off.
func Disabled() bool {
	return os.Getenv("MEMSCAN_NO_COLOR") != ""
}

// getDumpLexer returns the hexdump lexer, or nil when chroma lacks one.
func getDumpLexer() chroma.Lexer {
	candidates := []string{"hexdump", "Hexdump"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getDumpStyle returns the dump style with fallbacks
func getDumpStyle() *chroma.Style {
	candidates := []string{"dump-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// ColorizeDump highlights the output of memory.Dump. It returns the input
// unchanged when colors are disabled or no lexer is available.
func ColorizeDump(dump string) (string, error) {
	if Disabled() {
		return dump, nil
	}

	lexer := getDumpLexer()
	if lexer == nil {
		return dump, nil
	}

	iterator, err := lexer.Tokenise(nil, dump)
	if err != nil {
		return dump, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDumpStyle(), iterator); err != nil {
		return dump, err
	}
	return buf.String(), nil
}
