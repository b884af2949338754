package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// DumpDark matches the result table colors: gray addresses, pink values.
var DumpDark = styles.Register(chroma.MustNewStyle("dump-dark", chroma.StyleEntries{
	chroma.Text:       "#FFFFFF",
	chroma.Background: "bg:#1e1e1e",
	chroma.Comment:    "#6A9955",

	chroma.NameLabel: "#4F4F4F", // addresses
	chroma.Name:      "#7C9C9D",

	chroma.LiteralNumber:        "#FF5F87",
	chroma.LiteralNumberHex:     "#FF5F87",
	chroma.LiteralNumberInteger: "#FF5F87",

	chroma.Punctuation: "#FFFFFF",
	chroma.String:      "#EACD53",
}))
