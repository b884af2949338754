package cmd

import (
	"github.com/spf13/cobra"

	"memscan/internal/scan"
	"memscan/internal/source"
)

func addSourceFlags(c *cobra.Command) {
	c.Flags().StringP("type", "t", "", "Value type: i8 i16 i32 i64 u8 u16 u32 u64 f32 f64 (default from config)")
	c.Flags().StringP("section", "s", "", "ELF section to use as the region")
	c.Flags().Int("offset", 0, "Start of the region inside the file or section")
	c.Flags().Int("length", 0, "Region length in bytes, 0 for the rest")
	c.Flags().Bool("snapshot", false, "Copy the bytes and re-read them each pass instead of mapping the file")
}

func openSource(c *cobra.Command, file string) (*source.Provider, error) {
	path, err := resolveFile(file)
	if err != nil {
		return nil, err
	}
	section, _ := c.Flags().GetString("section")
	offset, _ := c.Flags().GetInt("offset")
	length, _ := c.Flags().GetInt("length")
	snapshot, _ := c.Flags().GetBool("snapshot")

	p, err := source.Open(path, source.Options{
		Section:  section,
		Offset:   offset,
		Length:   length,
		Snapshot: snapshot,
	})
	if err != nil {
		return nil, err
	}
	app.logger.Debug("opened source", "source", p)
	return p, nil
}

// valueKind returns the --type flag, falling back to the configured type.
func valueKind(c *cobra.Command) (scan.Kind, error) {
	if t, _ := c.Flags().GetString("type"); t != "" {
		return scan.ParseKind(t)
	}
	return app.cfg.Kind(), nil
}
