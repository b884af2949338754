package cmd

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memscan/internal/config"
	"memscan/internal/logging"
	"memscan/internal/memscan/render"
	"memscan/internal/scan"
	"memscan/internal/source"
)

// resetFlags puts every flag back to its default so commands can be executed
// more than once in a test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MEMSCAN_CONFIG", "")
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--data-dir", t.TempDir()))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeInt32s(t *testing.T, vals ...int32) string {
	t.Helper()
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint32(buf[i*4:], uint32(v))
	}
	path := filepath.Join(t.TempDir(), "mem.bin")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestScanCommand(t *testing.T) {
	path := writeInt32s(t, 10, 20, 10, 30)

	out, err := execute(t, "scan", path, "--type", "i32", "--value", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "2 candidate(s)")
	assert.Contains(t, out, "+0x8")

	out, err = execute(t, "scan", path, "-t", "i32", "--then", "range 15 30", "--then", "# nothing", "--then", "unchanged")
	require.NoError(t, err)
	assert.Contains(t, out, "2 candidate(s)")
}

func TestScanCommandJSON(t *testing.T) {
	path := writeInt32s(t, 10, 20, 10, 30)

	out, err := execute(t, "scan", path, "-t", "i32", "-v", "10", "--then", "= 10", "--json", "--max", "1")
	require.NoError(t, err)

	var rep render.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "i32", rep.Type)
	assert.Equal(t, []string{"eq 10", "eq 10"}, rep.Steps)
	assert.Equal(t, 2, rep.Total)
	assert.True(t, rep.Truncated)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, 0, rep.Rows[0].Offset)
}

func TestScanCommandMarkdown(t *testing.T) {
	path := writeInt32s(t, 7, 8)

	out, err := execute(t, "scan", path, "-t", "i32", "-v", "8", "--markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Scan of")
	assert.Contains(t, out, "| +0x4 |")
}

func TestScanCommandErrors(t *testing.T) {
	path := writeInt32s(t, 10, 20)

	_, err := execute(t, "scan", path, "-t", "i32", "--then", "range 1")
	require.Error(t, err)

	_, err = execute(t, "scan", path, "-t", "i128")
	require.Error(t, err)

	_, err = execute(t, "scan", filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorContains(t, err, "file not found")

	_, err = execute(t, "scan", path, "-t", "i32", "--offset", "64")
	require.Error(t, err)
}

func TestScriptCommand(t *testing.T) {
	path := writeInt32s(t, 10, 20, 10, 30)
	script := filepath.Join(t.TempDir(), "steps.txt")
	require.NoError(t, os.WriteFile(script, []byte("# keep the tens\n\n= 10\nsame\n"), 0o644))

	out, err := execute(t, "script", path, script, "-t", "i32")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown: 4 candidate(s)")
	assert.Contains(t, out, "3: eq 10: 2 candidate(s)")
	assert.Contains(t, out, "4: unchanged: 2 candidate(s)")

	require.NoError(t, os.WriteFile(script, []byte("= 10\nbogus\n"), 0o644))
	_, err = execute(t, "script", path, script, "-t", "i32")
	require.ErrorContains(t, err, "line 2")
}

func TestScriptSnapshotSeesWrites(t *testing.T) {
	path := writeInt32s(t, 10, 20, 10, 30)
	p, err := source.Open(path, source.Options{Snapshot: true})
	require.NoError(t, err)
	defer p.Close()

	app = state{cfg: config.Default(), logger: logging.NewLoggerWithWriter(io.Discard)}
	s, err := scan.Start(scan.KindInt32, p.Region(), "10")
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], 11)
	_, err = f.WriteAt(b[:], 8)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = refine(p, s, "inc")
	require.NoError(t, err)
	require.Len(t, s.Results(), 1)
	assert.Equal(t, scan.Match{Offset: 8, Value: "11"}, s.Results()[0])
}

func TestFindCommand(t *testing.T) {
	path := writeInt32s(t, 10, 20, 10, 30)
	out, err := execute(t, "find", path, "-t", "i32", "--value", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "2 match(es)")

	text := filepath.Join(t.TempDir(), "text.bin")
	require.NoError(t, os.WriteFile(text, []byte("hello world hello"), 0o644))

	out, err = execute(t, "find", text, "--string", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "+0xc  hello")
	assert.Contains(t, out, "2 match(es)")

	out, err = execute(t, "find", text, "--bytes", "6c 6c", "--first")
	require.NoError(t, err)
	assert.Contains(t, out, "+0x2  6c6c")
	assert.Contains(t, out, "1 match(es)")

	_, err = execute(t, "find", text, "--bytes", "zz")
	require.Error(t, err)

	_, err = execute(t, "find", text)
	require.Error(t, err)
}

func TestDumpCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bytes.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4, 5}, 0o644))

	out, err := execute(t, "dump", path, "-t", "u8", "--per-line", "4")
	require.NoError(t, err)
	assert.Equal(t, "0000000000000000  01 02 03 04\n0000000000000004  05\n", out)
}

func TestSectionsCommand(t *testing.T) {
	text := filepath.Join(t.TempDir(), "text.bin")
	require.NoError(t, os.WriteFile(text, []byte("not an elf"), 0o644))
	_, err := execute(t, "sections", text)
	require.ErrorContains(t, err, "not an ELF file")

	if runtime.GOOS != "linux" {
		t.Skip("test binary is not ELF")
	}
	exe, err := os.Executable()
	require.NoError(t, err)
	out, err := execute(t, "sections", exe)
	require.NoError(t, err)
	assert.Contains(t, out, ".text")
	assert.Contains(t, out, "section(s)")
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"maxResults"`)
	assert.Contains(t, out, `"perLine"`)
}

func TestMissingConfigFlag(t *testing.T) {
	_, err := execute(t, "schema", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
