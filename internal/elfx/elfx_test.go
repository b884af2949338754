package elfx

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBinary(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("test binary is not ELF on " + runtime.GOOS)
	}
	exe, err := os.Executable()
	require.NoError(t, err)
	return exe
}

func TestIsELF(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("not a binary"), 0o644))
	ok, err := IsELF(text)
	require.NoError(t, err)
	assert.False(t, ok)

	short := filepath.Join(dir, "short")
	require.NoError(t, os.WriteFile(short, []byte{0x7f}, 0o644))
	ok, err = IsELF(short)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsELF(testBinary(t))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenSections(t *testing.T) {
	im, err := Open(testBinary(t))
	require.NoError(t, err)
	defer im.Close()

	data, ok := im.Section(".data")
	require.True(t, ok, "test binary has no .data")
	assert.True(t, data.Writable)

	b, err := im.SectionBytes(data)
	require.NoError(t, err)
	assert.Len(t, b, int(data.Size))

	_, ok = im.Section(".does-not-exist")
	assert.False(t, ok)

	if bss, ok := im.Section(".bss"); ok {
		_, err := im.SectionBytes(bss)
		assert.Error(t, err)
	}
}

func TestSymbolAt(t *testing.T) {
	im, err := Open(testBinary(t))
	require.NoError(t, err)
	defer im.Close()
	require.NotEmpty(t, im.Symbols)

	sym := im.Symbols[len(im.Symbols)/2]
	got, off, ok := im.SymbolAt(sym.Addr)
	require.True(t, ok)
	assert.Equal(t, sym.Addr, got.Addr)
	assert.Zero(t, off)

	_, _, ok = im.SymbolAt(0)
	assert.False(t, ok)
}
