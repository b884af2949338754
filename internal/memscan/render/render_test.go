package render

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memscan/internal/memory"
	"memscan/internal/scan"
)

func newScanner(t *testing.T, vals ...int32) scan.Scanner {
	t.Helper()
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint32(buf[i*4:], uint32(v))
	}
	r, err := memory.NewRegionAt(0x1000, buf)
	require.NoError(t, err)
	s, err := scan.Start(scan.KindInt32, r, "10")
	require.NoError(t, err)
	return s
}

func TestBuild(t *testing.T) {
	s := newScanner(t, 10, 20, 10, 30, 10)

	rep := Build("game.bin", s, nil, []string{"eq 10"}, 0)
	assert.Equal(t, "i32", rep.Type)
	assert.Equal(t, 3, rep.Total)
	assert.False(t, rep.Truncated)
	require.Len(t, rep.Rows, 3)
	assert.Equal(t, Row{Offset: 8, Addr: "0x1008", Value: "10"}, rep.Rows[1])

	rep = Build("game.bin", s, nil, nil, 2)
	assert.Equal(t, 3, rep.Total)
	assert.True(t, rep.Truncated)
	assert.Len(t, rep.Rows, 2)
}

func TestTable(t *testing.T) {
	rep := Build("game.bin", newScanner(t, 10, 20, 10), nil, nil, 1)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, rep, false))
	out := buf.String()
	for _, want := range []string{"game.bin", "OFFSET", "0x1000", "2 candidate(s), showing first 1"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "SYMBOL")
	assert.NotContains(t, out, "\x1b[")
}

func TestTableEmpty(t *testing.T) {
	s := newScanner(t, 10, 20)
	require.NoError(t, s.Refine(scan.Criterion{Name: scan.CritEqual, Args: []string{"99"}}))

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, Build("x", s, nil, nil, 10), false))
	assert.NotContains(t, buf.String(), "OFFSET")
	assert.Contains(t, buf.String(), "0 candidate(s)")
}

func TestJSON(t *testing.T) {
	rep := Build("game.bin", newScanner(t, 10, 20), nil, []string{"eq 10"}, 10)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, rep))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, rep, got)
	assert.NotContains(t, buf.String(), "symbol")
}

func TestMarkdown(t *testing.T) {
	rep := Build("game.bin", newScanner(t, 10, 20, 10), nil, []string{"eq 10", "unchanged"}, 10)
	rep.Rows[0].Symbol = "Game::health"

	md := Markdown(rep)
	assert.True(t, strings.HasPrefix(md, "# Scan of `game.bin`"))
	assert.Contains(t, md, "2. `unchanged`")
	assert.Contains(t, md, "| Offset | Address | Value | Symbol |")
	assert.Contains(t, md, "| +0x0 | `0x1000` | 10 | Game::health |")
}

func TestTerminal(t *testing.T) {
	rep := Build("game.bin", newScanner(t, 10), nil, nil, 10)

	var buf bytes.Buffer
	require.NoError(t, Terminal(&buf, rep, 80))
	assert.Contains(t, buf.String(), "game.bin")
}
