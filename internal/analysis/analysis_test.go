package analysis

import (
	"testing"
)

func TestEscapeUnprintable(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("hello"), "hello"},
		{"control", []byte("a\nb"), "a\\u000Ab"},
		{"invalid utf8", []byte{'x', 0xff}, "x\\xFF"},
		{"unicode", []byte("héllo"), "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeUnprintable(tt.in); got != tt.want {
				t.Errorf("EscapeUnprintable(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	text, hex := Preview([]byte("ab\x00"))
	if text != "ab\\u0000" {
		t.Errorf("text = %q", text)
	}
	if hex != "616200" {
		t.Errorf("hex = %q", hex)
	}
}

func TestCachedDemangle(t *testing.T) {
	const mangled = "_ZN4Game6healthE"
	first := CachedDemangle(mangled)
	if first != "Game::health" {
		t.Fatalf("CachedDemangle(%q) = %q", mangled, first)
	}
	_, hitsBefore := DemangleCacheStats()
	if again := CachedDemangle(mangled); again != first {
		t.Errorf("second lookup = %q, want %q", again, first)
	}
	_, hitsAfter := DemangleCacheStats()
	if hitsAfter != hitsBefore+1 {
		t.Errorf("hits = %d, want %d", hitsAfter, hitsBefore+1)
	}

	if got := CachedDemangle("plain_c_name"); got != "plain_c_name" {
		t.Errorf("non-mangled name changed: %q", got)
	}
}

func TestSymbolizerWithoutImage(t *testing.T) {
	var s *Symbolizer
	if got := s.Name(0x1000); got != "" {
		t.Errorf("nil symbolizer named %q", got)
	}
	if got := NewSymbolizer(nil).Name(0x1000); got != "" {
		t.Errorf("empty symbolizer named %q", got)
	}
}
