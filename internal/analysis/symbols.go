// Package analysis annotates scan results with what the binary knows about
// the addresses they point at: symbol names and printable string contents.
package analysis

import (
	"fmt"
	"sync"

	"github.com/ianlancetaylor/demangle"

	"memscan/internal/elfx"
)

// symbolCache memoizes demangled names; annotating a large result set hits
// the same few symbols repeatedly.
type symbolCache struct {
	mu            sync.RWMutex
	demangleCache map[string]string
	hits          map[string]int
}

var cache = &symbolCache{
	demangleCache: make(map[string]string),
	hits:          make(map[string]int),
}

// CachedDemangle performs demangling with caching support.
func CachedDemangle(mangled string) string {
	cache.mu.RLock()
	if cached, exists := cache.demangleCache[mangled]; exists {
		cache.mu.RUnlock()
		cache.mu.Lock()
		cache.hits[mangled]++
		cache.mu.Unlock()
		return cached
	}
	cache.mu.RUnlock()

	demangled := demangle.Filter(mangled, demangle.NoClones)

	cache.mu.Lock()
	cache.demangleCache[mangled] = demangled
	cache.mu.Unlock()
	return demangled
}

// DemangleCacheStats returns the number of cached names and how many lookups
// were served from the cache.
func DemangleCacheStats() (symbols, hits int) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	for _, n := range cache.hits {
		hits += n
	}
	return len(cache.demangleCache), hits
}

// Symbolizer names addresses using an ELF image's symbol table.
type Symbolizer struct {
	im *elfx.Image
}

// NewSymbolizer returns a Symbolizer over im. A nil image names nothing.
func NewSymbolizer(im *elfx.Image) *Symbolizer {
	return &Symbolizer{im: im}
}

// Name returns "symbol+0xoff" for va, or "" when no symbol covers it.
func (s *Symbolizer) Name(va uint64) string {
	if s == nil || s.im == nil {
		return ""
	}
	sym, off, ok := s.im.SymbolAt(va)
	if !ok {
		return ""
	}
	name := CachedDemangle(sym.Name)
	if off == 0 {
		return name
	}
	return fmt.Sprintf("%s+0x%x", name, off)
}
