// Package elfx opens ELF binaries as shared read-only mappings and exposes
// their sections and symbols so a section can serve as a scan region.
package elfx

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"
	"sort"
	"syscall"
)

type Image struct {
	Path     string
	File     *elf.File
	All      []byte
	Sections []Section
	Symbols  []Symbol // sorted by address
	f        *os.File
}

type Section struct {
	Name     string
	VA, Off  uint64
	Size     uint64
	Writable bool
	NoBits   bool // occupies no file space (.bss)
}

type Symbol struct {
	Name string
	Addr uint64
	Size uint64
}

// IsELF reports whether the file at path starts with the ELF magic.
func IsELF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	magic := make([]byte, len(elf.ELFMAG))
	if _, err := io.ReadFull(f, magic); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(magic, []byte(elf.ELFMAG)), nil
}

func Open(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elf: %w", err)
	}

	of, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open file: %w", err)
	}

	fi, err := of.Stat()
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	// MAP_SHARED so writes by other processes are visible through the mapping.
	all, err := syscall.Mmap(int(of.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	im := &Image{Path: path, File: f, All: all, f: of}
	for _, s := range f.Sections {
		if s.Flags&elf.SHF_ALLOC == 0 || s.Size == 0 {
			continue
		}
		im.Sections = append(im.Sections, Section{
			Name:     s.Name,
			VA:       s.Addr,
			Off:      s.Offset,
			Size:     s.Size,
			Writable: s.Flags&elf.SHF_WRITE != 0,
			NoBits:   s.Type == elf.SHT_NOBITS,
		})
	}

	im.loadSymbols()
	return im, nil
}

// Close unmaps the memory and closes the underlying files.
func (im *Image) Close() error {
	var err1, err2 error
	if im.All != nil {
		err1 = syscall.Munmap(im.All)
		im.All = nil
	}
	if im.f != nil {
		err2 = im.f.Close()
		im.f = nil
	}
	if im.File != nil {
		err3 := im.File.Close()
		if err3 != nil && err2 == nil {
			err2 = err3
		}
		im.File = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// Section returns the allocated section with the given name.
func (im *Image) Section(name string) (Section, bool) {
	for _, s := range im.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// SectionBytes returns the mapped file bytes backing s. The slice aliases the
// shared mapping, so it reflects later writes to the file.
func (im *Image) SectionBytes(s Section) ([]byte, error) {
	if s.NoBits {
		return nil, fmt.Errorf("section %s has no file contents", s.Name)
	}
	end := s.Off + s.Size
	if end > uint64(len(im.All)) {
		return nil, fmt.Errorf("section %s [0x%x:0x%x] exceeds file size 0x%x", s.Name, s.Off, end, len(im.All))
	}
	return im.All[s.Off:end], nil
}

// SymbolAt returns the symbol covering va and va's offset into it. Symbols
// without a size cover everything up to the next symbol.
func (im *Image) SymbolAt(va uint64) (Symbol, uint64, bool) {
	i := sort.Search(len(im.Symbols), func(i int) bool { return im.Symbols[i].Addr > va })
	if i == 0 {
		return Symbol{}, 0, false
	}
	sym := im.Symbols[i-1]
	if sym.Size != 0 && va >= sym.Addr+sym.Size {
		return Symbol{}, 0, false
	}
	return sym, va - sym.Addr, true
}

// loadSymbols collects object and function symbols from .symtab, falling
// back to .dynsym for stripped binaries.
func (im *Image) loadSymbols() {
	syms, err := im.File.Symbols()
	if err != nil || len(syms) == 0 {
		syms, err = im.File.DynamicSymbols()
		if err != nil {
			return
		}
	}

	seen := make(map[uint64]bool)
	for _, sym := range syms {
		if sym.Value == 0 || sym.Name == "" {
			continue
		}
		switch elf.ST_TYPE(sym.Info) {
		case elf.STT_OBJECT, elf.STT_FUNC:
		default:
			continue
		}
		if seen[sym.Value] {
			continue
		}
		seen[sym.Value] = true
		im.Symbols = append(im.Symbols, Symbol{Name: sym.Name, Addr: sym.Value, Size: sym.Size})
	}
	sort.Slice(im.Symbols, func(i, j int) bool {
		return im.Symbols[i].Addr < im.Symbols[j].Addr
	})
}
