// Package source provides the buffers memscan scans: a file mapped shared and
// read-only so that writes made by another process show up between passes, or
// a private snapshot that is refreshed explicitly. ELF files can be narrowed
// to a single section, in which case addresses are virtual addresses.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"memscan/internal/analysis"
	"memscan/internal/elfx"
	"memscan/internal/memory"
)

// ErrShrunk is returned by Reload when the file no longer covers the region.
var ErrShrunk = errors.New("source shrank")

// Options selects which bytes of a file become the region.
type Options struct {
	// Section names an ELF section (".data", ".bss" is not file backed).
	// Ignored for non-ELF files.
	Section string
	// Offset and Length narrow the region inside the file or section.
	// Length 0 means "to the end".
	Offset int
	Length int
	// Snapshot copies the bytes into a private buffer that only changes on
	// Reload, instead of mapping the file.
	Snapshot bool
}

// Provider owns the storage behind a region. The region must not be used
// after Close.
type Provider struct {
	path     string
	opts     Options
	img      *elfx.Image
	mapping  []byte
	buf      []byte
	fileOff  int64
	region   *memory.Region
	describe string
}

// Open prepares the region described by opts over the file at path.
func Open(path string, opts Options) (*Provider, error) {
	isELF, err := elfx.IsELF(path)
	if err != nil {
		return nil, err
	}

	p := &Provider{path: path, opts: opts}
	var (
		data []byte
		addr uint64
	)
	if isELF && opts.Section != "" {
		data, addr, err = p.openSection(opts.Section)
	} else {
		data, err = p.openFile()
	}
	if err != nil {
		p.Close()
		return nil, err
	}

	data, addr, err = window(data, addr, opts)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.fileOff += int64(opts.Offset)

	if opts.Snapshot {
		p.buf = make([]byte, len(data))
		copy(p.buf, data)
		data = p.buf
	}

	p.region, err = memory.NewRegionAt(addr, data)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *Provider) openSection(name string) ([]byte, uint64, error) {
	img, err := elfx.Open(p.path)
	if err != nil {
		return nil, 0, err
	}
	p.img = img
	sec, ok := img.Section(name)
	if !ok {
		return nil, 0, fmt.Errorf("%s: no section %s", p.path, name)
	}
	data, err := img.SectionBytes(sec)
	if err != nil {
		return nil, 0, err
	}
	p.fileOff = int64(sec.Off)
	p.describe = fmt.Sprintf("%s %s", p.path, name)
	return data, sec.VA, nil
}

func (p *Provider) openFile() ([]byte, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%s: %w: empty file", p.path, memory.ErrInvalidRegion)
	}
	m, err := syscall.Mmap(int(f.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap file: %w", err)
	}
	p.mapping = m
	p.describe = p.path
	return m, nil
}

func window(data []byte, addr uint64, opts Options) ([]byte, uint64, error) {
	if opts.Offset < 0 || opts.Length < 0 || opts.Offset > len(data) {
		return nil, 0, fmt.Errorf("%w: offset %d length %d outside %d bytes", memory.ErrOutOfBounds, opts.Offset, opts.Length, len(data))
	}
	end := len(data)
	if opts.Length > 0 {
		end = opts.Offset + opts.Length
		if end > len(data) {
			return nil, 0, fmt.Errorf("%w: offset %d length %d outside %d bytes", memory.ErrOutOfBounds, opts.Offset, opts.Length, len(data))
		}
	}
	return data[opts.Offset:end], addr + uint64(opts.Offset), nil
}

// Region returns the region backed by this provider.
func (p *Provider) Region() *memory.Region { return p.region }

// Symbolizer names addresses inside ELF-backed regions.
func (p *Provider) Symbolizer() *analysis.Symbolizer { return analysis.NewSymbolizer(p.img) }

// Live reports whether the region tracks the file without Reload.
func (p *Provider) Live() bool { return !p.opts.Snapshot }

func (p *Provider) String() string {
	mode := "live"
	if p.opts.Snapshot {
		mode = "snapshot"
	}
	return fmt.Sprintf("%s [%s] %s", p.describe, mode, p.region)
}

// Reload makes the region reflect the file's current contents. Mapped regions
// already do; Reload only verifies the file still covers them, since reading
// a truncated mapping faults. Snapshots are re-read in place.
func (p *Provider) Reload() error {
	f, err := os.Open(p.path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	need := p.fileOff + int64(p.region.Len())
	if fi.Size() < need {
		return fmt.Errorf("%w: %s is %d bytes, region needs %d", ErrShrunk, p.path, fi.Size(), need)
	}
	if p.buf == nil {
		return nil
	}
	if _, err := f.ReadAt(p.buf, p.fileOff); err != nil && err != io.EOF {
		return fmt.Errorf("reload %s: %w", p.path, err)
	}
	return nil
}

// Close releases the mapping and any open image.
func (p *Provider) Close() error {
	var err error
	if p.mapping != nil {
		err = syscall.Munmap(p.mapping)
		p.mapping = nil
	}
	if p.img != nil {
		if cerr := p.img.Close(); cerr != nil && err == nil {
			err = cerr
		}
		p.img = nil
	}
	return err
}
