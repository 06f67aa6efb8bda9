package elfrw

import (
	"debug/elf"
	"fmt"
)

type Ehdr struct {
	Type    elf.Type    // Object file type
	Machine elf.Machine // Architecture
	Version uint32      // Object file version
	Entry   uint64      // Entry point virtual address
	Flags   uint32      // Processor-specific flags
}

type Phdr struct {
	Type   elf.ProgType // Segment type
	Flags  elf.ProgFlag // Segment flags
	Off    uint64       // Segment file offset
	Vaddr  uint64       // Segment virtual address
	Paddr  uint64       // Segment physical address
	Filesz uint64       // Segment size in file
	Memsz  uint64       // Segment size in memory
	Align  uint64       // Segment alignment
}

type Shdr struct {
	Name   string          // Resolved through the section name table
	Type   elf.SectionType // Section type
	Flags  elf.SectionFlag // Section flags
	Addr   uint64          // Virtual address at execution
	Offset uint64          // File offset
	Size   uint64          // Section size in bytes
}

// ParsedFile is a read-only view of an ELF file as produced by the reader.
// Nothing in this package modifies it after ParseELF returns.
type ParsedFile struct {
	Path     string
	Class    elf.Class
	Data     elf.Data
	Header   Ehdr
	Sections []Shdr
	Progs    []Phdr
}

// String describes the header for debug logs.
func (e *Ehdr) String() string {
	return fmt.Sprintf("%s for %s, version %d, entry 0x%x, flags 0x%x",
		TypeName(e.Type), MachineName(e.Machine), e.Version, e.Entry, e.Flags)
}

func (p *Phdr) String() string {
	return fmt.Sprintf("%s%s at offset 0x%x: %d bytes in file, %d in memory",
		ProgTypeName(p.Type), ProgFlagsName(p.Flags), p.Off, p.Filesz, p.Memsz)
}

func (s *Shdr) String() string {
	name := s.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%s %s%s at offset 0x%x: %d bytes",
		name, SectionTypeName(s.Type), SectionFlagsName(s.Flags), s.Offset, s.Size)
}
