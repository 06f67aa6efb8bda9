package elfrw

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yalue/elf_reader"
)

var (
	ErrNotELF         = errors.New("not an ELF file")
	ErrUnsupportedELF = errors.New("unsupported ELF layout")
	ErrNotRegular     = errors.New("not a regular file")
)

// ReadELF reads the file at path and returns its parsed header view.
func ReadELF(path string) (*ParsedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	rawData, err := readFileData(file)
	if err != nil {
		return nil, err
	}
	return ParseELF(path, rawData)
}

// ParseELF parses raw as an ELF image. path is only used as the label of the
// identity line.
func ParseELF(path string, raw []byte) (*ParsedFile, error) {
	if len(raw) <= elf.EI_DATA || !strings.HasPrefix(string(raw[:4]), elf.ELFMAG) {
		return nil, ErrNotELF
	}

	elfFile, err := elf_reader.ParseELFFile(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file: %w", err)
	}

	pf := &ParsedFile{
		Path:  path,
		Class: elf.Class(raw[elf.EI_CLASS]),
		Data:  elf.Data(raw[elf.EI_DATA]),
	}

	var (
		shdrs []elf_reader.ELFSectionHeader
		phdrs []elf_reader.ELFProgramHeader
	)
	switch f := elfFile.(type) {
	case *elf_reader.ELF64File:
		pf.Header = Ehdr{
			Type:    elf.Type(f.Header.Type),
			Machine: elf.Machine(f.Header.Machine),
			Version: f.Header.Version2,
			Entry:   f.Header.EntryPoint,
			Flags:   f.Header.Flags,
		}
		for i := range f.Sections {
			shdrs = append(shdrs, &f.Sections[i])
		}
		for i := range f.Segments {
			phdrs = append(phdrs, &f.Segments[i])
		}
	case *elf_reader.ELF32File:
		pf.Header = Ehdr{
			Type:    elf.Type(f.Header.Type),
			Machine: elf.Machine(f.Header.Machine),
			Version: f.Header.Version2,
			Entry:   uint64(f.Header.EntryPoint),
			Flags:   f.Header.Flags,
		}
		for i := range f.Sections {
			shdrs = append(shdrs, &f.Sections[i])
		}
		for i := range f.Segments {
			phdrs = append(phdrs, &f.Segments[i])
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedELF, elfFile)
	}

	pf.Sections = parseSections(elfFile, shdrs)
	pf.Progs = parseSegments(phdrs)
	return pf, nil
}

func readFileData(file *os.File) ([]byte, error) {
	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, fileInfo.Mode().Type())
	}

	rawData := make([]byte, fileInfo.Size())
	if _, err := io.ReadFull(file, rawData); err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	return rawData, nil
}

func parseSections(ef elf_reader.ELFFile, headers []elf_reader.ELFSectionHeader) []Shdr {
	sections := make([]Shdr, 0, len(headers))
	for i, header := range headers {
		var name string
		if i != 0 {
			// Names are cosmetic; a broken string table must not hide the header.
			name, _ = ef.GetSectionName(uint16(i))
		}
		sections = append(sections, Shdr{
			Name:   name,
			Type:   elf.SectionType(header.GetType()),
			Flags:  rawSectionFlags(header.GetFlags()),
			Addr:   header.GetVirtualAddress(),
			Offset: header.GetFileOffset(),
			Size:   header.GetSize(),
		})
	}
	return sections
}

func parseSegments(headers []elf_reader.ELFProgramHeader) []Phdr {
	segments := make([]Phdr, 0, len(headers))
	for _, phdr := range headers {
		segments = append(segments, Phdr{
			Type:   elf.ProgType(phdr.GetType()),
			Flags:  elf.ProgFlag(phdr.GetFlags()),
			Off:    phdr.GetFileOffset(),
			Vaddr:  phdr.GetVirtualAddress(),
			Paddr:  phdr.GetPhysicalAddress(),
			Filesz: phdr.GetFileSize(),
			Memsz:  phdr.GetMemorySize(),
			Align:  phdr.GetAlignment(),
		})
	}
	return segments
}

// rawSectionFlags recovers the raw flag word so bits without a marker still
// reach the translator, which drops them.
func rawSectionFlags(flags elf_reader.ELFSectionFlags) elf.SectionFlag {
	switch f := flags.(type) {
	case elf_reader.SectionHeaderFlags64:
		return elf.SectionFlag(uint32(f))
	case elf_reader.SectionHeaderFlags32:
		return elf.SectionFlag(f)
	}
	var result elf.SectionFlag
	if flags.Writable() {
		result |= elf.SHF_WRITE
	}
	if flags.Allocated() {
		result |= elf.SHF_ALLOC
	}
	if flags.Executable() {
		result |= elf.SHF_EXECINSTR
	}
	return result
}
