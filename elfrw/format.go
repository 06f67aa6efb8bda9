package elfrw

import "fmt"

// FileInfo formats the identity line: "path: class data machine type".
func FileInfo(f *ParsedFile) string {
	return fmt.Sprintf("%s: %s %s %s %s",
		f.Path,
		ClassName(f.Class),
		DataName(f.Data),
		MachineName(f.Header.Machine),
		TypeName(f.Header.Type))
}

// ProgInfo formats one program header row. Column widths are fixed so that
// dumps can be diffed against each other.
func ProgInfo(p Phdr) string {
	return fmt.Sprintf("%10s %20s 0x%016x 0x%016x 0x%016x 0x%016x %d",
		ProgTypeName(p.Type),
		ProgFlagsName(p.Flags),
		p.Vaddr,
		p.Paddr,
		p.Filesz,
		p.Memsz,
		p.Align)
}

// SectionInfo formats one section header row.
func SectionInfo(s Shdr) string {
	return fmt.Sprintf("%10s %20s 0x%016x 0x%016x 0x%016x",
		SectionTypeName(s.Type),
		SectionFlagsName(s.Flags),
		s.Addr,
		s.Offset,
		s.Size)
}
