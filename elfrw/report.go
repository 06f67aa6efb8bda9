package elfrw

import (
	"fmt"
	"io"
	"strings"
)

const (
	sectionTitles = "                   %10s %20s %18s %18s %18s\n"
	progTitles    = "                   %10s %20s %18s %18s %18s %18s %s\n"
)

// Report renders the header dump of f: identity line, section headers,
// program headers and the entry address. f is only read.
func Report(f *ParsedFile) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n\n", FileInfo(f))

	fmt.Fprintf(&sb, sectionTitles, "Type", "Flags", "Addr", "Offset", "Size")
	for i, s := range f.Sections {
		fmt.Fprintf(&sb, "section header[%02d] %s\n", i, SectionInfo(s))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, progTitles,
		"Type", "Flags", "VirtAddr", "PhysAddr", "FileSize", "MemSize", "Align")
	for i, p := range f.Progs {
		fmt.Fprintf(&sb, "program header[%02d] %s\n", i, ProgInfo(p))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "EntryAddr: 0x%016x\n\n", f.Header.Entry)
	return sb.String()
}

// PrintReport writes Report(f) to w. The only error it returns comes from w.
func PrintReport(w io.Writer, f *ParsedFile) error {
	if _, err := io.WriteString(w, Report(f)); err != nil {
		return fmt.Errorf("failed to write report for %s: %w", f.Path, err)
	}
	return nil
}
