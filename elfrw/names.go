package elfrw

import (
	"debug/elf"
	"strings"
)

// Labels returned for codes missing from a table.
const (
	unknownLower = "unknown"
	unknownUpper = "UNKNOWN"
)

// name is one row of a code table.
type name[T comparable] struct {
	code  T
	label string
}

// lookup scans table in order and falls back to def when code is absent.
func lookup[T comparable](table []name[T], code T, def string) string {
	for _, n := range table {
		if n.code == code {
			return n.label
		}
	}
	return def
}

// flag is one row of a bitmask table.
type flag[T ~uint32] struct {
	bit    T
	marker string
}

// markers appends the marker of every set bit in table order. Bits not
// listed in the table are dropped.
func markers[T ~uint32](table []flag[T], mask T) string {
	var sb strings.Builder
	for _, f := range table {
		if mask&f.bit != 0 {
			sb.WriteString(f.marker)
		}
	}
	return sb.String()
}

var classNames = []name[elf.Class]{
	{elf.ELFCLASS32, "ELF32"},
	{elf.ELFCLASS64, "ELF64"},
}

var dataNames = []name[elf.Data]{
	{elf.ELFDATA2LSB, "little-endian"},
	{elf.ELFDATA2MSB, "big-endian"},
}

var typeNames = []name[elf.Type]{
	{elf.ET_NONE, "none"},
	{elf.ET_REL, "relocatable object"},
	{elf.ET_EXEC, "executable"},
	{elf.ET_DYN, "shared object"},
	{elf.ET_CORE, "core"},
}

// Only the targets this tool is used with are named.
var machineNames = []name[elf.Machine]{
	{elf.EM_NONE, "none"},
	{elf.EM_X86_64, "x86-64"},
	{elf.EM_RISCV, "RISC-V"},
}

var progTypeNames = []name[elf.ProgType]{
	{elf.PT_NULL, "NULL"},
	{elf.PT_LOAD, "LOAD"},
	{elf.PT_DYNAMIC, "DYNAMIC"},
	{elf.PT_INTERP, "INTERP"},
	{elf.PT_NOTE, "NOTE"},
	{elf.PT_SHLIB, "SHLIB"},
	{elf.PT_PHDR, "PHDR"},
}

var sectionTypeNames = []name[elf.SectionType]{
	{elf.SHT_NULL, "NULL"},
	{elf.SHT_PROGBITS, "PROGBITS"},
	{elf.SHT_SYMTAB, "SYMTAB"},
	{elf.SHT_STRTAB, "STRTAB"},
	{elf.SHT_RELA, "RELA"},
	{elf.SHT_HASH, "HASH"},
	{elf.SHT_DYNAMIC, "DYNAMIC"},
	{elf.SHT_NOTE, "NOTE"},
	{elf.SHT_NOBITS, "NOBITS"},
	{elf.SHT_REL, "REL"},
	{elf.SHT_SHLIB, "SHLIB"},
	{elf.SHT_DYNSYM, "DYNSYM"},
}

var symTypeNames = []name[elf.SymType]{
	{elf.STT_NOTYPE, "NOTYPE"},
	{elf.STT_OBJECT, "OBJECT"},
	{elf.STT_FUNC, "FUNC"},
	{elf.STT_SECTION, "SECTION"},
	{elf.STT_FILE, "FILE"},
}

var progFlags = []flag[elf.ProgFlag]{
	{elf.PF_X, "+X"},
	{elf.PF_W, "+W"},
	{elf.PF_R, "+R"},
}

var sectionFlags = []flag[elf.SectionFlag]{
	{elf.SHF_WRITE, "+WRITE"},
	{elf.SHF_ALLOC, "+ALLOC"},
	{elf.SHF_EXECINSTR, "+EXEC"},
}

// ClassName returns "ELF32", "ELF64" or "unknown".
func ClassName(c elf.Class) string {
	return lookup(classNames, c, unknownLower)
}

// DataName returns the byte order of the file as "little-endian",
// "big-endian" or "unknown".
func DataName(d elf.Data) string {
	return lookup(dataNames, d, unknownLower)
}

func TypeName(t elf.Type) string {
	return lookup(typeNames, t, unknownLower)
}

func MachineName(m elf.Machine) string {
	return lookup(machineNames, m, unknownLower)
}

func ProgTypeName(t elf.ProgType) string {
	return lookup(progTypeNames, t, unknownUpper)
}

func SectionTypeName(t elf.SectionType) string {
	return lookup(sectionTypeNames, t, unknownUpper)
}

// SymTypeName names the type nibble of a symbol's st_info.
func SymTypeName(t elf.SymType) string {
	return lookup(symTypeNames, t, unknownUpper)
}

// ProgFlagsName renders segment permissions as "+X+W+R", omitting absent
// bits. A zero mask gives "".
func ProgFlagsName(f elf.ProgFlag) string {
	return markers(progFlags, f)
}

// SectionFlagsName renders section flags as "+WRITE+ALLOC+EXEC", omitting
// absent bits. A zero mask gives "".
func SectionFlagsName(f elf.SectionFlag) string {
	return markers(sectionFlags, f)
}
