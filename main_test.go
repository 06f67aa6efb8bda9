package main

import (
	"bytes"
	"debug/elf"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"elfinfo/elfrw"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampWorkers(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{8, 8},
		{16, 16},
		{64, 16},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampWorkers(tt.in), "workers %d", tt.in)
	}
}

func TestProcessFilesKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var filenames []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("not an elf "+name), 0644))
		filenames = append(filenames, path)
	}

	for _, config := range []*Config{
		{Parallel: false, MaxWorkers: 1},
		{Parallel: true, MaxWorkers: 3},
	} {
		results := processFiles(config, filenames)
		require.Len(t, results, len(filenames))
		for i, result := range results {
			assert.Equal(t, filenames[i], result.Filename)
			assert.ErrorIs(t, result.Error, elfrw.ErrNotELF)
			assert.Empty(t, result.Report)
		}
	}
}

func TestWriteResults(t *testing.T) {
	results := []ProcessResult{
		{Filename: "one", Report: []byte("first\n")},
		{Filename: "two", Error: elfrw.ErrNotELF},
		{Filename: "three", Report: []byte("third\n")},
	}

	var stdout, stderr bytes.Buffer
	err := writeResults(&stdout, &stderr, &Config{}, results)
	assert.ErrorIs(t, err, ErrFilesFailed)
	assert.Equal(t, "first\nthird\n", stdout.String())
	assert.Empty(t, stderr.String())

	stdout.Reset()
	err = writeResults(&stdout, &stderr, &Config{Verbose: true, NoColor: true}, results[:1])
	require.NoError(t, err)
	assert.Equal(t, "first\n", stdout.String())
	assert.Contains(t, stderr.String(), "one")
}

func TestProcessFileSelf(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("test binary is not an ELF file on " + runtime.GOOS)
	}
	exe, err := os.Executable()
	require.NoError(t, err)

	first := processFile(exe)
	require.NoError(t, first.Error)
	second := processFile(exe)
	require.NoError(t, second.Error)

	assert.Equal(t, first.Report, second.Report)
	assert.True(t, bytes.HasPrefix(first.Report, []byte(exe+": ")))
	assert.Contains(t, string(first.Report), "EntryAddr: 0x")
}

func TestLogHeaders(t *testing.T) {
	handler := memory.New()
	log.SetHandler(handler)
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() {
		log.SetHandler(clihandler.Default)
		log.SetLevel(log.InfoLevel)
	})

	parsed := &elfrw.ParsedFile{
		Path:   "/tmp/hello",
		Class:  elf.ELFCLASS64,
		Data:   elf.ELFDATA2LSB,
		Header: elfrw.Ehdr{Type: elf.ET_EXEC, Machine: elf.EM_RISCV, Version: 1, Entry: 0x1000},
		Sections: []elfrw.Shdr{
			{Type: elf.SHT_NULL},
			{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Offset: 0x78, Size: 0x200},
		},
		Progs: []elfrw.Phdr{
			{Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Off: 0x40, Filesz: 0x200, Memsz: 0x300},
		},
	}
	logHeaders(parsed)

	require.Len(t, handler.Entries, 4)
	assert.Equal(t, "Parsed ELF headers: executable for RISC-V, version 1, entry 0x1000, flags 0x0", handler.Entries[0].Message)
	assert.Equal(t, "hello", handler.Entries[0].Fields["file"])
	assert.Equal(t, 2, handler.Entries[0].Fields["sections"])
	assert.Equal(t, "<unnamed> NULL at offset 0x0: 0 bytes", handler.Entries[1].Message)
	assert.Equal(t, ".text PROGBITS+ALLOC+EXEC at offset 0x78: 512 bytes", handler.Entries[2].Message)
	assert.Equal(t, 1, handler.Entries[2].Fields["index"])
	assert.Equal(t, "LOAD+X+R at offset 0x40: 512 bytes in file, 768 in memory", handler.Entries[3].Message)
}
