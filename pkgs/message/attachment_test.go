package message

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteToFile(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x01}
	a := &Attachment{Filename: "pic.png", MIMEType: "image/png", Data: data}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := a.WriteToFile(path); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("written bytes = %v, want %v", got, data)
	}
}

func TestWriteToFileLeavesNoPartialFile(t *testing.T) {
	a := &Attachment{Filename: "pic.png", Data: []byte("x")}

	dir := t.TempDir()
	path := filepath.Join(dir, "no-such-subdir", "out.png")
	if err := a.WriteToFile(path); err == nil {
		t.Fatal("WriteToFile succeeded, want error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Stat(%s) = %v, want not-exist", path, err)
	}
	// No stray temp files either.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover entries in %s: %v", dir, entries)
	}
}

func TestWriteToTmp(t *testing.T) {
	data := []byte("attachment bytes")
	a := &Attachment{Filename: "notes.txt", Data: data}

	path, err := a.WriteToTmp()
	if err != nil {
		t.Fatalf("WriteToTmp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(path)) })

	if filepath.Base(path) != "notes.txt" {
		t.Errorf("base = %q, want notes.txt", filepath.Base(path))
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("written bytes = %q, want %q", got, data)
	}
}

func TestWriteToTmpSanitizesTraversal(t *testing.T) {
	a := &Attachment{Filename: "../../evil/\x00name.png", Data: []byte("x")}

	path, err := a.WriteToTmp()
	if err != nil {
		t.Fatalf("WriteToTmp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(path)) })

	base := filepath.Base(path)
	if strings.ContainsAny(base, "/\\\x00") || strings.HasPrefix(base, ".") {
		t.Errorf("base = %q, want separators and dot prefix stripped", base)
	}
	if base != "evilname.png" {
		t.Errorf("base = %q, want %q", base, "evilname.png")
	}
}

func TestWriteToTmpDistinctPaths(t *testing.T) {
	a := &Attachment{Filename: "same.txt", Data: []byte("x")}

	p1, err := a.WriteToTmp()
	if err != nil {
		t.Fatalf("WriteToTmp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(p1)) })
	p2, err := a.WriteToTmp()
	if err != nil {
		t.Fatalf("WriteToTmp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(filepath.Dir(p2)) })

	if p1 == p2 {
		t.Errorf("both calls returned %q, want distinct paths", p1)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain.txt", "plain.txt"},
		{"../../etc/passwd", "etcpasswd"},
		{"a\\b\\c.png", "abc.png"},
		{".hidden", "hidden"},
		{"  spaced.pdf  ", "spaced.pdf"},
		{"nul\x00byte.bin", "nulbyte.bin"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := sanitizeFilename(""); got == "" {
		t.Error("sanitizeFilename(\"\") is empty, want a generated name")
	}
	long := strings.Repeat("a", 3*maxFilenameLen)
	if got := sanitizeFilename(long); len(got) != maxFilenameLen {
		t.Errorf("len = %d, want %d", len(sanitizeFilename(long)), maxFilenameLen)
	}
}
