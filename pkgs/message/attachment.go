package message

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxFilenameLen caps sanitized filenames; longer names are truncated.
const maxFilenameLen = 200

// Attachment is one extracted binary part of a message. Data is fully
// decoded: base64 and quoted-printable are already resolved.
type Attachment struct {
	// Filename is the declared name, decoded from any RFC 2047 form, or a
	// generated name when the part declared none.
	Filename string

	// MIMEType is the declared media type; empty means unknown.
	MIMEType string

	// Data holds the decoded bytes.
	Data []byte
}

// WriteToFile writes the attachment to path. The bytes go to a temporary
// file in the destination directory first and are renamed into place, so a
// failure never leaves a partially-written file at path.
func (a *Attachment) WriteToFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("moving %s into place: %w", path, err)
	}
	return nil
}

// WriteToTmp writes the attachment into a fresh process-managed temporary
// directory under its sanitized declared filename and returns the full
// path, ready to hand to an external opener. Each call produces a new
// directory, so concurrent calls never collide; the file itself is created
// with exclusive semantics.
func (a *Attachment) WriteToTmp() (string, error) {
	dir, err := os.MkdirTemp("", "mailviewer-")
	if err != nil {
		return "", fmt.Errorf("creating temporary directory: %w", err)
	}

	path := filepath.Join(dir, sanitizeFilename(a.Filename))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(a.Data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// sanitizeFilename strips path separators, NUL and other control bytes
// from a declared filename so it is safe to create on the local
// filesystem. An empty result falls back to a generated name.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
		case r < 0x20 || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}

	s := strings.TrimSpace(b.String())
	s = strings.TrimLeft(s, ".")
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	if s == "" {
		s = uuid.NewString()
	}
	return s
}
