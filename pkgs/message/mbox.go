package message

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	netmail "net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/google/uuid"
)

// ReadMbox parses every message in an mbox stream. A message that fails to
// parse is logged and skipped, matching the per-part resilience policy of
// Parse. The returned slice preserves mailbox order.
func ReadMbox(r io.Reader, logger *slog.Logger) ([]*Message, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mr := mbox.NewReader(r)
	var msgs []*Message
	for {
		msgReader, err := mr.NextMessage()
		if err == io.EOF {
			return msgs, nil
		}
		if err != nil {
			return msgs, fmt.Errorf("reading mbox message: %w", err)
		}

		msg, err := Parse(msgReader, logger)
		if err != nil {
			logger.Warn("skipping unparsable mbox message", "err", err)
			continue
		}
		msgs = append(msgs, msg)
	}
}

// SplitMbox writes each raw message of an mbox stream as an .eml file in
// dir, named from its Message-ID (sanitized for the filesystem). A missing
// Message-ID yields a generated name; a name collision appends a UUID
// suffix. It returns the written paths in mailbox order.
func SplitMbox(r io.Reader, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	mr := mbox.NewReader(r)
	var paths []string
	for {
		msgReader, err := mr.NextMessage()
		if err == io.EOF {
			return paths, nil
		}
		if err != nil {
			return paths, fmt.Errorf("reading mbox message: %w", err)
		}

		data, err := io.ReadAll(msgReader)
		if err != nil {
			return paths, fmt.Errorf("reading mbox message: %w", err)
		}

		name := sanitizeFilename(extractMessageID(data))
		path := filepath.Join(dir, name+".eml")
		if _, err := os.Stat(path); err == nil {
			path = filepath.Join(dir, name+"-"+uuid.NewString()+".eml")
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
}

// extractMessageID pulls the Message-ID header out of a raw message,
// without angle brackets. Returns "" when the header is missing or the
// headers cannot be read at all.
func extractMessageID(data []byte) string {
	msg, err := netmail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	id := strings.TrimSpace(msg.Header.Get("Message-Id"))
	id = strings.TrimPrefix(id, "<")
	id = strings.TrimSuffix(id, ">")
	return id
}
