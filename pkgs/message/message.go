// Package message parses RFC 5322 email files (.eml) with MIME extensions
// into a structured Message: decoded headers, at most one plain-text body,
// at most one HTML body, and the full list of binary attachments.
package message

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	gomessage "github.com/emersion/go-message"
	// Registers the extended charset table so non-UTF-8 parts decode.
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is the parsed representation of one email message.
//
// BodyText and BodyHTML hold the first text/plain and text/html leaf of the
// MIME tree; an empty string means the message has no such body part. A
// message with neither is still a valid parse. Attachments appear in
// encounter order while walking the MIME tree.
type Message struct {
	// From is the decoded From header as a display string.
	From string

	// To is the decoded To header as a display string.
	To string

	// Subject is the decoded subject (RFC 2047 words resolved).
	Subject string

	// Date is the normalized date in "2006-01-02 15:04:05" form, kept in
	// the offset declared by the message itself. Empty if the Date header
	// is missing or unparsable.
	Date string

	// BodyText is the plain-text body, if any.
	BodyText string

	// BodyHTML is the HTML body, if any.
	BodyHTML string

	// Attachments lists every binary part, including inline parts
	// referenced by Content-ID.
	Attachments []Attachment
}

// ParseError reports a malformed top-level message structure. Sub-part
// failures never produce a ParseError; they drop the part and continue.
type ParseError struct {
	// Path is the source file, when the message came from one.
	Path string

	// Err is the underlying decode failure.
	Err error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parsing message %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("parsing message: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads a full RFC 5322 message from r.
//
// Malformed top-level structure (broken headers, multipart without a
// boundary) is fatal and returns a *ParseError. A sub-part that fails to
// decode is logged through logger and dropped without failing the parse.
// A nil logger falls back to slog.Default().
func Parse(r io.Reader, logger *slog.Logger) (*Message, error) {
	return parse(r, "", logger)
}

// ParseFile reads and parses the .eml file at path.
func ParseFile(path string, logger *slog.Logger) (*Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return parse(f, path, logger)
}

func parse(r io.Reader, path string, logger *slog.Logger) (*Message, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entity, err := gomessage.Read(r)
	if err != nil && !gomessage.IsUnknownCharset(err) && !gomessage.IsUnknownEncoding(err) {
		return nil, &ParseError{Path: path, Err: err}
	}

	ct, ctParams, _ := entity.Header.ContentType()
	if strings.HasPrefix(ct, "multipart/") && ctParams["boundary"] == "" {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("multipart message without boundary")}
	}

	msg := &Message{}
	parseEnvelope(msg, entity.Header, logger)

	// An undecodable top-level body gets the same treatment as an
	// undecodable sub-part: the envelope survives, the body is skipped.
	if err != nil && gomessage.IsUnknownEncoding(err) {
		logger.Warn("skipping body with unknown transfer encoding", "err", err)
		return msg, nil
	}

	w := &walker{logger: logger}
	w.walk(msg, entity, 0)

	return msg, nil
}

// parseEnvelope decodes the From, To, Subject and Date headers into msg.
// Header decode failures (unknown charsets in encoded words) keep the
// best-effort value go-message returns.
func parseEnvelope(msg *Message, h gomessage.Header, logger *slog.Logger) {
	mh := mail.Header{Header: h}

	msg.From = headerText(h, "From", logger)
	msg.To = headerText(h, "To", logger)

	subject, err := mh.Subject()
	if err != nil {
		logger.Debug("decoding Subject header", "err", err)
	}
	msg.Subject = subject

	msg.Date = normalizeDate(mh, logger)
}

// headerText returns the decoded text of a header field, falling back to
// the raw value when decoding fails.
func headerText(h gomessage.Header, key string, logger *slog.Logger) string {
	text, err := h.Text(key)
	if err != nil {
		logger.Debug("decoding header", "key", key, "err", err)
	}
	if text == "" {
		return h.Get(key)
	}
	return text
}
