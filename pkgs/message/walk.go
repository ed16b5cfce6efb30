package message

import (
	"io"
	"log/slog"
	"mime"
	"strings"

	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// maxMultipartDepth bounds recursion into nested multipart containers so
// adversarial messages cannot exhaust the stack. Legitimate mail rarely
// nests more than three or four levels.
const maxMultipartDepth = 16

// walker classifies each leaf of the MIME tree as body text, body HTML or
// attachment and fills a Message accordingly.
type walker struct {
	logger *slog.Logger
}

// walk handles both single-part and multipart entities, including nested
// multipart containers.
func (w *walker) walk(msg *Message, entity *gomessage.Entity, depth int) {
	if mr := entity.MultipartReader(); mr != nil {
		if depth >= maxMultipartDepth {
			w.logger.Warn("multipart nesting too deep, dropping subtree", "depth", depth)
			return
		}
		w.walkMultipart(msg, mr, depth+1)
	} else {
		w.leaf(msg, entity)
	}
}

// maxPartErrors bounds how many malformed parts one container may yield
// before the rest of it is abandoned, in case the reader stops advancing.
const maxPartErrors = 64

// walkMultipart iterates over the parts of a multipart container. A part
// that fails to decode is dropped; its siblings still parse.
func (w *walker) walkMultipart(msg *Message, mr gomessage.MultipartReader, depth int) {
	errs := 0
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return
		}
		if err != nil {
			if gomessage.IsUnknownEncoding(err) {
				w.logger.Warn("skipping part with unknown transfer encoding", "err", err)
				continue
			}
			if !gomessage.IsUnknownCharset(err) {
				errs++
				if errs > maxPartErrors {
					w.logger.Warn("too many malformed parts, dropping the rest of the container", "err", err)
					return
				}
				w.logger.Warn("dropping malformed part", "err", err)
				continue
			}
			// Unknown charset: go-message hands back the raw bytes, which
			// is exactly the best-effort fallback we want.
			w.logger.Warn("unknown charset, keeping raw bytes", "err", err)
		}
		w.walk(msg, part, depth)
	}
}

// leaf classifies a single non-multipart part, in priority order: explicit
// attachment (disposition, filename or name parameter), first text/plain
// body, first text/html body, everything else (inline images and the like)
// stored as an attachment so it is not silently dropped.
func (w *walker) leaf(msg *Message, part *gomessage.Entity) {
	ct, ctParams, _ := part.Header.ContentType()

	if isAttachment(part.Header, ct, ctParams) {
		w.addAttachment(msg, part, ct)
		return
	}

	switch {
	case strings.HasPrefix(ct, "text/plain"):
		if msg.BodyText != "" {
			w.logger.Debug("ignoring extra text/plain part, body already set")
			return
		}
		if body, err := io.ReadAll(part.Body); err == nil {
			msg.BodyText = string(body)
		} else {
			w.logger.Warn("reading text body", "err", err)
		}

	case strings.HasPrefix(ct, "text/html"):
		if msg.BodyHTML != "" {
			w.logger.Debug("ignoring extra text/html part, body already set")
			return
		}
		if body, err := io.ReadAll(part.Body); err == nil {
			msg.BodyHTML = string(body)
		} else {
			w.logger.Warn("reading html body", "err", err)
		}

	default:
		w.addAttachment(msg, part, ct)
	}
}

// isAttachment reports whether a leaf must be treated as an attachment
// regardless of its media type.
func isAttachment(h gomessage.Header, ct string, ctParams map[string]string) bool {
	disp, dispParams, _ := h.ContentDisposition()
	if disp == "attachment" {
		return true
	}
	if dispParams["filename"] != "" || ctParams["name"] != "" {
		return true
	}
	// Non-body media types without any disposition are attachments too;
	// the caller already handled text/plain and text/html.
	return false
}

func (w *walker) addAttachment(msg *Message, part *gomessage.Entity, ct string) {
	body, err := io.ReadAll(part.Body)
	if err != nil {
		w.logger.Warn("reading attachment body", "err", err)
		return
	}

	ah := mail.AttachmentHeader{Header: part.Header}
	filename, err := ah.Filename()
	if err != nil {
		w.logger.Debug("decoding attachment filename", "err", err)
	}
	if filename == "" {
		filename = generatedFilename(ct)
	}

	msg.Attachments = append(msg.Attachments, Attachment{
		Filename: filename,
		MIMEType: ct,
		Data:     body,
	})
	w.logger.Debug("attachment", "filename", filename, "mime_type", ct, "size", len(body))
}

// generatedFilename names an attachment that declared none, so it can still
// be saved and opened. The extension is a best guess from the media type.
func generatedFilename(ct string) string {
	name := uuid.NewString()
	if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
		return name + exts[0]
	}
	return name
}
