// Package viewer exposes a parsed message to a consumer (a GUI window or
// a CLI) through a thin read-only façade: header accessors, bodies,
// attachments and a window-title change notification.
package viewer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Vistaus/mailviewer/pkgs/config"
	"github.com/Vistaus/mailviewer/pkgs/message"
)

// NotFoundError reports an Open call on a path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// TitleChangedFunc observes title changes. Handlers run synchronously on
// the goroutine that triggered the change and must not block.
type TitleChangedFunc func(title string)

// Service holds at most one open message and the display preference that
// drives the title. It owns its state exclusively; it is not safe for
// concurrent use and callers serialize access externally.
type Service struct {
	msg          *message.Message
	fullPath     string
	showFileName bool
	titleChanged TitleChangedFunc
	logger       *slog.Logger
}

// NewService returns a Service with no message open and the file name
// shown in the title.
func NewService() *Service {
	return &Service{
		showFileName: true,
		logger:       slog.Default(),
	}
}

// SetLogger replaces the logger used for parse diagnostics.
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Open parses the .eml file at path and replaces the held message.
//
// A missing path returns a *NotFoundError and a parse failure returns the
// parse error; in both cases the previously open message is untouched and
// no notification fires. On success the title-changed notification is
// delivered synchronously before Open returns.
func (s *Service) Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &NotFoundError{Path: path}
	}

	msg, err := message.ParseFile(path, s.logger)
	if err != nil {
		return err
	}

	s.msg = msg
	s.fullPath = path
	s.logger.Debug("opened message", "path", path, "attachments", len(msg.Attachments))
	s.notifyTitleChanged()
	return nil
}

// From returns the decoded sender, or "" when nothing is open.
func (s *Service) From() string {
	if s.msg == nil {
		return ""
	}
	return s.msg.From
}

// To returns the decoded recipient list, or "" when nothing is open.
func (s *Service) To() string {
	if s.msg == nil {
		return ""
	}
	return s.msg.To
}

// Subject returns the decoded subject, or "" when nothing is open.
func (s *Service) Subject() string {
	if s.msg == nil {
		return ""
	}
	return s.msg.Subject
}

// Date returns the normalized date, or "" when nothing is open.
func (s *Service) Date() string {
	if s.msg == nil {
		return ""
	}
	return s.msg.Date
}

// BodyText returns the plain-text body. ok is false when no message is
// open or the message has no plain-text part.
func (s *Service) BodyText() (text string, ok bool) {
	if s.msg == nil || s.msg.BodyText == "" {
		return "", false
	}
	return s.msg.BodyText, true
}

// BodyHTML returns the raw (unsanitized) HTML body. ok is false when no
// message is open or the message has no HTML part.
func (s *Service) BodyHTML() (html string, ok bool) {
	if s.msg == nil || s.msg.BodyHTML == "" {
		return "", false
	}
	return s.msg.BodyHTML, true
}

// Attachments returns a copy of the attachment list in encounter order.
func (s *Service) Attachments() []message.Attachment {
	if s.msg == nil {
		return nil
	}
	out := make([]message.Attachment, len(s.msg.Attachments))
	copy(out, s.msg.Attachments)
	return out
}

// FullPath returns the path of the open message, or "".
func (s *Service) FullPath() string {
	return s.fullPath
}

// ShowFileName reports the current title preference.
func (s *Service) ShowFileName() bool {
	return s.showFileName
}

// SetShowFileName updates the title preference and fires one synchronous
// title-changed notification, without re-parsing.
func (s *Service) SetShowFileName(show bool) {
	s.logger.Debug("set show file name", "show", show)
	s.showFileName = show
	s.notifyTitleChanged()
}

// OnTitleChanged registers the single title observer, replacing any
// previous one. The handler runs synchronously on the caller's goroutine.
func (s *Service) OnTitleChanged(fn TitleChangedFunc) {
	s.titleChanged = fn
}

// Title derives the window title: the open file's base name when the
// preference asks for it, otherwise the fixed application title.
func (s *Service) Title() string {
	if s.showFileName && s.fullPath != "" {
		return filepath.Base(s.fullPath)
	}
	return FallbackTitle()
}

// FallbackTitle is the fixed application name and version used when no
// file name is shown.
func FallbackTitle() string {
	return fmt.Sprintf("Mail Viewer v%s", config.Version)
}

func (s *Service) notifyTitleChanged() {
	if s.titleChanged != nil {
		s.titleChanged(s.Title())
	}
}
