package message

import (
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// dateLayout is the normalized output form for the Date header.
const dateLayout = "2006-01-02 15:04:05"

// dateFallbackLayouts covers legal RFC 5322 variations that stricter
// parsers reject: missing day-of-week, two-digit years, missing timezone.
var dateFallbackLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"2 Jan 06 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006 15:04",
	"2 Jan 2006 15:04",
}

// normalizeDate turns the Date header into the fixed display form. The
// timestamp stays in the offset the sender declared; it is not converted
// to the local zone. An unparsable or missing date yields "".
func normalizeDate(h mail.Header, logger *slog.Logger) string {
	t, err := h.Date()
	if err != nil {
		raw := strings.TrimSpace(h.Get("Date"))
		if raw == "" {
			return ""
		}
		t, err = parseDateFallback(raw)
		if err != nil {
			logger.Warn("unparsable Date header", "date", raw, "err", err)
			return ""
		}
	}
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDateFallback(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateFallbackLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
