package message

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"standard", "Wed, 23 Oct 2024 12:27:21 +0200", "2024-10-23 12:27:21"},
		{"no day of week", "23 Oct 2024 12:27:21 +0200", "2024-10-23 12:27:21"},
		{"two digit year", "Wed, 23 Oct 24 12:27:21 +0200", "2024-10-23 12:27:21"},
		{"named zone", "Wed, 23 Oct 2024 12:27:21 GMT", "2024-10-23 12:27:21"},
		{"no zone", "Wed, 23 Oct 2024 12:27:21", "2024-10-23 12:27:21"},
		{"garbage", "not a date at all", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "Date: " + tt.raw + "\r\n" +
				"Content-Type: text/plain\r\n" +
				"\r\n" +
				"body"
			msg := parseString(t, raw)
			if msg.Date != tt.want {
				t.Errorf("Date = %q, want %q", msg.Date, tt.want)
			}
		})
	}
}

// The displayed timestamp keeps the offset the sender declared instead of
// shifting into the local zone.
func TestNormalizeDateKeepsDeclaredOffset(t *testing.T) {
	raw := "Date: Wed, 23 Oct 2024 23:59:59 -1100\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"body"
	msg := parseString(t, raw)
	if msg.Date != "2024-10-23 23:59:59" {
		t.Errorf("Date = %q, want the wall-clock time as written", msg.Date)
	}
}
