package message

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleMbox = "From john@moon.space Wed Oct 23 12:27:21 2024\n" +
	"From: John Doe <john@moon.space>\n" +
	"Subject: First\n" +
	"Message-Id: <first@moon.space>\n" +
	"Content-Type: text/plain\n" +
	"\n" +
	"body one\n" +
	"\n" +
	"From jane@moon.space Wed Oct 23 12:30:00 2024\n" +
	"From: Jane Doe <jane@moon.space>\n" +
	"Subject: Second\n" +
	"Message-Id: <second@moon.space>\n" +
	"Content-Type: text/plain\n" +
	"\n" +
	"body two\n"

func TestReadMbox(t *testing.T) {
	msgs, err := ReadMbox(strings.NewReader(sampleMbox), discardLogger())
	if err != nil {
		t.Fatalf("ReadMbox: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Subject != "First" || msgs[1].Subject != "Second" {
		t.Errorf("subjects = %q, %q", msgs[0].Subject, msgs[1].Subject)
	}
	if !strings.Contains(msgs[0].BodyText, "body one") {
		t.Errorf("BodyText = %q", msgs[0].BodyText)
	}
}

func TestSplitMbox(t *testing.T) {
	dir := t.TempDir()
	paths, err := SplitMbox(strings.NewReader(sampleMbox), dir)
	if err != nil {
		t.Fatalf("SplitMbox: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %d, want 2", len(paths))
	}

	if got := filepath.Base(paths[0]); got != "first@moon.space.eml" {
		t.Errorf("first file = %q", got)
	}
	if got := filepath.Base(paths[1]); got != "second@moon.space.eml" {
		t.Errorf("second file = %q", got)
	}

	// Each written file must itself be a parseable message.
	for _, p := range paths {
		msg, err := ParseFile(p, discardLogger())
		if err != nil {
			t.Fatalf("ParseFile(%s): %v", p, err)
		}
		if msg.Subject == "" {
			t.Errorf("%s: empty subject after round trip", p)
		}
	}
}

func TestSplitMboxCollision(t *testing.T) {
	two := "From a@x Wed Oct 23 12:00:00 2024\n" +
		"Subject: A\n" +
		"Message-Id: <dup@x>\n" +
		"\n" +
		"one\n" +
		"\n" +
		"From b@x Wed Oct 23 12:01:00 2024\n" +
		"Subject: B\n" +
		"Message-Id: <dup@x>\n" +
		"\n" +
		"two\n"

	dir := t.TempDir()
	paths, err := SplitMbox(strings.NewReader(two), dir)
	if err != nil {
		t.Fatalf("SplitMbox: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %d, want 2", len(paths))
	}
	if paths[0] == paths[1] {
		t.Fatalf("both messages written to %q", paths[0])
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Stat(%s): %v", p, err)
		}
	}
}
