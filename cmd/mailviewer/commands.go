package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/Vistaus/mailviewer/pkgs/config"
	"github.com/Vistaus/mailviewer/pkgs/message"
	"github.com/Vistaus/mailviewer/pkgs/sanitize"
	"github.com/Vistaus/mailviewer/pkgs/viewer"
)

type showFlags struct {
	path string
}

func parseShowFlags(args []string) showFlags {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fatal("show: %v", err)
	}
	if fs.NArg() != 1 {
		fatal("show: exactly one .eml file expected")
	}
	return showFlags{path: fs.Arg(0)}
}

func handleShow(prefs config.Preferences, f showFlags) error {
	svc := openService(prefs, f.path)

	fmt.Printf("From:    %s\n", svc.From())
	fmt.Printf("To:      %s\n", svc.To())
	fmt.Printf("Subject: %s\n", svc.Subject())
	fmt.Printf("Date:    %s\n", svc.Date())

	if atts := svc.Attachments(); len(atts) > 0 {
		names := make([]string, len(atts))
		for i, a := range atts {
			names[i] = a.Filename
		}
		fmt.Printf("Attachments: %s\n", strings.Join(names, ", "))
	}
	fmt.Println()

	if text, ok := svc.BodyText(); ok {
		fmt.Println(strings.ReplaceAll(text, "\r\n", "\n"))
		return nil
	}
	if _, ok := svc.BodyHTML(); ok {
		fmt.Println("(no plain-text body; use 'mailviewer html' for the HTML body)")
		return nil
	}
	fmt.Println("(message has no body)")
	return nil
}

type htmlFlags struct {
	path     string
	forceCSS bool
	output   string
}

func parseHTMLFlags(args []string) htmlFlags {
	fs := flag.NewFlagSet("html", flag.ExitOnError)
	var f htmlFlags
	fs.BoolVar(&f.forceCSS, "force-css", false, "Render with the baseline stylesheet")
	fs.StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		fatal("html: %v", err)
	}
	if fs.NArg() != 1 {
		fatal("html: exactly one .eml file expected")
	}
	f.path = fs.Arg(0)
	return f
}

func handleHTML(prefs config.Preferences, f htmlFlags) error {
	svc := openService(prefs, f.path)

	raw, ok := svc.BodyHTML()
	if !ok {
		return fmt.Errorf("%s has no HTML body", f.path)
	}

	forceCSS := f.forceCSS || prefs.ForceCSS
	safe := sanitize.Sanitize(raw, forceCSS)

	if f.output == "" {
		fmt.Println(safe)
		return nil
	}
	if err := os.WriteFile(f.output, []byte(safe), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", f.output, err)
	}
	return nil
}

type attachmentsFlags struct {
	path    string
	saveDir string
}

func parseAttachmentsFlags(args []string) attachmentsFlags {
	fs := flag.NewFlagSet("attachments", flag.ExitOnError)
	var f attachmentsFlags
	fs.StringVar(&f.saveDir, "save", "", "Save all attachments into a directory")
	if err := fs.Parse(args); err != nil {
		fatal("attachments: %v", err)
	}
	if fs.NArg() != 1 {
		fatal("attachments: exactly one .eml file expected")
	}
	f.path = fs.Arg(0)
	return f
}

func handleAttachments(f attachmentsFlags) error {
	svc := viewer.NewService()
	if err := svc.Open(f.path); err != nil {
		return err
	}

	atts := svc.Attachments()
	if len(atts) == 0 {
		fmt.Println("No attachments")
		return nil
	}

	if f.saveDir == "" {
		for _, a := range atts {
			mime := a.MIMEType
			if mime == "" {
				mime = "unknown"
			}
			fmt.Printf("%s  (%s, %d bytes)\n", a.Filename, mime, len(a.Data))
		}
		return nil
	}

	if err := os.MkdirAll(f.saveDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", f.saveDir, err)
	}
	for _, a := range atts {
		dest := filepath.Join(f.saveDir, filepath.Base(a.Filename))
		if err := a.WriteToFile(dest); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", dest)
	}
	return nil
}

func handleSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fatal("split: %v", err)
	}
	if fs.NArg() != 2 {
		fatal("split: expected <file.mbox> <directory>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("opening %s: %w", fs.Arg(0), err)
	}
	defer f.Close()

	paths, err := message.SplitMbox(f, fs.Arg(1))
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	fmt.Printf("%d message(s) written\n", len(paths))
	return nil
}

// openService opens one message behind a façade configured like the GUI
// window would configure it.
func openService(prefs config.Preferences, path string) *viewer.Service {
	svc := viewer.NewService()
	svc.SetShowFileName(prefs.ShowFileName)
	if err := svc.Open(path); err != nil {
		fatal("%v", err)
	}
	return svc
}
