package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/Vistaus/mailviewer/pkgs/config"
)

// app holds global options parsed from the command line
type app struct {
	configPath string
	verbose    bool
}

func main() {
	a := &app{}

	// Global flags
	flag.StringVar(&a.configPath, "config", "", "Preferences file (default: user config dir)")
	flag.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("mailviewer v%s\n", config.Version)
		os.Exit(0)
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	prefs := a.loadPreferences()

	switch cmd {
	case "show":
		if err := handleShow(prefs, parseShowFlags(cmdArgs)); err != nil {
			fatal("show: %v", err)
		}
	case "html":
		if err := handleHTML(prefs, parseHTMLFlags(cmdArgs)); err != nil {
			fatal("html: %v", err)
		}
	case "attachments":
		if err := handleAttachments(parseAttachmentsFlags(cmdArgs)); err != nil {
			fatal("attachments: %v", err)
		}
	case "split":
		if err := handleSplit(cmdArgs); err != nil {
			fatal("split: %v", err)
		}
	case "help":
		printUsage()
		os.Exit(0)
	default:
		fatal("unknown command '%s'", cmd)
	}
}

func (a *app) loadPreferences() config.Preferences {
	path := a.configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			slog.Warn("resolving preferences path", "err", err)
			return config.DefaultPreferences()
		}
	}
	prefs, err := config.Load(path)
	if err != nil {
		fatal("loading preferences: %v", err)
	}
	return prefs
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `mailviewer v%s - Inspect .eml and mbox files from the command line

Usage:
  mailviewer [global options] <command> [command options]

Commands:
  show         Show the headers and plain-text body of a .eml file
  html         Emit the sanitized HTML body of a .eml file
  attachments  List or save the attachments of a .eml file
  split        Explode an mbox file into individual .eml files
  help         Show this help

Global Options:
  --config <path>    Preferences file (default: user config dir)
  -v, --verbose      Verbose output
  --version          Show version information

Show Options:
  (none)

HTML Options:
  --force-css        Render with the baseline stylesheet
  -o, --output <path>  Output file (default: stdout)

Attachments Options:
  --save <dir>       Save all attachments into a directory

Examples:
  mailviewer show message.eml
  mailviewer html --force-css message.eml -o body.html
  mailviewer attachments message.eml --save ./out
  mailviewer split inbox.mbox ./messages
`, config.Version)
}
