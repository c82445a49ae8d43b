package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"docview/app"
	"docview/config"
	"docview/document"
	"docview/search"
)

// Color codes for terminal output
const (
	RED    = "\033[31m"
	GREEN  = "\033[32m"
	YELLOW = "\033[33m"
	BLUE   = "\033[34m"
	GRAY   = "\033[90m"
	BOLD   = "\033[1m"
	NC     = "\033[0m" // No Color
)

// getTerminalWidth returns the terminal width, defaulting to 80 if unable to detect
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default fallback width
	}
	return width
}

// createSeparator creates a separator line that fits the terminal width
func createSeparator() string {
	width := getTerminalWidth()
	if width > 120 {
		width = 120 // Maximum reasonable width
	}
	return strings.Repeat("━", width)
}

func main() {
	args := parseArguments(os.Args[1:])

	if args.Path == "" {
		showUsage()
		os.Exit(1)
	}

	settings, err := config.Load(args.ConfigPath)
	if err != nil {
		fmt.Printf("%sWarning: %v%s\n", YELLOW, err, NC)
	}
	args.apply(&settings)

	if !config.IsSupported(args.Path) && !settings.Silent {
		fmt.Printf("%sWarning: unrecognized extension, opening as plain text%s\n", YELLOW, NC)
	}

	reg := document.NewExtractorRegistry()
	reg.Register("pdf", &document.PDFExtractor{PageCap: settings.PageCap, PerPageCap: settings.PerPageCap})
	doc, err := document.Load(args.Path, reg)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", RED, err, NC)
		os.Exit(1)
	}

	if err := app.Run(doc, reg, settings, search.WordMatcher{}); err != nil {
		fmt.Printf("%sError: %v%s\n", RED, err, NC)
		os.Exit(1)
	}
}
