package main

import (
	"fmt"
	"os"
	"strconv"

	"docview/config"
)

var version = "0.3"

// Arguments holds parsed command line arguments
type Arguments struct {
	Path       string
	ConfigPath string
	PageBuffer int
	DebounceMs int
	Silent     bool
}

// parseArguments parses command line args
func parseArguments(args []string) *Arguments {
	result := &Arguments{
		ConfigPath: config.DefaultPath(),
		PageBuffer: -1,
		DebounceMs: -1,
	}

	expectConfig := false
	expectBuffer := false
	expectDebounce := false

	for _, a := range args {
		if expectConfig {
			result.ConfigPath = a
			expectConfig = false
			continue
		}
		if expectBuffer {
			if n, err := strconv.Atoi(a); err == nil && n >= 0 {
				result.PageBuffer = n
			}
			expectBuffer = false
			continue
		}
		if expectDebounce {
			if n, err := strconv.Atoi(a); err == nil && n >= 0 {
				result.DebounceMs = n
			}
			expectDebounce = false
			continue
		}
		switch a {
		case "--config":
			expectConfig = true
		case "--page-buffer":
			expectBuffer = true
		case "--debounce":
			expectDebounce = true
		case "--silent":
			result.Silent = true
		case "--help", "-h":
			showUsage()
			os.Exit(0)
		case "--version", "-v":
			showVersion()
			os.Exit(0)
		default:
			if result.Path == "" {
				result.Path = a
			}
		}
	}

	return result
}

// apply layers flag overrides onto loaded settings
func (a *Arguments) apply(settings *config.Settings) {
	if a.PageBuffer >= 0 {
		settings.PageBuffer = a.PageBuffer
	}
	if a.DebounceMs >= 0 {
		settings.DebounceMs = a.DebounceMs
	}
	if a.Silent {
		settings.Silent = true
	}
}

// showUsage (basic)
func showUsage() {
	fmt.Printf("%sdocview - Terminal Document Viewer with Search%s\n", BOLD, NC)
	fmt.Println()
	fmt.Printf("%sUSAGE:%s\n", BLUE, NC)
	fmt.Printf("  docview [--config PATH] [--page-buffer N] [--debounce MS] [--silent] file\n")
	fmt.Println()
	fmt.Printf("%sKEYS:%s\n", BLUE, NC)
	fmt.Printf("  /          open search\n")
	fmt.Printf("  enter      next match        shift+enter  previous match\n")
	fmt.Printf("  ctrl+s     toggle search mode (literal / semantic)\n")
	fmt.Printf("  tab        toggle view (pages / text)\n")
	fmt.Printf("  esc        clear search      q            quit\n")
	fmt.Println()
	fmt.Printf("%sSUPPORTED TYPES:%s\n", BLUE, NC)
	fmt.Printf("  %v\n", config.SupportedTypes)
	fmt.Println(createSeparator())
}

// showVersion
func showVersion() {
	fmt.Printf("%sdocview v%s%s\n", GREEN, version, NC)
}
