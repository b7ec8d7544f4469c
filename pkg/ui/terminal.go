package ui

import (
	"fmt"
	"io"
	"os"
)

// Banner printed at the top of interactive runs
const Banner = `
  ┌─────────────────────────────────────────┐
  │  r e d d i t s t a t s                  │
  │  subreddit post and author rankings     │
  └─────────────────────────────────────────┘
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// SetColorEnabled switches ANSI colors on or off for all color functions
func SetColorEnabled(enabled bool) {
	wrap := colorize
	if !enabled {
		wrap = func(string) func(string) string {
			return func(text string) string { return text }
		}
	}
	Cyan = wrap("\033[36m%s\033[0m")
	Yellow = wrap("\033[33m%s\033[0m")
	Red = wrap("\033[31m%s\033[0m")
	Green = wrap("\033[32m%s\033[0m")
	Magenta = wrap("\033[35m%s\033[0m")
	Dim = wrap("\033[2m%s\033[0m")
}

// Output is where the Print helpers write
var Output io.Writer = os.Stdout

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintBanner prints the banner in color
func PrintBanner() {
	fmt.Fprint(Output, Cyan(Banner))
}

// PrintError prints an error message in red, followed by err if given
func PrintError(msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	fmt.Fprintln(Output, Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a label and its value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string) {
	fmt.Fprintln(Output, Yellow(msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output, Magenta(msg))
}
