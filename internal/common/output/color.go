package output

import (
	"os"

	"github.com/fatih/color"
)

var (
	// Checkout state colors
	UpToDate  = color.New(color.FgGreen)
	OutOfDate = color.New(color.FgYellow)
	Missing   = color.New(color.FgRed)
	Modified  = color.New(color.FgMagenta)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header   = color.New(color.FgWhite, color.Bold)
	Recipe   = color.New(color.FgBlue, color.Bold)
	Revision = color.New(color.FgCyan)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// StateColor returns the appropriate color for a checkout state
func StateColor(state string) *color.Color {
	switch state {
	case "up to date":
		return UpToDate
	case "out of date":
		return OutOfDate
	case "missing":
		return Missing
	case "modified":
		return Modified
	default:
		return color.New(color.Reset)
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Printf("⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf("→ "+format+"\n", args...)
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// FormatState formats a checkout state with appropriate color
func FormatState(state string) string {
	return StateColor(state).Sprintf("[%s]", state)
}

// FormatRecipe formats a recipe name with color
func FormatRecipe(name string) string {
	return Recipe.Sprint(name)
}

// ShortRevision abbreviates a full object name to 12 characters
func ShortRevision(rev string) string {
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev
}

// FormatRevision formats an abbreviated revision with color; empty revisions render as "none"
func FormatRevision(rev string) string {
	if rev == "" {
		return Dim.Sprint("none")
	}
	return Revision.Sprint(ShortRevision(rev))
}
