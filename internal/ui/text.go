package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders a value in one semantic style. Without color the value
// is wrapped in plain-text marks instead, so the meaning survives.
type Formatter struct {
	attrs []color.Attribute
	open  string
	close string
}

func style(open, close string, attrs ...color.Attribute) Formatter {
	return Formatter{attrs: attrs, open: open, close: close}
}

// Sprint formats like fmt.Sprint.
func (f Formatter) Sprint(a ...any) string {
	text := fmt.Sprint(a...)
	if plain() {
		return f.open + text + f.close
	}
	return color.New(f.attrs...).Sprint(text)
}

// Sprintf formats like fmt.Sprintf.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.Sprint(fmt.Sprintf(format, a...))
}

func plain() bool {
	// https://no-color.org/
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return color.NoColor
}

// Value formatters.
var (
	// Code is a command or flag the user can type: `keysweep search`.
	Code = style("`", "`", color.FgYellow)

	// Path is a file or artifact name.
	Path = style("", "", color.FgYellow)

	// Key is recovered key material: [a33d...].
	Key = style("[", "]", color.FgMagenta, color.Bold)

	// Highlight is a candidate label or other user value: 'bestdict'.
	Highlight = style("'", "'", color.FgCyan)

	// Muted is secondary detail: (offset 10).
	Muted = style("(", ")", color.FgHiBlack)
)

var (
	okMark   = style("", "", color.FgGreen)
	failMark = style("", "", color.FgRed)
	warnMark = style("", "", color.FgYellow)
	hintMark = style("", "", color.FgCyan)
)

// Done, Failed, Caution and Hint prefix a status line with its mark. The
// parts are joined without separators.
func Done(parts ...string) string    { return okMark.Sprint("✓") + " " + strings.Join(parts, "") }
func Failed(parts ...string) string  { return failMark.Sprint("✗") + " " + strings.Join(parts, "") }
func Caution(parts ...string) string { return warnMark.Sprint("⚠") + " " + strings.Join(parts, "") }
func Hint(parts ...string) string    { return hintMark.Sprint("→") + " " + strings.Join(parts, "") }

// Detail renders an underlying error below a status line.
func Detail(err error) string {
	return failMark.Sprint("Error: ") + err.Error()
}

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

// Indent prefixes every line of s with n spaces.
func Indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}
