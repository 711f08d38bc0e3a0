// Package ui provides semantic text formatting for CLI output.
//
// Formatters render with color when the terminal supports it. When NO_COLOR
// is set or the terminal has no color support, plain-text marks are used
// instead:
//
//	ui.Code.Sprint("keysweep search")   // `keysweep search`
//	ui.Key.Sprint("a33d776b...")        // [a33d776b...]
//	ui.Highlight.Sprint("bestdict")     // 'bestdict'
//	ui.Muted.Sprint("offset 10")        // (offset 10)
//
// Status lines start with a colored mark:
//
//	ui.Done("Key recovered")            // ✓ Key recovered
//	ui.Failed("No match found")         // ✗ No match found
//	ui.Hint("Run ", ui.Code.Sprint("keysweep config init"))
package ui
