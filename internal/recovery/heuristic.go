package recovery

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
)

// Matcher decides whether a decrypted block looks like the expected plaintext.
// Implementations must depend only on the block contents and be safe for
// concurrent use.
type Matcher interface {
	Match(block []byte) bool
}

// MatcherFunc adapts a plain function to the Matcher interface.
type MatcherFunc func(block []byte) bool

// Match calls f(block).
func (f MatcherFunc) Match(block []byte) bool {
	return f(block)
}

// DefaultMarkers are markup fragments found at the start of dictionary
// entries stored as HTML.
var DefaultMarkers = []string{"<div", "<b>", "<font", "<p", "span"}

// MarkupMatcher accepts blocks that are valid UTF-8 and contain any marker.
type MarkupMatcher struct {
	Markers []string
}

// Match implements Matcher.
func (m MarkupMatcher) Match(block []byte) bool {
	if !utf8.Valid(block) {
		return false
	}
	text := string(block)
	for _, marker := range m.Markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// MagicMatcher accepts blocks that start with any of the given signatures,
// e.g. "PK\x03\x04" for zip or "\x1f\x8b" for gzip payloads.
type MagicMatcher struct {
	Prefixes [][]byte
}

// Match implements Matcher.
func (m MagicMatcher) Match(block []byte) bool {
	for _, p := range m.Prefixes {
		if len(p) > 0 && bytes.HasPrefix(block, p) {
			return true
		}
	}
	return false
}

// PrintableMatcher accepts blocks whose share of printable ASCII bytes
// (including tab, CR and LF) is at least MinRatio.
type PrintableMatcher struct {
	MinRatio float64
}

// Match implements Matcher.
func (m PrintableMatcher) Match(block []byte) bool {
	if len(block) == 0 {
		return false
	}
	printable := 0
	for _, b := range block {
		if (b >= 0x20 && b < 0x7f) || b == '\t' || b == '\n' || b == '\r' {
			printable++
		}
	}
	return float64(printable)/float64(len(block)) >= m.MinRatio
}

// DefaultPrintableRatio requires every byte of a block to be printable.
const DefaultPrintableRatio = 1.0

// NewMatcher builds a matcher by name. For "markup" the patterns are text
// markers (DefaultMarkers when empty); for "magic" they are signatures in Go
// string syntax, already unescaped by the caller; "printable" ignores them.
func NewMatcher(kind string, patterns []string) (Matcher, error) {
	switch strings.ToLower(kind) {
	case "", "markup":
		if len(patterns) == 0 {
			patterns = DefaultMarkers
		}
		return MarkupMatcher{Markers: patterns}, nil
	case "magic":
		if len(patterns) == 0 {
			return nil, fmt.Errorf("%w: magic heuristic needs at least one signature", kerrors.ErrInvalidConfig)
		}
		prefixes := make([][]byte, len(patterns))
		for i, p := range patterns {
			prefixes[i] = []byte(p)
		}
		return MagicMatcher{Prefixes: prefixes}, nil
	case "printable":
		return PrintableMatcher{MinRatio: DefaultPrintableRatio}, nil
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownHeuristic, kind)
	}
}
