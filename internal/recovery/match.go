package recovery

import (
	"encoding/hex"
	"strings"
	"time"
)

// DefaultPreviewLength is the number of characters shown from a decrypted match.
const DefaultPreviewLength = 150

// Match is an accepted key candidate. Only the engine fills in Plaintext,
// after every worker has finished.
type Match struct {
	Label  string
	Source string
	Offset int
	Cipher CipherConfig
	Key    []byte

	// Block is the decrypted first block that the matcher accepted.
	Block Block

	// Plaintext is the whole ciphertext decrypted under Key when the
	// ciphertext is block aligned.
	Plaintext []byte
}

func newMatch(c KeyCandidate, cfg CipherConfig, block *Block) *Match {
	key := make([]byte, len(c.Key))
	copy(key, c.Key)
	return &Match{
		Label:  c.Label,
		Source: c.Source,
		Offset: c.Offset,
		Cipher: cfg,
		Key:    key,
		Block:  *block,
	}
}

// KeyHex returns the key as lowercase hex.
func (m *Match) KeyHex() string {
	return hex.EncodeToString(m.Key)
}

// Derived reports whether the key came from the password list rather than an artifact.
func (m *Match) Derived() bool {
	return m.Offset < 0
}

// Preview returns at most n characters of the decrypted text. Invalid UTF-8
// sequences are replaced with U+FFFD.
func (m *Match) Preview(n int) string {
	data := m.Plaintext
	if len(data) == 0 {
		data = m.Block[:]
	}
	text := strings.ToValidUTF8(string(data), "�")

	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// Outcome is the terminal state of a search.
type Outcome string

const (
	// OutcomeFound means at least one candidate was accepted.
	OutcomeFound Outcome = "found"

	// OutcomeExhausted means every candidate was tried without a match.
	OutcomeExhausted Outcome = "exhausted"

	// OutcomeCancelled means the caller stopped the search before a match.
	OutcomeCancelled Outcome = "cancelled"
)

// Report summarizes one search run.
type Report struct {
	RunID   string
	Outcome Outcome

	// Matches holds every accepted match. The first entry is authoritative;
	// more than one only appear in collect-all mode or when workers raced.
	Matches []*Match

	Artifacts      []string
	DerivedTried   int
	OffsetsScanned int64
	Duration       time.Duration
}

// First returns the authoritative match, or nil.
func (r *Report) First() *Match {
	if len(r.Matches) == 0 {
		return nil
	}
	return r.Matches[0]
}
