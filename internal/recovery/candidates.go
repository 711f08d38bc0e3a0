package recovery

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"strings"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
	"golang.org/x/crypto/pbkdf2"
)

// DefaultIterations is the PBKDF2 iteration count used when none is configured.
const DefaultIterations = 1000

// PRF is the pseudorandom function used by PBKDF2.
type PRF struct {
	Name string
	New  func() hash.Hash
}

// Supported PBKDF2 pseudorandom functions.
var (
	PRFSHA1   = PRF{Name: "SHA1", New: sha1.New}
	PRFSHA256 = PRF{Name: "SHA256", New: sha256.New}
)

// ParsePRF resolves a PRF by name, case-insensitively. The empty name selects SHA1.
func ParsePRF(name string) (PRF, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "", "sha1":
		return PRFSHA1, nil
	case "sha256":
		return PRFSHA256, nil
	default:
		return PRF{}, fmt.Errorf("%w: %q", kerrors.ErrUnknownPRF, name)
	}
}

// KeyCandidate is one hypothesized key and where it came from.
type KeyCandidate struct {
	Key   []byte
	Label string

	// Source names the artifact a window was read from. Empty for derived keys.
	Source string

	// Offset is the artifact offset of a window, or -1 for derived keys.
	Offset int
}

// DeriveCandidates derives a 16-byte and a 32-byte key from every password
// with PBKDF2 over salt. The output is deterministic: the same inputs always
// produce the same keys in the same order.
func DeriveCandidates(passwords []string, salt []byte, iterations int, prf PRF) []KeyCandidate {
	if iterations < 1 {
		iterations = DefaultIterations
	}
	if prf.New == nil {
		prf = PRFSHA1
	}

	candidates := make([]KeyCandidate, 0, len(passwords)*len(KeySizes))
	for _, password := range passwords {
		for _, cfg := range []CipherConfig{AES128, AES256} {
			candidates = append(candidates, KeyCandidate{
				Key:    pbkdf2.Key([]byte(password), salt, iterations, cfg.KeyLen, prf.New),
				Label:  fmt.Sprintf("PBKDF2-%s-%d ('%s')", prf.Name, cfg.Bits(), password),
				Offset: -1,
			})
		}
	}

	return candidates
}
