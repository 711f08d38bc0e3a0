package recovery

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
)

// BlockSize is the block size shared by every supported cipher.
const BlockSize = 16

// Block is one cipher block of scratch space.
type Block [BlockSize]byte

// Ciphertext is the raw encrypted payload. It is never modified after loading.
type Ciphertext []byte

// LoadCiphertext decodes a standard base64 ciphertext. Whitespace anywhere in
// the input is ignored so values copied from database dumps or wrapped files
// decode as-is.
//
// Returns ErrDecode if the input is not valid base64 and ErrCiphertextTooShort
// (which also matches ErrDecode) if it decodes to less than one block.
func LoadCiphertext(encoded string) (Ciphertext, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, encoded)

	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecode, err)
	}

	if len(data) < BlockSize {
		return nil, fmt.Errorf("%w: %w: got %d bytes, need at least %d",
			kerrors.ErrDecode, kerrors.ErrCiphertextTooShort, len(data), BlockSize)
	}

	return Ciphertext(data), nil
}

// FirstBlock returns the first cipher block, the only part trial decryption reads.
func (c Ciphertext) FirstBlock() []byte {
	return c[:BlockSize]
}

// BlockAligned reports whether the ciphertext is a whole number of blocks.
func (c Ciphertext) BlockAligned() bool {
	return len(c)%BlockSize == 0
}
