package recovery

import (
	"crypto/aes"
	"fmt"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
)

// DecryptECB decrypts every block of ct under key and returns the plaintext
// with PKCS#7 padding removed when the padding is valid. Invalid padding is
// left in place; the caller gets the raw blocks.
func DecryptECB(key []byte, ct Ciphertext) ([]byte, error) {
	if _, ok := CipherConfigFor(len(key)); !ok {
		return nil, fmt.Errorf("%w: %d bytes", kerrors.ErrUnsupportedKeyLength, len(key))
	}
	if len(ct) == 0 || !ct.BlockAligned() {
		return nil, fmt.Errorf("%w: %d bytes", kerrors.ErrNotBlockAligned, len(ct))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ct))
	for i := 0; i < len(ct); i += BlockSize {
		block.Decrypt(out[i:i+BlockSize], ct[i:i+BlockSize])
	}

	return StripPKCS7(out), nil
}

// StripPKCS7 removes PKCS#7 padding if present and well formed, otherwise it
// returns data unchanged.
func StripPKCS7(data []byte) []byte {
	n := len(data)
	if n == 0 {
		return data
	}

	pad := int(data[n-1])
	if pad == 0 || pad > BlockSize || pad > n {
		return data
	}
	for _, b := range data[n-pad:] {
		if int(b) != pad {
			return data
		}
	}

	return data[:n-pad]
}
