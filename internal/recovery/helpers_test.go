package recovery

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

// encryptECB pads plaintext with PKCS#7 when pad is set and encrypts it block by block.
func encryptECB(t *testing.T, key, plaintext []byte, pad bool) Ciphertext {
	t.Helper()

	if pad {
		n := BlockSize - len(plaintext)%BlockSize
		plaintext = append(append([]byte(nil), plaintext...), bytes.Repeat([]byte{byte(n)}, n)...)
	}
	require.Zero(t, len(plaintext)%BlockSize, "plaintext must be block aligned")

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	out := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext); i += BlockSize {
		block.Encrypt(out[i:i+BlockSize], plaintext[i:i+BlockSize])
	}
	return Ciphertext(out)
}

func encodeCiphertext(ct Ciphertext) string {
	return base64.StdEncoding.EncodeToString(ct)
}

// sequentialKey returns n bytes counting up from start.
func sequentialKey(start byte, n int) []byte {
	key := make([]byte, n)
	for i := range key {
		key[i] = start + byte(i)
	}
	return key
}

// embed returns a zeroed buffer of size n with key copied in at offset.
func embed(n, offset int, key []byte) []byte {
	buf := make([]byte, n)
	copy(buf[offset:], key)
	return buf
}

type namedBuffer struct {
	name string
	data []byte
}

func (b namedBuffer) Name() string  { return b.name }
func (b namedBuffer) Bytes() []byte { return b.data }
