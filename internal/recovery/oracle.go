package recovery

import (
	"crypto/aes"
)

// CipherConfig describes one supported block cipher. The variant is selected
// purely by key length.
type CipherConfig struct {
	Name   string
	KeyLen int
}

// Supported cipher configurations.
var (
	AES128 = CipherConfig{Name: "AES-128", KeyLen: 16}
	AES256 = CipherConfig{Name: "AES-256", KeyLen: 32}
)

// KeySizes lists the supported key lengths in ascending order.
var KeySizes = []int{AES128.KeyLen, AES256.KeyLen}

// MaxKeyLen is the largest supported key length.
const MaxKeyLen = 32

// CipherConfigFor returns the configuration for a key of the given length.
func CipherConfigFor(keyLen int) (CipherConfig, bool) {
	switch keyLen {
	case AES128.KeyLen:
		return AES128, true
	case AES256.KeyLen:
		return AES256, true
	default:
		return CipherConfig{}, false
	}
}

// Bits returns the key size in bits.
func (c CipherConfig) Bits() int {
	return c.KeyLen * 8
}

// TrialDecrypt decrypts the first block of ct under key in ECB mode and
// writes it to dst. Blocks are independent in ECB, so one block is a full
// test of the key. It reports false without touching dst when the key length
// matches no cipher or the ciphertext is shorter than a block.
func TrialDecrypt(dst *Block, key []byte, ct Ciphertext) (CipherConfig, bool) {
	cfg, ok := CipherConfigFor(len(key))
	if !ok || len(ct) < BlockSize {
		return CipherConfig{}, false
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return CipherConfig{}, false
	}
	block.Decrypt(dst[:], ct.FirstBlock())

	return cfg, true
}
