package workflows

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/keysweep/internal/audit"
	"github.com/PolarWolf314/keysweep/internal/configs"
	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
	"github.com/PolarWolf314/keysweep/internal/recovery"
	"github.com/google/uuid"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	Config *configs.Config

	// KeyHex is the recovered key, 32 or 64 hex characters.
	KeyHex string

	// OutputPath receives the plaintext. Empty means the caller prints it.
	OutputPath string
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	Plaintext  []byte
	Cipher     recovery.CipherConfig
	OutputPath string
}

// Decrypt decrypts the whole configured ciphertext with a known key in ECB
// mode and strips PKCS#7 padding when it is valid.
//
// Returns ErrInvalidKey if the key is not hex, ErrUnsupportedKeyLength if it
// is neither 16 nor 32 bytes, ErrDecode if the ciphertext cannot be decoded
// and ErrNotBlockAligned if it is not a whole number of blocks.
func Decrypt(ctx context.Context, opts DecryptOptions) (*DecryptResult, error) {
	key, err := hex.DecodeString(strings.TrimSpace(opts.KeyHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
	}
	cipherCfg, ok := recovery.CipherConfigFor(len(key))
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes", kerrors.ErrUnsupportedKeyLength, len(key))
	}

	encoded, err := opts.Config.CiphertextText()
	if err != nil {
		return nil, err
	}
	ct, err := recovery.LoadCiphertext(encoded)
	if err != nil {
		return nil, err
	}

	plaintext, err := recovery.DecryptECB(key, ct)
	if err != nil {
		return nil, err
	}

	result := &DecryptResult{
		Plaintext: plaintext,
		Cipher:    cipherCfg,
	}

	if opts.OutputPath != "" {
		if err := os.WriteFile(opts.OutputPath, plaintext, 0600); err != nil {
			return nil, fmt.Errorf("failed to write to %s: %w", opts.OutputPath, err)
		}
		result.OutputPath = opts.OutputPath
	}

	audit.Log(opts.Config.Output.Journal, audit.Entry{
		RunID:     uuid.NewString(),
		Operation: "decrypt",
		Outcome:   "ok",
		KeyHex:    hex.EncodeToString(key),
		Bytes:     len(plaintext),
	})

	return result, nil
}
