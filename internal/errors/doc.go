// Package errors provides typed error values for keysweep.
//
// Sentinel errors let callers handle specific conditions with errors.Is()
// rather than string matching.
//
// # Error Categories
//
//   - Input errors: the ciphertext, salt or key cannot be decoded (ErrDecode)
//   - Artifact errors: the binary search space cannot be opened (ErrArtifactIO)
//   - Configuration errors: settings are missing or malformed (ErrInvalidConfig)
//   - Cipher errors: a key length matches no cipher (ErrUnsupportedKeyLength)
//
// Per-candidate failures during a search (wrong key length, output that is
// not text) are never reported as errors. They only exclude the candidate.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: %s: %v", errors.ErrArtifactIO, path, err)
//
// Handle them in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrDecode) {
//	    // Show user-friendly message
//	}
package errors
