package errors

import "errors"

// Input errors are fatal before any candidate is tried.
var (
	// ErrDecode indicates the ciphertext is not valid base64.
	ErrDecode = errors.New("ciphertext is not valid base64")

	// ErrCiphertextTooShort indicates the ciphertext is shorter than one cipher block.
	ErrCiphertextTooShort = errors.New("ciphertext is shorter than one block")

	// ErrNotBlockAligned indicates the ciphertext length is not a multiple of the block size.
	ErrNotBlockAligned = errors.New("ciphertext is not block aligned")

	// ErrInvalidSalt indicates the salt is not valid hex.
	ErrInvalidSalt = errors.New("salt is not valid hex")

	// ErrInvalidKey indicates a key is not valid hex.
	ErrInvalidKey = errors.New("key is not valid hex")
)

// Artifact errors indicate the binary search space could not be prepared.
var (
	// ErrArtifactIO indicates an artifact could not be opened or mapped.
	ErrArtifactIO = errors.New("failed to open artifact")

	// ErrNoArtifacts indicates no artifact matched the provided patterns.
	ErrNoArtifacts = errors.New("no matching artifacts found")
)

// Configuration errors indicate a malformed or incomplete configuration.
var (
	// ErrInvalidConfig indicates the configuration is malformed.
	ErrInvalidConfig = errors.New("configuration is invalid")

	// ErrMissingCiphertext indicates neither a ciphertext nor a ciphertext file was given.
	ErrMissingCiphertext = errors.New("no ciphertext configured")

	// ErrUnknownHeuristic indicates the match heuristic name is not recognized.
	ErrUnknownHeuristic = errors.New("unknown match heuristic")

	// ErrUnknownPRF indicates the key derivation hash is not recognized.
	ErrUnknownPRF = errors.New("unknown key derivation hash")
)

// Cipher errors.
var (
	// ErrUnsupportedKeyLength indicates the key length matches no cipher configuration.
	ErrUnsupportedKeyLength = errors.New("unsupported key length")
)
