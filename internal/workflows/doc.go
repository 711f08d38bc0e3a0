// Package workflows provides high-level orchestration for keysweep commands.
//
// Workflows coordinate the configs, artifact, recovery and audit packages to
// implement complete user-facing features, independent of CLI concerns like
// flag parsing, spinners and output formatting.
//
// # Available Workflows
//
//   - Search: loads the ciphertext, maps artifacts and runs the key search
//   - Decrypt: decrypts the whole ciphertext with a recovered key
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package:
//
//	result, err := workflows.Search(ctx, opts)
//	if errors.Is(err, kerrors.ErrArtifactIO) {
//	    // Show user-friendly message
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancelling it stops a running search at the next batch boundary.
package workflows
