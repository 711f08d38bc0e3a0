// Package recovery searches for the AES key of a ciphertext by brute force.
//
// Two candidate sources feed one oracle:
//
//   - DeriveCandidates stretches a short password list with PBKDF2 into
//     16 and 32-byte keys.
//   - Scanner treats a binary artifact as a flat byte array and tries the
//     16 and 32-byte window at every offset.
//
// Each candidate decrypts only the first ciphertext block in ECB mode
// (TrialDecrypt) and a pluggable Matcher decides whether the result looks
// like plaintext. The first accepted match is published through a
// Controller, which also raises the cancellation flag polled by scan
// workers once per batch.
//
// # Usage
//
//	ct, err := recovery.LoadCiphertext(encoded)
//	if err != nil {
//	    return err
//	}
//	engine := recovery.New(recovery.Config{Ciphertext: ct, Salt: salt, Passwords: passwords})
//	report, err := engine.Run(ctx, artifacts)
//	if m := report.First(); m != nil {
//	    fmt.Println(m.Label, m.KeyHex(), m.Preview(150))
//	}
//
// The engine never exits the process; a timeout is expressed by cancelling ctx.
package recovery
