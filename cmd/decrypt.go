package cmd

import (
	"errors"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
	"github.com/PolarWolf314/keysweep/internal/ui"
	"github.com/PolarWolf314/keysweep/internal/workflows"
	"github.com/spf13/cobra"
)

type decryptFlags struct {
	ciphertext ciphertextFlags
	key        string
	out        string
	journal    string
}

func newDecryptCmd(g *globals) *cobra.Command {
	f := &decryptFlags{}

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypts the whole ciphertext with a recovered key",
		Long: `Decrypts every block of the configured ciphertext in AES-ECB mode with
the given key and strips PKCS#7 padding when it is valid.

The plaintext is printed to stdout unless --out is given.

Examples:
  keysweep decrypt --key a33d776b0aa30d06... --ciphertext-file blob.b64
  keysweep decrypt --key a33d776b0aa30d06... --out entry.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecrypt(cmd, g, f)
		},
	}

	f.ciphertext.bind(cmd.Flags())
	cmd.Flags().StringVarP(&f.key, "key", "k", "", "key as hex (32 or 64 characters)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the plaintext to this file")
	cmd.Flags().StringVar(&f.journal, "journal", "", "append the run to this JSON Lines journal")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func runDecrypt(cmd *cobra.Command, g *globals, f *decryptFlags) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	f.ciphertext.apply(cmd.Flags(), cfg)
	if cmd.Flags().Changed("journal") {
		cfg.Output.Journal = f.journal
	}

	result, err := workflows.Decrypt(cmd.Context(), workflows.DecryptOptions{
		Config:     cfg,
		KeyHex:     f.key,
		OutputPath: f.out,
	})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), formatDecryptError(err))
		return reportedError{err}
	}

	g.logger.Infof("Decrypted %d bytes with %s", len(result.Plaintext), result.Cipher.Name)

	if result.OutputPath != "" {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Done("Plaintext written to ", ui.Path.Sprint(result.OutputPath)))
		return nil
	}

	text := strings.ToValidUTF8(string(result.Plaintext), "�")
	fmt.Fprint(cmd.OutOrStdout(), ui.EnsureNewline(text))
	return nil
}

func formatDecryptError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrInvalidKey), errors.Is(err, kerrors.ErrUnsupportedKeyLength):
		return ui.Failed("The key must be 32 or 64 hex characters") + "\n" + ui.Detail(err)

	case errors.Is(err, kerrors.ErrNotBlockAligned):
		return ui.Failed("The ciphertext is not a whole number of 16-byte blocks") + "\n" +
			ui.Hint("ECB decryption needs every block; check the ciphertext was copied completely")

	case errors.Is(err, kerrors.ErrDecode), errors.Is(err, kerrors.ErrMissingCiphertext):
		return formatSearchError(err)

	default:
		return ui.Failed("Decryption failed") + "\n" + ui.Detail(err)
	}
}
