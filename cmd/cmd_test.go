package cmd

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f"

// executeCommand runs a fresh command tree and captures its output.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// setupCase writes a 4 KiB artifact holding the test key at offset 1234 and
// returns the artifact path and the base64 ciphertext of plaintext.
func setupCase(t *testing.T, plaintext string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}

	data := make([]byte, 4096)
	copy(data[1234:], key)
	path := filepath.Join(dir, "libgetData.so")
	require.NoError(t, os.WriteFile(path, data, 0644))

	padded := []byte(plaintext)
	n := aes.BlockSize - len(padded)%aes.BlockSize
	padded = append(padded, bytes.Repeat([]byte{byte(n)}, n)...)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ct := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(ct[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}

	return path, base64.StdEncoding.EncodeToString(ct)
}

func TestSearchCommandFindsKey(t *testing.T) {
	artifact, ct := setupCase(t, "<div>the dictionary entry</div>")

	stdout, _, err := executeCommand(t, "search", "--ciphertext", ct, "-a", artifact, "-p", "guess", "-w", "2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Key recovered")
	assert.Contains(t, stdout, testKeyHex)
	assert.Contains(t, stdout, "offset 1234")
	assert.Contains(t, stdout, "AES-128")
	assert.Contains(t, stdout, "<div>the dictionary entry</div>")
}

func TestSearchCommandJSON(t *testing.T) {
	artifact, ct := setupCase(t, "<p>json output</p>")
	ctFile := filepath.Join(t.TempDir(), "blob.b64")
	require.NoError(t, os.WriteFile(ctFile, []byte(ct+"\n"), 0644))

	stdout, _, err := executeCommand(t, "search", "--ciphertext-file", ctFile, "-a", artifact, "-p", "guess", "--json")
	require.NoError(t, err)

	var out searchJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "found", out.Outcome)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 2, out.DerivedTried)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, testKeyHex, out.Matches[0].Key)
	require.NotNil(t, out.Matches[0].Offset)
	assert.Equal(t, 1234, *out.Matches[0].Offset)
	assert.Equal(t, "<p>json output</p>", out.Matches[0].Preview)
}

func TestSearchCommandJSONListsOnlyScannedArtifacts(t *testing.T) {
	artifact, ct := setupCase(t, "<p>stops early</p>")
	later := filepath.Join(t.TempDir(), "later.bin")
	require.NoError(t, os.WriteFile(later, make([]byte, 4096), 0644))

	stdout, _, err := executeCommand(t, "search", "--ciphertext", ct, "-a", artifact, "-a", later, "-p", "guess", "--json")
	require.NoError(t, err)

	var out searchJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "found", out.Outcome)
	assert.Equal(t, []string{filepath.ToSlash(artifact)}, out.Artifacts)
}

func TestSearchCommandNoMatch(t *testing.T) {
	_, ct := setupCase(t, "<div>unreachable</div>")
	empty := filepath.Join(t.TempDir(), "zeros.bin")
	require.NoError(t, os.WriteFile(empty, make([]byte, 64), 0644))

	stdout, _, err := executeCommand(t, "search", "--ciphertext", ct, "-a", empty, "-p", "guess")
	require.NoError(t, err, "an exhausted search is not a failure")
	assert.Contains(t, stdout, "No match found")
}

func TestSearchCommandBadCiphertext(t *testing.T) {
	stdout, _, err := executeCommand(t, "search", "--ciphertext", "not-valid-base64!", "-a", "missing.so")
	require.Error(t, err)

	assert.ErrorIs(t, err, kerrors.ErrDecode)
	assert.Contains(t, stdout, "could not be decoded")
	assert.NotContains(t, stdout, "Could not open an artifact")
}

func TestSearchCommandMissingArtifact(t *testing.T) {
	_, ct := setupCase(t, "<div>x</div>")

	stdout, _, err := executeCommand(t, "search", "--ciphertext", ct, "-a", filepath.Join(t.TempDir(), "missing.so"))
	require.Error(t, err)

	assert.ErrorIs(t, err, kerrors.ErrArtifactIO)
	assert.Contains(t, stdout, "Could not open an artifact, nothing was searched")
}

func TestSearchCommandMissingCiphertext(t *testing.T) {
	stdout, _, err := executeCommand(t, "search")
	assert.ErrorIs(t, err, kerrors.ErrMissingCiphertext)
	assert.Contains(t, stdout, "No ciphertext configured")
}

func TestSearchThenHistory(t *testing.T) {
	artifact, ct := setupCase(t, "<b>journal me</b>")
	journal := filepath.Join(t.TempDir(), "journal.log")

	_, _, err := executeCommand(t, "search", "--ciphertext", ct, "-a", artifact, "-p", "guess", "--journal", journal)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "decrypt", "--ciphertext", ct, "-k", testKeyHex, "--journal", journal)
	require.NoError(t, err)

	stdout, _, err := executeCommand(t, "history", "--journal", journal)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "search")
	assert.Contains(t, lines[0], "found")
	assert.Contains(t, lines[0], testKeyHex+" "+artifact+"@1234")
	assert.Contains(t, lines[1], "decrypt")

	stdout, _, err = executeCommand(t, "history", "--journal", journal, "--operation", "decrypt", "--json")
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "decrypt", entries[0]["op"])
}

func TestHistoryCommandEmpty(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "journal.log")

	stdout, _, err := executeCommand(t, "history", "--journal", journal)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No journal entries found.")
}

func TestHistoryCommandNoJournal(t *testing.T) {
	_, _, err := executeCommand(t, "history")
	assert.ErrorIs(t, err, kerrors.ErrInvalidConfig)
}

func TestDecryptCommand(t *testing.T) {
	_, ct := setupCase(t, "<span>full plaintext across blocks</span>")

	stdout, _, err := executeCommand(t, "decrypt", "--ciphertext", ct, "--key", testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "<span>full plaintext across blocks</span>\n", stdout)
}

func TestDecryptCommandToFile(t *testing.T) {
	_, ct := setupCase(t, "written to disk")
	out := filepath.Join(t.TempDir(), "plain.txt")

	stdout, _, err := executeCommand(t, "decrypt", "--ciphertext", ct, "-k", testKeyHex, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Plaintext written to")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "written to disk", string(data))
}

func TestDecryptCommandBadKey(t *testing.T) {
	_, ct := setupCase(t, "x")

	stdout, _, err := executeCommand(t, "decrypt", "--ciphertext", ct, "-k", "0011")
	assert.ErrorIs(t, err, kerrors.ErrUnsupportedKeyLength)
	assert.Contains(t, stdout, "32 or 64 hex characters")
}

func TestDecryptCommandRequiresKey(t *testing.T) {
	_, _, err := executeCommand(t, "decrypt", "--ciphertext", "AAAA")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case", "keysweep.toml")

	stdout, _, err := executeCommand(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config written to")
	assert.FileExists(t, path)

	stdout, _, err = executeCommand(t, "config", "init", path)
	assert.Error(t, err)
	assert.Contains(t, stdout, "already exists")

	_, _, err = executeCommand(t, "config", "init", path, "--force")
	assert.NoError(t, err)

	stdout, stderr, err := executeCommand(t, "--config", path, "config", "show", "--workers", "3", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "workers = 3")
	assert.Contains(t, stdout, "collect_all = true")
	assert.Contains(t, stdout, `salt = "052daeff36629cf42b02f8fc09059695df2dff54"`)
	assert.Contains(t, stderr, "not ready for a search", "the template has no ciphertext yet")
}

func TestConfigFileDrivesSearch(t *testing.T) {
	artifact, ct := setupCase(t, "<font>from config</font>")
	path := filepath.Join(t.TempDir(), "keysweep.toml")
	content := "[ciphertext]\nvalue = \"" + ct + "\"\n\n" +
		"[artifacts]\npaths = [\"" + filepath.ToSlash(artifact) + "\"]\n\n" +
		"[candidates]\npasswords = []\n\n[scan]\nworkers = 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	stdout, _, err := executeCommand(t, "-c", path, "search")
	require.NoError(t, err)
	assert.Contains(t, stdout, testKeyHex)
	assert.Contains(t, stdout, "0 password candidates")
}

func TestMissingExplicitConfig(t *testing.T) {
	_, _, err := executeCommand(t, "-c", filepath.Join(t.TempDir(), "nope.toml"), "search")
	assert.ErrorIs(t, err, kerrors.ErrInvalidConfig)
}

func TestPrintUnreported(t *testing.T) {
	var buf bytes.Buffer
	printUnreported(&buf, reportedError{errors.New("already shown")})
	assert.Empty(t, buf.String())

	printUnreported(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "999", formatCount(999))
	assert.Equal(t, "1.5k", formatCount(1500))
	assert.Equal(t, "2.0M", formatCount(2_000_000))
	assert.Equal(t, "3.1G", formatCount(3_100_000_000))

	assert.Equal(t, "12.0/s", formatRate(12))
	assert.Equal(t, "4.2M/s", formatRate(4_200_000))

	assert.Equal(t, "0%", formatPercent(5, 0))
	assert.Equal(t, "50.0%", formatPercent(1, 2))
}
