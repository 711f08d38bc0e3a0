package workflows

import (
	"context"
	"crypto/aes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PolarWolf314/keysweep/internal/audit"
	"github.com/PolarWolf314/keysweep/internal/configs"
	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
	"github.com/PolarWolf314/keysweep/internal/recovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte{
	0x3a, 0x91, 0x5c, 0x07, 0xe2, 0x44, 0xd8, 0x1f,
	0x60, 0xbb, 0x29, 0x8e, 0x73, 0x05, 0xcf, 0x12,
}

// encryptPadded encrypts plaintext with PKCS#7 padding in ECB mode and returns base64.
func encryptPadded(t *testing.T, key, plaintext []byte) string {
	t.Helper()

	n := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append([]byte(nil), plaintext...)
	for i := 0; i < n; i++ {
		padded = append(padded, byte(n))
	}

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}
	return base64.StdEncoding.EncodeToString(out)
}

// writeArtifact writes size zero bytes with key at offset.
func writeArtifact(t *testing.T, path string, size, offset int, key []byte) {
	t.Helper()
	data := make([]byte, size)
	if key != nil {
		copy(data[offset:], key)
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func newTestConfig(ciphertext string, artifacts ...string) *configs.Config {
	cfg := configs.DefaultConfig()
	cfg.Ciphertext.Value = ciphertext
	cfg.Artifacts.Paths = artifacts
	cfg.Scan.Workers = 2
	return cfg
}

func TestSearchFindsKeyInArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, filepath.Join(dir, "lib", "arm64", "libgetData.so"), 4096, 1234, testKey)
	writeArtifact(t, filepath.Join(dir, "lib", "x86", "libgetData.so"), 4096, 0, nil)

	plaintext := "<div class=\"entry\">dictionary definition</div>"
	cfg := newTestConfig(encryptPadded(t, testKey, []byte(plaintext)), "lib/**/*.so")
	cfg.Output.Journal = filepath.Join(dir, ".keysweep", "journal.log")

	var started bool
	var total int64
	result, err := Search(context.Background(), SearchOptions{
		Config:  cfg,
		BaseDir: dir,
		OnStart: func(engine *recovery.Engine, totalOffsets int64) {
			started = true
			total = totalOffsets
		},
	})
	require.NoError(t, err)

	assert.True(t, started)
	assert.Equal(t, int64(2*(4096-32)), total)
	assert.Equal(t, []string{filepath.Join(dir, "lib", "arm64", "libgetData.so")}, result.Artifacts,
		"the second library is never reached")
	assert.Equal(t, 150, result.PreviewLength)

	report := result.Report
	require.Equal(t, recovery.OutcomeFound, report.Outcome)
	m := report.First()
	assert.Equal(t, 1234, m.Offset)
	assert.Equal(t, filepath.Join(dir, "lib", "arm64", "libgetData.so"), m.Source)
	assert.Equal(t, "3a915c07e244d81f60bb298e7305cf12", m.KeyHex())
	assert.Equal(t, plaintext, m.Preview(result.PreviewLength))
	assert.Equal(t, 14, report.DerivedTried, "every default password tried at both key sizes")

	entries, err := audit.ReadEntries(cfg.Output.Journal)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, report.RunID, entries[0].RunID)
	assert.Equal(t, "found", entries[0].Outcome)
	assert.Equal(t, m.KeyHex(), entries[0].KeyHex)
}

func TestSearchExhausted(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, filepath.Join(dir, "zeros.bin"), 64, 0, nil)

	cfg := newTestConfig(encryptPadded(t, testKey, []byte("<div>hello world")), "zeros.bin")
	cfg.Candidates.Passwords = nil

	result, err := Search(context.Background(), SearchOptions{Config: cfg, BaseDir: dir})
	require.NoError(t, err)

	assert.Equal(t, recovery.OutcomeExhausted, result.Report.Outcome)
	assert.Empty(t, result.Report.Matches)
	assert.Equal(t, int64(32), result.Report.OffsetsScanned)
}

func TestSearchWithoutArtifactsTriesPasswordsOnly(t *testing.T) {
	cfg := newTestConfig(encryptPadded(t, testKey, []byte("<div>hello world")))

	result, err := Search(context.Background(), SearchOptions{Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, recovery.OutcomeExhausted, result.Report.Outcome)
	assert.Empty(t, result.Artifacts)
	assert.Equal(t, 14, result.Report.DerivedTried)
}

func TestSearchRejectsBadCiphertextBeforeArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := newTestConfig("not-valid-base64!", "missing.so")

	_, err := Search(context.Background(), SearchOptions{Config: cfg, BaseDir: dir})
	assert.ErrorIs(t, err, kerrors.ErrDecode)
	assert.NotErrorIs(t, err, kerrors.ErrArtifactIO)
}

func TestSearchMissingArtifactIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, filepath.Join(dir, "present.so"), 4096, 100, testKey)
	cfg := newTestConfig(encryptPadded(t, testKey, []byte("<div>hello world")), "present.so", "missing.so")
	cfg.Output.Journal = filepath.Join(dir, "journal.log")

	result, err := Search(context.Background(), SearchOptions{Config: cfg, BaseDir: dir})
	assert.ErrorIs(t, err, kerrors.ErrArtifactIO)
	assert.Nil(t, result, "no partial result when an artifact cannot be opened")

	_, statErr := os.Stat(cfg.Output.Journal)
	assert.True(t, os.IsNotExist(statErr), "nothing is journaled for a run that never started")
}

func TestSearchGlobWithoutMatches(t *testing.T) {
	cfg := newTestConfig(encryptPadded(t, testKey, []byte("<div>hello world")), "**/*.so")

	_, err := Search(context.Background(), SearchOptions{Config: cfg, BaseDir: t.TempDir()})
	assert.ErrorIs(t, err, kerrors.ErrNoArtifacts)
}

func TestSearchMissingCiphertext(t *testing.T) {
	_, err := Search(context.Background(), SearchOptions{Config: configs.DefaultConfig()})
	assert.ErrorIs(t, err, kerrors.ErrMissingCiphertext)
}

func TestSearchUnknownHeuristic(t *testing.T) {
	cfg := newTestConfig(encryptPadded(t, testKey, []byte("<div>hello world")))
	cfg.Match.Heuristic = "entropy"

	_, err := Search(context.Background(), SearchOptions{Config: cfg})
	assert.ErrorIs(t, err, kerrors.ErrUnknownHeuristic)
}

func TestSearchTimeoutCancels(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, filepath.Join(dir, "big.bin"), 8<<20, 0, nil)

	cfg := newTestConfig(encryptPadded(t, testKey, []byte("<div>hello world")), "big.bin")
	cfg.Candidates.Passwords = nil
	cfg.Scan.Timeout = "1ms"
	cfg.Scan.BatchSize = 64

	start := time.Now()
	result, err := Search(context.Background(), SearchOptions{Config: cfg, BaseDir: dir})
	require.NoError(t, err)

	assert.Equal(t, recovery.OutcomeCancelled, result.Report.Outcome)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDecrypt(t *testing.T) {
	dir := t.TempDir()
	plaintext := "<p>full message spanning several AES blocks</p>"
	cfg := configs.DefaultConfig()
	cfg.Ciphertext.Value = encryptPadded(t, testKey, []byte(plaintext))
	cfg.Output.Journal = filepath.Join(dir, "journal.log")

	result, err := Decrypt(context.Background(), DecryptOptions{
		Config: cfg,
		KeyHex: "3a915c07e244d81f60bb298e7305cf12",
	})
	require.NoError(t, err)
	assert.Equal(t, plaintext, string(result.Plaintext))
	assert.Equal(t, recovery.AES128, result.Cipher)
	assert.Empty(t, result.OutputPath)

	entries, err := audit.ReadEntries(cfg.Output.Journal)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "decrypt", entries[0].Operation)
	assert.Equal(t, len(plaintext), entries[0].Bytes)
}

func TestDecryptToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plain.txt")
	cfg := configs.DefaultConfig()
	cfg.Ciphertext.Value = encryptPadded(t, testKey, []byte("hello"))

	result, err := Decrypt(context.Background(), DecryptOptions{
		Config:     cfg,
		KeyHex:     "3A915C07E244D81F60BB298E7305CF12",
		OutputPath: out,
	})
	require.NoError(t, err)
	assert.Equal(t, out, result.OutputPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDecryptErrors(t *testing.T) {
	cfg := configs.DefaultConfig()
	cfg.Ciphertext.Value = encryptPadded(t, testKey, []byte("hello"))

	_, err := Decrypt(context.Background(), DecryptOptions{Config: cfg, KeyHex: "xyz"})
	assert.ErrorIs(t, err, kerrors.ErrInvalidKey)

	_, err = Decrypt(context.Background(), DecryptOptions{Config: cfg, KeyHex: "00112233"})
	assert.ErrorIs(t, err, kerrors.ErrUnsupportedKeyLength)

	cfg.Ciphertext.Value = "AAAAAAAAAAAAAAAAAAAAAAAAAA=="
	_, err = Decrypt(context.Background(), DecryptOptions{Config: cfg, KeyHex: "3a915c07e244d81f60bb298e7305cf12"})
	assert.ErrorIs(t, err, kerrors.ErrNotBlockAligned)
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	offset := 7
	audit.Log(path, audit.Entry{RunID: "1", Operation: "search", Outcome: "exhausted"})
	audit.Log(path, audit.Entry{RunID: "2", Operation: "search", Outcome: "found", KeyHex: "aa", Source: "lib.so", Offset: &offset})
	audit.Log(path, audit.Entry{RunID: "3", Operation: "decrypt", Outcome: "ok", KeyHex: "aa", Bytes: 10})
	audit.Log(path, audit.Entry{RunID: "4", Operation: "search", Outcome: "found", KeyHex: "bb", Label: "PBKDF2-SHA1-128 ('android')"})

	ids := func(entries []audit.Entry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.RunID)
		}
		return out
	}

	tests := []struct {
		name string
		opts HistoryOptions
		want []string
	}{
		{"all", HistoryOptions{}, []string{"1", "2", "3", "4"}},
		{"limit keeps most recent", HistoryOptions{Limit: 2}, []string{"3", "4"}},
		{"reverse", HistoryOptions{Reverse: true}, []string{"4", "3", "2", "1"}},
		{"reverse limit", HistoryOptions{Reverse: true, Limit: 1}, []string{"4"}},
		{"operation", HistoryOptions{Operation: "DECRYPT"}, []string{"3"}},
		{"found only", HistoryOptions{FoundOnly: true}, []string{"2", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.JournalPath = path
			result, err := History(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, 4, result.TotalEntriesBeforeFilter)
			assert.Equal(t, tt.want, ids(result.Entries))
		})
	}
}

func TestHistoryRequiresJournal(t *testing.T) {
	_, err := History(context.Background(), HistoryOptions{})
	assert.ErrorIs(t, err, kerrors.ErrInvalidConfig)
}

func TestFormatDetails(t *testing.T) {
	offset := 7
	assert.Equal(t, "key=aa bytes=10", FormatDetails(audit.Entry{Operation: "decrypt", KeyHex: "aa", Bytes: 10}))
	assert.Equal(t, "key=aa lib.so@7", FormatDetails(audit.Entry{Operation: "search", Outcome: "found", KeyHex: "aa", Source: "lib.so", Offset: &offset}))
	assert.Equal(t, "key=bb derived", FormatDetails(audit.Entry{Operation: "search", Outcome: "found", KeyHex: "bb", Label: "derived"}))
	assert.Equal(t, "tried=14 scanned=32 5ms", FormatDetails(audit.Entry{Operation: "search", Outcome: "exhausted", DerivedTried: 14, OffsetsScanned: 32, DurationMS: 5}))
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "garbage", FormatDateTime("garbage"))

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, ts.Local().Format("2006-01-02 15:04:05"), FormatDateTime(ts.Format(time.RFC3339Nano)))
}
