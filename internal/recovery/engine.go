package recovery

import (
	"context"
	"fmt"
	"time"

	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
	logger "github.com/PolarWolf314/keysweep/internal/logging"
	"github.com/google/uuid"
)

// Artifact is a read-only byte space to scan.
type Artifact interface {
	Name() string
	Bytes() []byte
}

// Config configures an Engine.
type Config struct {
	Ciphertext Ciphertext

	Salt       []byte
	Passwords  []string
	Iterations int
	PRF        PRF

	// Matcher defaults to a MarkupMatcher with DefaultMarkers.
	Matcher Matcher

	Workers   int
	BatchSize int

	// CollectAll keeps scanning after the first match and reports every match.
	CollectAll bool

	Logger logger.Logger
}

// Engine runs key recovery searches. An Engine runs one search at a time.
type Engine struct {
	cfg     Config
	scanner *Scanner
}

// New returns an engine for cfg.
func New(cfg Config) *Engine {
	if cfg.Matcher == nil {
		cfg.Matcher = MarkupMatcher{Markers: DefaultMarkers}
	}
	if cfg.PRF.New == nil {
		cfg.PRF = PRFSHA1
	}
	if cfg.Iterations < 1 {
		cfg.Iterations = DefaultIterations
	}

	return &Engine{
		cfg: cfg,
		scanner: &Scanner{
			Ciphertext: cfg.Ciphertext,
			Matcher:    cfg.Matcher,
			Workers:    cfg.Workers,
			BatchSize:  cfg.BatchSize,
		},
	}
}

// Scanned returns the number of artifact offsets visited by the current run.
// It is safe to call while Run is in progress.
func (e *Engine) Scanned() int64 {
	return e.scanner.Scanned()
}

// Run tries the derived password candidates, then every window of each
// artifact in order. It stops at the first accepted match unless CollectAll
// is set, and stops early when ctx is done.
//
// A cancelled or exhausted search is not an error; see Report.Outcome.
func (e *Engine) Run(ctx context.Context, artifacts []Artifact) (*Report, error) {
	log := e.cfg.Logger
	ct := e.cfg.Ciphertext
	if len(ct) < BlockSize {
		return nil, fmt.Errorf("%w: got %d bytes", kerrors.ErrCiphertextTooShort, len(ct))
	}

	report := &Report{RunID: uuid.NewString()}
	start := time.Now()

	ctrl := NewController(e.cfg.CollectAll)
	stop := context.AfterFunc(ctx, ctrl.Cancel)
	defer stop()

	e.scanner.Controller = ctrl
	e.scanner.scanned.Store(0)

	log.Debugf("Run %s: %d ciphertext bytes, %d passwords, %d artifacts",
		report.RunID, len(ct), len(e.cfg.Passwords), len(artifacts))

	var block Block
	for _, c := range DeriveCandidates(e.cfg.Passwords, e.cfg.Salt, e.cfg.Iterations, e.cfg.PRF) {
		if ctrl.Stopped() {
			break
		}
		if ctx.Err() != nil {
			ctrl.Cancel()
			break
		}
		report.DerivedTried++
		if e.scanner.Try(c, &block) {
			log.Infof("Password candidate accepted: %s", c.Label)
		}
	}

	for _, a := range artifacts {
		if ctrl.Stopped() {
			break
		}
		if ctx.Err() != nil {
			ctrl.Cancel()
			break
		}
		report.Artifacts = append(report.Artifacts, a.Name())
		log.Infof("Scanning %d bytes of %s", len(a.Bytes()), a.Name())
		e.scanner.Scan(ctx, a.Name(), a.Bytes())
	}

	report.OffsetsScanned = e.scanner.Scanned()
	report.Duration = time.Since(start)
	report.Matches = ctrl.Matches()

	select {
	case <-ctrl.Found():
		report.Outcome = OutcomeFound
	default:
		// A context that expired while nothing was left to scan still
		// counts as cancelled.
		if ctrl.Stopped() || ctx.Err() != nil {
			report.Outcome = OutcomeCancelled
		} else {
			report.Outcome = OutcomeExhausted
		}
	}

	if ct.BlockAligned() {
		for _, m := range report.Matches {
			plaintext, err := DecryptECB(m.Key, ct)
			if err != nil {
				log.Debugf("Full decryption for %s failed: %v", m.Label, err)
				continue
			}
			m.Plaintext = plaintext
		}
	}

	log.Debugf("Run %s finished: %s after %s", report.RunID, report.Outcome, report.Duration)
	return report, nil
}
