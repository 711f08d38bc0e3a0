package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keysweep/internal/artifact"
	"github.com/PolarWolf314/keysweep/internal/audit"
	"github.com/PolarWolf314/keysweep/internal/configs"
	logger "github.com/PolarWolf314/keysweep/internal/logging"
	"github.com/PolarWolf314/keysweep/internal/recovery"
)

// SearchOptions configures the search workflow.
type SearchOptions struct {
	Config *configs.Config

	// BaseDir resolves relative artifact patterns. Empty means the working directory.
	BaseDir string

	Logger logger.Logger

	// OnStart, if set, is called right before the engine runs with the
	// engine and the number of artifact offsets it will visit, so the caller
	// can poll progress.
	OnStart func(engine *recovery.Engine, totalOffsets int64)
}

// SearchResult contains the outcome of a search.
type SearchResult struct {
	Report *recovery.Report

	// Artifacts lists the files that were scanned, in scan order. Files after
	// the one holding the first match are not scanned and not listed.
	Artifacts []string

	// PreviewLength is the configured preview size in characters.
	PreviewLength int
}

// Search loads the ciphertext, maps every artifact and runs the recovery engine.
//
// Inputs are checked in order and nothing is searched until all of them are
// usable: the ciphertext first, then the artifacts.
//
// Returns ErrDecode if the ciphertext is not valid base64.
// Returns ErrArtifactIO if an artifact cannot be opened or mapped.
// Returns ErrNoArtifacts if artifact patterns were given but matched nothing.
// A search that finds nothing or is cancelled by its timeout is not an error.
func Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	cfg := opts.Config
	log := opts.Logger

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	encoded, err := cfg.CiphertextText()
	if err != nil {
		return nil, err
	}
	ct, err := recovery.LoadCiphertext(encoded)
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded %d bytes of encrypted data", len(ct))

	var paths []string
	if len(cfg.Artifacts.Paths) > 0 {
		paths, err = artifact.Resolve(cfg.Artifacts.Paths, opts.BaseDir)
		if err != nil {
			return nil, err
		}
	}

	mapped, err := artifact.OpenAll(paths)
	if err != nil {
		return nil, err
	}
	defer artifact.CloseAll(mapped)

	var totalOffsets int64
	spaces := make([]recovery.Artifact, len(mapped))
	for i, m := range mapped {
		log.Debugf("Mapped %s (%d bytes)", m.Name(), m.Len())
		totalOffsets += int64(recovery.ScanSpan(m.Len()))
		spaces[i] = m
	}

	engineCfg, err := engineConfig(cfg, ct, log)
	if err != nil {
		return nil, err
	}

	timeout, _ := cfg.TimeoutDuration()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	engine := recovery.New(engineCfg)
	if opts.OnStart != nil {
		opts.OnStart(engine, totalOffsets)
	}

	report, err := engine.Run(ctx, spaces)
	if err != nil {
		return nil, err
	}

	audit.Log(cfg.Output.Journal, audit.FromReport(report))

	return &SearchResult{
		Report:        report,
		Artifacts:     report.Artifacts,
		PreviewLength: cfg.Output.PreviewLength,
	}, nil
}

func engineConfig(cfg *configs.Config, ct recovery.Ciphertext, log logger.Logger) (recovery.Config, error) {
	salt, err := cfg.SaltBytes()
	if err != nil {
		return recovery.Config{}, err
	}

	prf, err := recovery.ParsePRF(cfg.Candidates.PRF)
	if err != nil {
		return recovery.Config{}, err
	}

	patterns, err := cfg.MatchPatterns()
	if err != nil {
		return recovery.Config{}, err
	}
	matcher, err := recovery.NewMatcher(cfg.Match.Heuristic, patterns)
	if err != nil {
		return recovery.Config{}, fmt.Errorf("building matcher: %w", err)
	}

	return recovery.Config{
		Ciphertext: ct,
		Salt:       salt,
		Passwords:  cfg.Candidates.Passwords,
		Iterations: cfg.Candidates.Iterations,
		PRF:        prf,
		Matcher:    matcher,
		Workers:    cfg.Scan.Workers,
		BatchSize:  cfg.Scan.BatchSize,
		CollectAll: cfg.Scan.CollectAll,
		Logger:     log,
	}, nil
}
