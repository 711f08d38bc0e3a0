package recovery

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
)

// DefaultBatchSize is the number of offsets a worker scans between checks of
// the cancellation flag.
const DefaultBatchSize = 4096

// ScanUnit is the half-open offset range [Start, End) owned by one worker.
type ScanUnit struct {
	Start int
	End   int
}

// Len returns the number of offsets in the unit.
func (u ScanUnit) Len() int {
	return u.End - u.Start
}

// ScanSpan returns the number of offsets scanned in a buffer of n bytes. Both
// a 16 and a 32-byte window fit at every offset below the span.
func ScanSpan(n int) int {
	if n <= MaxKeyLen {
		return 0
	}
	return n - MaxKeyLen
}

// Partition splits [0, span) into at most workers contiguous units with no
// gap and no overlap. Unit sizes differ by at most one.
func Partition(span, workers int) []ScanUnit {
	if span <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > span {
		workers = span
	}

	units := make([]ScanUnit, 0, workers)
	size, extra := span/workers, span%workers
	start := 0
	for i := 0; i < workers; i++ {
		end := start + size
		if i < extra {
			end++
		}
		units = append(units, ScanUnit{Start: start, End: end})
		start = end
	}
	return units
}

// Scanner tries every key-sized window of a buffer against a ciphertext.
type Scanner struct {
	Ciphertext Ciphertext
	Matcher    Matcher
	Controller *Controller

	// Workers is the number of goroutines; values below 1 mean runtime.NumCPU().
	Workers int

	// BatchSize is the cancellation check granularity; values below 1 mean DefaultBatchSize.
	BatchSize int

	scanned atomic.Int64
}

// Scanned returns the number of offsets visited so far across all scans.
func (s *Scanner) Scanned() int64 {
	return s.scanned.Load()
}

// Try runs one candidate through the oracle and the matcher, publishing a
// match to the controller when accepted. block is the caller's scratch space.
func (s *Scanner) Try(c KeyCandidate, block *Block) bool {
	cfg, ok := TrialDecrypt(block, c.Key, s.Ciphertext)
	if !ok || !s.Matcher.Match(block[:]) {
		return false
	}
	s.Controller.Offer(newMatch(c, cfg, block))
	return true
}

// Scan visits every offset of buf, split across workers, until the range is
// exhausted or the controller is stopped. It returns once all workers are done.
func (s *Scanner) Scan(ctx context.Context, source string, buf []byte) {
	workers := s.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	for _, unit := range Partition(ScanSpan(len(buf)), workers) {
		wg.Add(1)
		go func(unit ScanUnit) {
			defer wg.Done()
			s.scanUnit(ctx, source, buf, unit)
		}(unit)
	}
	wg.Wait()
}

func (s *Scanner) scanUnit(ctx context.Context, source string, buf []byte, unit ScanUnit) {
	batch := s.BatchSize
	if batch < 1 {
		batch = DefaultBatchSize
	}
	name := filepath.Base(source)

	var block Block
	for start := unit.Start; start < unit.End; start += batch {
		if s.Controller.Stopped() {
			return
		}
		if ctx.Err() != nil {
			s.Controller.Cancel()
			return
		}

		end := min(start+batch, unit.End)
		for i := start; i < end; i++ {
			for _, size := range KeySizes {
				window := buf[i : i+size]
				cfg, ok := TrialDecrypt(&block, window, s.Ciphertext)
				if !ok || !s.Matcher.Match(block[:]) {
					continue
				}
				s.Controller.Offer(newMatch(KeyCandidate{
					Key:    window,
					Label:  fmt.Sprintf("%s offset %d (%s)", name, i, cfg.Name),
					Source: source,
					Offset: i,
				}, cfg, &block))
			}
		}
		s.scanned.Add(int64(end - start))
	}
}
