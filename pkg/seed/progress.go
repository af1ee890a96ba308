package seed

import (
	"sync"
	"time"
)

// ImportStats holds the progress of the current or last seed import
type ImportStats struct {
	IsRunning  bool       `json:"isRunning"`
	File       string     `json:"file"`
	Committed  int        `json:"committed"`
	Lines      int        `json:"lines"`
	Imported   int        `json:"imported"`
	Skipped    int        `json:"skipped"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Progress tracks a seed import. A nil *Progress ignores updates.
type Progress struct {
	mu    sync.RWMutex
	stats ImportStats
}

// Snapshot returns a copy of current import stats
func (p *Progress) Snapshot() ImportStats {
	if p == nil {
		return ImportStats{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.stats
}

// Start initializes import statistics
func (p *Progress) Start(file string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.stats = ImportStats{
		IsRunning: true,
		File:      file,
		StartedAt: &now,
	}
}

// Committed adds n books written to the store
func (p *Progress) Committed(n int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Committed += n
}

// Finish records the totals of the decoded file
func (p *Progress) Finish(result Result) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Lines = result.Lines
	p.stats.Imported = result.Imported
	p.stats.Skipped = result.Skipped
}

// End marks the import as completed
func (p *Progress) End() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.stats.IsRunning = false
	p.stats.FinishedAt = &now
}
