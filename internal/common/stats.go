package common

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats holds atomic counters for progress tracking across files and rows.
// Safe for use from multiple goroutines.
type Stats struct {
	rows  atomic.Uint64
	bytes atomic.Uint64
	files atomic.Uint64

	running atomic.Bool
	stopCh  chan struct{}
	silent  bool

	lastRows  uint64
	lastBytes uint64
	lastTime  time.Time
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{stopCh: make(chan struct{})}
}

// AddRows increments the processed-row counter.
func (s *Stats) AddRows(n uint64) { s.rows.Add(n) }

// AddBytes increments the bytes-read counter.
func (s *Stats) AddBytes(n uint64) { s.bytes.Add(n) }

// AddFile increments the completed-file counter.
func (s *Stats) AddFile() { s.files.Add(1) }

// Rows returns the total rows processed.
func (s *Stats) Rows() uint64 { return s.rows.Load() }

// Bytes returns the total bytes read.
func (s *Stats) Bytes() uint64 { return s.bytes.Load() }

// Files returns the total files completed.
func (s *Stats) Files() uint64 { return s.files.Load() }

// SetSilent suppresses progress output.
func (s *Stats) SetSilent(silent bool) { s.silent = silent }

// StartReporter starts a background goroutine printing throughput every 2s.
func (s *Stats) StartReporter() {
	if s.running.Load() {
		return
	}
	s.running.Store(true)
	s.lastTime = time.Now()
	go s.reporterLoop()
}

// StopReporter stops the background reporter goroutine.
func (s *Stats) StopReporter() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	close(s.stopCh)
}

func (s *Stats) reporterLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.printStatus()
		}
	}
}

func (s *Stats) printStatus() {
	if s.silent {
		return
	}
	now := time.Now()
	elapsed := now.Sub(s.lastTime).Seconds()
	if elapsed < 0.001 {
		return
	}

	rows := s.Rows()
	bytes := s.Bytes()
	rps := float64(rows-s.lastRows) / elapsed
	mibPerSec := float64(bytes-s.lastBytes) / (1024 * 1024) / elapsed

	fmt.Printf("[Progress] %.0f rows/s | %.2f MiB/s | %d rows | %d files\n",
		rps, mibPerSec, rows, s.Files())

	s.lastRows = rows
	s.lastBytes = bytes
	s.lastTime = now
}

// Reset clears all counters.
func (s *Stats) Reset() {
	s.rows.Store(0)
	s.bytes.Store(0)
	s.files.Store(0)
	s.lastRows = 0
	s.lastBytes = 0
	s.lastTime = time.Now()
}
