package janitor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Suffix of the files written by the summary list export.
const ExportFileSuffix = "_summary_list.txt"

var filesRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "invtout_janitor_files_removed_total",
	Help: "Expired summary list files removed from the export directory.",
})

// Janitor removes expired export files. The API never deletes what it writes; this is
// the separate retention process that does.
type Janitor struct {
	dir       string
	retention time.Duration
	interval  time.Duration
	now       func() time.Time

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastSweepUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalSweeps         atomic.Int64
	totalRemoved        atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(dir string) *Janitor {
	return &Janitor{
		dir:               dir,
		retention:         72 * time.Hour,
		interval:          10 * time.Minute,
		now:               time.Now,
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (j *Janitor) WithSettings(retention, interval time.Duration) *Janitor {
	if retention > 0 {
		j.retention = retention
	}
	if interval > 0 {
		j.interval = interval
	}
	return j
}

// Trigger forces an immediate sweep (best-effort, non-blocking).
func (j *Janitor) Trigger() {
	j.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case j.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	Dir              string     `json:"dir"`
	RetentionSeconds int64      `json:"retentionSeconds"`
	StartedAt        time.Time  `json:"startedAt"`
	LastSweepAt      *time.Time `json:"lastSweepAt,omitempty"`
	LastTriggerAt    *time.Time `json:"lastTriggerAt,omitempty"`
	TotalSweeps      int64      `json:"totalSweeps"`
	TotalRemoved     int64      `json:"totalRemoved"`
	TotalErrors      int64      `json:"totalErrors"`
	LastError        string     `json:"lastError,omitempty"`
}

func (j *Janitor) Stats() Stats {
	st := Stats{
		Dir:              j.dir,
		RetentionSeconds: int64(j.retention / time.Second),
		StartedAt:        time.Unix(0, j.startedAtUnixNano).UTC(),
		TotalSweeps:      j.totalSweeps.Load(),
		TotalRemoved:     j.totalRemoved.Load(),
		TotalErrors:      j.totalErrors.Load(),
	}
	if n := j.lastSweepUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastSweepAt = &t
	}
	if n := j.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	j.lastErrorMu.Lock()
	st.LastError = j.lastError
	j.lastErrorMu.Unlock()
	return st
}

func (j *Janitor) Run(ctx context.Context) error {
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			j.sweepLogged(ctx)
		case <-j.triggerCh:
			j.sweepLogged(ctx)
		}
	}
}

func (j *Janitor) sweepLogged(ctx context.Context) {
	n, err := j.Sweep(ctx)
	if err != nil {
		slog.Error("sweep export dir", "dir", j.dir, "error", err.Error())
		return
	}
	if n > 0 {
		slog.Info("expired exports removed", "dir", j.dir, "count", n)
	}
}

// Sweep deletes summary list files whose modification time is older than the retention
// window and returns how many were removed. A missing directory is not an error.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	now := j.now()
	j.lastSweepUnixNano.Store(now.UTC().UnixNano())
	j.totalSweeps.Add(1)

	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		j.recordError(err)
		return 0, errors.Wrap(err, "read export dir")
	}

	cutoff := now.Add(-j.retention)
	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ExportFileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			j.recordError(err)
			slog.Warn("remove expired export", "file", e.Name(), "error", err.Error())
			continue
		}
		removed++
	}

	j.totalRemoved.Add(int64(removed))
	filesRemovedTotal.Add(float64(removed))
	return removed, nil
}

func (j *Janitor) recordError(err error) {
	j.totalErrors.Add(1)
	j.lastErrorMu.Lock()
	j.lastError = err.Error()
	j.lastErrorMu.Unlock()
}
