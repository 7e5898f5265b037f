package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// TotalBytes is the total size in bytes to transfer. Zero means the
	// total is unknown and percentage/ETA are omitted.
	TotalBytes int64

	// TotalObjects is the total number of objects to transfer.
	TotalObjects int

	// TotalGroups is the total number of transfer groups.
	TotalGroups int

	// GroupSize is the group byte budget (for display).
	GroupSize int64

	// Workers is the number of parallel workers.
	Workers int

	// Source is the location being mirrored (for display).
	Source string

	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress information.
type Reporter struct {
	opts Options

	mu               sync.Mutex
	completedBytes   atomic.Int64
	completedObjects atomic.Int32
	completedGroups  atomic.Int32
	failedGroups     atomic.Int32
	inProgress       atomic.Int32
	startTime        time.Time
	lastUpdate       time.Time
	lastBytes        int64
	stopCh           chan struct{}
	stopped          bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	r.lastUpdate = r.startTime

	// Print header
	fmt.Fprintf(r.opts.Output, "[siphon] Mirroring: %s\n", r.opts.Source)
	if r.opts.TotalBytes > 0 {
		fmt.Fprintf(r.opts.Output, "[siphon] Total: %s in %d objects | Groups: %d (budget %s) | Workers: %d\n",
			formatBytes(r.opts.TotalBytes),
			r.opts.TotalObjects,
			r.opts.TotalGroups,
			formatBytes(r.opts.GroupSize),
			r.opts.Workers,
		)
	} else {
		fmt.Fprintf(r.opts.Output, "[siphon] Total: %d objects | Groups: %d | Workers: %d\n",
			r.opts.TotalObjects,
			r.opts.TotalGroups,
			r.opts.Workers,
		)
	}

	go r.updateLoop()
}

// Stop stops the progress reporter.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

// GroupStarted marks a group as in progress.
func (r *Reporter) GroupStarted() {
	r.inProgress.Add(1)
}

// GroupCompleted marks a group as fully transferred.
func (r *Reporter) GroupCompleted() {
	r.completedGroups.Add(1)
	r.inProgress.Add(-1)
}

// GroupFailed marks a group as failed (removes it from in-progress).
func (r *Reporter) GroupFailed() {
	r.failedGroups.Add(1)
	r.inProgress.Add(-1)
}

// ObjectCompleted records one transferred object of the given size.
func (r *Reporter) ObjectCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedObjects.Add(1)
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	now := time.Now()
	completed := r.completedBytes.Load()
	completedGroups := int(r.completedGroups.Load())
	failedGroups := int(r.failedGroups.Load())
	inProgress := int(r.inProgress.Load())

	// Calculate speed
	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	bytesThisPeriod := completed - r.lastBytes
	speed := float64(bytesThisPeriod) / elapsed

	r.lastUpdate = now
	r.lastBytes = completed

	if r.opts.TotalBytes > 0 {
		percent := float64(completed) / float64(r.opts.TotalBytes) * 100
		eta := "calculating..."
		if speed > 0 {
			remaining := float64(r.opts.TotalBytes - completed)
			eta = formatDuration(time.Duration(remaining / speed * float64(time.Second)))
		}
		fmt.Fprintf(r.opts.Output, "\r[siphon] Progress: %.1f%% | %s / %s | Speed: %s/s | ETA: %s    ",
			percent,
			formatBytes(completed),
			formatBytes(r.opts.TotalBytes),
			formatBytes(int64(speed)),
			eta,
		)
	} else {
		fmt.Fprintf(r.opts.Output, "\r[siphon] Progress: %s | %d objects | Speed: %s/s    ",
			formatBytes(completed),
			int(r.completedObjects.Load()),
			formatBytes(int64(speed)),
		)
	}

	pending := r.opts.TotalGroups - completedGroups - failedGroups - inProgress
	if pending < 0 {
		pending = 0
	}
	fmt.Fprintf(r.opts.Output, "\n[siphon] Groups: %d completed | %d failed | %d in-progress | %d pending    \033[A",
		completedGroups,
		failedGroups,
		inProgress,
		pending,
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	completed := r.completedBytes.Load()
	duration := time.Since(r.startTime)
	avgSpeed := float64(completed) / duration.Seconds()

	fmt.Fprintf(r.opts.Output, "\r[siphon] Transferred: %s in %d objects | Average speed: %s/s    \n",
		formatBytes(completed),
		int(r.completedObjects.Load()),
		formatBytes(int64(avgSpeed)),
	)
	fmt.Fprintf(r.opts.Output, "[siphon] Groups: %d completed | %d failed | Total time: %s    \n",
		int(r.completedGroups.Load()),
		int(r.failedGroups.Load()),
		formatDuration(duration),
	)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}

// ParseBytes parses a human-readable byte string (e.g., "100MB").
func ParseBytes(s string) (int64, error) {
	var multiplier int64 = 1
	s = trimSuffix(s, " ")

	switch {
	case hasSuffix(s, "TB"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	var value float64
	_, err := fmt.Sscanf(s, "%f", &value)
	if err != nil {
		return 0, fmt.Errorf("invalid byte string: %s", s)
	}

	return int64(value * float64(multiplier)), nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func trimSuffix(s, suffix string) string {
	for hasSuffix(s, suffix) {
		s = s[:len(s)-len(suffix)]
	}
	return s
}
