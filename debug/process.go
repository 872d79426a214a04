package debug

// Process monitor enabled when config.Debug is true. Logs resident memory and
// CPU of this process next to Go heap stats, so growth in Tk photo images
// (native memory) can be told apart from Go heap growth.

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
)

// Sample is one process measurement.
type Sample struct {
	RSS        uint64
	CPUPercent float64
	HeapAlloc  uint64
	Goroutines int
}

// ReadSample measures the current process.
func ReadSample(ctx context.Context) (Sample, error) {
	var s Sample
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAlloc = ms.HeapAlloc
	s.Goroutines = runtime.NumGoroutine()

	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return s, err
	}
	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return s, err
	}
	s.RSS = mem.RSS
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		s.CPUPercent = cpu
	}
	return s, nil
}

// StartProcessMonitor logs a Sample every interval until ctx is done. A
// failing RSS query is logged once and then only heap figures are reported.
func StartProcessMonitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			s, err := ReadSample(ctx)
			if err != nil && !rssErrLogged {
				logger.Warn("process monitor: rss query failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logger.Info("process",
				slog.Int("goroutines", s.Goroutines),
				slog.String("heap_alloc", humanize.Bytes(s.HeapAlloc)),
				slog.String("rss", humanize.Bytes(s.RSS)),
				slog.Float64("cpu_percent", s.CPUPercent),
			)
		}
	}()
}
