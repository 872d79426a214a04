package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

// growthWarnAfter is the number of consecutive samples with more goroutines
// than the one before after which a warning is logged.
const growthWarnAfter = 5

// StackSample is one goroutine and stack measurement.
type StackSample struct {
	Goroutines uint64
	StackInuse uint64
	StackSys   uint64
}

// ReadStackSample reads the goroutine count from runtime/metrics and the
// stack figures from MemStats.
func ReadStackSample() StackSample {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s := StackSample{StackInuse: ms.StackInuse, StackSys: ms.StackSys}
	if samples[0].Value.Kind() == metrics.KindUint64 {
		s.Goroutines = samples[0].Value.Uint64()
	}
	return s
}

// growthTracker counts how many samples in a row raised the goroutine count.
type growthTracker struct {
	last   uint64
	streak int
}

// observe records n and reports whether the count has grown for
// growthWarnAfter samples in a row. The streak restarts after a report.
func (g *growthTracker) observe(n uint64) bool {
	if g.last != 0 && n > g.last {
		g.streak++
	} else {
		g.streak = 0
	}
	g.last = n
	if g.streak >= growthWarnAfter {
		g.streak = 0
		return true
	}
	return false
}

// StartGoroutineLogger logs a StackSample every interval until ctx is done
// and warns when the goroutine count keeps rising, which usually means
// fetches are piling up behind a slow backend.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		var growth growthTracker
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			s := ReadStackSample()
			logger.Debug("goroutines",
				slog.Uint64("goroutines", s.Goroutines),
				slog.String("stack_inuse", humanize.IBytes(s.StackInuse)),
				slog.String("stack_sys", humanize.IBytes(s.StackSys)),
			)
			if growth.observe(s.Goroutines) {
				logger.Warn("goroutine count keeps growing", "goroutines", s.Goroutines, "samples", growthWarnAfter)
			}
		}
	}()
}
