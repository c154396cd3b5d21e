package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/browseprobe/internal/domain"
	"github.com/hamed0406/browseprobe/internal/probe"
	"github.com/hamed0406/browseprobe/internal/repo"
)

// Reprober periodically re-probes every registered browse ID and appends
// the results.
type Reprober struct {
	Logger      *zap.Logger
	Targets     repo.TargetStore
	Results     repo.ResultStore
	Checker     probe.Checker
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int
}

func NewReprober(
	logger *zap.Logger,
	ts repo.TargetStore,
	rs repo.ResultStore,
	checker probe.Checker,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Reprober {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reprober{
		Logger:      logger,
		Targets:     ts,
		Results:     rs,
		Checker:     checker,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Reprober) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("reprober_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("reprober_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Reprober) runOnce(ctx context.Context) {
	ts, err := r.Targets.List(ctx)
	if err != nil {
		r.Logger.Warn("reprober_list_error", zap.Error(err))
		return
	}
	if len(ts) == 0 {
		return
	}

	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup

	for _, tgt := range ts {
		t := tgt // avoid loop var capture
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, r.Timeout)
			defer cancel()

			out := r.Checker.Check(cctx, t.BrowseID)

			pr := &domain.ProbeResult{
				TargetID:       t.ID,
				BrowseID:       t.BrowseID,
				OK:             out.OK,
				StatusCode:     out.StatusCode,
				MarkerFound:    out.MarkerFound,
				TopKeys:        out.TopKeys,
				NotJSON:        out.NotJSON,
				AppPromptFound: out.AppPromptFound,
				LatencyMS:      out.LatencyMS,
				Reason:         out.Reason(),
				CheckedAt:      time.Now().UTC(),
			}
			if err := r.Results.Append(ctx, pr); err != nil {
				r.Logger.Warn("reprober_append_error",
					zap.String("target_id", string(t.ID)),
					zap.String("browse_id", t.BrowseID),
					zap.Error(err),
				)
			} else {
				r.Logger.Debug("reprober_checked",
					zap.String("target_id", string(t.ID)),
					zap.String("browse_id", t.BrowseID),
					zap.Int("status", out.StatusCode),
					zap.Bool("ok", out.OK),
					zap.Bool("marker_found", out.MarkerFound),
					zap.Float64("latency_ms", out.LatencyMS),
					zap.String("reason", out.Reason()),
				)
			}
		}()
	}

	wg.Wait()
}
