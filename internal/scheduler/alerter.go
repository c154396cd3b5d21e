package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hamed0406/browseprobe/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

type Alerter struct {
	results  repo.ResultStore
	alertDB  repo.AlertStore
	notifier interface {
		Send(context.Context, string, string) error
	}
	cfg AlerterConfig
}

func NewAlerter(
	results repo.ResultStore,
	alertDB repo.AlertStore,
	notifier interface {
		Send(context.Context, string, string) error
	},
	cfg AlerterConfig,
) *Alerter {
	return &Alerter{
		results:  results,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	if a.cfg.PollInterval <= 0 {
		return nil
	}
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = a.scanOnce(ctx)
		}
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	rows, err := a.results.Latest(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	for _, r := range rows {
		rec, _ := a.alertDB.Get(ctx, r.TargetID)

		// Has the OK/not-OK state changed compared to what we last recorded?
		stateChanged := rec == nil || rec.LastState != r.OK

		// Cooldown only matters for failure alerts (suppresses noisy repeats).
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		failAlert := stateChanged && !r.OK && cooled
		recoveryAlert := stateChanged && r.OK && a.cfg.AlertOnRecovery // bypass cooldown

		if failAlert || recoveryAlert {
			title := "🔴 Browse endpoint probe FAILING"
			if r.OK {
				title = "🟢 Browse endpoint probe RECOVERED"
			}

			statusTxt := "n/a"
			if r.StatusCode != nil {
				statusTxt = fmt.Sprintf("%d", *r.StatusCode)
			}
			latencyTxt := "n/a"
			if r.LatencyMS != nil {
				latencyTxt = fmt.Sprintf("%.0f ms", *r.LatencyMS)
			}
			markerTxt := "absent"
			if r.MarkerFound {
				markerTxt = "present"
			}

			text := fmt.Sprintf(
				"Browse ID: %s\nHTTP: %s\nMarker: %s\nLatency: %s\nReason: %s\nChecked: %s",
				r.BrowseID, statusTxt, markerTxt, latencyTxt, r.Reason, r.CheckedAt.Format(time.RFC3339),
			)

			// Best‑effort send and record the send time
			_ = a.notifier.Send(ctx, title, text)
			_ = a.alertDB.Set(ctx, r.TargetID, r.OK, now)
			continue
		}

		// If state changed but we did not send (e.g., failure within cooldown
		// or recovery alerts disabled), still record the new state without a
		// send time.
		if stateChanged {
			_ = a.alertDB.Set(ctx, r.TargetID, r.OK, time.Time{})
		}
	}

	return nil
}
