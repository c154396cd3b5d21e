package repo

import (
	"context"
	"time"

	"github.com/hamed0406/browseprobe/internal/domain"
)

// Ports (interfaces) — swap in any DB adapter later.
type TargetStore interface {
	Add(ctx context.Context, t *domain.Target) error
	List(ctx context.Context) ([]*domain.Target, error)
	GetByBrowseID(ctx context.Context, browseID string) (*domain.Target, error)
}

type ResultStore interface {
	Append(ctx context.Context, r *domain.ProbeResult) error
	LastByTarget(ctx context.Context, id domain.TargetID) (*domain.ProbeResult, error)
	Latest(ctx context.Context) ([]LatestRow, error)
}

// LatestRow is the newest probe result per target, denormalized for the
// alerter and the latest-results endpoint. Pointer fields are NULL when the
// probe never completed.
type LatestRow struct {
	TargetID    string    `json:"target_id"`
	BrowseID    string    `json:"browse_id"`
	OK          bool      `json:"ok"`
	MarkerFound bool      `json:"marker_found"`
	StatusCode  *int      `json:"status_code"`
	LatencyMS   *float64  `json:"latency_ms"`
	Reason      string    `json:"reason"`
	CheckedAt   time.Time `json:"checked_at"`
}
