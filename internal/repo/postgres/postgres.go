package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/browseprobe/internal/domain"
	"github.com/hamed0406/browseprobe/internal/repo"
)

var _ repo.TargetStore = (*Store)(nil)
var _ repo.ResultStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS targets (
  id         TEXT PRIMARY KEY,
  browse_id  TEXT NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS results (
  id           BIGSERIAL PRIMARY KEY,
  target_id    TEXT NOT NULL REFERENCES targets(id) ON DELETE CASCADE,
  browse_id    TEXT NOT NULL,
  ok           BOOLEAN NOT NULL,
  status_code  INTEGER NULL,
  marker_found BOOLEAN NOT NULL DEFAULT FALSE,
  not_json     BOOLEAN NOT NULL DEFAULT FALSE,
  app_prompt   BOOLEAN NOT NULL DEFAULT FALSE,
  top_keys     TEXT[] NULL,
  latency_ms   DOUBLE PRECISION NOT NULL,
  reason       TEXT NOT NULL,
  checked_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_target_time ON results (target_id, checked_at DESC);

CREATE TABLE IF NOT EXISTS alerts (
  target_id    TEXT PRIMARY KEY,
  last_state   BOOLEAN NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);
`

// EnsureSchema creates the tables on a fresh database. Safe to call on
// every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func makeID() string {
	return time.Now().UTC().Format("20060102T150405.000000000")
}

// ---- TargetStore ----

func (s *Store) Add(ctx context.Context, t *domain.Target) error {
	if t.ID == "" {
		t.ID = domain.TargetID(makeID())
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO targets (id, browse_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (browse_id) DO NOTHING`,
		string(t.ID), t.BrowseID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert target: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Target, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, browse_id, created_at FROM targets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()
	var out []*domain.Target
	for rows.Next() {
		var t domain.Target
		if err := rows.Scan(&t.ID, &t.BrowseID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *Store) GetByBrowseID(ctx context.Context, browseID string) (*domain.Target, error) {
	var t domain.Target
	err := s.pool.QueryRow(ctx,
		`SELECT id, browse_id, created_at FROM targets WHERE browse_id=$1`,
		browseID).Scan(&t.ID, &t.BrowseID, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get target: %w", err)
	}
	return &t, nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, r *domain.ProbeResult) error {
	var sc *int
	if r.StatusCode != 0 {
		v := r.StatusCode
		sc = &v
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO results
		   (target_id, browse_id, ok, status_code, marker_found, not_json, app_prompt, top_keys, latency_ms, reason, checked_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		string(r.TargetID), r.BrowseID, r.OK, sc, r.MarkerFound, r.NotJSON,
		r.AppPromptFound, r.TopKeys, r.LatencyMS, r.Reason, r.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) LastByTarget(ctx context.Context, id domain.TargetID) (*domain.ProbeResult, error) {
	var r domain.ProbeResult
	var sc *int
	err := s.pool.QueryRow(ctx,
		`SELECT target_id, browse_id, ok, status_code, marker_found, not_json, app_prompt, top_keys, latency_ms, reason, checked_at
		   FROM results WHERE target_id=$1
		  ORDER BY checked_at DESC LIMIT 1`,
		string(id)).Scan(&r.TargetID, &r.BrowseID, &r.OK, &sc, &r.MarkerFound,
		&r.NotJSON, &r.AppPromptFound, &r.TopKeys, &r.LatencyMS, &r.Reason, &r.CheckedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("last result: %w", err)
	}
	if sc != nil {
		r.StatusCode = *sc
	}
	return &r, nil
}

func (s *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (target_id)
		        target_id, browse_id, ok, marker_found, status_code, latency_ms, reason, checked_at
		   FROM results
		  ORDER BY target_id, checked_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("latest results: %w", err)
	}
	defer rows.Close()
	var out []repo.LatestRow
	for rows.Next() {
		var lr repo.LatestRow
		if err := rows.Scan(&lr.TargetID, &lr.BrowseID, &lr.OK, &lr.MarkerFound,
			&lr.StatusCode, &lr.LatencyMS, &lr.Reason, &lr.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan latest: %w", err)
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}
