package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/browseprobe/internal/domain"
	"github.com/hamed0406/browseprobe/internal/repo"
)

type Store struct {
	mu      sync.RWMutex
	targets map[domain.TargetID]*domain.Target
	results []*domain.ProbeResult
	alerts  map[string]repo.AlertRecord
}

func New() *Store {
	return &Store{
		targets: make(map[domain.TargetID]*domain.Target),
		results: make([]*domain.ProbeResult, 0, 128),
		alerts:  make(map[string]repo.AlertRecord),
	}
}

func (m *Store) Add(ctx context.Context, t *domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = domain.TargetID(time.Now().UTC().Format("20060102T150405.000000000"))
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.targets[t.ID] = t
	return nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Target, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, t)
	}
	return out, nil
}

func (m *Store) GetByBrowseID(ctx context.Context, browseID string) (*domain.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.targets {
		if t.BrowseID == browseID {
			return t, nil
		}
	}
	return nil, nil
}

func (m *Store) Append(ctx context.Context, r *domain.ProbeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *Store) LastByTarget(ctx context.Context, id domain.TargetID) (*domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *domain.ProbeResult
	for _, r := range m.results {
		if r.TargetID != id {
			continue
		}
		if last == nil || r.CheckedAt.After(last.CheckedAt) {
			last = r
		}
	}
	return last, nil
}

func (m *Store) Latest(ctx context.Context) ([]repo.LatestRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[domain.TargetID]*domain.ProbeResult)
	for _, r := range m.results {
		cur := latest[r.TargetID]
		if cur == nil || r.CheckedAt.After(cur.CheckedAt) {
			latest[r.TargetID] = r
		}
	}

	out := make([]repo.LatestRow, 0, len(latest))
	for tid, r := range latest {
		var sc *int
		var lat *float64
		if r.StatusCode != 0 {
			v := r.StatusCode
			sc = &v
		}
		if r.LatencyMS != 0 {
			v := r.LatencyMS
			lat = &v
		}
		browseID := r.BrowseID
		if t := m.targets[tid]; t != nil && browseID == "" {
			browseID = t.BrowseID
		}
		out = append(out, repo.LatestRow{
			TargetID:    string(tid),
			BrowseID:    browseID,
			OK:          r.OK,
			MarkerFound: r.MarkerFound,
			StatusCode:  sc,
			LatencyMS:   lat,
			Reason:      r.Reason,
			CheckedAt:   r.CheckedAt,
		})
	}
	return out, nil
}

// ---- AlertStore ----

func (m *Store) Get(ctx context.Context, targetID string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.alerts[targetID]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (m *Store) Set(ctx context.Context, targetID string, lastState bool, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ts *time.Time
	if !sentAt.IsZero() {
		t := sentAt
		ts = &t
	}
	m.alerts[targetID] = repo.AlertRecord{TargetID: targetID, LastState: lastState, LastSentAt: ts}
	return nil
}
