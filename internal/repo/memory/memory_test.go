package memory

import (
	"context"
	"testing"
	"time"

	"github.com/hamed0406/browseprobe/internal/domain"
)

func TestMemoryStore_AddAndListTargets(t *testing.T) {
	ctx := context.Background()
	s := New()

	// add one
	tgt := &domain.Target{
		BrowseID:  "FEmusic_samples",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Add(ctx, tgt); err != nil {
		t.Fatalf("Add target: %v", err)
	}
	if tgt.ID == "" {
		t.Fatalf("expected target ID to be set")
	}

	// list
	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 target, got %d", len(all))
	}
	if all[0].BrowseID != "FEmusic_samples" {
		t.Fatalf("unexpected browse ID: %s", all[0].BrowseID)
	}

	// lookup by browse ID
	got, err := s.GetByBrowseID(ctx, "FEmusic_samples")
	if err != nil || got == nil || got.ID != tgt.ID {
		t.Fatalf("GetByBrowseID: got=%+v err=%v", got, err)
	}
	if miss, _ := s.GetByBrowseID(ctx, "FEmusic_other"); miss != nil {
		t.Fatalf("expected nil for unknown browse ID, got %+v", miss)
	}
}

func TestMemoryStore_AppendAndLatest(t *testing.T) {
	ctx := context.Background()
	s := New()

	tgt := &domain.Target{BrowseID: "FEmusic_home", CreatedAt: time.Now().UTC()}
	if err := s.Add(ctx, tgt); err != nil {
		t.Fatalf("Add target: %v", err)
	}

	older := &domain.ProbeResult{
		TargetID:   tgt.ID,
		BrowseID:   "FEmusic_home",
		OK:         false,
		StatusCode: 404,
		Reason:     "non-200",
		CheckedAt:  time.Now().UTC().Add(-time.Minute),
	}
	newer := &domain.ProbeResult{
		TargetID:    tgt.ID,
		BrowseID:    "FEmusic_home",
		OK:          true,
		StatusCode:  200,
		MarkerFound: true,
		LatencyMS:   12.5,
		Reason:      "marker found",
		CheckedAt:   time.Now().UTC(),
	}
	if err := s.Append(ctx, older); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, newer); err != nil {
		t.Fatalf("Append: %v", err)
	}

	last, err := s.LastByTarget(ctx, tgt.ID)
	if err != nil || last == nil || !last.MarkerFound {
		t.Fatalf("LastByTarget should return the newer result: %+v err=%v", last, err)
	}

	rows, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 latest row, got %d", len(rows))
	}
	if !rows[0].OK || rows[0].StatusCode == nil || *rows[0].StatusCode != 200 {
		t.Fatalf("latest row should reflect the newer probe: %+v", rows[0])
	}
	if rows[0].BrowseID != "FEmusic_home" {
		t.Fatalf("browse ID missing from latest row: %+v", rows[0])
	}
}

func TestMemoryStore_AlertStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec, err := s.Get(ctx, "T1")
	if err != nil || rec != nil {
		t.Fatalf("expected nil record, got %+v err=%v", rec, err)
	}

	if err := s.Set(ctx, "T1", false, time.Time{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	rec, err = s.Get(ctx, "T1")
	if err != nil || rec == nil || rec.LastState || rec.LastSentAt != nil {
		t.Fatalf("unexpected record: %+v err=%v", rec, err)
	}

	now := time.Now()
	if err := s.Set(ctx, "T1", true, now); err != nil {
		t.Fatalf("Set: %v", err)
	}
	rec, _ = s.Get(ctx, "T1")
	if rec == nil || !rec.LastState || rec.LastSentAt == nil {
		t.Fatalf("unexpected record after update: %+v", rec)
	}
}
