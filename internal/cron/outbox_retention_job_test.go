package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestOutboxRetentionJobDefaults(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{})
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-defaultOutboxRetention); !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
	if len(repo.limits) != 1 || repo.limits[0] != defaultOutboxRetentionBatch {
		t.Fatalf("expected a single default-sized batch, got %v", repo.limits)
	}
}

func TestOutboxRetentionJobLoopsUntilShortBatch(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{remaining: 25}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{Retention: 72 * time.Hour, BatchSize: 10})
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC); !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
	if len(repo.limits) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(repo.limits))
	}
	if repo.remaining != 0 {
		t.Fatalf("expected every row removed, %d left", repo.remaining)
	}
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{err: errors.New("boom")}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestOutboxRetentionJobStopsOnCancel(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{remaining: 100}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{BatchSize: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := job.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(repo.limits) != 0 {
		t.Fatalf("expected no deletes after cancel, got %d", len(repo.limits))
	}
}

func newOutboxRetentionJob(t *testing.T, repo *fakeOutboxRetentionRepo, params OutboxRetentionJobParams) *outboxRetentionJob {
	t.Helper()
	params.Logger = testLogger()
	params.DB = passthroughTx{}
	params.Repository = repo
	jobIface, err := NewOutboxRetentionJob(params)
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job, ok := jobIface.(*outboxRetentionJob)
	if !ok {
		t.Fatalf("expected outboxRetentionJob, got %T", jobIface)
	}
	return job
}

// fakeOutboxRetentionRepo drains remaining in limit-sized chunks.
type fakeOutboxRetentionRepo struct {
	cutoff    time.Time
	limits    []int
	remaining int64
	err       error
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	f.limits = append(f.limits, limit)
	f.cutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	n := min(f.remaining, int64(limit))
	f.remaining -= n
	return n, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
