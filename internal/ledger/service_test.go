package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

type stubSource struct {
	mu       sync.Mutex
	entries  []Entry
	listErr  error
	lists    atomic.Int32
	gate     chan struct{}
	created  []Entry
	updated  map[string]Entry
	deleted  []string
	writeErr error
}

func (s *stubSource) ListEntries(ctx context.Context, filter Filter) ([]Entry, error) {
	s.lists.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *stubSource) CreateEntry(ctx context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return Entry{}, s.writeErr
	}
	e.ID = "new-1"
	s.created = append(s.created, e)
	return e, nil
}

func (s *stubSource) UpdateEntry(ctx context.Context, id string, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updated == nil {
		s.updated = map[string]Entry{}
	}
	s.updated[id] = e
	return e, nil
}

func (s *stubSource) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

type recorded struct {
	company       string
	debit, credit float64
}

type stubRecorder struct{ calls []recorded }

func (r *stubRecorder) RecordLedgerBalance(company string, debit, credit float64) {
	r.calls = append(r.calls, recorded{company, debit, credit})
}

func TestServiceLedgerSortsChronologically(t *testing.T) {
	late := entry("late", "411", "701", 100)
	late.Date = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	early := entry("early", "411", "701", 50)
	early.Date = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &stubSource{entries: []Entry{late, early}}

	views, err := NewService(src, nil, nil).Ledger(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, "early", views[0].Transactions[0].EntryID)
	require.Equal(t, "late", views[0].Transactions[1].EntryID)
}

func TestServiceTotalsRecordsBalance(t *testing.T) {
	src := &stubSource{entries: []Entry{entry("1", "411", "701", 5000), entry("2", "601", "512", 2000)}}
	rec := &stubRecorder{}

	totals, err := NewService(src, nil, rec).Totals(context.Background(), Filter{CompanySlug: "africanut-fish"})
	require.NoError(t, err)
	require.True(t, totals.Balanced)
	require.True(t, totals.TotalDebit.Equal(decimal.NewFromInt(7000)))
	require.Equal(t, []recorded{{"africanut-fish", 7000, 7000}}, rec.calls)
}

func TestServiceCollapsesConcurrentFetches(t *testing.T) {
	src := &stubSource{entries: []Entry{entry("1", "411", "701", 5)}, gate: make(chan struct{})}
	svc := NewService(src, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := svc.Entries(context.Background(), Filter{CompanySlug: "africanut-fish"})
			assert.NoError(t, err)
			assert.Len(t, entries, 1)
		}()
	}
	require.Eventually(t, func() bool { return src.lists.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	require.LessOrEqual(t, src.lists.Load(), int32(5))
	require.GreaterOrEqual(t, src.lists.Load(), int32(1))
}

func TestServiceEntriesHonoursCancellation(t *testing.T) {
	src := &stubSource{gate: make(chan struct{})}
	defer close(src.gate)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(src, nil, nil).Entries(ctx, Filter{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestServiceCancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	src := &stubSource{entries: []Entry{entry("1", "411", "701", 5)}, gate: make(chan struct{})}
	svc := NewService(src, nil, nil)
	filter := Filter{CompanySlug: "africanut-fish"}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Entries(ctxA, filter)
		errA <- err
	}()
	require.Eventually(t, func() bool { return src.lists.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	time.AfterFunc(100*time.Millisecond, func() { close(src.gate) })
	entries, err := svc.Entries(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int32(1), src.lists.Load())
}

func TestServiceCreateValidatesBeforeNetwork(t *testing.T) {
	src := &stubSource{}
	svc := NewService(src, nil, nil)

	bad := validInput()
	bad.Amount = "0"
	_, err := svc.Create(context.Background(), bad)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, src.created)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, "new-1", created.ID)
	require.Len(t, src.created, 1)
}

func TestServiceUpdateAndDelete(t *testing.T) {
	src := &stubSource{}
	svc := NewService(src, nil, nil)

	_, err := svc.Update(context.Background(), "", validInput())
	require.ErrorIs(t, err, httpx.ErrValidation)

	updated, err := svc.Update(context.Background(), "e-9", validInput())
	require.NoError(t, err)
	require.Equal(t, "e-9", updated.ID)
	require.Contains(t, src.updated, "e-9")

	require.ErrorIs(t, svc.Delete(context.Background(), " "), httpx.ErrValidation)
	require.NoError(t, svc.Delete(context.Background(), "e-9"))
	require.Equal(t, []string{"e-9"}, src.deleted)
}

func TestServicePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("backend down")
	svc := NewService(&stubSource{listErr: boom}, nil, nil)
	_, err := svc.Totals(context.Background(), Filter{})
	require.ErrorIs(t, err, boom)
}
