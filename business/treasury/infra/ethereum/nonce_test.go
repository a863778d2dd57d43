package ethereum

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/fd1az/treasury-bot/internal/apperror"
)

func fixedFetch(n uint64) NonceFetcher {
	return func(context.Context) (uint64, error) { return n, nil }
}

func TestSequencer_ColdStartSyncs(t *testing.T) {
	s := NewSequencer()

	if got := s.Current(); got != -1 {
		t.Fatalf("unsynced counter = %d, want -1", got)
	}

	n, err := s.Reserve(context.Background(), fixedFetch(42))
	if err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Errorf("first reservation = %d, want 42", n)
	}
	if got := s.Current(); got != 43 {
		t.Errorf("counter after reservation = %d, want 43", got)
	}
}

func TestSequencer_FetchErrorPropagates(t *testing.T) {
	s := NewSequencer()
	boom := errors.New("rpc down")

	_, err := s.Reserve(context.Background(), func(context.Context) (uint64, error) {
		return 0, boom
	})
	if !apperror.HasCode(err, apperror.CodeNonceDesync) {
		t.Fatalf("err = %v, want NONCE_DESYNC", err)
	}
	if got := s.Current(); got != -1 {
		t.Errorf("counter after failed sync = %d, want -1", got)
	}
}

func TestSequencer_ConcurrentReservationsContiguous(t *testing.T) {
	const workers = 64
	s := NewSequencer()

	var wg sync.WaitGroup
	results := make([]uint64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := s.Reserve(context.Background(), fixedFetch(100))
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = n
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i, n := range results {
		if n != uint64(100+i) {
			t.Fatalf("reservations not contiguous: got %v", results)
		}
	}
}

func TestSequencer_Release(t *testing.T) {
	s := NewSequencer()
	ctx := context.Background()

	n1, _ := s.Reserve(ctx, fixedFetch(10))
	n2, _ := s.Reserve(ctx, fixedFetch(10))

	// Stale release is a no-op: n2 already consumed the following slot.
	if s.Release(n1) {
		t.Error("stale release must be a no-op")
	}
	if got := s.Current(); got != 12 {
		t.Errorf("counter after stale release = %d, want 12", got)
	}

	// Most recent reservation rolls back.
	if !s.Release(n2) {
		t.Error("latest release must succeed")
	}
	if got := s.Current(); got != 11 {
		t.Errorf("counter after release = %d, want 11", got)
	}

	// Double release of the same slot is a no-op.
	if s.Release(n2) {
		t.Error("double release must be a no-op")
	}
}

func TestSequencer_ReleaseUnsynced(t *testing.T) {
	s := NewSequencer()
	if s.Release(0) {
		t.Error("release on unsynced counter must be a no-op")
	}
}

func TestSequencer_Resync(t *testing.T) {
	s := NewSequencer()
	ctx := context.Background()

	s.Reserve(ctx, fixedFetch(5))
	s.Resync(99)

	n, _ := s.Reserve(ctx, fixedFetch(5))
	if n != 99 {
		t.Errorf("reservation after resync = %d, want 99", n)
	}
}
