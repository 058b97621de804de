package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IshaanNene/newsentiment/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeSession struct {
	id     int
	closed atomic.Bool
}

func newFakePool(t *testing.T, size int, failEvery int) (*Pool[*fakeSession], []*fakeSession) {
	t.Helper()
	var made []*fakeSession
	create := func(i int) (*fakeSession, error) {
		if failEvery > 0 && i%failEvery == 0 {
			return nil, errors.New("driver crashed")
		}
		s := &fakeSession{id: i}
		made = append(made, s)
		return s, nil
	}
	closeFn := func(s *fakeSession) error {
		s.closed.Store(true)
		return nil
	}
	p, err := NewPool(size, create, closeFn, testLogger)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return p, made
}

func TestPoolPartialSetup(t *testing.T) {
	p, made := newFakePool(t, 6, 3) // slots 0 and 3 fail
	if p.Size() != 4 || len(made) != 4 {
		t.Fatalf("expected 4 sessions, got %d", p.Size())
	}
	if p.Available() != 4 {
		t.Errorf("expected all sessions idle, got %d", p.Available())
	}
}

func TestPoolNoSessions(t *testing.T) {
	_, err := NewPool(3, func(int) (*fakeSession, error) {
		return nil, errors.New("no chrome")
	}, nil, testLogger)
	if !errors.Is(err, types.ErrNoSessions) {
		t.Fatalf("expected ErrNoSessions, got %v", err)
	}

	if _, err := NewPool(0, func(int) (*fakeSession, error) { return &fakeSession{}, nil }, nil, testLogger); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestPoolExclusiveOwnership(t *testing.T) {
	p, _ := newFakePool(t, 3, 0)

	var (
		mu      sync.Mutex
		inUse   = make(map[int]bool)
		maxBusy int
		wg      sync.WaitGroup
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := p.Do(context.Background(), func(s *fakeSession) error {
				mu.Lock()
				if inUse[s.id] {
					t.Errorf("session %d checked out twice", s.id)
				}
				inUse[s.id] = true
				if len(inUse) > maxBusy {
					maxBusy = len(inUse)
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				delete(inUse, s.id)
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxBusy > 3 {
		t.Errorf("more sessions busy than exist: %d", maxBusy)
	}
	if p.Available() != 3 {
		t.Errorf("expected all sessions returned, got %d", p.Available())
	}
}

func TestPoolReleaseOnError(t *testing.T) {
	p, _ := newFakePool(t, 1, 0)
	wantErr := errors.New("page crashed")

	if err := p.Do(context.Background(), func(*fakeSession) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected task error, got %v", err)
	}
	if p.Available() != 1 {
		t.Fatal("session not returned after error")
	}
}

func TestPoolReleaseOnPanic(t *testing.T) {
	p, _ := newFakePool(t, 1, 0)

	func() {
		defer func() { _ = recover() }()
		_ = p.Do(context.Background(), func(*fakeSession) error { panic("boom") })
	}()

	if p.Available() != 1 {
		t.Fatal("session not returned after panic")
	}
}

func TestPoolAcquireHonoursContext(t *testing.T) {
	p, _ := newFakePool(t, 1, 0)
	s, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer p.Release(s)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestPoolClose(t *testing.T) {
	p, made := newFakePool(t, 2, 0)
	held, _ := p.Acquire(context.Background())

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := p.Acquire(context.Background()); !errors.Is(err, types.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}

	idle := made[0]
	if idle == held {
		idle = made[1]
	}
	if !idle.closed.Load() {
		t.Error("idle session not closed")
	}
	if held.closed.Load() {
		t.Error("checked-out session closed before release")
	}
	p.Release(held)
	if !held.closed.Load() {
		t.Error("checked-out session not closed on release after Close")
	}
	if err := p.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
