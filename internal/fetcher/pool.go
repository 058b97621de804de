package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// Pool is a fixed set of pre-allocated resources that tasks check out
// exclusively. Every Acquire must be paired with exactly one Release.
type Pool[T any] struct {
	items     chan T
	all       []T
	closeItem func(T) error
	logger    *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool creates up to size resources with create. Failed creations are
// logged and skipped; if none succeed the pool is not built and the error
// wraps types.ErrNoSessions.
func NewPool[T any](size int, create func(i int) (T, error), closeItem func(T) error, logger *slog.Logger) (*Pool[T], error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be >= 1, got %d", size)
	}
	p := &Pool[T]{
		closeItem: closeItem,
		logger:    logger.With("component", "session_pool"),
	}

	var errs []error
	for i := 0; i < size; i++ {
		item, err := create(i)
		if err != nil {
			p.logger.Warn("session setup failed", "slot", i, "error", err)
			errs = append(errs, err)
			continue
		}
		p.all = append(p.all, item)
	}
	if len(p.all) == 0 {
		return nil, fmt.Errorf("%w: %w", types.ErrNoSessions, errors.Join(errs...))
	}

	p.items = make(chan T, len(p.all))
	for _, item := range p.all {
		p.items <- item
	}

	p.logger.Info("session pool ready", "requested", size, "available", len(p.all))
	return p, nil
}

// Acquire checks out a resource, blocking until one is free or ctx ends.
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T
	select {
	case item, ok := <-p.items:
		if !ok {
			return zero, types.ErrPoolClosed
		}
		return item, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Release returns a resource to the pool. After Close the resource is
// closed instead.
func (p *Pool[T]) Release(item T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.closeOne(item)
		return
	}
	p.items <- item
}

// Do runs fn with a checked-out resource and releases it on every exit
// path, including a panic in fn.
func (p *Pool[T]) Do(ctx context.Context, fn func(T) error) error {
	item, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(item)
	return fn(item)
}

// Size is the number of resources the pool was built with.
func (p *Pool[T]) Size() int { return len(p.all) }

// Available is the number of resources not checked out.
func (p *Pool[T]) Available() int { return len(p.items) }

// Close closes idle resources now and checked-out ones on Release.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.items)
	for item := range p.items {
		p.closeOne(item)
	}
	return nil
}

func (p *Pool[T]) closeOne(item T) {
	if p.closeItem == nil {
		return
	}
	if err := p.closeItem(item); err != nil {
		p.logger.Debug("close session", "error", err)
	}
}
