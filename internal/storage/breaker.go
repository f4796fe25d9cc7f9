package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/roamsocial/trustgraph/pkg/types"
)

// BreakerConfig holds the configuration for the store circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip
	// the circuit. Default: 5
	MaxFailures uint32

	// Timeout is the duration the circuit stays open before transitioning
	// to half-open. Default: 15 seconds
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of consecutive successes required
	// in half-open state to close the circuit again. Default: 2
	HalfOpenMaxSuccesses uint32
}

// BreakerStore wraps a RelationshipStore with a circuit breaker so that a
// failing relational store degrades to fast ErrStoreUnavailable responses
// instead of piling up blocked requests.
//
// Domain results (ErrNotFound, ErrInvalidInput) pass through and do not
// count as failures: only infrastructure errors trip the circuit. When the
// circuit is open every call fails immediately with ErrStoreUnavailable.
type BreakerStore struct {
	inner   RelationshipStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps store with a circuit breaker using default settings.
func NewBreakerStore(store RelationshipStore) *BreakerStore {
	return NewBreakerStoreWithConfig(store, BreakerConfig{
		MaxFailures:          5,
		Timeout:              15 * time.Second,
		HalfOpenMaxSuccesses: 2,
	})
}

// NewBreakerStoreWithConfig wraps store with a custom-configured breaker.
func NewBreakerStoreWithConfig(store RelationshipStore, cfg BreakerConfig) *BreakerStore {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.HalfOpenMaxSuccesses == 0 {
		cfg.HalfOpenMaxSuccesses = 2
	}

	settings := gobreaker.Settings{
		Name:        "RelationshipStore",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Interval:    0, // Don't clear counts periodically
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var de *domainError
			return errors.As(err, &de)
		},
	}

	return &BreakerStore{
		inner:   store,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// execute runs fn through the breaker, translating breaker rejections and
// infrastructure failures to ErrStoreUnavailable. Domain sentinels bypass
// the breaker's failure accounting.
func (s *BreakerStore) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		res, innerErr := fn()
		if innerErr != nil && isDomainError(innerErr) {
			// Wrap so the breaker's error return still carries it, but
			// don't let it count as an infrastructure failure.
			return res, &domainError{innerErr}
		}
		return res, innerErr
	})

	if err != nil {
		var de *domainError
		if errors.As(err, &de) {
			return result, de.err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrStoreUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return result, nil
}

// domainError marks store results that are not infrastructure failures.
type domainError struct{ err error }

func (e *domainError) Error() string { return e.err.Error() }
func (e *domainError) Unwrap() error { return e.err }

func isDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput)
}

func (s *BreakerStore) GetMember(ctx context.Context, id int64) (*types.Member, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.inner.GetMember(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*types.Member), nil
}

func (s *BreakerStore) UpsertMember(ctx context.Context, m *types.Member) error {
	_, err := s.execute(ctx, func() (interface{}, error) {
		return nil, s.inner.UpsertMember(ctx, m)
	})
	return err
}

func (s *BreakerStore) CreateEdge(ctx context.Context, a, b int64, status types.EdgeStatus) (*types.RelationshipEdge, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.inner.CreateEdge(ctx, a, b, status)
	})
	if err != nil {
		return nil, err
	}
	return res.(*types.RelationshipEdge), nil
}

func (s *BreakerStore) GetEdge(ctx context.Context, a, b int64) (*types.RelationshipEdge, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.inner.GetEdge(ctx, a, b)
	})
	if err != nil {
		return nil, err
	}
	return res.(*types.RelationshipEdge), nil
}

func (s *BreakerStore) UpdateEdgeStatus(ctx context.Context, a, b int64, status types.EdgeStatus) error {
	_, err := s.execute(ctx, func() (interface{}, error) {
		return nil, s.inner.UpdateEdgeStatus(ctx, a, b, status)
	})
	return err
}

func (s *BreakerStore) AcceptedNeighbors(ctx context.Context, frontier []int64) (map[int64][]int64, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.inner.AcceptedNeighbors(ctx, frontier)
	})
	if err != nil {
		return nil, err
	}
	return res.(map[int64][]int64), nil
}

func (s *BreakerStore) AcceptedFriendIDs(ctx context.Context, memberID int64) ([]int64, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.inner.AcceptedFriendIDs(ctx, memberID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]int64), nil
}

func (s *BreakerStore) AppendInteraction(ctx context.Context, a, b int64, in InteractionAppend) (*types.InteractionEvent, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.inner.AppendInteraction(ctx, a, b, in)
	})
	if err != nil {
		return nil, err
	}
	return res.(*types.InteractionEvent), nil
}

func (s *BreakerStore) ListInteractions(ctx context.Context, edgeID int64) ([]*types.InteractionEvent, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.inner.ListInteractions(ctx, edgeID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*types.InteractionEvent), nil
}

func (s *BreakerStore) UpdateEdgeCache(ctx context.Context, a, b int64, upd EdgeCacheUpdate) error {
	_, err := s.execute(ctx, func() (interface{}, error) {
		return nil, s.inner.UpdateEdgeCache(ctx, a, b, upd)
	})
	return err
}

func (s *BreakerStore) RSVP(ctx context.Context, memberID int64, eventID string, status types.RSVPStatus) error {
	_, err := s.execute(ctx, func() (interface{}, error) {
		return nil, s.inner.RSVP(ctx, memberID, eventID, status)
	})
	return err
}

func (s *BreakerStore) SharedEventCount(ctx context.Context, a, b int64) (int, error) {
	res, err := s.execute(ctx, func() (interface{}, error) {
		return s.inner.SharedEventCount(ctx, a, b)
	})
	if err != nil {
		return 0, err
	}
	return res.(int), nil
}

// Close closes the underlying store directly; shutdown should not be
// subject to breaker state.
func (s *BreakerStore) Close() error {
	return s.inner.Close()
}
