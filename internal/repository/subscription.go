package repository

import (
	"context"
	"errors"
	"fmt"

	"cineverse/internal/metrics"
	"cineverse/internal/models"
)

var ErrFeedClosed = errors.New("change feed closed")

// Snapshot is one delivery of a live list. Items always holds the last
// successful load. Err reports a failed load (the subscription stays open
// and the next change loads again) or, on the final snapshot, why the
// feed ended.
type Snapshot struct {
	Items []models.ContentItem
	Err   error
}

// Feed is a live list consumers read snapshots from.
type Feed interface {
	Updates() <-chan Snapshot
	Unsubscribe()
}

// changeFeed is the part of *mongo.ChangeStream the subscription needs.
type changeFeed interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

type loadFunc func(ctx context.Context) ([]models.ContentItem, error)
type watchFunc func(ctx context.Context) (changeFeed, error)

// Subscription delivers the latest snapshot only: a consumer that falls
// behind skips intermediate snapshots, never the newest one.
type Subscription struct {
	updates chan Snapshot
	cancel  context.CancelFunc
	done    chan struct{}
}

func newSubscription(parent context.Context, load loadFunc, watch watchFunc) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	s := &Subscription{
		updates: make(chan Snapshot, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run(ctx, load, watch)
	return s
}

// Updates is closed once the subscription ends.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.updates
}

// Unsubscribe stops delivery and waits for the feed to be released.
// Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}

func (s *Subscription) run(ctx context.Context, load loadFunc, watch watchFunc) {
	metrics.LiveSubscriptions.Inc()
	defer func() {
		metrics.LiveSubscriptions.Dec()
		close(s.updates)
		close(s.done)
	}()

	// Open the feed before the first load so no change slips in between.
	feed, watchErr := watch(ctx)
	if watchErr == nil {
		defer feed.Close(context.Background())
	}

	var last []models.ContentItem
	reload := func() bool {
		items, err := load(ctx)
		if ctx.Err() != nil {
			return false
		}
		if err == nil {
			last = items
		}
		return s.deliver(ctx, Snapshot{Items: last, Err: err})
	}

	if watchErr != nil {
		items, err := load(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = fmt.Errorf("open change feed: %w", watchErr)
		}
		s.deliver(ctx, Snapshot{Items: items, Err: err})
		return
	}

	if !reload() {
		return
	}
	for feed.Next(ctx) {
		if !reload() {
			return
		}
	}
	if ctx.Err() != nil {
		return
	}
	err := feed.Err()
	if err == nil {
		err = ErrFeedClosed
	}
	s.deliver(ctx, Snapshot{Items: last, Err: err})
}

func (s *Subscription) deliver(ctx context.Context, snap Snapshot) bool {
	select {
	case s.updates <- snap:
		return true
	case <-ctx.Done():
		return false
	default:
	}

	// replace the unread snapshot with the newer one
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}
