// Package clock is the wall clock of the ticker, with a fixed timezone offset and a sync state.
package clock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrNotSet is returned when the host clock has obviously never been set.
var ErrNotSet = errors.New("clock: host clock is not set")

// Syncer updates the host clock.
type Syncer interface {
	Sync(context.Context) error
}

// SystemSyncer trusts the host clock, which is kept by the operating system.
type SystemSyncer struct {
	// Epoch is the earliest plausible time.
	Epoch time.Time

	now func() time.Time
}

// DefaultEpoch is the default plausibility bound of [SystemSyncer].
var DefaultEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func (s SystemSyncer) Sync(_ context.Context) error {
	epoch, now := s.Epoch, s.now
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}
	if now == nil {
		now = time.Now
	}
	if t := now(); t.Before(epoch) {
		return fmt.Errorf("%w: %s", ErrNotSet, t.Format(time.RFC3339))
	}
	return nil
}

// Source is the wall clock.
type Source struct {
	mu      sync.Mutex
	zone    *time.Location
	synced  bool
	syncing bool
	now     func() time.Time
}

// New returns a clock offset from UTC by offset.
func New(offset time.Duration) *Source {
	return &Source{
		zone: time.FixedZone(fmt.Sprintf("UTC%+d", int(offset.Hours())), int(offset.Seconds())),
		now:  time.Now,
	}
}

// Now is the local time.
func (s *Source) Now() time.Time {
	return s.now().In(s.zone)
}

// Synced reports if the clock was synced at least once.
func (s *Source) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Syncing reports if a sync is in progress.
func (s *Source) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// Sync runs one sync.
func (s *Source) Sync(ctx context.Context, syncer Syncer) error {
	s.mu.Lock()
	s.syncing = true
	s.mu.Unlock()

	err := syncer.Sync(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
	if err == nil {
		s.synced = true
	}
	return err
}

// Network reports the connection state.
type Network interface {
	IsConnected() bool
}

// Indicator shows a busy indicator while fn runs, see vfd.StatusOverlay.Scoped.
type Indicator func(fn func() error) error

// Config for [Source.Run].
type Config struct {
	Interval  time.Duration
	Reconnect time.Duration
}

// DefaultConfig syncs every 8 hours, and checks the connection every 2 seconds while offline.
var DefaultConfig = Config{
	Interval:  8 * time.Hour,
	Reconnect: 2 * time.Second,
}

// Run syncs periodically while the network is connected, until ctx is done.
func (s *Source) Run(ctx context.Context, syncer Syncer, network Network, busy Indicator, config Config) error {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig.Interval
	}
	if config.Reconnect <= 0 {
		config.Reconnect = DefaultConfig.Reconnect
	}
	if busy == nil {
		busy = func(fn func() error) error { return fn() }
	}

	for {
		wait := config.Reconnect
		if network.IsConnected() {
			if err := busy(func() error { return s.Sync(ctx, syncer) }); err != nil {
				log.Printf("clock: sync failed: %v", err)
			} else {
				log.Printf("clock: synced time %s", s.Now().Format(time.DateTime))
			}
			wait = config.Interval
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
