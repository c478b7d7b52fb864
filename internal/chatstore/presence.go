package chatstore

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Feed is anything that produces the current set of online member ids.
// The simulated feed below stands in for a real presence protocol; any
// implementation that calls SetOnlineUsers periodically can substitute.
type Feed interface {
	Start(ctx context.Context)
	Close()
}

// SimulatedFeed periodically installs a randomized subset of the roster
// as the online set.
type SimulatedFeed struct {
	store    *Store
	roster   []string
	interval time.Duration
	rand     *rand.Rand

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSimulatedFeed creates a feed over the given roster ids. A zero
// interval defaults to 30 seconds.
func NewSimulatedFeed(store *Store, roster []string, interval time.Duration) *SimulatedFeed {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SimulatedFeed{
		store:    store,
		roster:   append([]string(nil), roster...),
		interval: interval,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins the refresh loop. Runs until the context is canceled or
// Close is called.
func (f *SimulatedFeed) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.store.SetOnlineUsers(f.sample())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close stops the refresh loop.
func (f *SimulatedFeed) Close() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
}

// sample keeps each roster member with probability 0.7, mirroring the
// reference simulation.
func (f *SimulatedFeed) sample() []string {
	var online []string
	for _, id := range f.roster {
		if f.rand.Float64() > 0.3 {
			online = append(online, id)
		}
	}
	return online
}
