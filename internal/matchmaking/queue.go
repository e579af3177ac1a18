// Package matchmaking holds the waiting pool and the periodic pairing loop.
// Entries keep the Elo snapshotted at join time; the queue itself knows
// nothing about sessions beyond their slot index.
package matchmaking

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxQueued bounds the waiting pool.
	MaxQueued = 100
	// EloThreshold is the strict pairing window.
	EloThreshold = 100
	// DefaultInterval is the wall-clock pairing cadence.
	DefaultInterval = 2 * time.Second
)

var (
	ErrAlreadyQueued = errors.New("already in matchmaking queue")
	ErrFull          = errors.New("matchmaking queue full")
)

// Entry is one waiting player.
type Entry struct {
	SessionSlot int
	Elo         int
	JoinTime    time.Time
}

// Pair is a successful pairing of two entries.
type Pair struct {
	A, B Entry
}

// Queue is the waiting pool. Slice order is join order, which makes the
// earliest-join tiebreak a plain first-match scan.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	log     *zap.Logger
}

// NewQueue returns an empty pool.
func NewQueue(log *zap.Logger) *Queue {
	return &Queue{log: log}
}

// Enqueue adds the session with its current rating snapshot.
func (q *Queue) Enqueue(sessionSlot, elo int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.SessionSlot == sessionSlot {
			return ErrAlreadyQueued
		}
	}
	if len(q.entries) >= MaxQueued {
		return ErrFull
	}
	q.entries = append(q.entries, Entry{SessionSlot: sessionSlot, Elo: elo, JoinTime: time.Now()})
	q.log.Info("queued for matchmaking", zap.Int("slot", sessionSlot), zap.Int("elo", elo))
	return nil
}

// Dequeue removes the session if present.
func (q *Queue) Dequeue(sessionSlot int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.SessionSlot == sessionSlot {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the session is waiting.
func (q *Queue) Contains(sessionSlot int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.SessionSlot == sessionSlot {
			return true
		}
	}
	return false
}

// Len returns the number of waiting entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Tick removes every pairable couple from the pool and returns them. Each
// pass pairs the earliest waiting entry with its closest-rated partner
// inside the strict threshold, then re-scans until no pair remains.
func (q *Queue) Tick() []Pair {
	q.mu.Lock()
	defer q.mu.Unlock()

	var pairs []Pair
	for {
		ai, bi := q.findPairLocked()
		if ai < 0 {
			break
		}
		p := Pair{A: q.entries[ai], B: q.entries[bi]}
		// Remove the later index first so the earlier one stays valid.
		q.entries = append(q.entries[:bi], q.entries[bi+1:]...)
		q.entries = append(q.entries[:ai], q.entries[ai+1:]...)
		pairs = append(pairs, p)
		q.log.Info("matchmaking pair",
			zap.Int("slotA", p.A.SessionSlot), zap.Int("eloA", p.A.Elo),
			zap.Int("slotB", p.B.SessionSlot), zap.Int("eloB", p.B.Elo))
	}
	return pairs
}

// findPairLocked returns the indices of the first pairable entry and its
// best partner, or (-1,-1). Ties in rating distance go to the earlier join.
func (q *Queue) findPairLocked() (int, int) {
	for i := 0; i < len(q.entries); i++ {
		best := -1
		bestDiff := EloThreshold
		for j := i + 1; j < len(q.entries); j++ {
			diff := q.entries[i].Elo - q.entries[j].Elo
			if diff < 0 {
				diff = -diff
			}
			if diff < bestDiff {
				best = j
				bestDiff = diff
			}
		}
		if best >= 0 {
			return i, best
		}
	}
	return -1, -1
}

// Run wakes every interval and reports pairs to onPair until the context is
// cancelled. onPair runs outside the queue lock and may send on the network.
func (q *Queue) Run(ctx context.Context, interval time.Duration, onPair func(Pair)) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range q.Tick() {
				onPair(p)
			}
		}
	}
}
