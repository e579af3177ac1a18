// Package match owns the active-match table and the recent-match ring used
// for rematch offers. Matches refer to sessions by slot index; the registry
// never touches the network.
package match

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/chesshub/internal/board"
)

const (
	// MaxMatches bounds concurrently active games.
	MaxMatches = 50
	// MaxRecent bounds the rematch window.
	MaxRecent = 50
)

var (
	ErrNoSlot     = errors.New("match table full")
	ErrNotFound   = errors.New("match not found")
	ErrNotInMatch = errors.New("not a participant")
)

// ColorAssignment selects how Create distributes colors.
type ColorAssignment uint8

const (
	// Coin flips 50/50 which player gets white.
	Coin ColorAssignment = iota
	// Fixed keeps the caller's order: first player is white.
	Fixed
)

// Match is one active game. Position carries the full chess state.
type Match struct {
	Slot      int
	ID        string
	White     string
	Black     string
	WhiteSlot int
	BlackSlot int
	Pos       board.Position
	Active    bool
	StartTime time.Time
}

// SideOf returns the color the session slot plays, or an error when the
// slot is not a participant.
func (m *Match) SideOf(sessionSlot int) (board.Color, error) {
	switch sessionSlot {
	case m.WhiteSlot:
		return board.White, nil
	case m.BlackSlot:
		return board.Black, nil
	default:
		return 0, ErrNotInMatch
	}
}

// Opponent returns the other participant's username and session slot.
func (m *Match) Opponent(sessionSlot int) (string, int) {
	if sessionSlot == m.WhiteSlot {
		return m.Black, m.BlackSlot
	}
	return m.White, m.WhiteSlot
}

// Recent is a finished match still inside the rematch window.
type Recent struct {
	ID               string
	White            string
	Black            string
	WhiteSlot        int
	BlackSlot        int
	RematchOfferedBy int
	Valid            bool
	EndTime          time.Time
}

// Registry holds active matches under one lock and recent matches under a
// second, independent lock. Neither lock is ever held across a network send.
type Registry struct {
	mu      sync.Mutex
	matches [MaxMatches]Match

	recentMu   sync.Mutex
	recent     [MaxRecent]Recent
	recentNext int

	log *zap.Logger
}

// NewRegistry returns an empty match registry.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{log: log}
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewMatchID returns a token like "M7QK2ZP9A".
func NewMatchID() string {
	buf := make([]byte, 9)
	buf[0] = 'M'
	for i := 1; i < len(buf); i++ {
		buf[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return string(buf)
}

// Create allocates a match between the two sessions from the standard
// starting position. Under Coin assignment either player may end up white;
// under Fixed the first pair is white. It returns a snapshot of the new
// match.
func (r *Registry) Create(aSlot int, aName string, bSlot int, bName string, assign ColorAssignment) (Match, error) {
	if assign == Coin && rand.IntN(2) == 1 {
		aSlot, bSlot = bSlot, aSlot
		aName, bName = bName, aName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.matches {
		if r.matches[i].Active {
			continue
		}
		r.matches[i] = Match{
			Slot:      i,
			ID:        NewMatchID(),
			White:     aName,
			Black:     bName,
			WhiteSlot: aSlot,
			BlackSlot: bSlot,
			Pos:       *board.NewPosition(),
			Active:    true,
			StartTime: time.Now(),
		}
		m := r.matches[i]
		r.log.Info("match created",
			zap.String("matchId", m.ID),
			zap.String("white", m.White), zap.String("black", m.Black))
		return m, nil
	}
	return Match{}, ErrNoSlot
}

// Find returns a snapshot of the active match with the given id.
func (r *Registry) Find(id string) (Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.matches {
		if r.matches[i].Active && r.matches[i].ID == id {
			return r.matches[i], true
		}
	}
	return Match{}, false
}

// Update runs fn on the active match with the given id while the registry
// lock is held. fn must not block or send on the network. A missing match
// yields ErrNotFound; fn's error is passed through.
func (r *Registry) Update(id string, fn func(m *Match) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.matches {
		if r.matches[i].Active && r.matches[i].ID == id {
			return fn(&r.matches[i])
		}
	}
	return ErrNotFound
}

// Deactivate marks the match inactive, freeing its slot, and records it in
// the recent-match ring. It returns the final snapshot.
func (r *Registry) Deactivate(id string) (Match, bool) {
	r.mu.Lock()
	var snap Match
	found := false
	for i := range r.matches {
		if r.matches[i].Active && r.matches[i].ID == id {
			r.matches[i].Active = false
			snap = r.matches[i]
			found = true
			break
		}
	}
	r.mu.Unlock()

	if !found {
		return Match{}, false
	}
	r.saveRecent(snap)
	return snap, true
}

// saveRecent pushes a finished match into the ring, evicting the oldest
// entry on overflow.
func (r *Registry) saveRecent(m Match) {
	r.recentMu.Lock()
	defer r.recentMu.Unlock()
	r.recent[r.recentNext] = Recent{
		ID:               m.ID,
		White:            m.White,
		Black:            m.Black,
		WhiteSlot:        m.WhiteSlot,
		BlackSlot:        m.BlackSlot,
		RematchOfferedBy: -1,
		Valid:            true,
		EndTime:          time.Now(),
	}
	r.recentNext = (r.recentNext + 1) % MaxRecent
}

// RecentFind returns the valid recent-match entry with the given id.
func (r *Registry) RecentFind(id string) (Recent, bool) {
	r.recentMu.Lock()
	defer r.recentMu.Unlock()
	for i := range r.recent {
		if r.recent[i].Valid && r.recent[i].ID == id {
			return r.recent[i], true
		}
	}
	return Recent{}, false
}

// OfferRematch records which session offered a rematch on the entry.
func (r *Registry) OfferRematch(id string, bySlot int) bool {
	r.recentMu.Lock()
	defer r.recentMu.Unlock()
	for i := range r.recent {
		if r.recent[i].Valid && r.recent[i].ID == id {
			r.recent[i].RematchOfferedBy = bySlot
			return true
		}
	}
	return false
}

// InvalidateRecent removes the entry from the rematch window. Accepting or
// declining a rematch both end the window for that match.
func (r *Registry) InvalidateRecent(id string) (Recent, bool) {
	r.recentMu.Lock()
	defer r.recentMu.Unlock()
	for i := range r.recent {
		if r.recent[i].Valid && r.recent[i].ID == id {
			r.recent[i].Valid = false
			return r.recent[i], true
		}
	}
	return Recent{}, false
}
