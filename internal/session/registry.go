// Package session tracks live client connections in a fixed table of slots.
// A slot index is the session's identity for its whole lifetime; other
// registries refer to sessions by slot and validate liveness on use.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
)

// MaxSessions bounds the connection table.
const MaxSessions = 100

// ErrCapacity is returned by Accept when every slot is taken.
var ErrCapacity = errors.New("session table full")

// State is a session's lifecycle stage. Only Online and InMatch sessions
// carry a username.
type State uint8

const (
	Offline State = iota
	Online
	InMatch
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case Online:
		return "ONLINE"
	case InMatch:
		return "IN_MATCH"
	default:
		return "OFFLINE"
	}
}

type slot struct {
	conn      net.Conn
	username  string
	sessionID string
	state     State
	used      bool

	// sendMu serializes writes to the connection. It is never taken while
	// holding the table lock.
	sendMu sync.Mutex
}

// Snapshot is a copy of a slot's public state.
type Snapshot struct {
	Slot      int
	Username  string
	SessionID string
	State     State
}

// Registry is the session table. The table lock covers slot allocation and
// state fields; each slot's send lock covers only its connection writes.
type Registry struct {
	mu    sync.Mutex
	slots [MaxSessions]slot
	log   *zap.Logger
}

// NewRegistry returns an empty session table.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{log: log}
}

// NewSessionID returns the 15-character lowercase hex token handed to the
// client at login.
func NewSessionID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("session: random source unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf[:])[:15]
}

// Accept claims the first free slot for the connection.
func (r *Registry) Accept(conn net.Conn) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		if !r.slots[i].used {
			s := &r.slots[i]
			s.conn = conn
			s.username = ""
			s.sessionID = ""
			s.state = Offline
			s.used = true
			r.log.Info("session accepted",
				zap.Int("slot", i), zap.String("remote", conn.RemoteAddr().String()))
			return i, nil
		}
	}
	return 0, ErrCapacity
}

// Close releases the slot and closes its connection. It returns the username
// that was bound to the slot, if any, so the caller can log the account out
// and purge matchmaking state.
func (r *Registry) Close(idx int) (username string) {
	r.mu.Lock()
	s := &r.slots[idx]
	if !s.used {
		r.mu.Unlock()
		return ""
	}
	conn := s.conn
	username = s.username
	// A Send blocked in a write on another goroutine may still hold the
	// slot's send mutex, so the fields are cleared one by one and the mutex
	// is left in place.
	s.conn = nil
	s.username = ""
	s.sessionID = ""
	s.state = Offline
	s.used = false
	r.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	r.log.Info("session closed", zap.Int("slot", idx), zap.String("username", username))
	return username
}

// Send encodes the message as one compact JSON line and writes it fully to
// the slot's connection. The table lock is released before the write; only
// the slot's send lock is held while bytes go out.
func (r *Registry) Send(idx int, msg any) error {
	r.mu.Lock()
	s := &r.slots[idx]
	if !s.used || s.conn == nil {
		r.mu.Unlock()
		return errors.New("session: slot not in use")
	}
	conn := s.conn
	r.mu.Unlock()

	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	raw = append(raw, '\n')

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	for len(raw) > 0 {
		n, err := conn.Write(raw)
		if err != nil {
			return err
		}
		raw = raw[n:]
	}
	return nil
}

// BindLogin attaches a username and session id to the slot and marks it
// online.
func (r *Registry) BindLogin(idx int, username, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &r.slots[idx]
	if !s.used {
		return
	}
	s.username = username
	s.sessionID = sessionID
	s.state = Online
}

// SetState updates the slot's lifecycle stage.
func (r *Registry) SetState(idx int, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[idx].used {
		r.slots[idx].state = st
	}
}

// Get returns a snapshot of the slot, with ok=false for free slots.
func (r *Registry) Get(idx int) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= MaxSessions || !r.slots[idx].used {
		return Snapshot{}, false
	}
	return r.snapshotLocked(idx), true
}

// FindByUsername scans for the logged-in session bound to the username.
func (r *Registry) FindByUsername(username string) (int, bool) {
	if username == "" {
		return 0, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		if r.slots[i].used && r.slots[i].username == username {
			return i, true
		}
	}
	return 0, false
}

// All returns snapshots of every occupied slot.
func (r *Registry) All() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Snapshot
	for i := range r.slots {
		if r.slots[i].used {
			out = append(out, r.snapshotLocked(i))
		}
	}
	return out
}

func (r *Registry) snapshotLocked(idx int) Snapshot {
	s := &r.slots[idx]
	return Snapshot{Slot: idx, Username: s.username, SessionID: s.sessionID, State: s.state}
}
