// Package user persists player accounts and applies rating updates. The
// store is a bounded in-memory table mirrored to a single JSON file that is
// rewritten on every mutation.
package user

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// MaxUsers bounds the account table.
const MaxUsers = 1000

// MaxUsernameLen bounds usernames in bytes.
const MaxUsernameLen = 31

var (
	ErrUsernameTaken   = errors.New("username already exists")
	ErrUsernameTooLong = errors.New("username too long")
	ErrNotFound        = errors.New("user not found")
	ErrBadPassword     = errors.New("invalid password")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrCapacity        = errors.New("user table full")
)

// Account is the persisted record. Field names match the on-disk format.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Elo          int    `json:"elo_rating"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Draws        int    `json:"draws"`

	// Online is runtime state only, never written to disk.
	Online bool `json:"-"`
}

// Snapshot is a read-only copy of an account's public fields.
type Snapshot struct {
	Username string
	Elo      int
	Wins     int
	Losses   int
	Draws    int
	Online   bool
}

type storeFile struct {
	Users []Account `json:"users"`
}

// Store holds every account under one lock. All operations take the lock for
// their full duration, including the file rewrite.
type Store struct {
	mu    sync.Mutex
	users []Account
	path  string
	log   *zap.Logger
}

// NewStore loads the account file at path, or starts empty when the file
// does not exist yet.
func NewStore(path string, log *zap.Logger) (*Store, error) {
	s := &Store{path: path, log: log}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("no user file, starting empty", zap.String("path", path))
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user file: %w", err)
	}

	var f storeFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse user file %s: %w", path, err)
	}
	if len(f.Users) > MaxUsers {
		f.Users = f.Users[:MaxUsers]
	}
	s.users = f.Users
	log.Info("loaded users", zap.Int("count", len(s.users)), zap.String("path", path))
	return s, nil
}

// HashPassword returns the lowercase hex SHA-256 digest used on disk.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// flush rewrites the whole file. Caller holds s.mu. The write goes through a
// temp file and rename so a crash never leaves a truncated store.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(storeFile{Users: s.users}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *Store) lookup(username string) *Account {
	for i := range s.users {
		if s.users[i].Username == username {
			return &s.users[i]
		}
	}
	return nil
}

// Register creates a new account with the default rating and flushes.
func (s *Store) Register(username, password string) error {
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup(username) != nil {
		return ErrUsernameTaken
	}
	if len(s.users) >= MaxUsers {
		return ErrCapacity
	}
	s.users = append(s.users, Account{
		Username:     username,
		PasswordHash: HashPassword(password),
		Elo:          InitialElo,
	})
	if err := s.flush(); err != nil {
		s.users = s.users[:len(s.users)-1]
		return err
	}
	s.log.Info("registered user", zap.String("username", username))
	return nil
}

// Login verifies the password and marks the account online. An account can
// be online in at most one session.
func (s *Store) Login(username, password string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.lookup(username)
	if a == nil {
		return Snapshot{}, ErrNotFound
	}
	if a.PasswordHash != HashPassword(password) {
		return Snapshot{}, ErrBadPassword
	}
	if a.Online {
		return Snapshot{}, ErrAlreadyLoggedIn
	}
	a.Online = true
	return snapshotOf(a), nil
}

// Logout clears the online flag. Unknown usernames are ignored.
func (s *Store) Logout(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.lookup(username); a != nil {
		a.Online = false
	}
}

// Find returns a snapshot of the account, or ok=false.
func (s *Store) Find(username string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.lookup(username)
	if a == nil {
		return Snapshot{}, false
	}
	return snapshotOf(a), true
}

// ApplyResult applies the rating update for a finished game. winner is the
// white or black username, "DRAW", or "ABORT" (no-op). It returns the deltas
// applied to white and black.
func (s *Store) ApplyResult(white, black, winner string) (whiteDelta, blackDelta int, err error) {
	if winner == "ABORT" {
		return 0, 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.lookup(white)
	b := s.lookup(black)
	if w == nil || b == nil {
		return 0, 0, ErrNotFound
	}

	if winner == "DRAW" {
		whiteDelta = DrawDelta(w.Elo, b.Elo)
		blackDelta = -whiteDelta
		w.Draws++
		b.Draws++
	} else {
		var winAcc, loseAcc *Account
		if winner == white {
			winAcc, loseAcc = w, b
		} else {
			winAcc, loseAcc = b, w
		}
		delta := WinDelta(winAcc.Elo, loseAcc.Elo)
		winAcc.Wins++
		loseAcc.Losses++
		if winner == white {
			whiteDelta, blackDelta = delta, -delta
		} else {
			whiteDelta, blackDelta = -delta, delta
		}
	}

	w.Elo = clampRating(w.Elo + whiteDelta)
	b.Elo = clampRating(b.Elo + blackDelta)

	if err := s.flush(); err != nil {
		return whiteDelta, blackDelta, err
	}
	s.log.Info("ratings updated",
		zap.String("white", white), zap.Int("whiteDelta", whiteDelta),
		zap.String("black", black), zap.Int("blackDelta", blackDelta),
		zap.String("winner", winner))
	return whiteDelta, blackDelta, nil
}

func snapshotOf(a *Account) Snapshot {
	return Snapshot{
		Username: a.Username,
		Elo:      a.Elo,
		Wins:     a.Wins,
		Losses:   a.Losses,
		Draws:    a.Draws,
		Online:   a.Online,
	}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// DefaultPath places users.json under the data directory.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "users.json")
}
