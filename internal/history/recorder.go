package history

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxRecordings bounds concurrently recorded matches.
	MaxRecordings = 50
	// MaxMoves caps the move log of one match.
	MaxMoves = 500
)

// ErrNoReplay is returned when a match file does not exist.
var ErrNoReplay = errors.New("match history file not found")

type recording struct {
	matchID   string
	moves     []string
	startTime time.Time
	used      bool
}

// Store owns the active recordings and the matches directory. Its lock is
// independent of every registry lock and is never held across file writes.
type Store struct {
	mu   sync.Mutex
	recs [MaxRecordings]recording

	dir   string
	index *Index
	log   *zap.Logger
}

// NewStore returns a recorder writing match files into dir. index may be
// nil; queries then always scan the directory.
func NewStore(dir string, index *Index, log *zap.Logger) *Store {
	return &Store{dir: dir, index: index, log: log}
}

// Dir returns the matches directory.
func (s *Store) Dir() string { return s.dir }

// Start opens a recording for the match. When all recording slots are busy
// the match is simply not recorded; gameplay is unaffected.
func (s *Store) Start(matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recs {
		if !s.recs[i].used {
			s.recs[i] = recording{matchID: matchID, startTime: time.Now(), used: true}
			return true
		}
	}
	s.log.Warn("no free recording slot", zap.String("matchId", matchID))
	return false
}

// RecordMove appends one uppercase token like "E2E4". Moves past the cap
// are dropped.
func (s *Store) RecordMove(matchID, from, to string) {
	token := strings.ToUpper(from + to)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recs {
		if s.recs[i].used && s.recs[i].matchID == matchID {
			if len(s.recs[i].moves) < MaxMoves {
				s.recs[i].moves = append(s.recs[i].moves, token)
			}
			return
		}
	}
}

// Discard drops the recording without writing anything.
func (s *Store) Discard(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recs {
		if s.recs[i].used && s.recs[i].matchID == matchID {
			s.recs[i] = recording{}
			return
		}
	}
}

// Finalize closes the recording and writes the match file. A match that was
// never recorded still gets a file, with an empty move list. The index is
// best-effort: an index failure is logged, not surfaced.
func (s *Store) Finalize(matchID, white, black, winner, reason, finalBoard string) (*MatchFile, error) {
	s.mu.Lock()
	var moves []string
	start := time.Now()
	for i := range s.recs {
		if s.recs[i].used && s.recs[i].matchID == matchID {
			moves = s.recs[i].moves
			start = s.recs[i].startTime
			s.recs[i] = recording{}
			break
		}
	}
	s.mu.Unlock()

	f := &MatchFile{
		MatchID:    matchID,
		White:      white,
		Black:      black,
		Winner:     winner,
		Reason:     reason,
		Timestamp:  start.Unix(),
		EndTime:    time.Now().Unix(),
		MoveCount:  len(moves),
		Moves:      moves,
		FinalBoard: finalBoard,
	}
	if f.Moves == nil {
		f.Moves = []string{}
	}

	if err := writeMatchFile(s.dir, f); err != nil {
		return nil, err
	}
	if s.index != nil {
		if err := s.index.Add(matchID, white, black, f.MoveCount); err != nil {
			s.log.Warn("history index update failed",
				zap.String("matchId", matchID), zap.Error(err))
		}
	}
	s.log.Info("match history saved",
		zap.String("matchId", matchID), zap.Int("moves", f.MoveCount),
		zap.String("winner", winner))
	return f, nil
}

// MatchesFor returns summaries of every completed match the user played in.
// The index answers when it has an entry; otherwise the matches directory
// is scanned.
func (s *Store) MatchesFor(username string) ([]Summary, error) {
	if s.index != nil {
		ids, ok, err := s.index.MatchIDs(username)
		if err != nil {
			s.log.Warn("history index read failed",
				zap.String("username", username), zap.Error(err))
		} else if ok {
			out := make([]Summary, 0, len(ids))
			for _, id := range ids {
				f, err := loadMatchFile(s.dir, id)
				if err != nil {
					continue
				}
				out = append(out, f.summary())
			}
			return out, nil
		}
	}
	return scanDir(s.dir, username)
}

// LoadReplay returns the raw match file content for the id.
func (s *Store) LoadReplay(matchID string) (json.RawMessage, error) {
	raw, err := os.ReadFile(matchPath(s.dir, matchID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoReplay
		}
		return nil, err
	}
	return json.RawMessage(raw), nil
}
