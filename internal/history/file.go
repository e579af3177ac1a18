// Package history records the moves of active matches and persists finished
// games. Each completed match becomes one JSON file under the matches
// directory; a BadgerDB index maps usernames to their match ids so history
// queries avoid a full directory scan.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MatchFile is the on-disk record of one completed game. Timestamps are
// unix seconds.
type MatchFile struct {
	MatchID    string   `json:"matchId"`
	White      string   `json:"white"`
	Black      string   `json:"black"`
	Winner     string   `json:"winner"`
	Reason     string   `json:"reason"`
	Timestamp  int64    `json:"timestamp"`
	EndTime    int64    `json:"endTime"`
	MoveCount  int      `json:"moveCount"`
	Moves      []string `json:"moves"`
	FinalBoard string   `json:"finalBoard"`
}

// Summary is the per-match row returned by history queries.
type Summary struct {
	MatchID   string `json:"matchId"`
	White     string `json:"white"`
	Black     string `json:"black"`
	Winner    string `json:"winner"`
	Timestamp int64  `json:"timestamp"`
	MoveCount int    `json:"moveCount"`
}

func (f *MatchFile) summary() Summary {
	return Summary{
		MatchID:   f.MatchID,
		White:     f.White,
		Black:     f.Black,
		Winner:    f.Winner,
		Timestamp: f.Timestamp,
		MoveCount: f.MoveCount,
	}
}

// matchPath returns matches/<id>.json under the directory.
func matchPath(dir, matchID string) string {
	return filepath.Join(dir, matchID+".json")
}

// writeMatchFile persists the record through a temp file and rename.
func writeMatchFile(dir string, f *MatchFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	path := matchPath(dir, f.MatchID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// loadMatchFile parses one match record.
func loadMatchFile(dir, matchID string) (*MatchFile, error) {
	raw, err := os.ReadFile(matchPath(dir, matchID))
	if err != nil {
		return nil, err
	}
	var f MatchFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse match file %s: %w", matchID, err)
	}
	return &f, nil
}

// scanDir walks the matches directory and returns a summary for every file
// whose white or black matches the username.
func scanDir(dir, username string) ([]Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Summary
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		f, err := loadMatchFile(dir, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		if f.White == username || f.Black == username {
			out = append(out, f.summary())
		}
	}
	return out, nil
}
