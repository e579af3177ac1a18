package server

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/hailam/chesshub/internal/history"
)

func (s *Server) handleGetHistory(slot int, raw json.RawMessage) {
	var p struct {
		Username string `json:"username"`
	}
	if !s.decode(slot, raw, &p) {
		return
	}
	// Without an explicit target the sender asks for their own history.
	target := p.Username
	if target == "" {
		snap, _ := s.sessions.Get(slot)
		target = snap.Username
	}

	matches, err := s.history.MatchesFor(target)
	if err != nil {
		s.log.Error("history query failed", zap.String("username", target), zap.Error(err))
		s.send(slot, errorReply("Internal error"))
		return
	}
	if matches == nil {
		matches = []history.Summary{}
	}
	s.send(slot, reply(actMatchHistory, map[string]any{
		"username": target,
		"matches":  matches,
	}))
}

func (s *Server) handleGetReplay(slot int, raw json.RawMessage) {
	matchID, ok := s.decodeMatchID(slot, raw)
	if !ok {
		return
	}

	content, err := s.history.LoadReplay(matchID)
	if err != nil {
		if errors.Is(err, history.ErrNoReplay) {
			s.send(slot, errorReply("Match not found"))
			return
		}
		s.log.Error("replay load failed", zap.String("matchId", matchID), zap.Error(err))
		s.send(slot, errorReply("Internal error"))
		return
	}
	// The reply carries the stored file verbatim.
	s.send(slot, Response{Action: actMatchReplay, Data: content})
}
