package server

import (
	"encoding/json"
	"errors"

	"github.com/hailam/chesshub/internal/match"
	"github.com/hailam/chesshub/internal/matchmaking"
	"github.com/hailam/chesshub/internal/session"
	"github.com/hailam/chesshub/internal/user"
)

type challengePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleChallenge(slot int, raw json.RawMessage) {
	var p challengePayload
	if !s.decode(slot, raw, &p) {
		return
	}
	if p.From == "" || p.To == "" {
		s.send(slot, errorReply("Missing from or to field"))
		return
	}

	snap, _ := s.sessions.Get(slot)
	if snap.Username != p.From {
		s.send(slot, errorReply("Username mismatch"))
		return
	}

	oppSlot, ok := s.sessions.FindByUsername(p.To)
	if !ok {
		s.send(slot, errorReply("Opponent not found or offline"))
		return
	}
	opp, _ := s.sessions.Get(oppSlot)
	if opp.State != session.Online {
		s.send(slot, errorReply("Opponent is not available"))
		return
	}

	s.send(oppSlot, reply(actIncomingChall, map[string]string{"from": p.From}))
}

func (s *Server) handleAccept(slot int, raw json.RawMessage) {
	var p challengePayload
	if !s.decode(slot, raw, &p) {
		return
	}
	if p.From == "" || p.To == "" {
		s.send(slot, errorReply("Missing from or to field"))
		return
	}

	// p.To names the original challenger.
	challengerSlot, ok := s.sessions.FindByUsername(p.To)
	if !ok {
		s.send(slot, errorReply("Challenger not found"))
		return
	}
	challenger, _ := s.sessions.Get(challengerSlot)
	accepter, _ := s.sessions.Get(slot)

	s.startMatch(challengerSlot, challenger.Username, slot, accepter.Username, match.Coin, false)
}

func (s *Server) handleDecline(slot int, raw json.RawMessage) {
	var p challengePayload
	if !s.decode(slot, raw, &p) {
		return
	}
	if p.From == "" || p.To == "" {
		s.send(slot, errorReply("Missing from or to field"))
		return
	}

	if challengerSlot, ok := s.sessions.FindByUsername(p.To); ok {
		s.send(challengerSlot, reply(actChallDeclined, map[string]string{"from": p.From}))
	}
}

func (s *Server) handleFindMatch(slot int) {
	snap, _ := s.sessions.Get(slot)
	if snap.State == session.InMatch {
		s.send(slot, errorReply("Already in a match"))
		return
	}

	elo := user.InitialElo
	if u, ok := s.users.Find(snap.Username); ok {
		elo = u.Elo
	}
	switch err := s.queue.Enqueue(slot, elo); {
	case err == nil:
		s.send(slot, reply(actMatchmakingState, map[string]string{"status": "SEARCHING"}))
	case errors.Is(err, matchmaking.ErrAlreadyQueued):
		s.send(slot, errorReply("Already in matchmaking queue"))
	case errors.Is(err, matchmaking.ErrFull):
		s.send(slot, errorReply("Matchmaking queue full"))
	}
}

func (s *Server) handleCancelFindMatch(slot int) {
	if !s.queue.Dequeue(slot) {
		s.send(slot, errorReply("Not in matchmaking queue"))
		return
	}
	s.send(slot, reply(actMatchmakingState, map[string]string{"status": "CANCELLED"}))
}
