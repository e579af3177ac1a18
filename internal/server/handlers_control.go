package server

import (
	"encoding/json"

	"github.com/hailam/chesshub/internal/match"
	"github.com/hailam/chesshub/internal/session"
)

type matchIDPayload struct {
	MatchID string `json:"matchId"`
}

// decodeMatchID unpacks the common {matchId} payload.
func (s *Server) decodeMatchID(slot int, raw json.RawMessage) (string, bool) {
	var p matchIDPayload
	if !s.decode(slot, raw, &p) {
		return "", false
	}
	if p.MatchID == "" {
		s.send(slot, errorReply("Missing matchId"))
		return "", false
	}
	return p.MatchID, true
}

// resolveParticipant looks up the active match and confirms the sender
// plays in it, replying with the appropriate error otherwise.
func (s *Server) resolveParticipant(slot int, matchID string) (match.Match, bool) {
	m, ok := s.matches.Find(matchID)
	if !ok {
		s.send(slot, errorReply("Match not found"))
		return match.Match{}, false
	}
	if _, err := m.SideOf(slot); err != nil {
		s.send(slot, errorReply("You are not in this match"))
		return match.Match{}, false
	}
	return m, true
}

// Resignation is immediate: the sender loses on the spot.
func (s *Server) handleOfferAbort(slot int, raw json.RawMessage) {
	matchID, ok := s.decodeMatchID(slot, raw)
	if !ok {
		return
	}
	m, ok := s.resolveParticipant(slot, matchID)
	if !ok {
		return
	}
	winner, _ := m.Opponent(slot)
	s.finishMatch(matchID, winner, "Opponent resigned")
}

func (s *Server) handleOfferDraw(slot int, raw json.RawMessage) {
	matchID, ok := s.decodeMatchID(slot, raw)
	if !ok {
		return
	}
	m, ok := s.resolveParticipant(slot, matchID)
	if !ok {
		return
	}
	snap, _ := s.sessions.Get(slot)
	_, oppSlot := m.Opponent(slot)
	// Offers carry no server-side state; a repeat offer just re-notifies.
	s.send(oppSlot, reply(actDrawOffered, map[string]string{
		"matchId": matchID, "from": snap.Username,
	}))
}

func (s *Server) handleAcceptDraw(slot int, raw json.RawMessage) {
	matchID, ok := s.decodeMatchID(slot, raw)
	if !ok {
		return
	}
	if _, ok := s.resolveParticipant(slot, matchID); !ok {
		return
	}
	s.finishMatch(matchID, "DRAW", "Draw by agreement")
}

func (s *Server) handleDeclineDraw(slot int, raw json.RawMessage) {
	matchID, ok := s.decodeMatchID(slot, raw)
	if !ok {
		return
	}
	m, ok := s.resolveParticipant(slot, matchID)
	if !ok {
		return
	}
	_, oppSlot := m.Opponent(slot)
	s.send(oppSlot, reply(actDrawDeclined, map[string]string{"matchId": matchID}))
}

// recentParticipant confirms the sender played in the recent match.
func recentParticipant(rec match.Recent, slot int) bool {
	return slot == rec.WhiteSlot || slot == rec.BlackSlot
}

// recentOpponentSlot returns the other player's last-known session slot.
func recentOpponentSlot(rec match.Recent, slot int) int {
	if slot == rec.WhiteSlot {
		return rec.BlackSlot
	}
	return rec.WhiteSlot
}

func (s *Server) handleOfferRematch(slot int, raw json.RawMessage) {
	matchID, ok := s.decodeMatchID(slot, raw)
	if !ok {
		return
	}
	rec, ok := s.matches.RecentFind(matchID)
	if !ok {
		s.send(slot, errorReply("Match not found or expired"))
		return
	}
	if !recentParticipant(rec, slot) {
		s.send(slot, errorReply("You were not in this match"))
		return
	}

	s.matches.OfferRematch(matchID, slot)
	snap, _ := s.sessions.Get(slot)
	s.send(recentOpponentSlot(rec, slot), reply(actRematchOffered, map[string]string{
		"matchId": matchID, "from": snap.Username,
	}))
}

func (s *Server) handleAcceptRematch(slot int, raw json.RawMessage) {
	matchID, ok := s.decodeMatchID(slot, raw)
	if !ok {
		return
	}
	rec, ok := s.matches.RecentFind(matchID)
	if !ok {
		s.send(slot, errorReply("Match not found or expired"))
		return
	}
	if !recentParticipant(rec, slot) {
		s.send(slot, errorReply("You were not in this match"))
		return
	}
	if rec.RematchOfferedBy == slot {
		s.send(slot, errorReply("Cannot accept your own rematch offer"))
		return
	}

	// Accepting ends the rematch window for this match whether or not a new
	// game can start.
	s.matches.InvalidateRecent(matchID)

	// Colors swap: the former black takes white. Slot reuse is detected by
	// comparing the bound username with the recorded one.
	white, wok := s.sessions.Get(rec.BlackSlot)
	black, bok := s.sessions.Get(rec.WhiteSlot)
	if !wok || !bok || white.Username != rec.Black || black.Username != rec.White {
		s.send(slot, errorReply("Opponent is no longer online"))
		return
	}
	if white.State != session.Online || black.State != session.Online {
		s.send(slot, errorReply("One or both players are not available"))
		return
	}

	s.startMatch(white.Slot, white.Username, black.Slot, black.Username, match.Fixed, true)
}

func (s *Server) handleDeclineRematch(slot int, raw json.RawMessage) {
	matchID, ok := s.decodeMatchID(slot, raw)
	if !ok {
		return
	}
	rec, ok := s.matches.RecentFind(matchID)
	if !ok {
		s.send(slot, errorReply("Match not found"))
		return
	}
	if !recentParticipant(rec, slot) {
		s.send(slot, errorReply("You were not in this match"))
		return
	}

	s.matches.InvalidateRecent(matchID)
	s.send(recentOpponentSlot(rec, slot), reply(actRematchDeclined, map[string]string{
		"matchId": matchID,
	}))
}
