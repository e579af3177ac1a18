package server

import (
	"encoding/json"
	"errors"

	"github.com/hailam/chesshub/internal/board"
	"github.com/hailam/chesshub/internal/match"
)

// Pipeline errors mapped to MOVE_INVALID replies.
var (
	errNotYourTurn = errors.New("not your turn")
	errBadNotation = errors.New("invalid notation")
	errIllegalMove = errors.New("illegal move")
)

type movePayload struct {
	MatchID   string `json:"matchId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
}

func (s *Server) handleMove(slot int, raw json.RawMessage) {
	var p movePayload
	if !s.decode(slot, raw, &p) {
		return
	}
	if p.MatchID == "" || p.From == "" || p.To == "" {
		s.send(slot, errorReply("Missing matchId, from, or to field"))
		return
	}

	var promo byte
	if p.Promotion != "" {
		promo = p.Promotion[0]
	}

	var oppSlot int
	err := s.matches.Update(p.MatchID, func(m *match.Match) error {
		side, err := m.SideOf(slot)
		if err != nil {
			return err
		}
		if m.Pos.SideToMove != side {
			return errNotYourTurn
		}
		fromR, fromC, err := board.NotationToCoords(p.From)
		if err != nil {
			return errBadNotation
		}
		toR, toC, err := board.NotationToCoords(p.To)
		if err != nil {
			return errBadNotation
		}
		if !m.Pos.IsLegalMove(fromR, fromC, toR, toC, side) {
			return errIllegalMove
		}

		m.Pos.ApplyMove(fromR, fromC, toR, toC, promo)
		m.Pos.SideToMove = side.Other()
		if m.Pos.SideToMove == board.White {
			m.Pos.FullMoveNumber++
		}
		_, oppSlot = m.Opponent(slot)
		return nil
	})

	switch {
	case errors.Is(err, match.ErrNotFound):
		s.send(slot, errorReply("Match not found"))
		return
	case errors.Is(err, match.ErrNotInMatch):
		s.send(slot, errorReply("You are not in this match"))
		return
	case errors.Is(err, errNotYourTurn):
		s.send(slot, reasonReply(actMoveInvalid, "Not your turn"))
		return
	case errors.Is(err, errBadNotation):
		s.send(slot, reasonReply(actMoveInvalid, "Invalid notation"))
		return
	case errors.Is(err, errIllegalMove):
		s.send(slot, reasonReply(actMoveInvalid, "Illegal move"))
		return
	}

	s.history.RecordMove(p.MatchID, p.From, p.To)

	moveData := map[string]string{"from": p.From, "to": p.To}
	s.send(slot, reply(actMoveOK, moveData))
	s.send(oppSlot, reply(actOpponentMove, moveData))

	// The board may have changed again by the time we look; re-acquire and
	// judge whatever state the match is in now.
	var verdict board.Verdict
	var winner string
	err = s.matches.Update(p.MatchID, func(m *match.Match) error {
		verdict = m.Pos.Outcome()
		if verdict == board.Checkmate {
			if m.Pos.SideToMove == board.White {
				winner = m.Black
			} else {
				winner = m.White
			}
		}
		return nil
	})
	if err != nil {
		return
	}

	switch verdict {
	case board.Checkmate:
		s.finishMatch(p.MatchID, winner, "Checkmate")
	case board.Stalemate:
		s.finishMatch(p.MatchID, "DRAW", "Stalemate")
	case board.InsufficientMaterial:
		s.finishMatch(p.MatchID, "DRAW", "Insufficient material")
	}
}

func (s *Server) handleGetValidMoves(slot int, raw json.RawMessage) {
	var p struct {
		MatchID  string `json:"matchId"`
		Position string `json:"position"`
	}
	if !s.decode(slot, raw, &p) {
		return
	}
	if p.MatchID == "" || p.Position == "" {
		s.send(slot, errorReply("Missing matchId or position"))
		return
	}

	m, ok := s.matches.Find(p.MatchID)
	if !ok {
		s.send(slot, errorReply("Match not found"))
		return
	}
	side, err := m.SideOf(slot)
	if err != nil {
		s.send(slot, errorReply("You are not in this match"))
		return
	}

	fromR, fromC, err := board.NotationToCoords(p.Position)
	if err != nil {
		s.send(slot, errorReply("Invalid position notation"))
		return
	}

	piece := m.Pos.Squares[fromR][fromC]
	if piece == board.Empty {
		// An empty square has no moves; that is an answer, not an error.
		s.send(slot, reply(actValidMoves, map[string]any{
			"position": p.Position, "moves": []string{},
		}))
		return
	}
	if board.PieceColor(piece) != side {
		s.send(slot, errorReply("Not your piece"))
		return
	}

	// Computed regardless of whose turn it is, so the client can preview.
	moves := make([]string, 0)
	for _, mv := range m.Pos.ValidMovesFrom(fromR, fromC, side) {
		moves = append(moves, board.CoordsToNotation(mv[0], mv[1]))
	}
	s.send(slot, reply(actValidMoves, map[string]any{
		"position": p.Position, "moves": moves,
	}))
}
