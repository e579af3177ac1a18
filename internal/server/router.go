package server

import (
	"encoding/json"

	"go.uber.org/zap"
)

// dispatch parses one wire line and routes it. Every action except
// REGISTER, LOGIN and PING requires a logged-in session.
func (s *Server) dispatch(slot int, line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.send(slot, errorReply("Invalid JSON"))
		return
	}
	if req.Action == "" {
		s.send(slot, errorReply("Missing action field"))
		return
	}
	s.log.Debug("action", zap.Int("slot", slot), zap.String("action", req.Action))

	switch req.Action {
	case actRegister, actLogin, actPing:
	default:
		snap, ok := s.sessions.Get(slot)
		if !ok || snap.Username == "" {
			s.send(slot, errorReply("Not logged in"))
			return
		}
	}

	switch req.Action {
	case actRegister:
		s.handleRegister(slot, req.Data)
	case actLogin:
		s.handleLogin(slot, req.Data)
	case actPlayerList:
		s.handlePlayerList(slot)
	case actGetProfile:
		s.handleGetProfile(slot, req.Data)
	case actChallenge:
		s.handleChallenge(slot, req.Data)
	case actAccept:
		s.handleAccept(slot, req.Data)
	case actDecline:
		s.handleDecline(slot, req.Data)
	case actMove:
		s.handleMove(slot, req.Data)
	case actGetValidMoves:
		s.handleGetValidMoves(slot, req.Data)
	case actFindMatch:
		s.handleFindMatch(slot)
	case actCancelFindMatch:
		s.handleCancelFindMatch(slot)
	case actOfferAbort:
		s.handleOfferAbort(slot, req.Data)
	case actAcceptAbort:
		s.send(slot, errorReply("Abort/Resign is immediate, no accept needed"))
	case actDeclineAbort:
		s.send(slot, errorReply("Abort/Resign is immediate, cannot decline"))
	case actOfferDraw:
		s.handleOfferDraw(slot, req.Data)
	case actAcceptDraw:
		s.handleAcceptDraw(slot, req.Data)
	case actDeclineDraw:
		s.handleDeclineDraw(slot, req.Data)
	case actOfferRematch:
		s.handleOfferRematch(slot, req.Data)
	case actAcceptRematch:
		s.handleAcceptRematch(slot, req.Data)
	case actDeclineRematch:
		s.handleDeclineRematch(slot, req.Data)
	case actGetHistory:
		s.handleGetHistory(slot, req.Data)
	case actGetReplay:
		s.handleGetReplay(slot, req.Data)
	case actPing:
		s.send(slot, reply(actPong, nil))
	default:
		s.send(slot, errorReply("Unknown action"))
	}
}

// decode unpacks the data object of a request. A missing data object is
// reported as "Missing data"; malformed contents as "Invalid JSON".
func (s *Server) decode(slot int, raw json.RawMessage, v any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		s.send(slot, errorReply("Missing data"))
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.send(slot, errorReply("Invalid JSON"))
		return false
	}
	return true
}
