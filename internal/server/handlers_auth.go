package server

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/hailam/chesshub/internal/session"
	"github.com/hailam/chesshub/internal/user"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(slot int, raw json.RawMessage) {
	var c credentials
	if !s.decode(slot, raw, &c) {
		return
	}
	if c.Username == "" || c.Password == "" {
		s.send(slot, errorReply("Missing username or password"))
		return
	}

	switch err := s.users.Register(c.Username, c.Password); {
	case err == nil:
		s.send(slot, reply(actRegisterSuccess, map[string]string{"message": "Account created"}))
	case errors.Is(err, user.ErrUsernameTaken):
		s.send(slot, reasonReply(actRegisterFail, "Username already exists"))
	case errors.Is(err, user.ErrUsernameTooLong):
		s.send(slot, reasonReply(actRegisterFail, "Username too long"))
	case errors.Is(err, user.ErrCapacity):
		s.send(slot, errorReply("Server full"))
	default:
		s.log.Error("register failed", zap.String("username", c.Username), zap.Error(err))
		s.send(slot, errorReply("Internal error"))
	}
}

func (s *Server) handleLogin(slot int, raw json.RawMessage) {
	var c credentials
	if !s.decode(slot, raw, &c) {
		return
	}
	if c.Username == "" || c.Password == "" {
		s.send(slot, errorReply("Missing username or password"))
		return
	}

	snap, err := s.users.Login(c.Username, c.Password)
	switch {
	case errors.Is(err, user.ErrNotFound):
		s.send(slot, reasonReply(actLoginFail, "User not found"))
		return
	case errors.Is(err, user.ErrBadPassword):
		s.send(slot, reasonReply(actLoginFail, "Invalid password"))
		return
	case errors.Is(err, user.ErrAlreadyLoggedIn):
		s.send(slot, reasonReply(actLoginFail, "Already logged in"))
		return
	case err != nil:
		s.log.Error("login failed", zap.String("username", c.Username), zap.Error(err))
		s.send(slot, errorReply("Internal error"))
		return
	}

	// Switching accounts on a live connection releases the old login.
	if prev, ok := s.sessions.Get(slot); ok && prev.Username != "" && prev.Username != c.Username {
		s.users.Logout(prev.Username)
	}

	id := session.NewSessionID()
	s.sessions.BindLogin(slot, c.Username, id)
	s.log.Info("login", zap.Int("slot", slot), zap.String("username", c.Username))

	s.send(slot, reply(actLoginSuccess, map[string]any{
		"sessionId": id,
		"username":  snap.Username,
		"elo":       snap.Elo,
		"wins":      snap.Wins,
		"losses":    snap.Losses,
		"draws":     snap.Draws,
	}))
}

func (s *Server) handlePlayerList(slot int) {
	players := make([]map[string]any, 0)
	for _, snap := range s.sessions.All() {
		if snap.Slot == slot || snap.Username == "" {
			continue
		}
		wins, losses := 0, 0
		if u, ok := s.users.Find(snap.Username); ok {
			wins, losses = u.Wins, u.Losses
		}
		players = append(players, map[string]any{
			"username": snap.Username,
			"status":   snap.State.String(),
			"wins":     wins,
			"losses":   losses,
		})
	}
	s.send(slot, reply(actPlayerListReply, map[string]any{"players": players}))
}

func (s *Server) handleGetProfile(slot int, raw json.RawMessage) {
	var p struct {
		Username string `json:"username"`
	}
	if !s.decode(slot, raw, &p) {
		return
	}
	if p.Username == "" {
		s.send(slot, errorReply("Missing username field"))
		return
	}

	u, ok := s.users.Find(p.Username)
	if !ok {
		s.send(slot, reasonReply(actProfileError, "User not found"))
		return
	}
	s.send(slot, reply(actProfileInfo, map[string]any{
		"username": u.Username,
		"elo":      u.Elo,
		"wins":     u.Wins,
		"losses":   u.Losses,
		"draws":    u.Draws,
		"online":   u.Online,
	}))
}
