// Package server wires the registries together behind a TCP listener. Each
// accepted connection gets a session slot and a read loop; one background
// goroutine runs the matchmaking ticks. All wire traffic flows through the
// request router in this package.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hailam/chesshub/internal/config"
	"github.com/hailam/chesshub/internal/history"
	"github.com/hailam/chesshub/internal/match"
	"github.com/hailam/chesshub/internal/matchmaking"
	"github.com/hailam/chesshub/internal/session"
	"github.com/hailam/chesshub/internal/user"
)

// maxLine is the wire framing limit. Longer lines are rejected as invalid.
const maxLine = 4096

// Read pacing per connection. Pacing only, never a wire-visible error.
const (
	readRate  = 20
	readBurst = 40
)

// Server owns every registry and the listener.
type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	users    *user.Store
	sessions *session.Registry
	matches  *match.Registry
	queue    *matchmaking.Queue
	history  *history.Store
	instance uuid.UUID
}

// New assembles a server around the given stores.
func New(cfg *config.Config, users *user.Store, hist *history.Store, log *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		users:    users,
		sessions: session.NewRegistry(log),
		matches:  match.NewRegistry(log),
		queue:    matchmaking.NewQueue(log),
		history:  hist,
		instance: uuid.New(),
	}
}

// Run listens and serves until the context is cancelled. The returned error
// is nil on clean shutdown; a bind failure surfaces immediately.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.log.Info("listening",
		zap.Int("port", s.cfg.Port),
		zap.String("instance", s.instance.String()))
	return s.serveListener(ctx, ln)
}

// serveListener runs the accept and matchmaking loops over an established
// listener.
func (s *Server) serveListener(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		ln.Close()
		return nil
	})

	g.Go(func() error {
		s.queue.Run(ctx, s.cfg.Interval(), s.onPair)
		return nil
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			go s.serve(ctx, conn)
		}
	})

	return g.Wait()
}

// serve owns one connection from accept to close.
func (s *Server) serve(ctx context.Context, conn net.Conn) {
	slot, err := s.sessions.Accept(conn)
	if err != nil {
		// No slot: tell the client once and drop the connection.
		fmt.Fprintf(conn, `{"action":"ERROR","data":{"reason":"Server full"}}`+"\n")
		conn.Close()
		s.log.Warn("connection rejected, session table full",
			zap.String("remote", conn.RemoteAddr().String()))
		return
	}
	defer s.closeSession(slot)

	limiter := rate.NewLimiter(rate.Limit(readRate), readBurst)
	reader := bufio.NewReaderSize(conn, maxLine)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				s.log.Debug("read error", zap.Int("slot", slot), zap.Error(err))
			}
			return
		}
		if len(line) > maxLine {
			s.send(slot, errorReply("Invalid JSON"))
			continue
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		s.dispatch(slot, []byte(line))
	}
}

// closeSession tears down everything tied to the slot: the transport, the
// account's online flag and any matchmaking entry.
func (s *Server) closeSession(slot int) {
	s.queue.Dequeue(slot)
	if username := s.sessions.Close(slot); username != "" {
		s.users.Logout(username)
	}
}

// send delivers one response, logging delivery failures.
func (s *Server) send(slot int, resp Response) {
	if err := s.sessions.Send(slot, resp); err != nil {
		s.log.Debug("send failed",
			zap.Int("slot", slot), zap.String("action", resp.Action), zap.Error(err))
	}
}

// onPair reacts to a matchmaking pairing: both players learn their opponent
// and a coin-flip match starts.
func (s *Server) onPair(p matchmaking.Pair) {
	a, aok := s.sessions.Get(p.A.SessionSlot)
	b, bok := s.sessions.Get(p.B.SessionSlot)
	if !aok || !bok {
		// One side disconnected while queued; requeue the survivor.
		if aok {
			s.queue.Enqueue(p.A.SessionSlot, p.A.Elo)
		}
		if bok {
			s.queue.Enqueue(p.B.SessionSlot, p.B.Elo)
		}
		return
	}

	s.send(a.Slot, reply(actMatchmakingState, map[string]string{
		"status": "FOUND", "opponent": b.Username,
	}))
	s.send(b.Slot, reply(actMatchmakingState, map[string]string{
		"status": "FOUND", "opponent": a.Username,
	}))

	s.startMatch(a.Slot, a.Username, b.Slot, b.Username, match.Coin, false)
}

// startMatch creates the match, flips both sessions to IN_MATCH, opens the
// recording and announces START_GAME to both players.
func (s *Server) startMatch(aSlot int, aName string, bSlot int, bName string, assign match.ColorAssignment, rematch bool) {
	m, err := s.matches.Create(aSlot, aName, bSlot, bName, assign)
	if err != nil {
		s.send(aSlot, errorReply("No available match slots"))
		return
	}

	s.history.Start(m.ID)
	s.sessions.SetState(m.WhiteSlot, session.InMatch)
	s.sessions.SetState(m.BlackSlot, session.InMatch)

	data := map[string]any{
		"matchId": m.ID,
		"white":   m.White,
		"black":   m.Black,
		"board":   "Initial position",
	}
	if rematch {
		data["isRematch"] = true
	}
	start := reply(actStartGame, data)
	s.send(m.WhiteSlot, start)
	s.send(m.BlackSlot, start)
}

// finishMatch runs the shared terminal flow: deactivate (which records the
// rematch window entry), return both sessions to the lobby, announce the
// result, persist the history file and apply ratings. Ratings are skipped
// for an "ABORT" winner.
func (s *Server) finishMatch(matchID, winner, reason string) {
	snap, ok := s.matches.Deactivate(matchID)
	if !ok {
		return
	}

	result := reply(actGameResult, map[string]string{
		"winner":  winner,
		"reason":  reason,
		"matchId": snap.ID,
	})
	// A slot freed by a disconnect may already belong to a new connection;
	// only a slot still bound to the recorded player is touched.
	for _, p := range []struct {
		slot     int
		username string
	}{{snap.WhiteSlot, snap.White}, {snap.BlackSlot, snap.Black}} {
		if sess, ok := s.sessions.Get(p.slot); ok && sess.Username == p.username {
			s.sessions.SetState(p.slot, session.Online)
			s.send(p.slot, result)
		}
	}

	if _, err := s.history.Finalize(snap.ID, snap.White, snap.Black, winner, reason,
		snap.Pos.Squares.FlatString()); err != nil {
		s.log.Error("history finalize failed",
			zap.String("matchId", snap.ID), zap.Error(err))
	}

	if _, _, err := s.users.ApplyResult(snap.White, snap.Black, winner); err != nil {
		s.log.Error("rating update failed",
			zap.String("matchId", snap.ID), zap.Error(err))
	}

	s.log.Info("match finished",
		zap.String("matchId", snap.ID),
		zap.String("winner", winner), zap.String("reason", reason))
}
