package matchmaking

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/game-playzui/bigtwo-server/internal/bot"
	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
	"github.com/game-playzui/bigtwo-server/internal/room"
	"github.com/game-playzui/bigtwo-server/internal/ws"
)

var (
	ErrAlreadyQueued = errors.New("already waiting for a match")
	ErrAlreadySeated = errors.New("already seated in a room")
)

// Notifier reaches a connected user.
type Notifier interface {
	Notify(userID int64, t ws.MessageType, payload any)
}

type Config struct {
	// Interval is how often the wait list is grouped.
	Interval time.Duration
	// BotFillAfter tops a partial group up with automated seats once its
	// oldest member has waited this long. Zero disables bot fill.
	BotFillAfter time.Duration
}

type waiter struct {
	userID   int64
	username string
	since    time.Time
}

type Service struct {
	rooms  *room.Manager
	dir    Directory
	notify Notifier
	clock  quartz.Clock
	logger *log.Logger
	cfg    Config

	mu      sync.Mutex
	waiting []waiter
	rng     *rand.Rand
}

func NewService(rooms *room.Manager, dir Directory, notify Notifier, clock quartz.Clock, logger *log.Logger, cfg Config) *Service {
	s := &Service{
		rooms:  rooms,
		dir:    dir,
		notify: notify,
		clock:  clock,
		logger: logger.WithPrefix("matchmaking"),
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
	rooms.OnClose(s.release)
	return s
}

func (s *Service) Run(ctx context.Context) {
	s.logger.Info("matchmaking service started", "interval", s.cfg.Interval, "bot_fill_after", s.cfg.BotFillAfter)
	ticker := s.clock.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.process(ctx)
		}
	}
}

// Enqueue puts a user on the wait list.
func (s *Service) Enqueue(ctx context.Context, userID int64, username string) error {
	if r, err := s.RoomOf(ctx, userID); err != nil {
		return err
	} else if r != nil {
		return ErrAlreadySeated
	}

	s.mu.Lock()
	for _, w := range s.waiting {
		if w.userID == userID {
			s.mu.Unlock()
			return ErrAlreadyQueued
		}
	}
	s.waiting = append(s.waiting, waiter{userID: userID, username: username, since: s.clock.Now()})
	position := len(s.waiting)
	s.mu.Unlock()

	s.logger.Debug("user queued", "user", userID, "position", position)
	s.notify.Notify(userID, ws.MsgQueued, ws.QueuedPayload{Position: position})
	return nil
}

// Cancel takes a user off the wait list and reports whether it was there.
func (s *Service) Cancel(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.waiting {
		if w.userID == userID {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Service) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiting)
}

// RoomOf returns the live room userID is seated in, or nil.
func (s *Service) RoomOf(ctx context.Context, userID int64) (*room.Room, error) {
	roomID, err := s.dir.Lookup(ctx, userID)
	if err != nil || roomID == "" {
		return nil, err
	}
	r, ok := s.rooms.Get(roomID)
	if !ok {
		// the room closed but the binding outlived it
		if err := s.dir.Release(ctx, roomID, []int64{userID}); err != nil {
			s.logger.Warn("failed to drop stale binding", "user", userID, "room", roomID, "error", err)
		}
		return nil, nil
	}
	return r, nil
}

func (s *Service) process(ctx context.Context) {
	for _, players := range s.takeGroups() {
		s.open(ctx, players)
	}
}

// takeGroups removes every full group from the wait list, plus a
// bot-filled one when the oldest waiter has waited long enough.
func (s *Service) takeGroups() [][game.NumSeats]models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	var groups [][game.NumSeats]models.Player
	for len(s.waiting) >= game.NumSeats {
		var players [game.NumSeats]models.Player
		for i, w := range s.waiting[:game.NumSeats] {
			players[i] = models.Player{UserID: w.userID, Username: w.username}
		}
		s.waiting = s.waiting[game.NumSeats:]
		groups = append(groups, players)
	}

	if len(s.waiting) == 0 || s.cfg.BotFillAfter <= 0 {
		return groups
	}
	if s.clock.Since(s.waiting[0].since) < s.cfg.BotFillAfter {
		return groups
	}

	var players [game.NumSeats]models.Player
	for i, w := range s.waiting {
		players[i] = models.Player{UserID: w.userID, Username: w.username}
	}
	names := bot.Names(s.rng, game.NumSeats-len(s.waiting))
	for i, name := range names {
		players[len(s.waiting)+i] = models.Player{UserID: bot.NextID(), Username: name, IsBot: true}
	}
	s.logger.Info("filling group with bots", "humans", len(s.waiting), "bots", len(names))
	s.waiting = nil
	return append(groups, players)
}

// open starts a room for players. A room nobody can find again is closed
// straight away and its humans are told to queue again.
func (s *Service) open(ctx context.Context, players [game.NumSeats]models.Player) {
	r := s.rooms.Create(players)

	humans := humanIDs(players)
	if err := s.dir.Bind(ctx, r.ID, humans); err != nil {
		s.logger.Error("failed to bind room, closing it", "room", r.ID, "error", err)
		r.Close()
		for _, id := range humans {
			s.notify.Notify(id, ws.MsgError, ws.ErrorPayload{Message: "could not start the match, please queue again"})
		}
		return
	}
	for i, p := range players {
		if p.IsBot {
			continue
		}
		s.notify.Notify(p.UserID, ws.MsgMatchFound, ws.MatchFoundPayload{RoomID: r.ID, RoomName: r.Name, Seat: i})
	}
}

func (s *Service) release(r *room.Room, reason room.CloseReason) {
	humans := humanIDs(r.Players())
	if err := s.dir.Release(context.Background(), r.ID, humans); err != nil {
		s.logger.Error("failed to release room", "room", r.ID, "error", err)
	}
	s.logger.Debug("room released", "room", r.ID, "reason", reason)
}

func humanIDs(players [game.NumSeats]models.Player) []int64 {
	var ids []int64
	for _, p := range players {
		if !p.IsBot {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}
