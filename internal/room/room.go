package room

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
)

// ErrRoomClosed is returned for any request that reaches a room after it
// was torn down.
var ErrRoomClosed = fmt.Errorf("%w: room is closed", game.ErrSessionFault)

type Config struct {
	GracePeriod    time.Duration
	BotThinkTime   time.Duration
	NextMatchDelay time.Duration
	// Shuffle is used for every deal; nil means a crypto-random shuffle.
	Shuffle func([]models.Card)
	// Seed feeds the automated players' tie-breaking; 0 picks one from the clock.
	Seed int64
}

type CloseReason string

const (
	ReasonGameOver CloseReason = "game_over"
	ReasonAborted  CloseReason = "aborted"
	ReasonShutdown CloseReason = "shutdown"
)

// Room runs one table. All game state is owned by a single goroutine that
// consumes the events channel; the exported methods post an event and wait
// for it to be handled.
type Room struct {
	ID   string
	Name string

	cfg     Config
	players [game.NumSeats]models.Player
	sender  Sender
	clock   quartz.Clock
	logger  *log.Logger
	onClose func(*Room, CloseReason)

	events    chan event
	done      chan struct{}
	closeOnce sync.Once

	// owned by the loop goroutine
	seats     [game.NumSeats]*seat
	game      *game.Game
	rng       *rand.Rand
	version   int
	botTimer  *quartz.Timer
	nextTimer *quartz.Timer
	closed    bool
	reason    CloseReason

	infoMu sync.RWMutex
	info   models.RoomInfo
}

func New(id, name string, players [game.NumSeats]models.Player, cfg Config, sender Sender, clock quartz.Clock, logger *log.Logger) *Room {
	seed := cfg.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}
	r := &Room{
		ID:      id,
		Name:    name,
		cfg:     cfg,
		players: players,
		sender:  sender,
		clock:   clock,
		logger:  logger.With("room", id),
		events:  make(chan event, 64),
		done:    make(chan struct{}),
		game:    game.NewGame(cfg.Shuffle),
		rng:     rand.New(rand.NewSource(seed)),
	}
	for i, p := range players {
		r.seats[i] = &seat{index: i, player: p}
	}
	r.publish()
	return r
}

// OnClose registers fn to run on the room goroutine when the room is torn
// down. It must be called before Start.
func (r *Room) OnClose(fn func(*Room, CloseReason)) {
	r.onClose = fn
}

// Start deals the first match and begins processing events.
func (r *Room) Start() {
	go r.loop()
}

func (r *Room) Players() [game.NumSeats]models.Player {
	return r.players
}

// SeatOf returns the seat index of userID, or -1.
func (r *Room) SeatOf(userID int64) int {
	for i, p := range r.players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// Done is closed once the room has been torn down.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) Info() models.RoomInfo {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	info := r.info
	info.Seats = append([]models.SeatInfo(nil), r.info.Seats...)
	return info
}

// Play submits card tokens for the seat held by userID.
func (r *Room) Play(ctx context.Context, userID int64, tokens []string) error {
	_, err := r.request(ctx, playEvent{userID: userID, tokens: tokens, reply: make(chan result, 1)})
	return err
}

func (r *Room) Pass(ctx context.Context, userID int64) error {
	_, err := r.request(ctx, passEvent{userID: userID, reply: make(chan result, 1)})
	return err
}

// Disconnect freezes the seat held by userID and starts its grace period.
func (r *Room) Disconnect(ctx context.Context, userID int64) error {
	_, err := r.request(ctx, disconnectEvent{userID: userID, reply: make(chan result, 1)})
	return err
}

// Reconnect resumes a disconnected seat and resends its snapshot.
func (r *Room) Reconnect(ctx context.Context, userID int64) (Snapshot, error) {
	return r.request(ctx, reconnectEvent{userID: userID, reply: make(chan result, 1)})
}

// State returns the snapshot userID's seat would receive right now.
func (r *Room) State(ctx context.Context, userID int64) (Snapshot, error) {
	return r.request(ctx, stateEvent{userID: userID, reply: make(chan result, 1)})
}

// Close tears the room down without a result. It does not wait for the
// room goroutine.
func (r *Room) Close() {
	r.post(closeEvent{})
}

func (r *Room) request(ctx context.Context, ev request) (Snapshot, error) {
	select {
	case r.events <- ev:
	case <-r.done:
		return Snapshot{}, ErrRoomClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case res := <-ev.replyTo():
		return res.snap, res.err
	case <-r.done:
		// the loop answers before it shuts down
		select {
		case res := <-ev.replyTo():
			return res.snap, res.err
		default:
			return Snapshot{}, ErrRoomClosed
		}
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// post queues an internal event. Timer callbacks use it, so it gives up
// once the room is gone.
func (r *Room) post(ev event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

func (r *Room) loop() {
	r.logger.Info("room started", "players", r.playerNames())
	r.beginMatch()
	r.drive()

	for !r.closed {
		ev := <-r.events
		r.handle(ev)
	}
	r.shutdown()
}

func (r *Room) playerNames() []string {
	names := make([]string, 0, game.NumSeats)
	for _, p := range r.players {
		names = append(names, p.Username)
	}
	return names
}

// teardown stops every timer and marks the room closed. The loop finishes
// the current event before shutdown runs.
func (r *Room) teardown(reason CloseReason) {
	if r.closed {
		return
	}
	r.closed = true
	r.reason = reason
	r.stopBotTimer()
	if r.nextTimer != nil {
		r.nextTimer.Stop()
	}
	for _, s := range r.seats {
		s.stopGrace()
	}
	r.publish()
	r.logger.Info("room closed", "reason", reason, "scores", r.game.Scores)
}

func (r *Room) shutdown() {
	if r.onClose != nil {
		r.onClose(r, r.reason)
	}
	r.closeOnce.Do(func() { close(r.done) })
	r.drain()
}

// drain answers requests that were queued before done was closed.
func (r *Room) drain() {
	for {
		select {
		case ev := <-r.events:
			if req, ok := ev.(request); ok {
				req.replyTo() <- result{err: ErrRoomClosed}
			}
		default:
			return
		}
	}
}

func (r *Room) publish() {
	info := models.RoomInfo{
		ID:          r.ID,
		Name:        r.Name,
		MatchNumber: r.game.MatchNumber,
		Phase:       r.phase(),
	}
	if r.game.Result != nil {
		champion := r.game.Result.Champion
		info.Champion = &champion
	}
	var remaining [game.NumSeats]int
	if r.game.Match != nil {
		remaining = r.game.Match.Remaining()
	}
	for i, s := range r.seats {
		if s.player.IsBot {
			info.HasBots = true
		}
		info.Seats = append(info.Seats, models.SeatInfo{
			Player:       s.player,
			SeatIndex:    i,
			CardCount:    remaining[i],
			Score:        r.game.Scores[i],
			Disconnected: s.disconnected,
		})
	}

	r.infoMu.Lock()
	r.info = info
	r.infoMu.Unlock()
}

func (r *Room) phase() models.RoomPhase {
	switch {
	case r.game.Over():
		return models.PhaseGameOver
	case r.closed:
		return models.PhaseAborted
	case r.game.InProgress():
		return models.PhasePlaying
	}
	return models.PhaseBetween
}
