package room

import (
	"fmt"
	"time"

	"github.com/game-playzui/bigtwo-server/internal/bot"
	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
)

type event any

type result struct {
	snap Snapshot
	err  error
}

// request is an event posted by a caller that waits for the outcome.
type request interface {
	replyTo() chan result
}

type playEvent struct {
	userID int64
	tokens []string
	reply  chan result
}

type passEvent struct {
	userID int64
	reply  chan result
}

type disconnectEvent struct {
	userID int64
	reply  chan result
}

type reconnectEvent struct {
	userID int64
	reply  chan result
}

type stateEvent struct {
	userID int64
	reply  chan result
}

func (e playEvent) replyTo() chan result       { return e.reply }
func (e passEvent) replyTo() chan result       { return e.reply }
func (e disconnectEvent) replyTo() chan result { return e.reply }
func (e reconnectEvent) replyTo() chan result  { return e.reply }
func (e stateEvent) replyTo() chan result      { return e.reply }

// Timer events carry the state they were scheduled against and are dropped
// when that state has moved on.
type botEvent struct{ version int }

type graceEvent struct {
	seat       int
	generation int
}

type nextMatchEvent struct{ match int }

type closeEvent struct{}

func (r *Room) handle(ev event) {
	switch e := ev.(type) {
	case playEvent:
		e.reply <- result{err: r.handlePlay(e)}
	case passEvent:
		e.reply <- result{err: r.handlePass(e)}
	case disconnectEvent:
		e.reply <- result{err: r.handleDisconnect(e)}
	case reconnectEvent:
		snap, err := r.handleReconnect(e)
		e.reply <- result{snap: snap, err: err}
	case stateEvent:
		s := r.seatFor(e.userID)
		if s == nil {
			e.reply <- result{err: fmt.Errorf("%w: user %d is not seated here", game.ErrSessionFault, e.userID)}
			return
		}
		e.reply <- result{snap: r.snapshot(s.index)}
	case botEvent:
		r.handleBotTimer(e)
	case graceEvent:
		r.handleGraceTimer(e)
	case nextMatchEvent:
		r.handleNextMatchTimer(e)
	case closeEvent:
		r.teardown(ReasonShutdown)
	default:
		r.logger.Warn("unknown event", "type", fmt.Sprintf("%T", ev))
	}
}

// actingSeat resolves the seat a human request acts for.
func (r *Room) actingSeat(userID int64) (*seat, error) {
	s := r.seatFor(userID)
	switch {
	case s == nil:
		return nil, fmt.Errorf("%w: user %d is not seated here", game.ErrSessionFault, userID)
	case !s.human():
		return nil, fmt.Errorf("%w: seat %d is automated", game.ErrSessionFault, s.index)
	case s.disconnected:
		return s, fmt.Errorf("%w: seat %d is disconnected", game.ErrSessionFault, s.index)
	}
	return s, nil
}

func (r *Room) handlePlay(e playEvent) error {
	s, err := r.actingSeat(e.userID)
	if err != nil {
		r.reject(s, err)
		return err
	}
	cards, err := parseTokens(e.tokens)
	if err != nil {
		r.reject(s, err)
		return err
	}
	if err := r.apply(func() (game.Outcome, error) { return r.game.Play(s.index, cards) }); err != nil {
		r.reject(s, err)
		return err
	}
	r.drive()
	return nil
}

func (r *Room) handlePass(e passEvent) error {
	s, err := r.actingSeat(e.userID)
	if err != nil {
		r.reject(s, err)
		return err
	}
	if err := r.apply(func() (game.Outcome, error) { return r.game.Pass(s.index) }); err != nil {
		r.reject(s, err)
		return err
	}
	r.drive()
	return nil
}

func parseTokens(tokens []string) ([]models.Card, error) {
	cards := make([]models.Card, 0, len(tokens))
	for _, t := range tokens {
		c, err := models.ParseCard(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", game.ErrIllegalMove, err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// reject tells only the offending seat why its request failed.
func (r *Room) reject(s *seat, err error) {
	r.logger.Debug("move rejected", "seat", seatIndex(s), "error", err)
	if s == nil || !s.human() {
		return
	}
	r.sender.Send(s.player.UserID, KindMoveRejected, Rejection{Kind: game.KindOf(err), Reason: err.Error()})
}

func seatIndex(s *seat) int {
	if s == nil {
		return -1
	}
	return s.index
}

// apply runs one rules mutation. On success the state version moves on, any
// pending bot move is cancelled and every seat is told.
func (r *Room) apply(move func() (game.Outcome, error)) error {
	out, err := move()
	if err != nil {
		return err
	}
	r.version++
	r.stopBotTimer()
	r.broadcastState()

	if out.MatchResult != nil {
		r.finishMatch(out)
	}
	return nil
}

func (r *Room) finishMatch(out game.Outcome) {
	res := out.MatchResult
	r.logger.Info("match ended", "match", res.Match, "winner", res.Winner, "scores", res.Scores)
	r.sendHumans(KindMatchEnded, *res, -1)

	if out.GameResult != nil {
		r.logger.Info("game over", "champion", out.GameResult.Champion, "scores", out.GameResult.Scores)
		r.sendHumans(KindGameOver, *out.GameResult, -1)
		r.teardown(ReasonGameOver)
		return
	}

	if r.cfg.NextMatchDelay <= 0 {
		r.beginMatch()
		return
	}
	number := res.Match
	r.nextTimer = r.clock.AfterFunc(r.cfg.NextMatchDelay, func() {
		r.post(nextMatchEvent{match: number})
	})
}

func (r *Room) beginMatch() {
	m, err := r.game.Deal()
	if err != nil {
		r.logger.Error("failed to deal", "error", err)
		r.teardown(ReasonAborted)
		return
	}
	r.version++
	r.logger.Info("match started", "match", m.Number, "opener", m.Turn)
	r.broadcastState()
}

func (r *Room) handleNextMatchTimer(e nextMatchEvent) {
	if r.closed || r.game.MatchNumber != e.match || r.game.InProgress() {
		return
	}
	r.nextTimer = nil
	r.beginMatch()
	r.drive()
}

// drive settles whatever the seat on turn can't do for itself: automated
// seats move (after their think time) and an expired seat aborts the match.
func (r *Room) drive() {
	for !r.closed && r.game.InProgress() {
		s := r.seats[r.game.Match.Turn]
		switch {
		case s.expired:
			r.abort(s)
			return
		case s.human():
			return
		case r.cfg.BotThinkTime > 0:
			r.scheduleBot()
			return
		}
		r.botMove(s)
	}
}

func (r *Room) scheduleBot() {
	if r.botTimer != nil {
		return
	}
	version := r.version
	r.botTimer = r.clock.AfterFunc(r.cfg.BotThinkTime, func() {
		r.post(botEvent{version: version})
	})
}

func (r *Room) stopBotTimer() {
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
}

func (r *Room) handleBotTimer(e botEvent) {
	if r.closed || e.version != r.version {
		return
	}
	r.botTimer = nil
	if !r.game.InProgress() {
		return
	}
	s := r.seats[r.game.Match.Turn]
	if s.human() {
		return
	}
	r.botMove(s)
	r.drive()
}

func (r *Room) botMove(s *seat) {
	m := r.game.Match
	view := bot.View{
		Hand:      m.Hands[s.index],
		Standing:  m.Trick.Standing,
		FirstLead: m.FirstLead,
	}
	for i, n := range m.Remaining() {
		if i != s.index {
			view.OpponentCounts = append(view.OpponentCounts, n)
		}
	}

	d := bot.Choose(view, r.rng)
	var err error
	if d.Pass {
		err = r.apply(func() (game.Outcome, error) { return r.game.Pass(s.index) })
	} else {
		err = r.apply(func() (game.Outcome, error) { return r.game.Play(s.index, d.Combo.Cards) })
	}
	if err != nil {
		// a decision the rules refuse would stall the table forever
		r.logger.Error("automated move refused", "seat", s.index, "error", err)
		r.teardown(ReasonAborted)
	}
}

func (r *Room) handleDisconnect(e disconnectEvent) error {
	s, err := r.actingSeat(e.userID)
	if err != nil {
		return err
	}
	s.disconnected = true
	s.generation++
	s.graceDeadline = r.clock.Now().Add(r.cfg.GracePeriod)
	r.logger.Info("seat disconnected", "seat", s.index, "user", e.userID, "deadline", s.graceDeadline)

	if r.cfg.GracePeriod <= 0 {
		r.expire(s)
		return nil
	}
	seatIdx, generation := s.index, s.generation
	s.graceTimer = r.clock.AfterFunc(r.cfg.GracePeriod, func() {
		r.post(graceEvent{seat: seatIdx, generation: generation})
	})
	r.broadcastState()
	return nil
}

func (r *Room) handleReconnect(e reconnectEvent) (Snapshot, error) {
	s := r.seatFor(e.userID)
	switch {
	case s == nil || !s.human():
		return Snapshot{}, fmt.Errorf("%w: user %d has no seat to resume", game.ErrSessionFault, e.userID)
	case !s.disconnected:
		return Snapshot{}, fmt.Errorf("%w: seat %d is already connected", game.ErrSessionFault, s.index)
	case s.expired || !r.clock.Now().Before(s.graceDeadline):
		return Snapshot{}, fmt.Errorf("%w: grace period for seat %d has elapsed", game.ErrSessionFault, s.index)
	}

	s.stopGrace()
	s.generation++
	s.disconnected = false
	s.graceDeadline = time.Time{}
	r.logger.Info("seat reconnected", "seat", s.index, "user", e.userID)

	r.broadcastState()
	return r.snapshot(s.index), nil
}

func (r *Room) handleGraceTimer(e graceEvent) {
	s := r.seats[e.seat]
	if r.closed || !s.disconnected || s.generation != e.generation {
		return
	}
	s.graceTimer = nil
	r.expire(s)
}

// expire ends a seat's grace period. The match is only aborted once the
// turn is actually waiting on that seat.
func (r *Room) expire(s *seat) {
	s.expired = true
	r.logger.Warn("grace period elapsed", "seat", s.index, "user", s.player.UserID)
	if r.game.InProgress() && r.game.Match.Turn == s.index {
		r.abort(s)
		return
	}
	r.broadcastState()
}

func (r *Room) abort(s *seat) {
	r.logger.Warn("match aborted", "seat", s.index, "match", r.game.MatchNumber)
	r.sendHumans(KindMatchAborted, Aborted{
		Seat:     s.index,
		Username: s.player.Username,
		Reason:   "player did not return in time",
		Scores:   r.game.Scores,
	}, s.index)
	r.teardown(ReasonAborted)
}
