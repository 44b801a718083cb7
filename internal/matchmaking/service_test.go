package matchmaking

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/game-playzui/bigtwo-server/internal/room"
	"github.com/game-playzui/bigtwo-server/internal/ws"
)

type note struct {
	userID  int64
	kind    ws.MessageType
	payload any
}

type notes struct {
	mu  sync.Mutex
	all []note
}

func (n *notes) Notify(userID int64, t ws.MessageType, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, note{userID, t, payload})
}

func (n *notes) Send(int64, room.Kind, any) {}

func (n *notes) of(kind ws.MessageType) []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []note
	for _, x := range n.all {
		if x.kind == kind {
			out = append(out, x)
		}
	}
	return out
}

func newService(t *testing.T, cfg Config) (*Service, *room.Manager, *quartz.Mock, *notes) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	clk := quartz.NewMock(t)
	n := &notes{}
	rooms := room.NewManager(room.Config{GracePeriod: time.Minute}, n, clk, logger)
	t.Cleanup(rooms.Shutdown)
	return NewService(rooms, NewMemoryDirectory(clk, 0), n, clk, logger, cfg), rooms, clk, n
}

func TestFourWaitersMakeARoom(t *testing.T) {
	ctx := context.Background()
	s, rooms, _, n := newService(t, Config{Interval: time.Second})

	for id := int64(1); id <= 5; id++ {
		require.NoError(t, s.Enqueue(ctx, id, "player"))
	}
	assert.Len(t, n.of(ws.MsgQueued), 5)

	s.process(ctx)
	require.Equal(t, 1, rooms.Count())
	assert.Equal(t, 1, s.Waiting())

	found := n.of(ws.MsgMatchFound)
	require.Len(t, found, 4)
	for i, f := range found {
		p := f.payload.(ws.MatchFoundPayload)
		assert.Equal(t, int64(i+1), f.userID)
		assert.Equal(t, i, p.Seat)
	}

	r, err := s.RoomOf(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, found[0].payload.(ws.MatchFoundPayload).RoomID, r.ID)
	assert.ErrorIs(t, s.Enqueue(ctx, 3, "player"), ErrAlreadySeated)

	r.Close()
	<-r.Done()
	r, err = s.RoomOf(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, r, "binding released with the room")
	require.NoError(t, s.Enqueue(ctx, 3, "player"))
}

func TestDuplicateAndCancel(t *testing.T) {
	ctx := context.Background()
	s, _, _, _ := newService(t, Config{Interval: time.Second})

	require.NoError(t, s.Enqueue(ctx, 1, "ann"))
	assert.ErrorIs(t, s.Enqueue(ctx, 1, "ann"), ErrAlreadyQueued)
	assert.True(t, s.Cancel(1))
	assert.False(t, s.Cancel(1))
	assert.Equal(t, 0, s.Waiting())
}

func TestBotFillAfterWait(t *testing.T) {
	ctx := context.Background()
	s, rooms, clk, n := newService(t, Config{Interval: time.Second, BotFillAfter: 30 * time.Second})

	require.NoError(t, s.Enqueue(ctx, 1, "ann"))
	require.NoError(t, s.Enqueue(ctx, 2, "bo"))

	clk.Advance(29 * time.Second).MustWait(ctx)
	s.process(ctx)
	assert.Equal(t, 0, rooms.Count())

	clk.Advance(time.Second).MustWait(ctx)
	s.process(ctx)
	require.Equal(t, 1, rooms.Count())
	assert.Equal(t, 0, s.Waiting())
	assert.Len(t, n.of(ws.MsgMatchFound), 2)

	info := rooms.List()[0]
	assert.Equal(t, 2, info.HumanPlayerCount())
	assert.True(t, info.HasBots)
	for _, seat := range info.Seats[2:] {
		assert.True(t, seat.IsBot)
		assert.Less(t, seat.UserID, int64(0))
	}
}

func TestMemoryDirectoryReleaseOnlyOwnRoom(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory(quartz.NewMock(t), 0)
	require.NoError(t, d.Bind(ctx, "a", []int64{1, 2}))
	require.NoError(t, d.Bind(ctx, "b", []int64{2}))

	require.NoError(t, d.Release(ctx, "a", []int64{1, 2}))
	got, err := d.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = d.Lookup(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "b", got, "a newer binding survives")
}

type brokenDirectory struct{ *MemoryDirectory }

func (*brokenDirectory) Bind(context.Context, string, []int64) error {
	return errors.New("directory unavailable")
}

func TestBindFailureClosesRoom(t *testing.T) {
	ctx := context.Background()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	clk := quartz.NewMock(t)
	n := &notes{}
	rooms := room.NewManager(room.Config{GracePeriod: time.Minute}, n, clk, logger)
	t.Cleanup(rooms.Shutdown)
	s := NewService(rooms, &brokenDirectory{NewMemoryDirectory(clk, 0)}, n, clk, logger, Config{Interval: time.Second})

	for id := int64(1); id <= 4; id++ {
		require.NoError(t, s.Enqueue(ctx, id, "player"))
	}
	s.process(ctx)

	require.Eventually(t, func() bool { return rooms.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, n.of(ws.MsgMatchFound))
	errs := n.of(ws.MsgError)
	require.Len(t, errs, 4)
	for i, e := range errs {
		assert.Equal(t, int64(i+1), e.userID)
	}

	// the users are free to queue again
	require.NoError(t, s.Enqueue(ctx, 1, "player"))
}

func TestBindingExpiresOnlyWhenIdle(t *testing.T) {
	ctx := context.Background()
	clk := quartz.NewMock(t)
	d := NewMemoryDirectory(clk, time.Hour)
	require.NoError(t, d.Bind(ctx, "a", []int64{1, 2}))

	// user 1 keeps playing, user 2 goes quiet
	for i := 0; i < 3; i++ {
		clk.Advance(50 * time.Minute)
		got, err := d.Lookup(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "a", got, "lookup %d", i)
	}

	got, err := d.Lookup(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}
