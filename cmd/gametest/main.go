// Command gametest plays whole games between automated seats in-process and
// prints the final standings of each room.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/game-playzui/bigtwo-server/internal/bot"
	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
	"github.com/game-playzui/bigtwo-server/internal/room"
)

type CLI struct {
	Rooms   int           `short:"r" default:"8" help:"Number of rooms to play."`
	Seed    int64         `short:"s" help:"Seed for deals and bot choices; 0 picks one from the clock."`
	Timeout time.Duration `default:"1m" help:"Give up on rooms that have not finished by then."`
	Verbose bool          `short:"v" help:"Show room logs."`
}

// discard drops room output; nobody is listening in an all-bot room.
type discard struct{}

func (discard) Send(int64, room.Kind, any) {}

type outcome struct {
	info   models.RoomInfo
	reason room.CloseReason
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("gametest"),
		kong.Description("Play Big Two games between automated seats"),
		kong.UsageOnError(),
	)

	level := log.WarnLevel
	if cli.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Level: level})

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fmt.Printf("playing %d rooms, seed %d\n", cli.Rooms, seed)

	start := time.Now()
	results, err := play(cli, seed, logger)
	kctx.FatalIfErrorf(err)

	sort.Slice(results, func(i, j int) bool { return results[i].info.Name < results[j].info.Name })
	for _, res := range results {
		fmt.Println(describe(res))
	}
	fmt.Printf("done in %s\n", time.Since(start).Round(time.Millisecond))
}

func play(cli CLI, seed int64, logger *log.Logger) ([]outcome, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var (
		mu      sync.Mutex
		results []outcome
	)
	clock := quartz.NewReal()
	for i := 0; i < cli.Rooms; i++ {
		roomSeed := seed + int64(i)
		name := fmt.Sprintf("Table %04d", i+1)
		g.Go(func() error {
			res, err := playRoom(ctx, name, roomSeed, clock, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

func playRoom(ctx context.Context, name string, seed int64, clock quartz.Clock, logger *log.Logger) (outcome, error) {
	rng := rand.New(rand.NewSource(seed))
	var players [game.NumSeats]models.Player
	for i, n := range bot.Names(rng, game.NumSeats) {
		players[i] = models.Player{UserID: bot.NextID(), Username: n, IsBot: true}
	}

	cfg := room.Config{
		Shuffle: func(deck []models.Card) {
			rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		},
		Seed: seed,
	}
	r := room.New(uuid.NewString(), name, players, cfg, discard{}, clock, logger)
	reason := make(chan room.CloseReason, 1)
	r.OnClose(func(_ *room.Room, why room.CloseReason) { reason <- why })
	r.Start()

	select {
	case why := <-reason:
		<-r.Done()
		if why != room.ReasonGameOver {
			return outcome{}, fmt.Errorf("room closed early: %s", why)
		}
		return outcome{info: r.Info(), reason: why}, nil
	case <-ctx.Done():
		r.Close()
		<-r.Done()
		return outcome{}, ctx.Err()
	}
}

func describe(res outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %2d matches  ", res.info.Name, res.info.MatchNumber)
	for _, s := range res.info.Seats {
		mark := " "
		if res.info.Champion != nil && *res.info.Champion == s.SeatIndex {
			mark = "*"
		}
		fmt.Fprintf(&b, " %s%-12s %4d", mark, s.Username, s.Score)
	}
	return b.String()
}
