package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/game-playzui/bigtwo-server/internal/auth"
	"github.com/game-playzui/bigtwo-server/internal/config"
	"github.com/game-playzui/bigtwo-server/internal/engine"
	"github.com/game-playzui/bigtwo-server/internal/handlers"
	"github.com/game-playzui/bigtwo-server/internal/matchmaking"
	"github.com/game-playzui/bigtwo-server/internal/models"
	"github.com/game-playzui/bigtwo-server/internal/repository"
	"github.com/game-playzui/bigtwo-server/internal/room"
	"github.com/game-playzui/bigtwo-server/internal/ws"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           cfg.Level(),
	})

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	if err := repository.RunMigrations(db, logger.WithPrefix("migrations")); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPwd,
		DB:       0,
	})
	defer rdb.Close()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("connected to Redis")

	userRepo := repository.NewUserRepo(db)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	clock := quartz.NewReal()

	hub := ws.NewHub(logger)
	rooms := room.NewManager(cfg.Room(), hub, clock, logger)
	dir := matchmaking.NewRedisDirectory(rdb, cfg.DirectoryTTL)
	mm := matchmaking.NewService(rooms, dir, hub, clock, logger, cfg.Matchmaking())
	engine.NewEngine(hub, mm, logger)
	rooms.OnClose(recordResults(userRepo, logger))

	authHandler := handlers.NewAuthHandler(userRepo, jwtService, logger)
	roomHandler := handlers.NewRoomHandler(rooms, lobby{hub, mm})
	userHandler := handlers.NewUserHandler(userRepo)
	wsHandler := handlers.NewWSHandler(hub, jwtService, logger)

	r := mux.NewRouter()
	r.Use(corsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth.Middleware(jwtService))
	protected.HandleFunc("/user/profile", userHandler.Profile).Methods("GET", "OPTIONS")
	protected.HandleFunc("/rooms", roomHandler.ListRooms).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleUpgrade)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}).Methods("GET")

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.AppPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		mm.Run(ctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		rooms.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

type lobby struct {
	hub *ws.Hub
	mm  *matchmaking.Service
}

func (l lobby) Online() int  { return l.hub.Online() }
func (l lobby) Waiting() int { return l.mm.Waiting() }

// recordResults stores finished games. It runs off the room goroutine so a
// slow database does not hold the room open.
func recordResults(users *repository.UserRepo, logger *log.Logger) func(*room.Room, room.CloseReason) {
	logger = logger.WithPrefix("results")
	return func(r *room.Room, reason room.CloseReason) {
		if reason != room.ReasonGameOver {
			return
		}
		info := r.Info()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := users.RecordGame(ctx, info, championID(info)); err != nil {
				logger.Error("failed to record game", "room", info.ID, "error", err)
			}
		}()
	}
}

func championID(info models.RoomInfo) int64 {
	if info.Champion == nil {
		return 0
	}
	s := info.Seats[*info.Champion]
	if s.IsBot {
		return 0
	}
	return s.UserID
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
