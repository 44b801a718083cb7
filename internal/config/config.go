package config

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/game-playzui/bigtwo-server/internal/matchmaking"
	"github.com/game-playzui/bigtwo-server/internal/room"
)

// Config is read from flags, then the environment, then .env.
type Config struct {
	AppPort  int    `name:"port" env:"APP_PORT" default:"8700" help:"HTTP listen port."`
	LogLevel string `name:"log-level" env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level."`

	DBHost     string `name:"db-host" env:"DB_HOST" default:"localhost" help:"Postgres host."`
	DBPort     int    `name:"db-port" env:"DB_PORT" default:"5432" help:"Postgres port."`
	DBUser     string `name:"db-user" env:"DB_USER" default:"bigtwo" help:"Postgres user."`
	DBPassword string `name:"db-password" env:"DB_PASSWORD" default:"bigtwo_secret" help:"Postgres password."`
	DBName     string `name:"db-name" env:"DB_NAME" default:"bigtwo" help:"Postgres database."`
	DBSSLMode  string `name:"db-sslmode" env:"DB_SSLMODE" default:"disable" help:"Postgres sslmode."`

	RedisAddr    string        `name:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" help:"Redis address."`
	RedisPwd     string        `name:"redis-password" env:"REDIS_PASSWORD" help:"Redis password."`
	DirectoryTTL time.Duration `name:"directory-ttl" env:"DIRECTORY_TTL" default:"6h" help:"How long an idle user stays bound to a room; every lookup extends it."`

	JWTSecret string        `name:"jwt-secret" env:"JWT_SECRET" default:"dev-secret-key" help:"HMAC secret for tokens."`
	TokenTTL  time.Duration `name:"token-ttl" env:"TOKEN_TTL" default:"24h" help:"Token lifetime."`

	GracePeriod    time.Duration `name:"grace-period" env:"GRACE_PERIOD" default:"30s" help:"How long a disconnected seat is held."`
	BotThinkTime   time.Duration `name:"bot-think-time" env:"BOT_THINK_TIME" default:"1s" help:"Delay before an automated seat moves."`
	NextMatchDelay time.Duration `name:"next-match-delay" env:"NEXT_MATCH_DELAY" default:"5s" help:"Pause between matches."`
	MatchInterval  time.Duration `name:"match-interval" env:"MATCH_INTERVAL" default:"1s" help:"How often the wait list is grouped."`
	BotFillAfter   time.Duration `name:"bot-fill-after" env:"BOT_FILL_AFTER" default:"20s" help:"Wait before a partial group is filled with bots; 0 disables."`
}

// Load parses args (without the program name). A missing .env is not an
// error.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	parser, err := kong.New(&cfg,
		kong.Name("bigtwo-server"),
		kong.Description("Big Two game server"),
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for name, d := range map[string]time.Duration{
		"grace-period":     c.GracePeriod,
		"bot-think-time":   c.BotThinkTime,
		"next-match-delay": c.NextMatchDelay,
		"bot-fill-after":   c.BotFillAfter,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.MatchInterval <= 0 {
		return fmt.Errorf("match-interval must be positive")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func (c *Config) Room() room.Config {
	return room.Config{
		GracePeriod:    c.GracePeriod,
		BotThinkTime:   c.BotThinkTime,
		NextMatchDelay: c.NextMatchDelay,
	}
}

func (c *Config) Matchmaking() matchmaking.Config {
	return matchmaking.Config{
		Interval:     c.MatchInterval,
		BotFillAfter: c.BotFillAfter,
	}
}
