package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/game-playzui/bigtwo-server/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, password_hash, games_played, games_won, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.GamesPlayed, &user.GamesWon, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING `+userColumns,
		username, passwordHash,
	))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return nil, ErrUsernameTaken
	}
	return user, err
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	))
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
}

// RecordGame stores a finished game and bumps the human players' tallies.
// championID is 0 when an automated seat won.
func (r *UserRepo) RecordGame(ctx context.Context, info models.RoomInfo, championID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	scores := make([]int64, 0, len(info.Seats))
	humans := make([]int64, 0, len(info.Seats))
	for _, s := range info.Seats {
		scores = append(scores, int64(s.Score))
		if !s.IsBot {
			humans = append(humans, s.UserID)
		}
	}

	var champion sql.NullInt64
	if championID > 0 {
		champion = sql.NullInt64{Int64: championID, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_results (room_id, room_name, matches, champion_id, scores)
		 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (room_id) DO NOTHING`,
		info.ID, info.Name, info.MatchNumber, champion, pq.Array(scores),
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET games_played = games_played + 1,
		        games_won = games_won + CASE WHEN id = $2 THEN 1 ELSE 0 END
		 WHERE id = ANY($1)`,
		pq.Array(humans), championID,
	); err != nil {
		return err
	}
	return tx.Commit()
}
