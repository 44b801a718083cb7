package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	GamesPlayed  int       `json:"games_played"`
	GamesWon     int       `json:"games_won"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserProfile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	GamesPlayed int    `json:"games_played"`
	GamesWon    int    `json:"games_won"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		GamesPlayed: u.GamesPlayed,
		GamesWon:    u.GamesWon,
	}
}
