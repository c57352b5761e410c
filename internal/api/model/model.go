package model

import (
	"database/sql"
	"time"
)

type Job struct {
	UserID       string         `db:"user_id"`
	ID           string         `db:"id"`
	URL          string         `db:"url"`
	Title        sql.NullString `db:"title"`
	Status       string         `db:"status"`
	AudioKey     sql.NullString `db:"audio_key"`
	ErrorMessage sql.NullString `db:"error_message"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}
