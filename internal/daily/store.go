package daily

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Result is one player's solve of the daily idiom.
type Result struct {
	UserID     string `json:"userId"`
	Date       string `json:"date"`
	IdiomIndex int    `json:"idiomIndex"`
	Guesses    int    `json:"guesses"`
	ElapsedMs  int    `json:"elapsedMs"`
}

// LBRow is a leaderboard entry.
type LBRow struct {
	UserID    string `json:"userId"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	q, args, err := sqlBuilder.Select("COUNT(1)").From("daily_results").
		Where(squirrel.Eq{"user_id": userID, "date": date}).ToSql()
	if err != nil {
		return false, err
	}
	var cnt int
	err = s.db.QueryRowContext(ctx, q, args...).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r; a second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	q, args, err := sqlBuilder.Insert("daily_results").
		Options("OR IGNORE").
		Columns("user_id", "date", "idiom_index", "guesses", "elapsed_ms").
		Values(r.UserID, r.Date, r.IdiomIndex, r.Guesses, r.ElapsedMs).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

// Leaderboard returns the fastest solves for date (fewest guesses breaks ties).
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	q, args, err := sqlBuilder.Select("user_id", "guesses", "elapsed_ms").
		From("daily_results").
		Where(squirrel.Eq{"date": date}).
		OrderBy("elapsed_ms ASC", "guesses ASC", "created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
