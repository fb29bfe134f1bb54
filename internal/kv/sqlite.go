package kv

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// sqliteStore keeps values in the kv_entries table (see internal/db/sql).
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a Store backed by db. The schema must already be migrated.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	q, args, err := sqlBuilder.Select("value").From("kv_entries").Where(squirrel.Eq{"name": key}).ToSql()
	if err != nil {
		return nil, err
	}
	var v string
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("key", key).Msg("kv get")
		return nil, err
	}
	return []byte(v), nil
}

func (s *sqliteStore) Set(ctx context.Context, key string, value []byte) error {
	q, args, err := sqlBuilder.Insert("kv_entries").
		Columns("name", "value", "updated_at").
		Values(key, string(value), time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		log.Error().Err(err).Str("key", key).Msg("kv set")
		return err
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	q, args, err := sqlBuilder.Delete("kv_entries").Where(squirrel.Eq{"name": key}).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}
