package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"relayhub/internal/app/db"
)

const (
	addTimeSQL = `
INSERT INTO time_logs (user_id, domain, date, duration_ms)
VALUES ($1, $2, $3::date, $4)
ON CONFLICT (user_id, domain, date)
DO UPDATE SET duration_ms = time_logs.duration_ms + EXCLUDED.duration_ms`

	timeLogsSQL = `
SELECT user_id, domain, to_char(date, 'YYYY-MM-DD'), duration_ms
FROM time_logs
WHERE user_id = $1 AND ($2::text IS NULL OR date = $2::date)
ORDER BY date, domain`

	classificationsSQL = `
SELECT domain, type
FROM site_classifications
WHERE user_id = $1
ORDER BY domain`

	setClassificationSQL = `
INSERT INTO site_classifications (user_id, domain, type)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, domain)
DO UPDATE SET type = EXCLUDED.type`

	removeClassificationSQL = `
DELETE FROM site_classifications WHERE user_id = $1 AND domain = $2`

	createUserSQL = `
INSERT INTO users (id, username, password_hash)
VALUES ($1, $2, $3)`

	userByUsernameSQL = `
SELECT id, username, password_hash FROM users WHERE username = $1`
)

// PostgresStore is a Store backed by the tables of the db migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a store using pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) AddTime(ctx context.Context, log TimeLog) error {
	if _, err := s.pool.Exec(ctx, addTimeSQL, log.UserID, log.Domain, log.Date, log.DurationMs); err != nil {
		return fmt.Errorf("failed to upsert time log: %w", err)
	}
	return nil
}

func (s *PostgresStore) TimeLogs(ctx context.Context, userID, date string) ([]TimeLog, error) {
	dateParam := pgtype.Text{String: date, Valid: date != ""}

	rows, err := s.pool.Query(ctx, timeLogsSQL, userID, dateParam)
	if err != nil {
		return nil, fmt.Errorf("failed to query time logs: %w", err)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TimeLog, error) {
		var l TimeLog
		err := row.Scan(&l.UserID, &l.Domain, &l.Date, &l.DurationMs)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan time logs: %w", err)
	}

	return logs, nil
}

func (s *PostgresStore) Classifications(ctx context.Context, userID string) ([]Classification, error) {
	rows, err := s.pool.Query(ctx, classificationsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Classification, error) {
		c := Classification{UserID: userID}
		err := row.Scan(&c.Domain, &c.Type)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan classifications: %w", err)
	}

	return list, nil
}

func (s *PostgresStore) SetClassification(ctx context.Context, c Classification) error {
	if _, err := s.pool.Exec(ctx, setClassificationSQL, c.UserID, c.Domain, string(c.Type)); err != nil {
		return fmt.Errorf("failed to upsert classification: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveClassification(ctx context.Context, userID, domain string) error {
	tag, err := s.pool.Exec(ctx, removeClassificationSQL, userID, domain)
	if err != nil {
		return fmt.Errorf("failed to delete classification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	u := User{ID: uuid.NewString(), Username: username, PasswordHash: passwordHash}

	if _, err := s.pool.Exec(ctx, createUserSQL, u.ID, u.Username, u.PasswordHash); err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *PostgresStore) UserByUsername(ctx context.Context, username string) (User, error) {
	var (
		u  User
		id pgtype.UUID
	)

	err := s.pool.QueryRow(ctx, userByUsernameSQL, username).Scan(&id, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	u.ID = id.String()
	return u, nil
}
