package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	cone "Taper/internal/calc/cone"
	"Taper/internal/geometry"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Calculation is a solved cone saved by a user.
type Calculation struct {
	ID        int               `json:"id"`
	UserID    int               `json:"-"`
	Input     cone.Input        `json:"input"`
	Result    geometry.Solution `json:"result"`
	Solved    string            `json:"solved"`
	CreatedAt time.Time         `json:"created_at"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	// GetByLogin returns id 0 and no error when the login is unknown.
	GetByLogin(ctx context.Context, login string) (int, string, error)
	SaveCalculation(ctx context.Context, c Calculation) (int, error)
	// ListCalculations returns the user's calculations, newest first.
	ListCalculations(ctx context.Context, userID int) ([]Calculation, error)
	GetCalculation(ctx context.Context, userID, id int) (Calculation, error)
}

// Open connects to postgres, defaulting to sslmode=require when the URL does not say.
func Open(connStr string) (*sql.DB, error) {
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr = connStr + sep + "sslmode=require"
		} else {
			connStr = connStr + " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	login TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS calculations (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	solved TEXT NOT NULL,
	input JSONB NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS calculations_user_idx ON calculations (user_id, created_at DESC);
`

// Migrate creates the tables when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return 0, fmt.Errorf("user %q: %w", login, ErrDuplicate)
	}
	return id, err
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresRepository) SaveCalculation(ctx context.Context, c Calculation) (int, error) {
	in, err := json.Marshal(c.Input)
	if err != nil {
		return 0, err
	}
	res, err := json.Marshal(c.Result)
	if err != nil {
		return 0, err
	}
	var id int
	query := "INSERT INTO calculations (user_id, solved, input, result) VALUES ($1, $2, $3, $4) RETURNING id"
	err = r.db.QueryRowContext(ctx, query, c.UserID, c.Solved, in, res).Scan(&id)
	return id, err
}

func (r *PostgresRepository) ListCalculations(ctx context.Context, userID int) ([]Calculation, error) {
	query := "SELECT id, user_id, solved, input, result, created_at FROM calculations WHERE user_id=$1 ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Calculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetCalculation(ctx context.Context, userID, id int) (Calculation, error) {
	query := "SELECT id, user_id, solved, input, result, created_at FROM calculations WHERE user_id=$1 AND id=$2"
	c, err := scanCalculation(r.db.QueryRowContext(ctx, query, userID, id))
	if err == sql.ErrNoRows {
		return Calculation{}, ErrNotFound
	}
	return c, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalculation(s scanner) (Calculation, error) {
	var (
		c       Calculation
		in, res []byte
	)
	if err := s.Scan(&c.ID, &c.UserID, &c.Solved, &in, &res, &c.CreatedAt); err != nil {
		return Calculation{}, err
	}
	if err := json.Unmarshal(in, &c.Input); err != nil {
		return Calculation{}, err
	}
	if err := json.Unmarshal(res, &c.Result); err != nil {
		return Calculation{}, err
	}
	return c, nil
}
