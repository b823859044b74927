// Package sqlite implements the credential/room store over a single SQLite
// file using the pure-Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/core"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rooms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	is_private BOOLEAN NOT NULL DEFAULT FALSE,
	password_hash TEXT
);
`

// Store persists users and rooms. User passwords are stored as bcrypt
// hashes; room passwords keep the plain SHA-256 digest the registry
// compares against at join time.
type Store struct {
	db *sql.DB
}

var _ core.Store = (*Store)(nil)

// Open opens the database file and creates the schema if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Info().Str("module", "adapters.sqlite").Str("path", path).Msg("store opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RegisterUser(ctx context.Context, username, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)", username, string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert user: %w", err)
	}
	return true, nil
}

func (s *Store) AuthenticateUser(ctx context.Context, username, password string) (bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		"SELECT password_hash FROM users WHERE username = ?", username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

func (s *Store) CreateRoom(ctx context.Context, name domain.RoomName, password string) (bool, error) {
	private := password != ""
	var hash sql.NullString
	if private {
		hash = sql.NullString{String: domain.DigestPassword(password), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rooms (name, is_private, password_hash) VALUES (?, ?, ?)", string(name), private, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert room: %w", err)
	}
	return true, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, is_private FROM rooms ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.Name, &room.Private); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return out, nil
}

func (s *Store) GetRoomDetails(ctx context.Context, name domain.RoomName) (*core.RoomRecord, error) {
	var (
		rec  core.RoomRecord
		hash sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT name, is_private, password_hash FROM rooms WHERE name = ?", string(name)).
		Scan(&rec.Name, &rec.Private, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup room: %w", err)
	}
	rec.PasswordHash = hash.String
	return &rec, nil
}

// isUniqueViolation detects the driver's UNIQUE constraint error so racing
// inserts of the same name resolve to a duplicate rejection, not a failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
