package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentalmate/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Sentinel errors surfaced to the service layer.
var (
	ErrNotFound         = errors.New("not found")
	ErrNoRoomsAvailable = errors.New("no rooms available for room type")
	ErrDuplicateOrder   = errors.New("booking already exists for payment order")
	ErrStatusConflict   = errors.New("booking status changed concurrently")
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection, used by the readiness endpoint
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetPG retrieves a listing by ID
func (s *Store) GetPG(ctx context.Context, id int64) (*models.PG, error) {
	var pg models.PG
	err := s.db.GetContext(ctx, &pg, "SELECT * FROM pgs WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pg %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &pg, nil
}

// GetRoomType retrieves one inventory row for a listing and room category
func (s *Store) GetRoomType(ctx context.Context, pgID int64, roomType string) (*models.RoomType, error) {
	var rt models.RoomType
	err := s.db.GetContext(ctx, &rt,
		"SELECT * FROM room_types WHERE pg_id = $1 AND type = $2", pgID, roomType)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("room type %s for pg %d: %w", roomType, pgID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
