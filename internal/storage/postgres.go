package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/xaenox/aura/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN prefers an explicit connection URL over the discrete fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// PostgresStorage stores one row per user with the collections as JSONB.
type PostgresStorage struct {
	db *sql.DB
}

var _ Documents = (*PostgresStorage)(nil)

func NewPostgresStorage(ctx context.Context, config DatabaseConfig) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema(ctx context.Context) error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) Load(ctx context.Context, userID string) (*models.Memory, error) {
	query := `
		SELECT user_id, preferences, recent_actions, frequent_actions, created_at, updated_at
		FROM aura_memory
		WHERE user_id = $1`

	var (
		m                       models.Memory
		prefs, recent, frequent []byte
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&m.UserID,
		&prefs,
		&recent,
		&frequent,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying memory: %w", err)
	}

	if err := json.Unmarshal(prefs, &m.Preferences); err != nil {
		return nil, fmt.Errorf("error decoding preferences: %w", err)
	}
	if err := json.Unmarshal(recent, &m.RecentActions); err != nil {
		return nil, fmt.Errorf("error decoding recent actions: %w", err)
	}
	if err := json.Unmarshal(frequent, &m.FrequentActions); err != nil {
		return nil, fmt.Errorf("error decoding frequent actions: %w", err)
	}

	return &m, nil
}

func (s *PostgresStorage) Save(ctx context.Context, m *models.Memory) error {
	m = normalize(m.Clone())

	prefs, err := json.Marshal(m.Preferences)
	if err != nil {
		return fmt.Errorf("error encoding preferences: %w", err)
	}
	recent, err := json.Marshal(m.RecentActions)
	if err != nil {
		return fmt.Errorf("error encoding recent actions: %w", err)
	}
	frequent, err := json.Marshal(m.FrequentActions)
	if err != nil {
		return fmt.Errorf("error encoding frequent actions: %w", err)
	}

	query := `
		INSERT INTO aura_memory (user_id, preferences, recent_actions, frequent_actions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET preferences = EXCLUDED.preferences,
			recent_actions = EXCLUDED.recent_actions,
			frequent_actions = EXCLUDED.frequent_actions,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		m.UserID,
		string(prefs),
		string(recent),
		string(frequent),
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving memory: %w", err)
	}

	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM aura_memory WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting memory: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
