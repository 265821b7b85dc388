package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xaenox/aura/internal/models"
)

const (
	MaxRecentActions   = 20
	MaxFrequentActions = 10
)

// ErrNotFound is returned by a Documents backend when no record exists.
var ErrNotFound = errors.New("memory not found")

// Storage is the per-user memory store used by the pipeline and the HTTP
// endpoints.
type Storage interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Memory, error)
	RecordAction(ctx context.Context, userID string, intent models.Intent, description, platform string) error
	UpdatePreference(ctx context.Context, userID, key, value string) error
	DeletePreference(ctx context.Context, userID, key string) error
	Clear(ctx context.Context, userID string) error
	Close() error
}

// Documents persists whole memory records keyed by user id.
type Documents interface {
	Load(ctx context.Context, userID string) (*models.Memory, error)
	Save(ctx context.Context, m *models.Memory) error
	Delete(ctx context.Context, userID string) error
	Close() error
}

// Store implements Storage as read-modify-write over a Documents backend.
// Concurrent writes for the same user are last-write-wins.
type Store struct {
	docs Documents
	now  func() time.Time
}

var _ Storage = (*Store)(nil)

func New(docs Documents) *Store {
	return &Store{docs: docs, now: time.Now}
}

func (s *Store) GetOrCreate(ctx context.Context, userID string) (*models.Memory, error) {
	m, err := s.docs.Load(ctx, userID)
	if err == nil {
		return normalize(m), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load memory: %w", err)
	}

	m = models.NewMemory(userID, s.now())
	if err := s.docs.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}
	return m, nil
}

func (s *Store) RecordAction(ctx context.Context, userID string, intent models.Intent, description, platform string) error {
	m, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now()
	record(m, models.ActionSummary{
		ID:          uuid.NewString(),
		Intent:      intent,
		Description: description,
		Timestamp:   now,
	}, platform)
	m.UpdatedAt = now

	if err := s.docs.Save(ctx, m); err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

func (s *Store) UpdatePreference(ctx context.Context, userID, key, value string) error {
	return s.mutate(ctx, userID, "update preference", func(m *models.Memory) {
		m.Preferences[key] = value
	})
}

func (s *Store) DeletePreference(ctx context.Context, userID, key string) error {
	return s.mutate(ctx, userID, "delete preference", func(m *models.Memory) {
		delete(m.Preferences, key)
	})
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.docs.Delete(ctx, userID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear memory: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.docs.Close()
}

func (s *Store) mutate(ctx context.Context, userID, op string, fn func(*models.Memory)) error {
	m, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	fn(m)
	m.UpdatedAt = s.now()
	if err := s.docs.Save(ctx, m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// record prepends a to the recent ring and bumps the (intent, platform)
// counter, keeping both lists within their caps.
func record(m *models.Memory, a models.ActionSummary, platform string) {
	m.RecentActions = append([]models.ActionSummary{a}, m.RecentActions...)
	if len(m.RecentActions) > MaxRecentActions {
		m.RecentActions = m.RecentActions[:MaxRecentActions]
	}

	found := false
	for i := range m.FrequentActions {
		if m.FrequentActions[i].Intent == a.Intent && m.FrequentActions[i].Platform == platform {
			m.FrequentActions[i].Count++
			found = true
			break
		}
	}
	if !found {
		m.FrequentActions = append(m.FrequentActions, models.ActionCount{Intent: a.Intent, Platform: platform, Count: 1})
	}

	sort.SliceStable(m.FrequentActions, func(i, j int) bool {
		return m.FrequentActions[i].Count > m.FrequentActions[j].Count
	})
	if len(m.FrequentActions) > MaxFrequentActions {
		m.FrequentActions = m.FrequentActions[:MaxFrequentActions]
	}
}

// normalize fills nil collections of a decoded record.
func normalize(m *models.Memory) *models.Memory {
	if m.Preferences == nil {
		m.Preferences = map[string]string{}
	}
	if m.RecentActions == nil {
		m.RecentActions = []models.ActionSummary{}
	}
	if m.FrequentActions == nil {
		m.FrequentActions = []models.ActionCount{}
	}
	return m
}

// SummarizeForContext renders a short plain-text digest of m for the
// completion service: up to five preferences (sorted by key), the three most
// frequent actions and the three most recent ones.
func SummarizeForContext(m *models.Memory) string {
	if m == nil {
		return ""
	}
	var parts []string

	if len(m.Preferences) > 0 {
		keys := make([]string, 0, len(m.Preferences))
		for k := range m.Preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 5 {
			keys = keys[:5]
		}
		parts = append(parts, "User preferences:")
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("- %s: %s", k, m.Preferences[k]))
		}
	}

	if len(m.FrequentActions) > 0 {
		parts = append(parts, "\nFrequently used actions:")
		for i, a := range m.FrequentActions {
			if i == 3 {
				break
			}
			if a.Platform != "" {
				parts = append(parts, fmt.Sprintf("- %s (%s): %d times", a.Intent, a.Platform, a.Count))
			} else {
				parts = append(parts, fmt.Sprintf("- %s: %d times", a.Intent, a.Count))
			}
		}
	}

	if len(m.RecentActions) > 0 {
		parts = append(parts, "\nRecent actions:")
		for i, a := range m.RecentActions {
			if i == 3 {
				break
			}
			parts = append(parts, "- "+a.Description)
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}
