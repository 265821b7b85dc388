package models

import "time"

// Memory is the per-user personalisation record.
type Memory struct {
	UserID          string            `json:"userId"`
	Preferences     map[string]string `json:"preferences"`
	RecentActions   []ActionSummary   `json:"recentActions"`
	FrequentActions []ActionCount     `json:"frequentActions"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ActionSummary is one entry of the recent-actions ring, newest first.
type ActionSummary struct {
	ID          string    `json:"id"`
	Intent      Intent    `json:"intent"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ActionCount counts how often an (intent, platform) pair was executed.
type ActionCount struct {
	Intent   Intent `json:"intent"`
	Platform string `json:"platform,omitempty"`
	Count    int    `json:"count"`
}

// NewMemory returns an empty record for userID.
func NewMemory(userID string, now time.Time) *Memory {
	return &Memory{
		UserID:          userID,
		Preferences:     map[string]string{},
		RecentActions:   []ActionSummary{},
		FrequentActions: []ActionCount{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	out := *m
	out.Preferences = make(map[string]string, len(m.Preferences))
	for k, v := range m.Preferences {
		out.Preferences[k] = v
	}
	out.RecentActions = append([]ActionSummary{}, m.RecentActions...)
	out.FrequentActions = append([]ActionCount{}, m.FrequentActions...)
	return &out
}
