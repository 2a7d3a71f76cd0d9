package shared

import (
	"time"
)

// Timestamps provides creation and modification times for entities.
// Identifier fields are declared on each entity since their types differ.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetCreatedAt returns the creation timestamp
func (t *Timestamps) GetCreatedAt() time.Time {
	return t.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (t *Timestamps) GetUpdatedAt() time.Time {
	return t.UpdatedAt
}

// Touch sets the update timestamp to now
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now()
}

// NewTimestamps returns timestamps set to now
func NewTimestamps() Timestamps {
	now := time.Now()
	return Timestamps{
		CreatedAt: now,
		UpdatedAt: now,
	}
}
