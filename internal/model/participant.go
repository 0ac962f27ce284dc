package model

import (
	"strings"
	"time"
)

// ParticipantID uniquely identifies a study participant
type ParticipantID int64

// DateLayout is the wire format for dates of birth (HTML date inputs use it too)
const DateLayout = "2006-01-02"

// Field limits mirrored by the relational schema
const (
	MaxParticipantNameLen = 100
	MaxGenderLen          = 10
	MaxPathologyLen       = 100
)

// Participant is a study subject about whom videos are recorded
type Participant struct {
	ID          ParticipantID
	Name        string
	DateOfBirth time.Time // date only, UTC midnight
	Gender      string
	Pathology   string // optional free-text condition label
	CreatedAt   time.Time
	CreatedBy   UserID
}

// ParticipantSummary is a participant annotated for listings
type ParticipantSummary struct {
	Participant
	VideoCount  int
	CreatorName string // empty if the creator no longer exists
}

// ParticipantFilter narrows a participant listing
type ParticipantFilter struct {
	// Search keeps participants whose name contains it, case-insensitively
	Search string
	// OrderByName sorts by lowercased name instead of id
	OrderByName bool
}

// Matches reports whether the participant name satisfies the search filter
func (f ParticipantFilter) Matches(name string) bool {
	if f.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(f.Search))
}

// ParseDateOfBirth parses a YYYY-MM-DD calendar date
func ParseDateOfBirth(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
