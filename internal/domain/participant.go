package domain

import (
	"time"

	"github.com/vietanh2810/callin-contest-api/internal/pkg/identity"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}

type Participant struct {
	ID             string     `json:"id"`
	Identifier     string     `json:"-"`
	IdentifierHash string     `json:"-"`
	DisplayName    string     `json:"display_name"`
	Phone          string     `json:"phone"`
	IsFamily       bool       `json:"is_family"`
	HitCount       int64      `json:"hit_count"`
	IsWinner       bool       `json:"is_winner"`
	IsSelected     bool       `json:"is_selected"`
	Status         Status     `json:"status"`
	SourceAddress  string     `json:"-"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	WonAt          *time.Time `json:"won_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (p Participant) MaskedIdentifier() string {
	return identity.Mask(p.Identifier)
}

// Eligible reports whether the participant can still be drawn. Status is
// deliberately not part of the rule.
func (p Participant) Eligible() bool {
	return !p.IsWinner && p.Identifier != ""
}

type ParticipantFilter struct {
	Winners  *bool
	IsFamily *bool
	Status   Status
	Search   string
}

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

type ParticipantStats struct {
	Participants int64 `json:"participants"`
	Eligible     int64 `json:"eligible"`
	Winners      int64 `json:"winners"`
	Family       int64 `json:"family"`
	TotalHits    int64 `json:"total_hits"`
}
