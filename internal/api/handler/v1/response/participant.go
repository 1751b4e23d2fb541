package response

import (
	"time"

	"github.com/vietanh2810/callin-contest-api/internal/domain"
)

// Participant never carries the raw identifier.
type Participant struct {
	ID               string        `json:"id"`
	MaskedIdentifier string        `json:"masked_identifier"`
	DisplayName      string        `json:"display_name"`
	Phone            string        `json:"phone"`
	IsFamily         bool          `json:"is_family"`
	HitCount         int64         `json:"hit_count"`
	IsWinner         bool          `json:"is_winner"`
	IsSelected       bool          `json:"is_selected"`
	Status           domain.Status `json:"status"`
	LastActivityAt   *time.Time    `json:"last_activity_at,omitempty"`
	WonAt            *time.Time    `json:"won_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ParticipantDetail is the administrative edit view.
type ParticipantDetail struct {
	Participant
	Identifier    string `json:"identifier"`
	SourceAddress string `json:"source_address"`
}

func NewParticipant(p domain.Participant) Participant {
	return Participant{
		ID:               p.ID,
		MaskedIdentifier: p.MaskedIdentifier(),
		DisplayName:      p.DisplayName,
		Phone:            p.Phone,
		IsFamily:         p.IsFamily,
		HitCount:         p.HitCount,
		IsWinner:         p.IsWinner,
		IsSelected:       p.IsSelected,
		Status:           p.Status,
		LastActivityAt:   p.LastActivityAt,
		WonAt:            p.WonAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func NewParticipantDetail(p domain.Participant) ParticipantDetail {
	return ParticipantDetail{
		Participant:   NewParticipant(p),
		Identifier:    p.Identifier,
		SourceAddress: p.SourceAddress,
	}
}

type ParticipantList struct {
	Items    []Participant `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type Registration struct {
	Outcome          string `json:"outcome"`
	Created          bool   `json:"created"`
	ParticipantID    string `json:"participant_id"`
	MaskedIdentifier string `json:"masked_identifier"`
	DisplayName      string `json:"display_name"`
	HitCount         int64  `json:"hit_count"`
}

type Draw struct {
	Found   bool         `json:"found"`
	Message string       `json:"message,omitempty"`
	Winner  *Participant `json:"winner,omitempty"`
}

type VerifyIdentifier struct {
	Match bool `json:"match"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	Admin domain.Admin `json:"admin"`
}
