package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/callin-contest-api/internal/domain"
)

var statuses = []interface{}{
	string(domain.StatusActive),
	string(domain.StatusInactive),
	string(domain.StatusBlocked),
}

// RegisterRequest binds every participant field a client may send.
// Privileged fields are kept so the write can be refused as a whole.
type RegisterRequest struct {
	Identifier  string  `json:"identifier"`
	DisplayName string  `json:"display_name"`
	Phone       string  `json:"phone"`
	IsFamily    bool    `json:"is_family"`
	Status      *string `json:"status,omitempty"`
	IsWinner    *bool   `json:"is_winner,omitempty"`
	IsSelected  *bool   `json:"is_selected,omitempty"`
}

func (req *RegisterRequest) Normalize() {
	req.Identifier = NormalizeDigits(req.Identifier)
	req.Phone = NormalizeDigits(req.Phone)
}

func (req *RegisterRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Identifier, validation.Required, isIdentifier),
		validation.Field(&req.DisplayName, validation.Required, validation.Length(2, 255)),
		validation.Field(&req.Phone, isPhone),
		validation.Field(&req.Status, validation.In(statuses...)),
	)
}

func (req *RegisterRequest) Changes() domain.ParticipantChanges {
	isFamily := req.IsFamily
	changes := domain.ParticipantChanges{
		DisplayName: &req.DisplayName,
		IsFamily:    &isFamily,
		IsWinner:    req.IsWinner,
		IsSelected:  req.IsSelected,
	}
	if req.Phone != "" {
		changes.Phone = &req.Phone
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		changes.Status = &status
	}

	return changes
}
