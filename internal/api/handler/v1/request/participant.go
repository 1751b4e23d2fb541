package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/callin-contest-api/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListParticipantsQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Winners  *bool  `form:"winners"`
	IsFamily *bool  `form:"is_family"`
	Status   string `form:"status"`
	Search   string `form:"search"`
}

func (q *ListParticipantsQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.Page, validation.Min(0)),
		validation.Field(&q.PageSize, validation.Min(0), validation.Max(maxPageSize)),
		validation.Field(&q.Status, validation.In(statuses...)),
		validation.Field(&q.Search, validation.Length(0, 64)),
	)
}

func (q *ListParticipantsQuery) Filter() (domain.ParticipantFilter, domain.Page) {
	page := domain.Page{Number: q.Page, Size: q.PageSize}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size == 0 {
		page.Size = defaultPageSize
	}

	return domain.ParticipantFilter{
		Winners:  q.Winners,
		IsFamily: q.IsFamily,
		Status:   domain.Status(q.Status),
		Search:   q.Search,
	}, page
}

// UpdateParticipantRequest is a partial update; absent fields are left alone.
type UpdateParticipantRequest struct {
	DisplayName   *string `json:"display_name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Status        *string `json:"status,omitempty"`
	SourceAddress *string `json:"source_address,omitempty"`
	IsFamily      *bool   `json:"is_family,omitempty"`
	IsWinner      *bool   `json:"is_winner,omitempty"`
	IsSelected    *bool   `json:"is_selected,omitempty"`
}

func (req *UpdateParticipantRequest) Normalize() {
	if req.Phone != nil {
		phone := NormalizeDigits(*req.Phone)
		req.Phone = &phone
	}
}

func (req *UpdateParticipantRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DisplayName, validation.Length(2, 255)),
		validation.Field(&req.Phone, isPhone),
		validation.Field(&req.Status, validation.In(statuses...)),
		validation.Field(&req.SourceAddress, validation.Length(0, 64)),
	)
}

func (req *UpdateParticipantRequest) Changes() domain.ParticipantChanges {
	changes := domain.ParticipantChanges{
		DisplayName:   req.DisplayName,
		Phone:         req.Phone,
		SourceAddress: req.SourceAddress,
		IsFamily:      req.IsFamily,
		IsWinner:      req.IsWinner,
		IsSelected:    req.IsSelected,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		changes.Status = &status
	}

	return changes
}

type VerifyIdentifierRequest struct {
	Identifier string `json:"identifier"`
}

func (req *VerifyIdentifierRequest) Normalize() {
	req.Identifier = NormalizeDigits(req.Identifier)
}

func (req *VerifyIdentifierRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Identifier, validation.Required, isIdentifier),
	)
}
