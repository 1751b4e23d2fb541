package domain

import (
	"errors"
	"fmt"
)

var ErrUnauthorizedFieldWrite = errors.New("unauthorized field write")

type Field string

const (
	FieldDisplayName   Field = "display_name"
	FieldPhone         Field = "phone"
	FieldStatus        Field = "status"
	FieldSourceAddress Field = "source_address"
	FieldIsFamily      Field = "is_family"
	FieldIsWinner      Field = "is_winner"
	FieldIsSelected    Field = "is_selected"
)

type Allowlist map[Field]struct{}

func NewAllowlist(fields ...Field) Allowlist {
	a := make(Allowlist, len(fields))
	for _, f := range fields {
		a[f] = struct{}{}
	}
	return a
}

func (a Allowlist) Allows(f Field) bool {
	_, ok := a[f]
	return ok
}

var (
	// PublicFields is what the registration flow may write. IsFamily is
	// fixed at creation, so it is allowed here and nowhere else.
	PublicFields = NewAllowlist(FieldDisplayName, FieldPhone, FieldStatus, FieldSourceAddress, FieldIsFamily)

	AdminFields = NewAllowlist(FieldDisplayName, FieldPhone, FieldStatus, FieldSourceAddress,
		FieldIsWinner, FieldIsSelected)
)

// ParticipantChanges holds the fields a caller wants to write; nil means
// untouched. IsFamily is only applied when the participant is created.
type ParticipantChanges struct {
	DisplayName   *string
	Phone         *string
	Status        *Status
	SourceAddress *string
	IsFamily      *bool
	IsWinner      *bool
	IsSelected    *bool
}

func (c ParticipantChanges) Fields() []Field {
	var fields []Field
	if c.DisplayName != nil {
		fields = append(fields, FieldDisplayName)
	}
	if c.Phone != nil {
		fields = append(fields, FieldPhone)
	}
	if c.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if c.SourceAddress != nil {
		fields = append(fields, FieldSourceAddress)
	}
	if c.IsFamily != nil {
		fields = append(fields, FieldIsFamily)
	}
	if c.IsWinner != nil {
		fields = append(fields, FieldIsWinner)
	}
	if c.IsSelected != nil {
		fields = append(fields, FieldIsSelected)
	}
	return fields
}

// Authorize rejects the whole change set if any field is outside allow.
func (c ParticipantChanges) Authorize(allow Allowlist) error {
	for _, f := range c.Fields() {
		if !allow.Allows(f) {
			return fmt.Errorf("%w: %s", ErrUnauthorizedFieldWrite, f)
		}
	}

	if c.Status != nil && !c.Status.Valid() {
		return fmt.Errorf("invalid status %q", *c.Status)
	}

	return nil
}

func (c ParticipantChanges) Empty() bool {
	return len(c.Fields()) == 0
}
