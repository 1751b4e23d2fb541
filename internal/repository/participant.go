package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/repository/dao"
)

var (
	ErrParticipantNotFound    = dao.ErrParticipantNotFound
	ErrIdentifierExists       = dao.ErrIdentifierExists
	ErrStoreUnavailable       = dao.ErrStoreUnavailable
	ErrUnauthorizedFieldWrite = domain.ErrUnauthorizedFieldWrite
)

// A create that loses the race on the unique identifier is retried as an
// update; a second loss would mean the row vanished in between.
const maxUpsertAttempts = 3

type ParticipantDAO interface {
	Insert(ctx context.Context, participant dao.Participant) (dao.Participant, error)
	FindByID(ctx context.Context, id string) (dao.Participant, error)
	FindByIdentifier(ctx context.Context, identifier string) (dao.Participant, error)
	Update(ctx context.Context, id string, columns map[string]interface{}) (dao.Participant, error)
	IncrementHits(ctx context.Context, id string, at time.Time) (int64, error)
	CountEligible(ctx context.Context) (int64, error)
	FindEligibleAt(ctx context.Context, offset int) (dao.Participant, error)
	FindEligible(ctx context.Context) ([]dao.Participant, error)
	PromoteWinner(ctx context.Context, id string, at time.Time) (bool, error)
	Find(ctx context.Context, q dao.ParticipantQuery) ([]dao.Participant, int64, error)
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (dao.ParticipantCounts, error)
}

type IdentifierHasher interface {
	Hash(plaintext string) (string, error)
}

type ParticipantRepository struct {
	dao    ParticipantDAO
	hasher IdentifierHasher
	now    func() time.Time
}

func NewParticipantRepository(dao ParticipantDAO, hasher IdentifierHasher) *ParticipantRepository {
	return &ParticipantRepository{
		dao:    dao,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// UpsertByIdentifier creates the participant or applies changes to the
// existing one. The allowlist is checked before anything is read or written.
func (r *ParticipantRepository) UpsertByIdentifier(ctx context.Context, identifier string, changes domain.ParticipantChanges, allow domain.Allowlist) (domain.Participant, bool, error) {
	if err := changes.Authorize(allow); err != nil {
		return domain.Participant{}, false, err
	}

	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		found, err := r.dao.FindByIdentifier(ctx, identifier)
		if err == nil {
			updated, err := r.apply(ctx, found, changes)
			if err != nil {
				return domain.Participant{}, false, err
			}

			return r.daoToDomain(updated), false, nil
		}
		if !errors.Is(err, dao.ErrParticipantNotFound) {
			return domain.Participant{}, false, fmt.Errorf("r.dao.FindByIdentifier -> %w", err)
		}

		created, err := r.create(ctx, identifier, changes)
		if errors.Is(err, dao.ErrIdentifierExists) {
			continue
		}
		if err != nil {
			return domain.Participant{}, false, err
		}

		return r.daoToDomain(created), true, nil
	}

	return domain.Participant{}, false, fmt.Errorf("r.UpsertByIdentifier -> %w", ErrIdentifierExists)
}

func (r *ParticipantRepository) create(ctx context.Context, identifier string, changes domain.ParticipantChanges) (dao.Participant, error) {
	hash, err := r.hasher.Hash(identifier)
	if err != nil {
		return dao.Participant{}, fmt.Errorf("r.hasher.Hash -> %w", err)
	}

	p := dao.Participant{
		Identifier:     identifier,
		IdentifierHash: hash,
		Status:         string(domain.StatusActive),
	}
	if changes.DisplayName != nil {
		p.DisplayName = *changes.DisplayName
	}
	if changes.Phone != nil {
		p.Phone = *changes.Phone
	}
	if changes.Status != nil {
		p.Status = string(*changes.Status)
	}
	if changes.SourceAddress != nil {
		p.SourceAddress = *changes.SourceAddress
	}
	if changes.IsFamily != nil {
		p.IsFamily = *changes.IsFamily
	}
	if changes.IsSelected != nil {
		p.IsSelected = *changes.IsSelected
	}
	if changes.IsWinner != nil && *changes.IsWinner {
		wonAt := r.now()
		p.IsWinner = true
		p.WonAt = &wonAt
	}

	created, err := r.dao.Insert(ctx, p)
	if err != nil {
		return dao.Participant{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return created, nil
}

func (r *ParticipantRepository) apply(ctx context.Context, existing dao.Participant, changes domain.ParticipantChanges) (dao.Participant, error) {
	columns := r.changesToColumns(changes)
	if len(columns) == 0 {
		return existing, nil
	}

	updated, err := r.dao.Update(ctx, existing.ID, columns)
	if err != nil {
		return dao.Participant{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return updated, nil
}

// changesToColumns never includes is_family, which only applies on create.
func (r *ParticipantRepository) changesToColumns(changes domain.ParticipantChanges) map[string]interface{} {
	columns := make(map[string]interface{})
	if changes.DisplayName != nil {
		columns["display_name"] = *changes.DisplayName
	}
	if changes.Phone != nil {
		columns["phone"] = *changes.Phone
	}
	if changes.Status != nil {
		columns["status"] = string(*changes.Status)
	}
	if changes.SourceAddress != nil {
		columns["source_address"] = *changes.SourceAddress
	}
	if changes.IsSelected != nil {
		columns["is_selected"] = *changes.IsSelected
	}
	if changes.IsWinner != nil {
		columns["is_winner"] = *changes.IsWinner
		if *changes.IsWinner {
			columns["won_at"] = r.now()
		} else {
			columns["won_at"] = nil
		}
	}
	return columns
}

func (r *ParticipantRepository) IncrementHits(ctx context.Context, id string) (int64, error) {
	hits, err := r.dao.IncrementHits(ctx, id, r.now())
	if err != nil {
		return 0, fmt.Errorf("r.dao.IncrementHits -> %w", err)
	}

	return hits, nil
}

func (r *ParticipantRepository) FindByID(ctx context.Context, id string) (domain.Participant, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipantRepository) FindByIdentifier(ctx context.Context, identifier string) (domain.Participant, error) {
	found, err := r.dao.FindByIdentifier(ctx, identifier)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByIdentifier -> %w", err)
	}

	return r.daoToDomain(found), nil
}

// Update is the administrative edit path.
func (r *ParticipantRepository) Update(ctx context.Context, id string, changes domain.ParticipantChanges, allow domain.Allowlist) (domain.Participant, error) {
	if err := changes.Authorize(allow); err != nil {
		return domain.Participant{}, err
	}

	existing, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	updated, err := r.apply(ctx, existing, changes)
	if err != nil {
		return domain.Participant{}, err
	}

	return r.daoToDomain(updated), nil
}

func (r *ParticipantRepository) CountEligible(ctx context.Context) (int64, error) {
	count, err := r.dao.CountEligible(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountEligible -> %w", err)
	}

	return count, nil
}

func (r *ParticipantRepository) FindEligibleAt(ctx context.Context, offset int) (domain.Participant, error) {
	found, err := r.dao.FindEligibleAt(ctx, offset)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindEligibleAt -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipantRepository) ListEligible(ctx context.Context) ([]domain.Participant, error) {
	found, err := r.dao.FindEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindEligible -> %w", err)
	}

	participants := make([]domain.Participant, len(found))
	for i, p := range found {
		participants[i] = r.daoToDomain(p)
	}

	return participants, nil
}

// PromoteWinner marks candidate as winner if nobody else has. On success the
// returned participant carries the values that were written, so callers do
// not need to read the row back.
func (r *ParticipantRepository) PromoteWinner(ctx context.Context, candidate domain.Participant) (domain.Participant, bool, error) {
	at := r.now()
	promoted, err := r.dao.PromoteWinner(ctx, candidate.ID, at)
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("r.dao.PromoteWinner -> %w", err)
	}
	if !promoted {
		return domain.Participant{}, false, nil
	}

	candidate.IsWinner = true
	candidate.WonAt = &at
	candidate.UpdatedAt = at

	return candidate, true, nil
}

func (r *ParticipantRepository) List(ctx context.Context, filter domain.ParticipantFilter, page domain.Page) ([]domain.Participant, int64, error) {
	found, total, err := r.dao.Find(ctx, dao.ParticipantQuery{
		Winners:  filter.Winners,
		IsFamily: filter.IsFamily,
		Status:   string(filter.Status),
		Search:   filter.Search,
		Offset:   page.Offset(),
		Limit:    page.Size,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Find -> %w", err)
	}

	participants := make([]domain.Participant, len(found))
	for i, p := range found {
		participants[i] = r.daoToDomain(p)
	}

	return participants, total, nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *ParticipantRepository) Stats(ctx context.Context) (domain.ParticipantStats, error) {
	counts, err := r.dao.Counts(ctx)
	if err != nil {
		return domain.ParticipantStats{}, fmt.Errorf("r.dao.Counts -> %w", err)
	}

	return domain.ParticipantStats{
		Participants: counts.Participants,
		Eligible:     counts.Eligible,
		Winners:      counts.Winners,
		Family:       counts.Family,
		TotalHits:    counts.TotalHits,
	}, nil
}

func (r *ParticipantRepository) daoToDomain(p dao.Participant) domain.Participant {
	return domain.Participant{
		ID:             p.ID,
		Identifier:     p.Identifier,
		IdentifierHash: p.IdentifierHash,
		DisplayName:    p.DisplayName,
		Phone:          p.Phone,
		IsFamily:       p.IsFamily,
		HitCount:       p.HitCount,
		IsWinner:       p.IsWinner,
		IsSelected:     p.IsSelected,
		Status:         domain.Status(p.Status),
		SourceAddress:  p.SourceAddress,
		LastActivityAt: p.LastActivityAt,
		WonAt:          p.WonAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
