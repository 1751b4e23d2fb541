package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/pkg/identity"
)

type fakeParticipantRepo struct {
	participant domain.Participant
	updates     int
}

func (f *fakeParticipantRepo) FindByID(_ context.Context, id string) (domain.Participant, error) {
	if id != f.participant.ID {
		return domain.Participant{}, ErrParticipantNotFound
	}
	return f.participant, nil
}

func (f *fakeParticipantRepo) List(context.Context, domain.ParticipantFilter, domain.Page) ([]domain.Participant, int64, error) {
	return []domain.Participant{f.participant}, 1, nil
}

func (f *fakeParticipantRepo) Update(_ context.Context, id string, changes domain.ParticipantChanges, allow domain.Allowlist) (domain.Participant, error) {
	if err := changes.Authorize(allow); err != nil {
		return domain.Participant{}, err
	}
	if id != f.participant.ID {
		return domain.Participant{}, ErrParticipantNotFound
	}
	f.updates++
	if changes.IsWinner != nil {
		f.participant.IsWinner = *changes.IsWinner
	}
	return f.participant, nil
}

func (f *fakeParticipantRepo) Delete(_ context.Context, id string) error {
	if id != f.participant.ID {
		return ErrParticipantNotFound
	}
	return nil
}

func (f *fakeParticipantRepo) Stats(context.Context) (domain.ParticipantStats, error) {
	return domain.ParticipantStats{Participants: 1}, nil
}

func TestParticipantService_ResetWinner(t *testing.T) {
	repo := &fakeParticipantRepo{participant: domain.Participant{ID: "a", IsWinner: true}}
	svc := NewParticipantService(repo, identity.NewHasher(bcrypt.MinCost))

	p, err := svc.ResetWinner(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, p.IsWinner)

	_, err = svc.ResetWinner(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestParticipantService_UpdateRejectsImmutableField(t *testing.T) {
	repo := &fakeParticipantRepo{participant: domain.Participant{ID: "a"}}
	svc := NewParticipantService(repo, identity.NewHasher(bcrypt.MinCost))

	_, err := svc.UpdateParticipant(context.Background(), "a", domain.ParticipantChanges{IsFamily: ptr(true)})
	assert.ErrorIs(t, err, ErrUnauthorizedFieldWrite)
	assert.Zero(t, repo.updates)
}

func TestParticipantService_VerifyIdentifier(t *testing.T) {
	hasher := identity.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("123456789")
	require.NoError(t, err)

	repo := &fakeParticipantRepo{participant: domain.Participant{ID: "a", IdentifierHash: hash}}
	svc := NewParticipantService(repo, hasher)

	ok, err := svc.VerifyIdentifier(context.Background(), "a", "123456789")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyIdentifier(context.Background(), "a", "987654321")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.VerifyIdentifier(context.Background(), "missing", "123456789")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}
