package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/repository"
)

var ErrParticipantNotFound = repository.ErrParticipantNotFound

type ParticipantRepository interface {
	FindByID(ctx context.Context, id string) (domain.Participant, error)
	List(ctx context.Context, filter domain.ParticipantFilter, page domain.Page) ([]domain.Participant, int64, error)
	Update(ctx context.Context, id string, changes domain.ParticipantChanges, allow domain.Allowlist) (domain.Participant, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (domain.ParticipantStats, error)
}

type IdentifierVerifier interface {
	Verify(plaintext, hash string) bool
}

type ParticipantService struct {
	repo     ParticipantRepository
	verifier IdentifierVerifier
}

func NewParticipantService(repo ParticipantRepository, verifier IdentifierVerifier) *ParticipantService {
	return &ParticipantService{
		repo:     repo,
		verifier: verifier,
	}
}

func (s *ParticipantService) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	participant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return participant, nil
}

func (s *ParticipantService) ListParticipants(ctx context.Context, filter domain.ParticipantFilter, page domain.Page) ([]domain.Participant, int64, error) {
	participants, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.List -> %w", err)
	}

	return participants, total, nil
}

func (s *ParticipantService) UpdateParticipant(ctx context.Context, id string, changes domain.ParticipantChanges) (domain.Participant, error) {
	updated, err := s.repo.Update(ctx, id, changes, domain.AdminFields)
	if err != nil {
		if errors.Is(err, ErrUnauthorizedFieldWrite) {
			zap.L().Warn("rejected unauthorized field write",
				zap.Bool("security", true),
				zap.String("participant_id", id),
				zap.Error(err),
			)
		}

		return domain.Participant{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// ResetWinner puts a winner back into the eligible pool.
func (s *ParticipantService) ResetWinner(ctx context.Context, id string) (domain.Participant, error) {
	notWinner := false

	return s.UpdateParticipant(ctx, id, domain.ParticipantChanges{IsWinner: &notWinner})
}

func (s *ParticipantService) DeleteParticipant(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	zap.L().Info("participant deleted", zap.String("participant_id", id))

	return nil
}

func (s *ParticipantService) Stats(ctx context.Context) (domain.ParticipantStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.ParticipantStats{}, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	return stats, nil
}

// VerifyIdentifier checks a claimed identifier against the stored hash.
func (s *ParticipantService) VerifyIdentifier(ctx context.Context, id, identifier string) (bool, error) {
	participant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if participant.IdentifierHash == "" {
		return false, nil
	}

	return s.verifier.Verify(identifier, participant.IdentifierHash), nil
}
