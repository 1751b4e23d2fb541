package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/pkg/identity"
	"github.com/vietanh2810/callin-contest-api/internal/ratelimit"
	"github.com/vietanh2810/callin-contest-api/internal/repository"
)

var (
	ErrStoreUnavailable          = repository.ErrStoreUnavailable
	ErrRateLimitStoreUnavailable = ratelimit.ErrStoreUnavailable
	ErrUnauthorizedFieldWrite    = repository.ErrUnauthorizedFieldWrite
)

// unknownAddress buckets submissions that arrive without a client address.
const unknownAddress = "unknown"

type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeRateLimited Outcome = "rate_limited"
)

type RateLimiter interface {
	Allow(ctx context.Context, scope ratelimit.Scope, key string) (ratelimit.Decision, error)
}

type RegistrationRepository interface {
	UpsertByIdentifier(ctx context.Context, identifier string, changes domain.ParticipantChanges, allow domain.Allowlist) (domain.Participant, bool, error)
	IncrementHits(ctx context.Context, id string) (int64, error)
}

// Submission is one public registration attempt. Changes carries every
// field the caller asked to write, privileged ones included, so the
// allowlist can refuse them.
type Submission struct {
	Identifier    string
	SourceAddress string
	Changes       domain.ParticipantChanges
}

type Registration struct {
	Outcome     Outcome
	Participant domain.Participant
	Created     bool
	Decision    ratelimit.Decision
}

type RegistrationService struct {
	limiter      RateLimiter
	repo         RegistrationRepository
	queryTimeout time.Duration
}

func NewRegistrationService(limiter RateLimiter, repo RegistrationRepository, queryTimeout time.Duration) *RegistrationService {
	return &RegistrationService{
		limiter:      limiter,
		repo:         repo,
		queryTimeout: queryTimeout,
	}
}

// Register runs the identifier limit, then the address limit, then the
// upsert and the hit increment. Being rate limited is an outcome, not an
// error.
func (s *RegistrationService) Register(ctx context.Context, sub Submission) (Registration, error) {
	address := sub.SourceAddress
	if address == "" {
		address = unknownAddress
	}

	changes := sub.Changes
	changes.SourceAddress = &address

	if err := changes.Authorize(domain.PublicFields); err != nil {
		if errors.Is(err, ErrUnauthorizedFieldWrite) {
			zap.L().Warn("rejected unauthorized field write",
				zap.Bool("security", true),
				zap.String("identifier", identity.Mask(sub.Identifier)),
				zap.String("source_address", address),
				zap.Error(err),
			)
		}

		return Registration{}, err
	}

	checks := []struct {
		scope ratelimit.Scope
		key   string
	}{
		{ratelimit.ScopeIdentifier, sub.Identifier},
		{ratelimit.ScopeAddress, address},
	}
	for _, check := range checks {
		decision, err := s.limiter.Allow(ctx, check.scope, check.key)
		if err != nil {
			return Registration{}, fmt.Errorf("s.limiter.Allow -> %w", err)
		}
		if !decision.Allowed {
			zap.L().Info("registration rate limited",
				zap.String("scope", string(check.scope)),
				zap.String("identifier", identity.Mask(sub.Identifier)),
				zap.String("source_address", address),
				zap.Duration("retry_after", decision.RetryAfter),
			)

			return Registration{
				Outcome:  OutcomeRateLimited,
				Decision: decision,
			}, nil
		}
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	participant, created, err := s.repo.UpsertByIdentifier(ctx, sub.Identifier, changes, domain.PublicFields)
	if err != nil {
		return Registration{}, fmt.Errorf("s.repo.UpsertByIdentifier -> %w", err)
	}

	hits, err := s.repo.IncrementHits(ctx, participant.ID)
	if err != nil {
		return Registration{}, fmt.Errorf("s.repo.IncrementHits -> %w", err)
	}
	participant.HitCount = hits

	return Registration{
		Outcome:     OutcomeAccepted,
		Participant: participant,
		Created:     created,
	}, nil
}
