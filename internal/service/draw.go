package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/callin-contest-api/internal/config"
	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/repository"
)

// ErrDrawContention means every attempt lost its candidate to a concurrent
// draw. It is retryable and never means the pool is empty.
var ErrDrawContention = errors.New("winner draw contention")

const defaultDrawAttempts = 5

type DrawRepository interface {
	CountEligible(ctx context.Context) (int64, error)
	FindEligibleAt(ctx context.Context, offset int) (domain.Participant, error)
	PromoteWinner(ctx context.Context, candidate domain.Participant) (domain.Participant, bool, error)
}

type DrawService struct {
	repo        DrawRepository
	maxAttempts int
	timeout     time.Duration
	pick        func(n int64) (int64, error)
}

func NewDrawService(repo DrawRepository, conf *config.DrawConfig) *DrawService {
	s := &DrawService{
		repo:        repo,
		maxAttempts: defaultDrawAttempts,
		pick:        randomOffset,
	}
	if conf != nil {
		if conf.MaxAttempts > 0 {
			s.maxAttempts = conf.MaxAttempts
		}
		s.timeout = conf.Timeout
	}

	return s
}

func randomOffset(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("rand.Int -> %w", err)
	}

	return v.Int64(), nil
}

// SelectRandomWinner promotes one eligible participant chosen uniformly at
// random. An empty pool returns false with a nil error.
func (s *DrawService) SelectRandomWinner(ctx context.Context) (domain.Participant, bool, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		count, err := s.repo.CountEligible(ctx)
		if err != nil {
			return domain.Participant{}, false, fmt.Errorf("s.repo.CountEligible -> %w", err)
		}
		if count == 0 {
			return domain.Participant{}, false, nil
		}

		offset, err := s.pick(count)
		if err != nil {
			return domain.Participant{}, false, err
		}

		candidate, err := s.repo.FindEligibleAt(ctx, int(offset))
		if errors.Is(err, repository.ErrParticipantNotFound) {
			continue
		}
		if err != nil {
			return domain.Participant{}, false, fmt.Errorf("s.repo.FindEligibleAt -> %w", err)
		}

		winner, promoted, err := s.repo.PromoteWinner(ctx, candidate)
		if err != nil {
			return domain.Participant{}, false, fmt.Errorf("s.repo.PromoteWinner -> %w", err)
		}
		if !promoted {
			zap.L().Debug("draw candidate taken by a concurrent draw",
				zap.String("participant_id", candidate.ID),
				zap.Int("attempt", attempt),
			)
			continue
		}

		zap.L().Info("winner selected",
			zap.String("participant_id", winner.ID),
			zap.String("identifier", winner.MaskedIdentifier()),
			zap.Int64("pool_size", count),
		)

		return winner, true, nil
	}

	return domain.Participant{}, false, ErrDrawContention
}
