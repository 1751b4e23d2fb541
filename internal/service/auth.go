package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vietanh2810/callin-contest-api/internal/config"
	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/repository"
)

var (
	ErrAdminEmailExists = repository.ErrAdminEmailExists
	ErrAdminNotFound    = repository.ErrAdminNotFound
	ErrWrongPassword    = errors.New("wrong password")
)

type AdminRepository interface {
	Create(ctx context.Context, admin domain.Admin) (domain.Admin, error)
	FindByID(ctx context.Context, id uint) (domain.Admin, error)
	FindByEmail(ctx context.Context, email string) (domain.Admin, error)
}

type AuthService struct {
	repo AdminRepository
}

func NewAuthService(repo AdminRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Admin, error) {
	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return domain.Admin{}, ErrAdminNotFound
		}

		return domain.Admin{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return domain.Admin{}, ErrWrongPassword
	}

	return admin, nil
}

func (s *AuthService) GetAdmin(ctx context.Context, id uint) (domain.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return admin, nil
}

// EnsureAdmin creates the configured bootstrap administrator unless an
// account with that email already exists. An empty email disables it.
func (s *AuthService) EnsureAdmin(ctx context.Context, conf *config.AdminConfig) (domain.Admin, bool, error) {
	if conf == nil || conf.Email == "" {
		return domain.Admin{}, false, nil
	}

	existing, err := s.repo.FindByEmail(ctx, conf.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrAdminNotFound) {
		return domain.Admin{}, false, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	hashedPassword, err := hashPassword(conf.Password)
	if err != nil {
		return domain.Admin{}, false, err
	}

	created, err := s.repo.Create(ctx, domain.Admin{
		Email:    conf.Email,
		Password: hashedPassword,
		Name:     conf.Name,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAdminEmailExists) {
			existing, err = s.repo.FindByEmail(ctx, conf.Email)
			if err != nil {
				return domain.Admin{}, false, fmt.Errorf("s.repo.FindByEmail -> %w", err)
			}
			return existing, false, nil
		}

		return domain.Admin{}, false, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("bootstrap admin created", zap.String("email", created.Email))

	return created, true, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return string(hash), nil
}
