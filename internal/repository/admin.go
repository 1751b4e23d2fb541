package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/repository/dao"
)

var (
	ErrAdminEmailExists = dao.ErrAdminEmailExists
	ErrAdminNotFound    = dao.ErrAdminNotFound
)

type AdminDAO interface {
	Insert(ctx context.Context, admin dao.Admin) (dao.Admin, error)
	FindByID(ctx context.Context, id uint) (dao.Admin, error)
	FindByEmail(ctx context.Context, email string) (dao.Admin, error)
}

type AdminRepository struct {
	dao AdminDAO
}

func NewAdminRepository(dao AdminDAO) *AdminRepository {
	return &AdminRepository{
		dao: dao,
	}
}

func (r *AdminRepository) Create(ctx context.Context, admin domain.Admin) (domain.Admin, error) {
	created, err := r.dao.Insert(ctx, dao.Admin{
		Email:    admin.Email,
		Password: admin.Password,
		Name:     admin.Name,
	})
	if err != nil {
		return domain.Admin{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id uint) (domain.Admin, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (domain.Admin, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AdminRepository) daoToDomain(a dao.Admin) domain.Admin {
	return domain.Admin{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Password:  a.Password,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
