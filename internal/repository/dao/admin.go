package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrAdminEmailExists = errors.New("admin already exists")
	ErrAdminNotFound    = errors.New("admin not found")
)

type Admin struct {
	ID uint `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
	Name     string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type AdminDAO struct {
	db *gorm.DB
}

func NewAdminDAO(db *gorm.DB) *AdminDAO {
	return &AdminDAO{
		db: db,
	}
}

func (d *AdminDAO) Insert(ctx context.Context, admin Admin) (Admin, error) {
	result := d.db.WithContext(ctx).Create(&admin)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Admin{}, ErrAdminEmailExists
		}

		return Admin{}, storeErr("d.db.Create", result.Error)
	}

	return admin, nil
}

func (d *AdminDAO) FindByID(ctx context.Context, id uint) (Admin, error) {
	var admin Admin

	result := d.db.WithContext(ctx).First(&admin, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Admin{}, ErrAdminNotFound
		}

		return Admin{}, storeErr("d.db.First", result.Error)
	}

	return admin, nil
}

func (d *AdminDAO) FindByEmail(ctx context.Context, email string) (Admin, error) {
	var admin Admin

	result := d.db.WithContext(ctx).First(&admin, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Admin{}, ErrAdminNotFound
		}

		return Admin{}, storeErr("d.db.First", result.Error)
	}

	return admin, nil
}
