package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrIdentifierExists    = errors.New("participant identifier already exists")
)

type Participant struct {
	ID string `gorm:"primaryKey;size:36"`

	Identifier     string `gorm:"uniqueIndex;size:64;not null"`
	IdentifierHash string `gorm:"size:100"`
	DisplayName    string `gorm:"size:255"`
	Phone          string `gorm:"size:32"`
	IsFamily       bool   `gorm:"not null;default:false"`
	HitCount       int64  `gorm:"not null;default:0"`
	IsWinner       bool   `gorm:"not null;default:false;index"`
	IsSelected     bool   `gorm:"not null;default:false"`
	Status         string `gorm:"size:16;not null;default:active"`
	SourceAddress  string `gorm:"size:64"`

	LastActivityAt *time.Time
	WonAt          *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (p *Participant) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type ParticipantQuery struct {
	Winners  *bool
	IsFamily *bool
	Status   string
	Search   string
	Offset   int
	Limit    int
}

type ParticipantCounts struct {
	Participants int64
	Eligible     int64
	Winners      int64
	Family       int64
	TotalHits    int64
}

func eligible(db *gorm.DB) *gorm.DB {
	return db.Where("is_winner = ? AND identifier IS NOT NULL AND identifier <> ?", false, "")
}

type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{
		db: db,
	}
}

func (d *ParticipantDAO) Insert(ctx context.Context, participant Participant) (Participant, error) {
	result := d.db.WithContext(ctx).Create(&participant)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Participant{}, ErrIdentifierExists
		}

		return Participant{}, storeErr("d.db.Create", result.Error)
	}

	return participant, nil
}

func (d *ParticipantDAO) FindByID(ctx context.Context, id string) (Participant, error) {
	return d.findOne(ctx, "id = ?", id)
}

func (d *ParticipantDAO) FindByIdentifier(ctx context.Context, identifier string) (Participant, error) {
	return d.findOne(ctx, "identifier = ?", identifier)
}

func (d *ParticipantDAO) findOne(ctx context.Context, query string, arg interface{}) (Participant, error) {
	var participant Participant

	result := d.db.WithContext(ctx).Where(query, arg).Take(&participant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participant{}, ErrParticipantNotFound
		}

		return Participant{}, storeErr("d.db.Take", result.Error)
	}

	return participant, nil
}

// Update writes the given columns and returns the fresh row.
func (d *ParticipantDAO) Update(ctx context.Context, id string, columns map[string]interface{}) (Participant, error) {
	var updated Participant

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Participant{}).Where("id = ?", id).Updates(columns)
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return ErrIdentifierExists
			}
			return storeErr("tx.Updates", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrParticipantNotFound
		}

		if err := tx.Where("id = ?", id).Take(&updated).Error; err != nil {
			return storeErr("tx.Take", err)
		}

		return nil
	})
	if err != nil {
		return Participant{}, err
	}

	return updated, nil
}

// IncrementHits bumps hit_count in the database itself, never as a
// read-modify-write, and returns the value this call produced.
func (d *ParticipantDAO) IncrementHits(ctx context.Context, id string, at time.Time) (int64, error) {
	var hits []int64

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Participant{}).Where("id = ?", id).Updates(map[string]interface{}{
			"hit_count":        gorm.Expr("hit_count + ?", 1),
			"last_activity_at": at,
		})
		if result.Error != nil {
			return storeErr("tx.Updates", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrParticipantNotFound
		}

		if err := tx.Model(&Participant{}).Where("id = ?", id).Pluck("hit_count", &hits).Error; err != nil {
			return storeErr("tx.Pluck", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(hits) == 0 {
		return 0, ErrParticipantNotFound
	}

	return hits[0], nil
}

func (d *ParticipantDAO) CountEligible(ctx context.Context) (int64, error) {
	var count int64

	if err := d.db.WithContext(ctx).Model(&Participant{}).Scopes(eligible).Count(&count).Error; err != nil {
		return 0, storeErr("d.db.Count", err)
	}

	return count, nil
}

// FindEligibleAt returns the eligible participant at offset in id order.
// ErrParticipantNotFound means the pool shrank since it was counted.
func (d *ParticipantDAO) FindEligibleAt(ctx context.Context, offset int) (Participant, error) {
	var participant Participant

	result := d.db.WithContext(ctx).Scopes(eligible).Order("id").Offset(offset).Limit(1).Take(&participant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participant{}, ErrParticipantNotFound
		}

		return Participant{}, storeErr("d.db.Take", result.Error)
	}

	return participant, nil
}

func (d *ParticipantDAO) FindEligible(ctx context.Context) ([]Participant, error) {
	var participants []Participant

	if err := d.db.WithContext(ctx).Scopes(eligible).Order("id").Find(&participants).Error; err != nil {
		return nil, storeErr("d.db.Find", err)
	}

	return participants, nil
}

// PromoteWinner flips is_winner only if it is still false. It reports
// whether this call made the change.
func (d *ParticipantDAO) PromoteWinner(ctx context.Context, id string, at time.Time) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Participant{}).
		Where("id = ? AND is_winner = ?", id, false).
		Updates(map[string]interface{}{
			"is_winner": true,
			"won_at":    at,
		})
	if result.Error != nil {
		return false, storeErr("d.db.Updates", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (q ParticipantQuery) scope(db *gorm.DB) *gorm.DB {
	if q.Winners != nil {
		db = db.Where("is_winner = ?", *q.Winners)
	}
	if q.IsFamily != nil {
		db = db.Where("is_family = ?", *q.IsFamily)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("(display_name LIKE ? OR phone LIKE ?)", like, like)
	}
	return db
}

func (d *ParticipantDAO) Find(ctx context.Context, q ParticipantQuery) ([]Participant, int64, error) {
	var total int64
	if err := d.db.WithContext(ctx).Model(&Participant{}).Scopes(q.scope).Count(&total).Error; err != nil {
		return nil, 0, storeErr("d.db.Count", err)
	}

	tx := d.db.WithContext(ctx).Scopes(q.scope).Order("created_at DESC, id").Offset(q.Offset)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var participants []Participant
	if err := tx.Find(&participants).Error; err != nil {
		return nil, 0, storeErr("d.db.Find", err)
	}

	return participants, total, nil
}

func (d *ParticipantDAO) Delete(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).Where("id = ?", id).Delete(&Participant{})
	if result.Error != nil {
		return storeErr("d.db.Delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}

	return nil
}

func (d *ParticipantDAO) Counts(ctx context.Context) (ParticipantCounts, error) {
	var counts ParticipantCounts
	db := d.db.WithContext(ctx)

	if err := db.Model(&Participant{}).Count(&counts.Participants).Error; err != nil {
		return ParticipantCounts{}, storeErr("count participants", err)
	}
	if err := db.Model(&Participant{}).Scopes(eligible).Count(&counts.Eligible).Error; err != nil {
		return ParticipantCounts{}, storeErr("count eligible", err)
	}
	if err := db.Model(&Participant{}).Where("is_winner = ?", true).Count(&counts.Winners).Error; err != nil {
		return ParticipantCounts{}, storeErr("count winners", err)
	}
	if err := db.Model(&Participant{}).Where("is_family = ?", true).Count(&counts.Family).Error; err != nil {
		return ParticipantCounts{}, storeErr("count family", err)
	}
	if err := db.Model(&Participant{}).Select("COALESCE(SUM(hit_count), 0)").Scan(&counts.TotalHits).Error; err != nil {
		return ParticipantCounts{}, storeErr("sum hits", err)
	}

	return counts, nil
}
