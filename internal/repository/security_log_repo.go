package repository

import (
	"context"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SecurityLogRepository is append-only. ListByUser returns newest first.
type SecurityLogRepository interface {
	Log(ctx context.Context, entry *entity.SecurityLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.SecurityLog, error)
}

type securityLogRepository struct {
	db *gorm.DB
}

func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Log(ctx context.Context, entry *entity.SecurityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *securityLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.SecurityLog, error) {
	var entries []entity.SecurityLog
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if err := paginate(query, limit, 0).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
