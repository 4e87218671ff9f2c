package repository

import (
	"context"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository returns (nil, nil) from the finders when no account matches.
// Unique email violations surface as ErrDuplicateKey.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]entity.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return firstOrNil[entity.User](ctx, r.db, "id = ?", id)
}

// FindByEmail expects an already normalised address.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return firstOrNil[entity.User](ctx, r.db, "email = ?", email)
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return updateAll(ctx, r.db, user)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[entity.User](ctx, r.db, id)
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	var users []entity.User
	query := paginate(r.db.WithContext(ctx).Order("registered_at DESC"), limit, offset)
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
