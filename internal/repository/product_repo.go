package repository

import (
	"context"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]entity.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return translateError(r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return firstOrNil[entity.Product](ctx, r.db, "id = ?", id)
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return updateAll(ctx, r.db, product)
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[entity.Product](ctx, r.db, id)
}

func (r *productRepository) List(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
