package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"
	"github.com/Aykachasanli/pascale-backend-server/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProductService struct {
	products repository.ProductRepository
	media    MediaStore
	logger   logrus.FieldLogger
}

func NewProductService(products repository.ProductRepository, media MediaStore, logger logrus.FieldLogger) *ProductService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProductService{products: products, media: media, logger: logger}
}

func (s *ProductService) List(ctx context.Context) ([]entity.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, input ProductInput) (*entity.Product, error) {
	if isBlank(input.Name) {
		return nil, invalidInput("product name is required")
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, invalidInput("price must not be negative")
	}

	product := &entity.Product{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		Details: strings.TrimSpace(input.Details),
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Image != nil {
		url, err := s.upload(ctx, input)
		if err != nil {
			return nil, err
		}
		product.ProductImage = &url
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.removeMedia(ctx, product.ProductImage)
		return nil, storeError(err)
	}
	return product, nil
}

// Update applies the non-empty fields of input. A new image replaces the old
// one, which is then removed from the media host.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*entity.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, invalidInput("price must not be negative")
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	if details := strings.TrimSpace(input.Details); details != "" {
		product.Details = details
	}
	if input.Price != nil && *input.Price != 0 {
		product.Price = *input.Price
	}

	var previous *string
	if input.Image != nil {
		url, err := s.upload(ctx, input)
		if err != nil {
			return nil, err
		}
		previous = product.ProductImage
		product.ProductImage = &url
	}

	if err := s.products.Update(ctx, product); err != nil {
		if input.Image != nil {
			s.removeMedia(ctx, product.ProductImage)
		}
		return nil, storeError(err)
	}
	s.removeMedia(ctx, previous)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return storeError(err)
	}
	s.removeMedia(ctx, product.ProductImage)
	return nil
}

func (s *ProductService) upload(ctx context.Context, input ProductInput) (string, error) {
	contentType, ext, err := detectImage(input.Image)
	if err != nil {
		return "", err
	}
	if s.media == nil {
		return "", ErrMediaUnavailable
	}
	object, err := s.media.Upload(ctx, input.Image, contentType, ext, "products")
	if err != nil {
		return "", mediaError(err)
	}
	return object.URL, nil
}

func (s *ProductService) removeMedia(ctx context.Context, url *string) {
	if s.media == nil || url == nil || *url == "" {
		return
	}
	key, ok := s.media.KeyFromURL(*url)
	if !ok {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("media cleanup failed")
	}
}
