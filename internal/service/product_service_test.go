package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"
	"github.com/Aykachasanli/pascale-backend-server/internal/repository"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductFixture(t *testing.T) (*ProductService, *MockMediaStore, repository.ProductRepository) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	products := repository.NewMemoryProductRepository()
	media := &MockMediaStore{}
	return NewProductService(products, media, logger), media, products
}

func price(v float64) *float64 {
	return &v
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("without image", func(t *testing.T) {
		svc, media, _ := newProductFixture(t)
		product, err := svc.Create(ctx, ProductInput{Name: " Lamp ", Details: "desk", Price: price(12.5)})
		require.NoError(t, err)
		assert.Equal(t, "Lamp", product.Name)
		assert.Equal(t, 12.5, product.Price)
		assert.Nil(t, product.ProductImage)
		media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		got, err := svc.Get(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.ID, got.ID)
	})

	t.Run("with image", func(t *testing.T) {
		svc, media, _ := newProductFixture(t)
		media.On("Upload", mock.Anything, mock.Anything, "image/png", ".png", "products").
			Return(MediaObject{Key: "products/a.png", URL: "https://media.test/products/a.png"}, nil).Once()

		product, err := svc.Create(ctx, ProductInput{Name: "Lamp", Image: bytes.NewReader(pngHeader)})
		require.NoError(t, err)
		require.NotNil(t, product.ProductImage)
		assert.Equal(t, "https://media.test/products/a.png", *product.ProductImage)
		media.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _, _ := newProductFixture(t)
		_, err := svc.Create(ctx, ProductInput{Name: "  "})
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.Create(ctx, ProductInput{Name: "Lamp", Price: price(-1)})
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.Create(ctx, ProductInput{Name: "Lamp", Image: bytes.NewReader([]byte("plain text"))})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("media failure", func(t *testing.T) {
		svc, media, _ := newProductFixture(t)
		media.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "products").
			Return(MediaObject{}, errors.New("bucket gone")).Once()

		_, err := svc.Create(ctx, ProductInput{Name: "Lamp", Image: bytes.NewReader(pngHeader)})
		require.ErrorIs(t, err, ErrMediaUnavailable)

		products, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestProductService_UpdateReplacesImage(t *testing.T) {
	ctx := context.Background()
	svc, media, _ := newProductFixture(t)

	media.On("Upload", mock.Anything, mock.Anything, "image/png", ".png", "products").
		Return(MediaObject{Key: "products/a.png", URL: "https://media.test/products/a.png"}, nil).Once()
	product, err := svc.Create(ctx, ProductInput{Name: "Lamp", Price: price(10), Image: bytes.NewReader(pngHeader)})
	require.NoError(t, err)

	media.On("Upload", mock.Anything, mock.Anything, "image/png", ".png", "products").
		Return(MediaObject{Key: "products/b.png", URL: "https://media.test/products/b.png"}, nil).Once()
	media.On("Delete", mock.Anything, "products/a.png").Return(nil).Once()

	updated, err := svc.Update(ctx, product.ID, ProductInput{Details: "brass", Image: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", updated.Name)
	assert.Equal(t, "brass", updated.Details)
	assert.Equal(t, 10.0, updated.Price)
	assert.Equal(t, "https://media.test/products/b.png", *updated.ProductImage)
	media.AssertExpectations(t)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, media, products := newProductFixture(t)

	image := "https://media.test/products/a.png"
	id := uuid.New()
	require.NoError(t, products.Create(ctx, &entity.Product{ID: id, Name: "Lamp", ProductImage: &image}))

	media.On("Delete", mock.Anything, "products/a.png").Return(errors.New("ignored")).Once()
	require.NoError(t, svc.Delete(ctx, id))
	media.AssertExpectations(t)

	_, err := svc.Get(ctx, id)
	require.ErrorIs(t, err, ErrProductNotFound)
	require.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrProductNotFound)
}
