package dto

import (
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"
)

// ProductRequest is bound from JSON or from multipart form fields. The image
// travels as the "productImage" form file.
type ProductRequest struct {
	Name    string   `json:"name" form:"name"`
	Details string   `json:"details" form:"details"`
	Price   *float64 `json:"price" form:"price" validate:"omitempty,min=0"`
}

type ProductResponse struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Details      string    `json:"details"`
	Price        float64   `json:"price"`
	ProductImage *string   `json:"productImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ProductResponseFromEntity(product *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           product.ID.String(),
		Name:         product.Name,
		Details:      product.Details,
		Price:        product.Price,
		ProductImage: product.ProductImage,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}

func ProductResponsesFromEntities(products []entity.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ProductResponseFromEntity(&products[i]))
	}
	return responses
}
