package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Aykachasanli/pascale-backend-server/internal/dto"
	"github.com/Aykachasanli/pascale-backend-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const productImageField = "productImage"

type ProductHandler struct {
	Service       *service.ProductService
	Validate      *validator.Validate
	MaxImageBytes int64
}

func NewProductHandler(svc *service.ProductService, validate *validator.Validate, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{Service: svc, Validate: validate, MaxImageBytes: maxImageBytes}
}

func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.Service.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProductResponsesFromEntities(products))
}

func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.Service.Get(c.Request().Context(), parseTargetID(c.Param("id")))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProductResponseFromEntity(product))
}

func (h *ProductHandler) Create(c echo.Context) error {
	input, closeImage, err := h.bindProduct(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	defer closeImage()

	product, err := h.Service.Create(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.ProductResponseFromEntity(product))
}

func (h *ProductHandler) Update(c echo.Context) error {
	input, closeImage, err := h.bindProduct(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	defer closeImage()

	product, err := h.Service.Update(c.Request().Context(), parseTargetID(c.Param("id")), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ProductResponseFromEntity(product))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.Service.Delete(c.Request().Context(), parseTargetID(c.Param("id"))); err != nil {
		return writeServiceError(c, err)
	}
	return message(c, "Product deleted successfully.")
}

// bindProduct reads a product from a multipart form (with an optional image)
// or from a JSON body.
func (h *ProductHandler) bindProduct(c echo.Context) (service.ProductInput, func(), error) {
	noop := func() {}
	var req dto.ProductRequest

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		if err := decodeJSON(c, &req); err != nil {
			return service.ProductInput{}, noop, err
		}
		if err := validatePayload(h.Validate, req); err != nil {
			return service.ProductInput{}, noop, err
		}
		return service.ProductInput{Name: req.Name, Details: req.Details, Price: req.Price}, noop, nil
	}

	req.Name = c.FormValue("name")
	req.Details = c.FormValue("details")
	if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return service.ProductInput{}, noop, fmt.Errorf("%w: price must be a number", service.ErrInvalidInput)
		}
		req.Price = &price
	}
	if err := validatePayload(h.Validate, req); err != nil {
		return service.ProductInput{}, noop, err
	}

	input := service.ProductInput{Name: req.Name, Details: req.Details, Price: req.Price}
	header, err := c.FormFile(productImageField)
	if err != nil {
		// The image is optional on both create and update.
		return input, noop, nil
	}
	file, err := openImage(header, h.MaxImageBytes)
	if err != nil {
		return service.ProductInput{}, noop, err
	}
	input.Image = file
	return input, func() { _ = file.Close() }, nil
}

func openImage(header *multipart.FileHeader, maxBytes int64) (multipart.File, error) {
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", service.ErrInvalidInput, maxBytes)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return file, nil
}
