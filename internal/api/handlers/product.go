package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cremfish/storefront/internal/api/middleware"
	"github.com/cremfish/storefront/internal/models"
	service "github.com/cremfish/storefront/internal/services"
	"github.com/cremfish/storefront/internal/utils"
	"github.com/cremfish/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: validator.New()}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			logger.Error("Product creation failed", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Product created", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		product, err := h.productService.GetProductByID(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			logger.Error("Product update failed", slog.String("productId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Product updated", slog.String("productId", id.String()))
		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			logger.Error("Product deletion failed", slog.String("productId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Product deleted", slog.String("productId", id.String()))
		response.Success(w, http.StatusOK, map[string]string{"id": id.String()})
	}
}

// for eg: GET /products?category=Rods&search=carbon&minPrice=20&sort=priceAsc&page=2
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filter := parseProductFilter(r)

		page, err := h.productService.ListProducts(r.Context(), filter)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, page)
	}
}

// Unparseable values fall back to "no constraint" rather than rejecting the
// whole request.
func parseProductFilter(r *http.Request) *models.ProductFilter {

	q := r.URL.Query()

	filter := &models.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	}

	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		filter.MinPrice = &v
	}

	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		filter.MaxPrice = &v
	}

	if v, err := strconv.ParseFloat(q.Get("minRating"), 64); err == nil {
		filter.MinRating = &v
	}

	if v, err := strconv.ParseBool(q.Get("inStock")); err == nil {
		filter.InStock = v
	}

	if brands := q.Get("brands"); brands != "" {
		for _, brand := range strings.Split(brands, ",") {
			if brand = strings.TrimSpace(brand); brand != "" {
				filter.Brands = append(filter.Brands, brand)
			}
		}
	}

	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = v
	}

	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}

	return filter
}
