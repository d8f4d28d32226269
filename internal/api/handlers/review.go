package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cremfish/storefront/internal/api/middleware"
	"github.com/cremfish/storefront/internal/models"
	service "github.com/cremfish/storefront/internal/services"
	"github.com/cremfish/storefront/internal/utils"
	"github.com/cremfish/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, validator: validator.New()}
}

func (h *ReviewHandler) AddReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.AddReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.AddReview(r.Context(), productID, &req)
		if err != nil {
			logger.Error("Review creation failed", slog.String("productId", productID.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Review added", slog.String("productId", productID.String()), slog.Int("rating", review.Rating))
		response.Success(w, http.StatusCreated, review)
	}
}

func (h *ReviewHandler) ListReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		reviews, err := h.reviewService.ListReviews(r.Context(), productID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, reviews)
	}
}
