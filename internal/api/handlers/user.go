package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cremfish/storefront/internal/api/middleware"
	"github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/models"
	service "github.com/cremfish/storefront/internal/services"
	"github.com/cremfish/storefront/internal/utils"
	"github.com/cremfish/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService, validator: validator.New()}
}

func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RegisterRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		resp, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			logger.Error("Registration failed", slog.String("username", req.Username), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("User registered", slog.String("username", req.Username))
		response.Success(w, http.StatusCreated, resp)
	}
}

func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		resp, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			logger.Error("Login failed", slog.String("username", req.Username), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		if !resp.Success {
			if resp.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
				response.Error(w, errors.TooManyRequestsError(resp.Message))

				return
			}

			logger.Warn("Invalid credentials", slog.String("username", req.Username))
			response.Error(w, errors.UnauthorizedError(resp.Message))

			return
		}

		logger.Info("User logged in", slog.String("username", req.Username))
		response.Success(w, http.StatusOK, resp)
	}
}
