package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cremfish/storefront/internal/api/middleware"
	"github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/utils/response"
)

const maxUploadSize = 5 << 20 // 5 MiB

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type UploadHandler struct {
	dir string
}

func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{dir: dir}
}

// UploadImage stores a multipart image under a generated name and returns the
// public path to reference from a product record.
func (h *UploadHandler) UploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.Error(w, errors.BadRequestError("Image too large or malformed upload").WithError(err))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			response.Error(w, errors.BadRequestError("Missing image field").WithError(err))
			return
		}

		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedImageExtensions[ext] {
			response.Error(w, errors.BadRequestError("Unsupported image type"))
			return
		}

		if err := os.MkdirAll(h.dir, 0o755); err != nil {
			logger.Error("Failed to create upload directory", slog.Any("error", err))
			response.Error(w, errors.InternalError("Failed to store image").WithError(err))

			return
		}

		filename := fmt.Sprintf("%d-%d%s", time.Now().UnixNano(), rand.Intn(1_000_000), ext)

		dst, err := os.Create(filepath.Join(h.dir, filename))
		if err != nil {
			logger.Error("Failed to create image file", slog.Any("error", err))
			response.Error(w, errors.InternalError("Failed to store image").WithError(err))

			return
		}

		defer dst.Close()

		if _, err := io.Copy(dst, file); err != nil {
			logger.Error("Failed to write image file", slog.Any("error", err))
			response.Error(w, errors.InternalError("Failed to store image").WithError(err))

			return
		}

		logger.Info("Image uploaded", slog.String("filename", filename))
		response.Success(w, http.StatusCreated, map[string]string{"imageUrl": "/uploads/" + filename})
	}
}
