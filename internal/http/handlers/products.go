package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"server/internal/domain"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes bounds the in-memory multipart parse. Ten images at a few
// megabytes each fit comfortably.
const maxUploadBytes = 64 << 20

// UploadProduct handles POST /api/images/upload: a multipart form carrying
// productName, userDescription, optional size[]/price[] pairs, and 1-10
// image parts.
func (a *App) UploadProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "Request body must be a multipart form.")
		return
	}

	sub := domain.Submission{
		ProductName:     r.FormValue("productName"),
		UserDescription: r.FormValue("userDescription"),
		Sizes:           r.Form["size[]"],
		Prices:          r.Form["price[]"],
	}
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				a.error(w, http.StatusBadRequest, "Failed to read uploaded image.")
				return
			}
			data, err := io.ReadAll(file)
			_ = file.Close()
			if err != nil {
				a.error(w, http.StatusBadRequest, "Failed to read uploaded image.")
				return
			}
			sub.Files = append(sub.Files, domain.SubmissionFile{Filename: header.Filename, Data: data})
		}
	}

	product, err := a.Uploader.Upload(r.Context(), sub)
	if err != nil {
		a.uploadError(w, r, err)
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"message": "Images uploaded, description generated, and saved successfully!",
		"product": product,
	})
}

// uploadError maps each pipeline stage failure to its user-facing message.
func (a *App) uploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrValidation) {
		a.Logger.Warn().Err(err).Msg("upload rejected")
		a.error(w, http.StatusBadRequest, "Product name, user description, and at least one image are required.")
		return
	}

	log := a.Logger.Error().Err(err).Str("path", r.URL.Path)
	switch {
	case errors.Is(err, domain.ErrGeneration):
		log.Msg("description generation failed")
		a.error(w, http.StatusInternalServerError, "Failed to generate product description.")
	case errors.Is(err, domain.ErrImageProcessing):
		log.Msg("image watermarking failed")
		a.error(w, http.StatusInternalServerError, "Failed to process uploaded images.")
	case errors.Is(err, domain.ErrStorageUpload):
		log.Msg("object storage upload failed")
		a.error(w, http.StatusInternalServerError, "Failed to upload images to storage.")
	case errors.Is(err, domain.ErrPersistence):
		log.Msg("product persistence failed")
		a.error(w, http.StatusInternalServerError, "Failed to save image URLs and description to the database.")
	default:
		log.Msg("upload failed")
		a.error(w, http.StatusInternalServerError, "Failed to upload and save images.")
	}
}

// GetProduct handles GET /api/images/{productName}.
func (a *App) GetProduct(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "productName")
	// chi leaves path params escaped when the request path carries encodings.
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	product, err := a.Products.FindByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Product not found")
			return
		}
		a.Logger.Error().Err(err).Str("product", name).Msg("product lookup failed")
		a.error(w, http.StatusInternalServerError, "Failed to fetch images and description")
		return
	}
	a.json(w, http.StatusOK, product)
}
