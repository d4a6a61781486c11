package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shelternet/apiserver/internal/services"
	"github.com/shelternet/apiserver/types"
)

const maxImageBytes = 16 << 20

// AnimalHandler provides HTTP handlers for animal queries and images.
type AnimalHandler struct {
	animalService *services.AnimalService
}

// NewAnimalHandler constructs a handler with the provided service.
func NewAnimalHandler(animalService *services.AnimalService) *AnimalHandler {
	return &AnimalHandler{animalService: animalService}
}

// AnimalRouter registers animal routes on the given router.
func AnimalRouter(r chi.Router, animalService *services.AnimalService) {
	handler := NewAnimalHandler(animalService)

	r.Get("/", handler.ListAnimals)
	r.Route("/{animalID}", func(r chi.Router) {
		r.Get("/", handler.GetAnimal)
		r.Post("/image", handler.UploadImage)
	})
}

func (h *AnimalHandler) ListAnimals(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.animalService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list animals")
		return
	}

	writeJSON(w, http.StatusOK, AnimalListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *AnimalHandler) GetAnimal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "animalID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	animal, err := h.animalService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch animal")
		return
	}

	writeJSON(w, http.StatusOK, animal)
}

// UploadImage stores a multipart image in object storage and records its
// key on the animal.
func (h *AnimalHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "animalID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	animal, err := h.animalService.AttachImage(
		r.Context(),
		id,
		header.Filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		writeServiceError(w, err, "failed to store image")
		return
	}

	writeJSON(w, http.StatusOK, animal)
}

type AnimalListResponse struct {
	Items []types.Animal `json:"items"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
}
