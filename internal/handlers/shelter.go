package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shelternet/apiserver/internal/services"
	"github.com/shelternet/apiserver/types"
)

// ShelterHandler provides HTTP handlers for shelters and their animals.
type ShelterHandler struct {
	shelterService *services.ShelterService
}

// NewShelterHandler constructs a handler with the provided service.
func NewShelterHandler(shelterService *services.ShelterService) *ShelterHandler {
	return &ShelterHandler{shelterService: shelterService}
}

// ShelterRouter registers shelter routes on the given router.
func ShelterRouter(r chi.Router, shelterService *services.ShelterService) {
	handler := NewShelterHandler(shelterService)

	r.Get("/", handler.ListShelters)
	r.Post("/", handler.CreateShelter)
	r.Route("/{shelterID}", func(r chi.Router) {
		r.Get("/", handler.GetShelter)
		r.Post("/animals", handler.AddAnimal)
		r.Delete("/animals/{animalID}", handler.RemoveAnimal)
	})
}

func (h *ShelterHandler) ListShelters(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.shelterService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shelters")
		return
	}

	writeJSON(w, http.StatusOK, ShelterListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *ShelterHandler) GetShelter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "shelterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	shelter, animals, err := h.shelterService.GetWithAnimals(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch shelter")
		return
	}

	writeJSON(w, http.StatusOK, ShelterResponse{Shelter: shelter, Animals: animals})
}

func (h *ShelterHandler) CreateShelter(w http.ResponseWriter, r *http.Request) {
	var req CreateShelterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	shelter := types.Shelter{
		Name: req.Name,
		Address: types.Address{
			Street:   req.Street,
			City:     req.City,
			Postcode: req.Postcode,
			County:   req.County,
		},
		Telephone: req.Telephone,
		Website:   req.Website,
	}
	if req.Longitude != nil && req.Latitude != nil {
		shelter.Coordinates = &types.Coordinates{
			Longitude: *req.Longitude,
			Latitude:  *req.Latitude,
		}
	}

	created, err := h.shelterService.Create(r.Context(), shelter)
	if err != nil {
		writeServiceError(w, err, "failed to create shelter")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ShelterHandler) AddAnimal(w http.ResponseWriter, r *http.Request) {
	shelterID, err := parseID(r, "shelterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AddAnimalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	animal, err := h.shelterService.AddAnimal(r.Context(), types.Animal{
		Name:        req.Name,
		Type:        req.Type,
		Breed:       req.Breed,
		Age:         req.Age,
		Description: req.Description,
		ImageKey:    req.Image,
		ShelterID:   shelterID,
	})
	if err != nil {
		writeServiceError(w, err, "failed to add animal")
		return
	}

	writeJSON(w, http.StatusCreated, animal)
}

func (h *ShelterHandler) RemoveAnimal(w http.ResponseWriter, r *http.Request) {
	shelterID, err := parseID(r, "shelterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	animalID, err := parseID(r, "animalID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	shelter, err := h.shelterService.RemoveAnimal(r.Context(), animalID, shelterID)
	if err != nil {
		writeServiceError(w, err, "failed to remove animal")
		return
	}

	writeJSON(w, http.StatusOK, shelter)
}

type CreateShelterRequest struct {
	Name      string   `json:"name"`
	Street    string   `json:"street"`
	City      string   `json:"city"`
	Postcode  string   `json:"postcode"`
	County    string   `json:"county"`
	Telephone string   `json:"telephone"`
	Website   string   `json:"website,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
}

type AddAnimalRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Breed       string `json:"breed"`
	Age         string `json:"age"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image"`
}

type ShelterListResponse struct {
	Items []types.Shelter `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
}

type ShelterResponse struct {
	Shelter types.Shelter  `json:"shelter"`
	Animals []types.Animal `json:"animals"`
}
