package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"LivingHistory/server/internal/characters"
	"LivingHistory/server/internal/models"
)

// CharacterHandlers handles character roster and custom-character requests
type CharacterHandlers struct {
	service *characters.Service
	logger  *zap.Logger
}

func NewCharacterHandlers(service *characters.Service, logger *zap.Logger) *CharacterHandlers {
	return &CharacterHandlers{
		service: service,
		logger:  logger,
	}
}

// CreateCustomRequest represents a custom-character creation request
type CreateCustomRequest struct {
	Name       string   `json:"name"`
	Era        string   `json:"era"`
	Background string   `json:"background"`
	Traits     []string `json:"traits"`
}

// Roster returns the historical character roster, optionally filtered
func (h *CharacterHandlers) Roster(w http.ResponseWriter, r *http.Request) {
	var list []*models.Character
	switch {
	case r.URL.Query().Get("search") != "":
		list = h.service.SearchHistorical(r.URL.Query().Get("search"))
	case r.URL.Query().Get("era") != "":
		list = h.service.FilterHistoricalByEra(r.URL.Query().Get("era"))
	default:
		list = h.service.AllHistorical()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"characters": list,
	})
}

// Character returns one character by id
func (h *CharacterHandlers) Character(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "characterID")

	character, err := h.service.Historical(r.Context(), id)
	if errors.Is(err, characters.ErrCharacterNotFound) {
		character, err = h.service.Custom(r.Context(), id)
	}
	if errors.Is(err, characters.ErrCharacterNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"error":   "Character not found",
		})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"character": character,
	})
}

// CreateCustom creates a user-defined character
func (h *CharacterHandlers) CreateCustom(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "name is required",
		})
		return
	}

	character, err := h.service.CreateCustom(r.Context(), req.Name, req.Era, req.Background, req.Traits)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"character": character,
	})
}

// ListCustom returns all stored custom characters
func (h *CharacterHandlers) ListCustom(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCustom(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"characters": list,
	})
}
