package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"LivingHistory/server/internal/engine"
	"LivingHistory/server/internal/models"
	"LivingHistory/server/internal/session"
)

// StoryHandlers handles storyline-related requests
type StoryHandlers struct {
	controller *session.Controller
	logger     *zap.Logger
}

func NewStoryHandlers(controller *session.Controller, logger *zap.Logger) *StoryHandlers {
	return &StoryHandlers{
		controller: controller,
		logger:     logger,
	}
}

// StartStoryRequest represents a storyline start request
type StartStoryRequest struct {
	CharacterID   string `json:"character_id"`
	CharacterType string `json:"character_type"`
	Accuracy      string `json:"accuracy"`
	StorylineID   string `json:"storyline_id,omitempty"`
}

// StoryResponse is the common envelope for storyline endpoints
type StoryResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Storyline *models.Storyline `json:"storyline,omitempty"`
	Node      *models.StoryNode `json:"node,omitempty"`
	Choices   []models.Choice   `json:"choices,omitempty"`
}

// ChooseRequest represents a choice selection request
type ChooseRequest struct {
	ChoiceID string `json:"choice_id"`
}

// SaveRequest represents a save request
type SaveRequest struct {
	Title string `json:"title,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *StoryHandlers) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, StoryResponse{Success: false, Error: err.Error()})
}

// StartStory begins or resumes a storyline for a character
func (h *StoryHandlers) StartStory(w http.ResponseWriter, r *http.Request) {
	var req StartStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StoryResponse{Success: false, Error: "Invalid request body"})
		return
	}
	if req.CharacterID == "" {
		writeJSON(w, http.StatusBadRequest, StoryResponse{Success: false, Error: "character_id is required"})
		return
	}

	characterType := models.CharacterHistorical
	switch models.CharacterType(req.CharacterType) {
	case "":
	case models.CharacterHistorical, models.CharacterCustom:
		characterType = models.CharacterType(req.CharacterType)
	default:
		writeJSON(w, http.StatusBadRequest, StoryResponse{Success: false, Error: "character_type must be historical or custom"})
		return
	}
	accuracy := models.AccuracyAccurate
	switch models.Accuracy(req.Accuracy) {
	case "":
	case models.AccuracyAccurate, models.AccuracyCreative:
		accuracy = models.Accuracy(req.Accuracy)
	default:
		writeJSON(w, http.StatusBadRequest, StoryResponse{Success: false, Error: "accuracy must be accurate or creative"})
		return
	}

	sl, err := h.controller.Start(r.Context(), req.CharacterID, characterType, accuracy, req.StorylineID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StoryResponse{Success: true, Storyline: sl})
}

// Choose applies a choice on the active storyline
func (h *StoryHandlers) Choose(w http.ResponseWriter, r *http.Request) {
	var req ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StoryResponse{Success: false, Error: "Invalid request body"})
		return
	}
	if req.ChoiceID == "" {
		writeJSON(w, http.StatusBadRequest, StoryResponse{Success: false, Error: "choice_id is required"})
		return
	}

	node, err := h.controller.Choose(r.Context(), req.ChoiceID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StoryResponse{Success: true, Node: node, Choices: node.Choices})
}

// SaveStory persists the active storyline, optionally retitling it
func (h *StoryHandlers) SaveStory(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StoryResponse{Success: false, Error: "Invalid request body"})
		return
	}

	if err := h.controller.Save(r.Context(), req.Title); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StoryResponse{Success: true})
}

// ResumeStory loads a saved storyline and pushes its current position
func (h *StoryHandlers) ResumeStory(w http.ResponseWriter, r *http.Request) {
	storylineID := chi.URLParam(r, "storylineID")

	sl, err := h.controller.Resume(r.Context(), storylineID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StoryResponse{Success: true, Storyline: sl})
}

// ListStorylines returns the saved-storyline index
func (h *StoryHandlers) ListStorylines(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.controller.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"storylines": summaries,
	})
}

// DeleteStoryline removes a saved storyline
func (h *StoryHandlers) DeleteStoryline(w http.ResponseWriter, r *http.Request) {
	storylineID := chi.URLParam(r, "storylineID")

	if err := h.controller.Delete(r.Context(), storylineID); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StoryResponse{Success: true})
}

// Progress reports completion for a storyline
func (h *StoryHandlers) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.controller.Progress(r.Context(), r.URL.Query().Get("storyline_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"progress": progress,
	})
}

// PlayerStats returns the storyline's display-ready attribute list
func (h *StoryHandlers) PlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.controller.PlayerStats(r.Context(), r.URL.Query().Get("storyline_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// Relationships returns the storyline's relationship standings
func (h *StoryHandlers) Relationships(w http.ResponseWriter, r *http.Request) {
	rels, err := h.controller.Relationships(r.Context(), r.URL.Query().Get("storyline_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"relationships": rels,
	})
}

// Achievements returns the badges earned in a storyline
func (h *StoryHandlers) Achievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.controller.Achievements(r.Context(), r.URL.Query().Get("storyline_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"achievements": achievements,
	})
}

// Transcript renders the storyline's playthrough as markdown
func (h *StoryHandlers) Transcript(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.controller.Transcript(r.Context(), chi.URLParam(r, "storylineID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(transcript))
}

// NodeVisuals returns generated imagery for a story node
func (h *StoryHandlers) NodeVisuals(w http.ResponseWriter, r *http.Request) {
	visuals, err := h.controller.NodeVisuals(r.Context(), chi.URLParam(r, "storylineID"), chi.URLParam(r, "nodeID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"visuals": visuals,
	})
}
