package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/featherlab/rankline/internal/events"
	"github.com/featherlab/rankline/internal/scoring"
	"github.com/featherlab/rankline/internal/store"
)

type PresetsHandler struct {
	store  store.Store
	events events.Client
}

func NewPresetsHandler(s store.Store, e events.Client) *PresetsHandler {
	return &PresetsHandler{store: s, events: e}
}

type PresetRequest struct {
	Name    string               `json:"name"`
	Weights scoring.WeightConfig `json:"weights"`
}

func (h *PresetsHandler) List(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.ListPresets(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if presets == nil {
		presets = []*store.WeightPreset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

func (h *PresetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preset id"})
		return
	}

	preset, err := h.store.GetPreset(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if preset == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "preset not found"})
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

func (h *PresetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	if err := req.Weights.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	preset := &store.WeightPreset{Name: req.Name, Weights: req.Weights}
	if err := h.store.CreatePreset(r.Context(), preset); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.publishChange(preset, "created")
	writeJSON(w, http.StatusCreated, preset)
}

func (h *PresetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preset id"})
		return
	}

	preset, err := h.store.GetPreset(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if preset == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "preset not found"})
		return
	}

	var req PresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.Weights.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if req.Name != "" {
		preset.Name = req.Name
	}
	preset.Weights = req.Weights

	if err := h.store.UpdatePreset(r.Context(), preset); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.publishChange(preset, "updated")
	writeJSON(w, http.StatusOK, preset)
}

func (h *PresetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preset id"})
		return
	}

	if err := h.store.DeletePreset(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.publishChange(&store.WeightPreset{ID: id}, "deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *PresetsHandler) publishChange(preset *store.WeightPreset, action string) {
	if h.events == nil {
		return
	}
	_ = h.events.Publish(events.SubjectPresetChanged, events.PresetChangedEvent{
		PresetID:  preset.ID.String(),
		Name:      preset.Name,
		Action:    action,
		Timestamp: time.Now(),
	})
}
