package handlers

import (
	"net/http"

	"github.com/jvasek/facemark/internal/training"
)

// TrainingHandler exposes the training coordinator's status to operators.
type TrainingHandler struct {
	coordinator *training.Coordinator
}

// NewTrainingHandler creates a new training handler.
func NewTrainingHandler(coordinator *training.Coordinator) *TrainingHandler {
	return &TrainingHandler{coordinator: coordinator}
}

// Status returns the most recent training run, if any.
func (h *TrainingHandler) Status(w http.ResponseWriter, r *http.Request) {
	last := h.coordinator.LastRun()
	if last == nil {
		respondJSON(w, http.StatusOK, map[string]any{"last_run": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"last_run": last})
}
