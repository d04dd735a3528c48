package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jvasek/facemark/internal/attendance"
	"github.com/jvasek/facemark/internal/enrollment"
)

// AttendanceHandler handles attendance endpoints.
type AttendanceHandler struct {
	manager *enrollment.Manager
	ledger  *attendance.Ledger
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(manager *enrollment.Manager, ledger *attendance.Ledger) *AttendanceHandler {
	return &AttendanceHandler{manager: manager, ledger: ledger}
}

// markRequest carries the face matcher's result. CapturedImage is accepted for
// audit compatibility with the kiosk frontend but not stored.
type markRequest struct {
	RegistrationNo string `json:"registration_no"`
	CapturedImage  string `json:"captured_image,omitempty"`
}

// Mark records presence for a registration number produced by the face matcher.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.RegistrationNo == "" {
		respondError(w, http.StatusBadRequest, "registration_no is required")
		return
	}

	record, err := h.manager.MarkAttendanceByFaceMatch(r.Context(), req.RegistrationNo)
	if errors.Is(err, enrollment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}
	if err != nil {
		log.Printf("[web] marking attendance for %s: %v", sanitizeForLog(req.RegistrationNo), err)
		respondError(w, http.StatusInternalServerError, "marking attendance failed")
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// Fetch returns the full attendance history.
func (h *AttendanceHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.All(r.Context())
	if err != nil {
		log.Printf("[web] fetching attendance: %v", err)
		respondError(w, http.StatusInternalServerError, "fetching attendance failed")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// FetchByRegistration returns one student's attendance, newest first.
func (h *AttendanceHandler) FetchByRegistration(w http.ResponseWriter, r *http.Request) {
	regNo := chi.URLParam(r, "registrationNo")

	records, err := h.ledger.ByIdentity(r.Context(), regNo)
	if err != nil {
		log.Printf("[web] fetching attendance for %s: %v", sanitizeForLog(regNo), err)
		respondError(w, http.StatusInternalServerError, "fetching attendance failed")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// FetchByDate returns all attendance on one calendar date (?date=YYYY-MM-DD).
func (h *AttendanceHandler) FetchByDate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	records, err := h.ledger.ByDate(r.Context(), date)
	if err != nil {
		log.Printf("[web] fetching attendance by date %s: %v", raw, err)
		respondError(w, http.StatusInternalServerError, "fetching attendance failed")
		return
	}

	respondJSON(w, http.StatusOK, records)
}
