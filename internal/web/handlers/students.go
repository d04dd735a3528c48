package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jvasek/facemark/internal/enrollment"
	"github.com/jvasek/facemark/internal/imagestore"
)

// StudentsHandler handles enrollment endpoints.
type StudentsHandler struct {
	manager *enrollment.Manager
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(manager *enrollment.Manager) *StudentsHandler {
	return &StudentsHandler{manager: manager}
}

// imagePayload is one base64-encoded enrollment image.
type imagePayload struct {
	Data string `json:"data"`
}

// registerRequest is the enrollment request body.
type registerRequest struct {
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	RegistrationNo string         `json:"registration_no"`
	Password       string         `json:"password"`
	Images         []imagePayload `json:"images"`
}

// updateRequest is the identity update request body.
type updateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register enrolls a new student with their face images.
func (h *StudentsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.RegistrationNo == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "registration_no and name are required")
		return
	}
	if len(req.Images) == 0 {
		respondError(w, http.StatusBadRequest, "at least one enrollment image is required")
		return
	}

	images := make([][]byte, 0, len(req.Images))
	for _, img := range req.Images {
		blob, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid base64 image data")
			return
		}
		images = append(images, blob)
	}

	identity, err := h.manager.Enroll(r.Context(), req.RegistrationNo, req.Name, req.Email, req.Password, images)
	if errors.Is(err, enrollment.ErrAlreadyEnrolled) {
		respondError(w, http.StatusConflict, "already registered")
		return
	}
	if errors.Is(err, imagestore.ErrStorageWrite) {
		log.Printf("[web] storing images for %s: %v", sanitizeForLog(req.RegistrationNo), err)
		respondError(w, http.StatusInternalServerError, "could not store enrollment images")
		return
	}
	if err != nil {
		log.Printf("[web] enrolling %s: %v", sanitizeForLog(req.RegistrationNo), err)
		respondError(w, http.StatusInternalServerError, "enrollment failed")
		return
	}

	respondJSON(w, http.StatusCreated, identity)
}

// Get returns one enrolled student.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	regNo := chi.URLParam(r, "registrationNo")

	identity, err := h.manager.Get(r.Context(), regNo)
	if errors.Is(err, enrollment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}
	if err != nil {
		log.Printf("[web] fetching %s: %v", sanitizeForLog(regNo), err)
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, identity)
}

// List returns all enrolled students.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.manager.List(r.Context())
	if err != nil {
		log.Printf("[web] listing students: %v", err)
		respondError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	respondJSON(w, http.StatusOK, identities)
}

// Update changes a student's name, email, or credential.
func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	regNo := chi.URLParam(r, "registrationNo")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	identity, err := h.manager.Update(r.Context(), regNo, req.Name, req.Email, req.Password)
	if errors.Is(err, enrollment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}
	if err != nil {
		log.Printf("[web] updating %s: %v", sanitizeForLog(regNo), err)
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}

	respondJSON(w, http.StatusOK, identity)
}

// Delete removes a student, their attendance history, and their images.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	regNo := chi.URLParam(r, "registrationNo")

	err := h.manager.Remove(r.Context(), regNo)
	if errors.Is(err, enrollment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}
	if err != nil {
		log.Printf("[web] deleting %s: %v", sanitizeForLog(regNo), err)
		respondError(w, http.StatusInternalServerError, "deletion failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "student and related attendance deleted",
	})
}
