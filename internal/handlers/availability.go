package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinio/clinicsched/internal/availability"
	"github.com/clinio/clinicsched/internal/booking"
	"github.com/clinio/clinicsched/internal/model"
)

// AvailabilityHandler is the thin HTTP surface over the engine and the guard.
// Booking writes live in the appointment service; this one only answers
// "what is open" and "would this range collide".
type AvailabilityHandler struct {
	engine *availability.Engine
	guard  *booking.Guard
	logger *slog.Logger
}

func NewAvailabilityHandler(engine *availability.Engine, guard *booking.Guard, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{engine: engine, guard: guard, logger: logger}
}

type conflictResponse struct {
	Conflict bool `json:"conflict"`
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doctorID := strings.TrimSpace(r.URL.Query().Get("doctor_id"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if doctorID == "" || date == "" {
		http.Error(w, "doctor_id and date are required", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(doctorID); err != nil {
		http.Error(w, "invalid doctor_id", http.StatusBadRequest)
		return
	}

	slots, err := h.engine.GetAvailableSlots(r.Context(), doctorID, date)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidDate) {
			http.Error(w, "invalid date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		h.logger.Error("slot computation failed", "err", err, "doctor_id", doctorID, "date", date)
		http.Error(w, "failed to load slots", http.StatusInternalServerError)
		return
	}

	if slots == nil {
		slots = []model.TimeSlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *AvailabilityHandler) Conflict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	doctorID := strings.TrimSpace(q.Get("doctor_id"))
	if doctorID == "" {
		http.Error(w, "doctor_id is required", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(doctorID); err != nil {
		http.Error(w, "invalid doctor_id", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("start")))
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("end")))
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}

	excludeID := strings.TrimSpace(q.Get("exclude_appointment_id"))
	if excludeID != "" {
		if _, err := uuid.Parse(excludeID); err != nil {
			http.Error(w, "invalid exclude_appointment_id", http.StatusBadRequest)
			return
		}
	}

	var conflict bool
	if excludeID != "" {
		conflict, err = h.guard.HasConflictExcluding(r.Context(), doctorID, start, end, excludeID)
	} else {
		conflict, err = h.guard.HasConflict(r.Context(), doctorID, start, end)
	}
	if err != nil {
		if errors.Is(err, booking.ErrInvalidRange) {
			http.Error(w, "end must be after start", http.StatusBadRequest)
			return
		}
		h.logger.Error("conflict check failed", "err", err, "doctor_id", doctorID)
		http.Error(w, "failed to check conflicts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, conflictResponse{Conflict: conflict})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
