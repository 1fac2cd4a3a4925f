package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/chamber-scheduler/internal/appointments"
	"github.com/wolfman30/chamber-scheduler/internal/schedule"
	"github.com/wolfman30/chamber-scheduler/pkg/logging"
)

// Handler serves the dashboard API.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new scheduling handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the dashboard endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/schedule", h.GetSchedule)
	r.Route("/schedule/{day}", func(r chi.Router) {
		r.Get("/", h.GetDay)
		r.Post("/chambers", h.CreateChamber)
		r.Put("/chambers/{chamberID}", h.UpdateChamber)
		r.Delete("/chambers/{chamberID}", h.DeleteChamber)
	})
	r.Get("/appointments", h.ListAppointments)
	r.Post("/bookings", h.BookSlot)
	r.Post("/save", h.SaveAll)
	return r
}

// ChamberRequest is the add/edit chamber form.
type ChamberRequest struct {
	Place string `json:"place"`
	Slots string `json:"slots"`
}

// BookingRequest is the patient intake form plus the selected slot.
type BookingRequest struct {
	Day       string               `json:"day"`
	ChamberID string               `json:"chamberId"`
	SlotID    string               `json:"slotId"`
	Patient   appointments.Patient `json:"patient"`
}

// DayResponse lists the chambers held on one day.
type DayResponse struct {
	Day      schedule.Day       `json:"day"`
	Chambers []schedule.Chamber `json:"chambers"`
}

// ListAppointmentsResponse is the response for listing appointments
type ListAppointmentsResponse struct {
	Appointments []appointments.Appointment `json:"appointments"`
	Count        int                        `json:"count"`
}

// GetSchedule handles GET /schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Schedule())
}

// GetDay handles GET /schedule/{day}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	chambers := h.service.Chambers(day)
	if chambers == nil {
		chambers = []schedule.Chamber{}
	}
	writeJSON(w, http.StatusOK, DayResponse{Day: day, Chambers: chambers})
}

// CreateChamber handles POST /schedule/{day}/chambers
func (h *Handler) CreateChamber(w http.ResponseWriter, r *http.Request) {
	h.saveChamber(w, r, "", http.StatusCreated)
}

// UpdateChamber handles PUT /schedule/{day}/chambers/{chamberID}
func (h *Handler) UpdateChamber(w http.ResponseWriter, r *http.Request) {
	h.saveChamber(w, r, chi.URLParam(r, "chamberID"), http.StatusOK)
}

func (h *Handler) saveChamber(w http.ResponseWriter, r *http.Request, chamberID string, status int) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	var req ChamberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chamber request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chamber, err := h.service.UpsertChamber(r.Context(), day, schedule.ChamberInput{
		ID:    chamberID,
		Place: req.Place,
		Slots: req.Slots,
	})
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidDay) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "chamber saved but not persisted", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, chamber)
}

// DeleteChamber handles DELETE /schedule/{day}/chambers/{chamberID}?confirm=true
func (h *Handler) DeleteChamber(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	chamberID := chi.URLParam(r, "chamberID")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	accepted, err := h.service.DeleteChamber(r.Context(), day, chamberID, func(string) bool {
		return confirmed
	})
	if !accepted {
		writeJSON(w, http.StatusPreconditionRequired, map[string]string{
			"error":   "confirmation required",
			"confirm": DeleteChamberPrompt,
		})
		return
	}
	if err != nil {
		http.Error(w, "chamber deleted but not persisted", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAppointments handles GET /appointments
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	list := h.service.Appointments()
	writeJSON(w, http.StatusOK, ListAppointmentsResponse{Appointments: list, Count: len(list)})
}

// BookSlot handles POST /bookings
func (h *Handler) BookSlot(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	patient := req.Patient.Normalize()
	if err := patient.Validate(); err != nil {
		if errors.Is(err, appointments.ErrMissingRequiredFields) {
			http.Error(w, "Please fill all required fields.", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	day, err := schedule.ParseDay(req.Day)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sel, err := h.service.SelectSlot(day, req.ChamberID, req.SlotID)
	switch {
	case errors.Is(err, ErrSlotNotFound):
		http.Error(w, "slot not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrSlotBooked):
		http.Error(w, "slot already booked", http.StatusConflict)
		return
	}

	result, err := h.service.Book(r.Context(), sel, patient)
	if err != nil {
		http.Error(w, "appointment booked but not persisted", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// SaveAll handles POST /save
func (h *Handler) SaveAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SaveAll(r.Context()); err != nil {
		http.Error(w, "failed to save", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dayParam(w http.ResponseWriter, r *http.Request) (schedule.Day, bool) {
	day, err := schedule.ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return day, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
