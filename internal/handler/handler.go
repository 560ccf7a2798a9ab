package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/Dan9191/fee-reminder/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// AuditService is the part of service.Service the HTTP layer needs
type AuditService interface {
	RunDailyAudit(ctx context.Context, today billing.Date) (*service.Report, error)
	PreviewDue(ctx context.Context, today billing.Date) (*service.Report, error)
	RunState(ctx context.Context) (*models.RunState, error)
}

type Handler struct {
	svc AuditService
	log *logrus.Logger
	loc *time.Location
	now func() time.Time
}

func NewHandler(svc AuditService, loc *time.Location, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log, loc: loc, now: time.Now}
}

// Routes registers the audit endpoints on r
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/audit/run", h.RunAudit).Methods("POST")
	r.HandleFunc("/audit/due", h.PreviewDue).Methods("GET")
	r.HandleFunc("/audit/state", h.RunState).Methods("GET")
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RunAudit triggers the daily audit for ?date= or today
func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	today, ok := h.today(w, r)
	if !ok {
		return
	}
	report, err := h.svc.RunDailyAudit(r.Context(), today)
	if err != nil {
		h.fail(w, "Failed to run audit", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// PreviewDue lists who would be reminded for ?date= or today, sending nothing
func (h *Handler) PreviewDue(w http.ResponseWriter, r *http.Request) {
	today, ok := h.today(w, r)
	if !ok {
		return
	}
	report, err := h.svc.PreviewDue(r.Context(), today)
	if err != nil {
		h.fail(w, "Failed to preview audit", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RunState returns the last recorded run
func (h *Handler) RunState(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.RunState(r.Context())
	if err != nil {
		h.fail(w, "Failed to get run state", err)
		return
	}
	if state == nil {
		http.Error(w, "No audit has been recorded", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"last_run_date":  billing.DateOf(state.LastRunDate),
		"last_run_count": state.LastRunCount,
		"updated_at":     state.UpdatedAt,
	})
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) (billing.Date, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return billing.DateOf(h.now().In(h.loc)), true
	}
	d, ok := billing.ParseDate(raw)
	if !ok {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return billing.Date{}, false
	}
	return d, true
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.log.WithError(err).Error(msg)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, msg, http.StatusServiceUnavailable)
	case errors.Is(err, service.ErrStore):
		http.Error(w, msg+": store unavailable", http.StatusInternalServerError)
	default:
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
