package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/bureau"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/letters"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/parser"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/repository"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/service"
)

const maxBodyBytes = 5 << 20

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts every route. auth wraps the protected routes.
func (h *Handler) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(auth)
	api.HandleFunc("/reports/text", h.AnalyzeText).Methods(http.MethodPost)
	api.HandleFunc("/reports/xml", h.AnalyzeXML).Methods(http.MethodPost)
	api.HandleFunc("/accounts/csv", h.ImportCSV).Methods(http.MethodPost)
	api.HandleFunc("/accounts/imported", h.ImportedAccounts).Methods(http.MethodGet)
	api.HandleFunc("/scores", h.CalculateScore).Methods(http.MethodPost)
	api.HandleFunc("/scores/latest", h.LatestScore).Methods(http.MethodGet)
	api.HandleFunc("/scores/impact", h.ScoreImpact).Methods(http.MethodPost)
	api.HandleFunc("/bureaus/simulate", h.SimulateBureaus).Methods(http.MethodPost)
	api.HandleFunc("/payments/optimal", h.OptimalPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/plan", h.PaymentPlan).Methods(http.MethodPost)
	api.HandleFunc("/letters", h.GenerateLetter).Methods(http.MethodPost)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type textReportRequest struct {
	Text   string               `json:"text"`
	Bureau *service.KnownBureau `json:"bureau,omitempty"`
}

// AnalyzeText handles a free-text report upload
func (h *Handler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req textReportRequest
	if !decode(w, r, &req) {
		return
	}
	analysis, err := h.svc.AnalyzeReportText(r.Context(), req.Text, req.Bureau)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, analysis)
}

// AnalyzeXML handles a bureau XML export sent as the raw body. The optional
// bureau and bureau_score query parameters request simulated bureau scores.
func (h *Handler) AnalyzeXML(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var known *service.KnownBureau
	if name := r.URL.Query().Get("bureau"); name != "" {
		known = &service.KnownBureau{Bureau: name}
		if raw := r.URL.Query().Get("bureau_score"); raw != "" {
			score, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "Invalid bureau_score", http.StatusBadRequest)
				return
			}
			known.Score = score
		}
	}

	analysis, err := h.svc.AnalyzeReportXML(r.Context(), body, known)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, analysis)
}

// ImportCSV handles a CSV accounts export sent as the raw body
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.ImportAccountsCSV(r.Context(), string(body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"accounts": rows})
}

// ImportedAccounts lists previously imported rows with masked account numbers
func (h *Handler) ImportedAccounts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ImportedAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": rows})
}

// CalculateScore scores a JSON credit profile
func (h *Handler) CalculateScore(w http.ResponseWriter, r *http.Request) {
	var profile models.CreditProfile
	if !decode(w, r, &profile) {
		return
	}
	snap, err := h.svc.CalculateScore(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// LatestScore returns the caller's most recent snapshot
func (h *Handler) LatestScore(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.LatestScore(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type impactRequest struct {
	Current models.CreditProfile  `json:"current"`
	Changes models.ProfileChanges `json:"changes"`
}

// ScoreImpact runs a what-if scenario
func (h *Handler) ScoreImpact(w http.ResponseWriter, r *http.Request) {
	var req impactRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ScoreImpact(req.Current, req.Changes))
}

type simulateRequest struct {
	Bureau       string `json:"bureau"`
	Score        int    `json:"score"`
	AccountCount int    `json:"account_count"`
}

// SimulateBureaus estimates the missing bureau scores
func (h *Handler) SimulateBureaus(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !decode(w, r, &req) {
		return
	}
	scores, err := h.svc.SimulateBureaus(r.Context(), service.KnownBureau{Bureau: req.Bureau, Score: req.Score}, req.AccountCount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": scores})
}

// OptimalPayment recommends a payment date for one account
func (h *Handler) OptimalPayment(w http.ResponseWriter, r *http.Request) {
	var acc models.LiveAccount
	if !decode(w, r, &acc) {
		return
	}
	if acc.DueDate.IsZero() {
		http.Error(w, "due_date is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.OptimalPayment(acc))
}

type planRequest struct {
	Accounts []models.LiveAccount `json:"accounts"`
}

// PaymentPlan stores the caller's accounts and returns their recommendations
func (h *Handler) PaymentPlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !decode(w, r, &req) {
		return
	}
	for _, acc := range req.Accounts {
		if acc.DueDate.IsZero() {
			http.Error(w, "due_date is required for every account", http.StatusBadRequest)
			return
		}
	}
	recs, err := h.svc.PaymentPlan(r.Context(), req.Accounts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

type letterRequest struct {
	Type models.LetterType `json:"type"`
	models.LetterInput
}

// GenerateLetter renders a dispute letter
func (h *Handler) GenerateLetter(w http.ResponseWriter, r *http.Request) {
	var req letterRequest
	if !decode(w, r, &req) {
		return
	}
	letter, err := h.svc.GenerateLetter(r.Context(), req.Type, req.LetterInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, letter)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, parser.ErrInsufficientCSVRows),
		errors.Is(err, service.ErrInvalidReport),
		errors.Is(err, bureau.ErrUnknownBureau),
		errors.Is(err, letters.ErrUnknownLetterType),
		errors.Is(err, letters.ErrMissingConsumer):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
