package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"clubledger/internal/audit"
	"clubledger/internal/auth"
	"clubledger/internal/observability/metrics"
	stats "clubledger/internal/stats/domain"
)

// Handler provides monthly statistics HTTP endpoints.
type Handler struct {
	rollup      *stats.RollupService
	repo        stats.AggregateRepository
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(rollup *stats.RollupService, repo stats.AggregateRepository, auditLogger audit.Logger) (*Handler, error) {
	if rollup == nil {
		return nil, errors.New("stats handler: nil rollup service")
	}
	if repo == nil {
		return nil, errors.New("stats handler: nil aggregate repository")
	}
	return &Handler{rollup: rollup, repo: repo, auditLogger: auditLogger}, nil
}

// ServeHTTP routes GET /api/v1/stats/monthly and POST /api/v1/stats/rollup.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/stats/monthly" && r.Method == http.MethodGet:
		h.handleGetMonthly(w, r)
	case r.URL.Path == "/api/v1/stats/rollup" && r.Method == http.MethodPost:
		h.handleRollup(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type aggregateResponse struct {
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	GamesPlayed   int       `json:"games_played"`
	Wins          int       `json:"wins"`
	Draws         int       `json:"draws"`
	Losses        int       `json:"losses"`
	GoalsFor      int       `json:"goals_for"`
	GoalsAgainst  int       `json:"goals_against"`
	FieldFeeTotal float64   `json:"field_fee_total"`
	WaterFeeTotal float64   `json:"water_fee_total"`
	FinalFeeTotal float64   `json:"final_fee_total"`
	ComputedAt    time.Time `json:"computed_at"`
}

func (h *Handler) handleGetMonthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriodQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	aggregate, err := h.repo.Get(r.Context(), year, month)
	if errors.Is(err, stats.ErrAggregateNotFound) {
		http.Error(w, "no aggregate for period", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "load aggregate error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(aggregate))
}

type rollupRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (h *Handler) handleRollup(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req rollupRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	started := time.Now()
	aggregate, err := h.rollup.RollupMonth(r.Context(), req.Year, time.Month(req.Month))
	if errors.Is(err, stats.ErrInvalidPeriod) {
		http.Error(w, "invalid period", http.StatusBadRequest)
		return
	}
	if err != nil {
		metrics.ObserveRollup(metrics.ResultError, time.Since(started))
		http.Error(w, "rollup error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveRollup(metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(aggregate))

	h.logAudit(r, req.Year, req.Month)
}

func (h *Handler) logAudit(r *http.Request, year, month int) {
	clubID := auth.ClubIDFromContext(r.Context())
	if h.auditLogger == nil || clubID == "" {
		return
	}
	meta, _ := json.Marshal(map[string]any{"year": year, "month": month})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		ClubID:       clubID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "stats.rollup",
		ResourceType: "monthly_stats",
		ResourceID:   periodKey(year, month),
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func parsePeriodQuery(r *http.Request) (int, time.Month, error) {
	yearValue := r.URL.Query().Get("year")
	monthValue := r.URL.Query().Get("month")
	if yearValue == "" || monthValue == "" {
		return 0, 0, errors.New("year and month are required")
	}
	year, err := strconv.Atoi(yearValue)
	if err != nil || year <= 0 {
		return 0, 0, errors.New("year must be a positive integer")
	}
	month, err := strconv.Atoi(monthValue)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("month must be 1..12")
	}
	return year, time.Month(month), nil
}

func periodKey(year, month int) string {
	return strconv.Itoa(year) + "-" + twoDigits(month)
}

func twoDigits(value int) string {
	if value < 10 {
		return "0" + strconv.Itoa(value)
	}
	return strconv.Itoa(value)
}

func toResponse(aggregate *stats.MonthlyAggregate) aggregateResponse {
	return aggregateResponse{
		Year:          aggregate.Year,
		Month:         int(aggregate.Month),
		GamesPlayed:   aggregate.GamesPlayed,
		Wins:          aggregate.Wins,
		Draws:         aggregate.Draws,
		Losses:        aggregate.Losses,
		GoalsFor:      aggregate.GoalsFor,
		GoalsAgainst:  aggregate.GoalsAgainst,
		FieldFeeTotal: aggregate.FieldFeeTotal,
		WaterFeeTotal: aggregate.WaterFeeTotal,
		FinalFeeTotal: aggregate.FinalFeeTotal,
		ComputedAt:    aggregate.ComputedAt,
	}
}
