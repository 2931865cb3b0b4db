package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"clubledger/internal/audit"
	"clubledger/internal/auth"
	"clubledger/internal/fees/application"
	fees "clubledger/internal/fees/domain"
	"clubledger/internal/observability/metrics"
	roster "clubledger/internal/roster/domain"
)

// Handler provides fee HTTP endpoints under /api/v1/matches/.
type Handler struct {
	recalc       *application.MatchRecalculationService
	overrides    *application.OverrideService
	results      application.ResultRepository
	overrideRepo application.OverrideReader
	matchChecker auth.MatchClubChecker
	auditLogger  audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(
	recalc *application.MatchRecalculationService,
	overrides *application.OverrideService,
	results application.ResultRepository,
	overrideRepo application.OverrideReader,
	matchChecker auth.MatchClubChecker,
	auditLogger audit.Logger,
) (*Handler, error) {
	if recalc == nil {
		return nil, errors.New("fees handler: nil recalculation service")
	}
	if overrides == nil {
		return nil, errors.New("fees handler: nil override service")
	}
	if results == nil {
		return nil, errors.New("fees handler: nil result repository")
	}
	if overrideRepo == nil {
		return nil, errors.New("fees handler: nil override reader")
	}
	return &Handler{
		recalc:       recalc,
		overrides:    overrides,
		results:      results,
		overrideRepo: overrideRepo,
		matchChecker: matchChecker,
		auditLogger:  auditLogger,
	}, nil
}

// ServeHTTP routes /api/v1/matches/{id}/recalculate, /{id}/fees and
// /{id}/overrides/{playerID}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/matches/")
	if rest == r.URL.Path || rest == "" {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	matchID := parts[0]
	if matchID == "" {
		http.Error(w, "match id required", http.StatusBadRequest)
		return
	}

	clubID := auth.ClubIDFromContext(r.Context())
	if clubID != "" {
		if err := h.ensureMatchClub(r, clubID, matchID); err != nil {
			respondClubError(w, err)
			return
		}
	}

	switch {
	case len(parts) == 2 && parts[1] == "recalculate" && r.Method == http.MethodPost:
		h.handleRecalculate(w, r, matchID)
	case len(parts) == 2 && parts[1] == "fees" && r.Method == http.MethodGet:
		h.handleListFees(w, r, matchID)
	case len(parts) == 3 && parts[1] == "overrides" && r.Method == http.MethodPut:
		h.handlePutOverride(w, r, matchID, parts[2])
	case len(parts) == 3 && parts[1] == "overrides" && r.Method == http.MethodDelete:
		h.handleDeleteOverride(w, r, matchID, parts[2])
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleRecalculate(w http.ResponseWriter, r *http.Request, matchID string) {
	started := time.Now()
	summary, err := h.recalc.RecalculateMatch(r.Context(), matchID)
	// Fees committed; a lost invalidation signal is not a failed
	// recalculation from the caller's point of view.
	if err != nil && !errors.Is(err, application.ErrPublishAfterCommit) {
		metrics.ObserveRecalculation(metrics.ResultError, time.Since(started))
		respondFeeError(w, err)
		return
	}
	metrics.ObserveRecalculation(metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"match_id":           matchID,
		"total_participants": summary.TotalParticipants,
		"fee_coefficient":    summary.FeeCoefficient,
		"total_final_fees":   summary.TotalFinalFees,
	})

	h.logAudit(r, matchID, "", "fees.recalculate", map[string]any{
		"total_participants": summary.TotalParticipants,
		"total_final_fees":   summary.TotalFinalFees,
	})
}

type feeRow struct {
	PlayerID   string  `json:"player_id"`
	TotalTime  float64 `json:"total_time"`
	FieldFee   int64   `json:"field_fee"`
	LateFee    int64   `json:"late_fee"`
	VideoFee   int64   `json:"video_fee"`
	TotalFee   int64   `json:"total_fee"`
	FinalFee   float64 `json:"final_fee"`
	Overridden bool    `json:"overridden"`
}

func (h *Handler) handleListFees(w http.ResponseWriter, r *http.Request, matchID string) {
	results, err := h.results.ListByMatch(r.Context(), matchID)
	if err != nil {
		respondFeeError(w, err)
		return
	}
	overrides, err := h.overrideRepo.ListByMatch(r.Context(), matchID)
	if err != nil {
		respondFeeError(w, err)
		return
	}
	byPlayer := make(map[string]fees.Override, len(overrides))
	for _, override := range overrides {
		byPlayer[override.PlayerID] = override
	}

	rows := make([]feeRow, 0, len(results))
	for _, result := range results {
		row := feeRow{
			PlayerID:  result.PlayerID,
			TotalTime: result.TotalTime,
			FieldFee:  result.FieldFee,
			LateFee:   result.LateFee,
			VideoFee:  result.VideoFee,
			TotalFee:  result.TotalFee,
			FinalFee:  float64(result.TotalFee),
		}
		if override, ok := byPlayer[result.PlayerID]; ok {
			row.FinalFee = fees.FinalFee(result, &override)
			row.Overridden = true
		}
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

type overrideRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

func (h *Handler) handlePutOverride(w http.ResponseWriter, r *http.Request, matchID, playerID string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req overrideRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	override := fees.Override{
		MatchID:   matchID,
		PlayerID:  playerID,
		Amount:    req.Amount,
		Note:      req.Note,
		CreatedBy: auth.SubjectFromContext(r.Context()),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.overrides.Apply(r.Context(), override); err != nil {
		metrics.IncOverrideOperation(metrics.OverrideActionApply, metrics.ResultError)
		respondFeeError(w, err)
		return
	}
	metrics.IncOverrideOperation(metrics.OverrideActionApply, metrics.ResultSuccess)
	w.WriteHeader(http.StatusNoContent)

	h.logAudit(r, matchID, playerID, "override.apply", map[string]any{
		"amount": req.Amount,
		"note":   req.Note,
	})
}

func (h *Handler) handleDeleteOverride(w http.ResponseWriter, r *http.Request, matchID, playerID string) {
	if err := h.overrides.Remove(r.Context(), matchID, playerID); err != nil {
		metrics.IncOverrideOperation(metrics.OverrideActionRemove, metrics.ResultError)
		respondFeeError(w, err)
		return
	}
	metrics.IncOverrideOperation(metrics.OverrideActionRemove, metrics.ResultSuccess)
	w.WriteHeader(http.StatusNoContent)

	h.logAudit(r, matchID, playerID, "override.remove", nil)
}

func (h *Handler) logAudit(r *http.Request, matchID, playerID, action string, metadata map[string]any) {
	clubID := auth.ClubIDFromContext(r.Context())
	if h.auditLogger == nil || clubID == "" {
		return
	}
	var meta json.RawMessage
	if metadata != nil {
		meta, _ = json.Marshal(metadata)
	}
	resourceID := matchID
	resourceType := "match"
	if playerID != "" {
		resourceID = playerID
		resourceType = "override"
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		ClubID:       clubID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		MatchID:      matchID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func (h *Handler) ensureMatchClub(r *http.Request, clubID, matchID string) error {
	if h.matchChecker == nil {
		return nil
	}
	return h.matchChecker.EnsureMatchClub(r.Context(), clubID, matchID)
}

func respondClubError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, auth.ErrClubMismatch) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "ownership check error", http.StatusInternalServerError)
}

func respondFeeError(w http.ResponseWriter, err error) {
	var recalcErr *fees.RecalculationError
	switch {
	case errors.Is(err, roster.ErrMatchNotFound):
		http.Error(w, "match not found", http.StatusNotFound)
	case errors.As(err, &recalcErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, fees.ErrMissingOverrideNote),
		errors.Is(err, fees.ErrEmptyMatchID),
		errors.Is(err, fees.ErrEmptyPlayerID),
		errors.Is(err, fees.ErrNegativeCost),
		errors.Is(err, fees.ErrNonFiniteCost),
		errors.Is(err, fees.ErrInvalidScheduledCells):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
