package interfaces

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clubledger/internal/observability/metrics"
	roster "clubledger/internal/roster/domain"
	stats "clubledger/internal/stats/domain"
)

// StatementHandler serves monthly statement exports under
// /api/v1/statements/{yyyy-mm}/export.{xlsx|pdf}.
type StatementHandler struct {
	aggregates stats.AggregateRepository
	matches    roster.MatchRepository
	currency   string
}

// NewStatementHandler constructs a handler.
func NewStatementHandler(aggregates stats.AggregateRepository, matches roster.MatchRepository, currency string) (*StatementHandler, error) {
	if aggregates == nil {
		return nil, errors.New("statement handler: nil aggregate repository")
	}
	if matches == nil {
		return nil, errors.New("statement handler: nil match repository")
	}
	return &StatementHandler{aggregates: aggregates, matches: matches, currency: currency}, nil
}

// ServeHTTP handles statement export requests.
func (h *StatementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/statements/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	year, month, err := parsePeriod(parts[0])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := strings.TrimPrefix(parts[1], "export.")
	if format == parts[1] {
		http.NotFound(w, r)
		return
	}

	aggregate, err := h.aggregates.Get(r.Context(), year, month)
	if errors.Is(err, stats.ErrAggregateNotFound) {
		http.Error(w, "no statement for period", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "load aggregate error", http.StatusInternalServerError)
		return
	}
	matches, err := h.matches.ListByMonth(r.Context(), year, month)
	if err != nil {
		http.Error(w, "load matches error", http.StatusInternalServerError)
		return
	}

	filename := "statement-" + parts[0]
	started := time.Now()
	switch format {
	case "xlsx":
		data, err := BuildMonthlyStatementXLSX(aggregate, matches, h.currency)
		if err != nil {
			metrics.ObserveStatementExport(format, metrics.ResultError, time.Since(started))
			http.Error(w, "export error", http.StatusInternalServerError)
			return
		}
		metrics.ObserveStatementExport(format, metrics.ResultSuccess, time.Since(started))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.xlsx"`)
		_, _ = w.Write(data)
	case "pdf":
		data, err := BuildMonthlyStatementPDF(aggregate, matches, h.currency)
		if err != nil {
			metrics.ObserveStatementExport(format, metrics.ResultError, time.Since(started))
			http.Error(w, "export error", http.StatusInternalServerError)
			return
		}
		metrics.ObserveStatementExport(format, metrics.ResultSuccess, time.Since(started))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.pdf"`)
		_, _ = w.Write(data)
	default:
		http.Error(w, "format must be xlsx or pdf", http.StatusBadRequest)
	}
}

func parsePeriod(value string) (int, time.Month, error) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return 0, 0, errors.New("period must be yyyy-mm")
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return 0, 0, errors.New("period must be yyyy-mm")
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("period must be yyyy-mm")
	}
	return year, time.Month(month), nil
}
