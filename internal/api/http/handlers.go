package apihttp

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

const timeLayout = time.RFC3339

// MatchesHandler serves match list queries.
type MatchesHandler struct {
	db     *sql.DB
	clubID string
}

// NewMatchesHandler constructs a MatchesHandler.
func NewMatchesHandler(db *sql.DB, clubID string) *MatchesHandler {
	return &MatchesHandler{db: db, clubID: clubID}
}

// ServeHTTP handles GET /api/v1/matches.
func (h *MatchesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	if h.clubID == "" {
		http.Error(w, "club_id is required", http.StatusServiceUnavailable)
		return
	}

	year, month, err := parsePeriodQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := queryMatches(r.Context(), h.db, h.clubID, year, month)
	if err != nil {
		http.Error(w, "query matches error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// ExportFeesCSVHandler serves per-match fee CSV exports.
type ExportFeesCSVHandler struct {
	db     *sql.DB
	clubID string
}

// NewExportFeesCSVHandler constructs a ExportFeesCSVHandler.
func NewExportFeesCSVHandler(db *sql.DB, clubID string) *ExportFeesCSVHandler {
	return &ExportFeesCSVHandler{db: db, clubID: clubID}
}

// ServeHTTP handles GET /api/v1/exports/fees.csv.
func (h *ExportFeesCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	if h.clubID == "" {
		http.Error(w, "club_id is required", http.StatusServiceUnavailable)
		return
	}

	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		http.Error(w, "match_id is required", http.StatusBadRequest)
		return
	}

	rows, err := queryFees(r.Context(), h.db, h.clubID, matchID)
	if err != nil {
		http.Error(w, "query fees error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"match_id",
		"player_id",
		"total_time",
		"field_fee",
		"late_fee",
		"video_fee",
		"total_fee",
		"final_fee",
		"overridden",
		"computed_at",
	})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.MatchID,
			row.PlayerID,
			formatFloat(row.TotalTime),
			formatInt64(row.FieldFee),
			formatInt64(row.LateFee),
			formatInt64(row.VideoFee),
			formatInt64(row.TotalFee),
			formatFloat(row.FinalFee),
			strconv.FormatBool(row.Overridden),
			formatTime(row.ComputedAt),
		})
	}
	writer.Flush()
}

type matchRow struct {
	ID                string  `json:"id"`
	PlayedAt          string  `json:"played_at"`
	Opponent          string  `json:"opponent"`
	GoalsFor          int     `json:"goals_for"`
	GoalsAgainst      int     `json:"goals_against"`
	Result            string  `json:"result"`
	FieldFeeTotal     float64 `json:"field_fee_total"`
	WaterFeeTotal     float64 `json:"water_fee_total"`
	FeeCoefficient    float64 `json:"fee_coefficient"`
	TotalParticipants int     `json:"total_participants"`
	TotalFinalFees    float64 `json:"total_final_fees"`
}

type feeResultRow struct {
	MatchID    string    `json:"match_id"`
	PlayerID   string    `json:"player_id"`
	TotalTime  float64   `json:"total_time"`
	FieldFee   int64     `json:"field_fee"`
	LateFee    int64     `json:"late_fee"`
	VideoFee   int64     `json:"video_fee"`
	TotalFee   int64     `json:"total_fee"`
	FinalFee   float64   `json:"final_fee"`
	Overridden bool      `json:"overridden"`
	ComputedAt time.Time `json:"computed_at"`
}

func queryMatches(ctx context.Context, db *sql.DB, clubID string, year int, month time.Month) ([]matchRow, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows, err := db.QueryContext(ctx, `
SELECT
	id,
	played_at,
	opponent,
	goals_for,
	goals_against,
	result,
	field_fee_total,
	water_fee_total,
	fee_coefficient,
	total_participants,
	total_final_fees
FROM club_matches
WHERE club_id = $1
	AND played_at >= $2
	AND played_at < $3
ORDER BY played_at ASC`, clubID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []matchRow
	for rows.Next() {
		var row matchRow
		var playedAt time.Time
		if err := rows.Scan(
			&row.ID,
			&playedAt,
			&row.Opponent,
			&row.GoalsFor,
			&row.GoalsAgainst,
			&row.Result,
			&row.FieldFeeTotal,
			&row.WaterFeeTotal,
			&row.FeeCoefficient,
			&row.TotalParticipants,
			&row.TotalFinalFees,
		); err != nil {
			return nil, err
		}
		row.PlayedAt = playedAt.UTC().Format(timeLayout)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func queryFees(ctx context.Context, db *sql.DB, clubID, matchID string) ([]feeResultRow, error) {
	rows, err := db.QueryContext(ctx, `
SELECT
	fr.match_id,
	fr.player_id,
	fr.total_time,
	fr.field_fee,
	fr.late_fee,
	fr.video_fee,
	fr.total_fee,
	fo.amount,
	fr.computed_at
FROM club_fee_results fr
JOIN club_matches m ON m.id = fr.match_id
LEFT JOIN club_fee_overrides fo
	ON fo.match_id = fr.match_id AND fo.player_id = fr.player_id
WHERE m.club_id = $1
	AND fr.match_id = $2
ORDER BY fr.player_id ASC`, clubID, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []feeResultRow
	for rows.Next() {
		var row feeResultRow
		var overrideAmount sql.NullFloat64
		if err := rows.Scan(
			&row.MatchID,
			&row.PlayerID,
			&row.TotalTime,
			&row.FieldFee,
			&row.LateFee,
			&row.VideoFee,
			&row.TotalFee,
			&overrideAmount,
			&row.ComputedAt,
		); err != nil {
			return nil, err
		}
		row.ComputedAt = row.ComputedAt.UTC()
		row.FinalFee = float64(row.TotalFee)
		if overrideAmount.Valid {
			row.FinalFee = overrideAmount.Float64
			row.Overridden = true
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func parsePeriodQuery(r *http.Request) (int, time.Month, error) {
	yearValue := r.URL.Query().Get("year")
	monthValue := r.URL.Query().Get("month")
	if yearValue == "" || monthValue == "" {
		return 0, 0, errQueryParam("year and month are required")
	}
	year, err := strconv.Atoi(yearValue)
	if err != nil || year <= 0 {
		return 0, 0, errQueryParam("year must be a positive integer")
	}
	month, err := strconv.Atoi(monthValue)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errQueryParam("month must be 1..12")
	}
	return year, time.Month(month), nil
}

type errQueryParam string

func (e errQueryParam) Error() string { return string(e) }

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(timeLayout)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}
