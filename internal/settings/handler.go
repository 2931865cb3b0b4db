package settings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
)

// Writer persists setting values.
type Writer interface {
	Upsert(ctx context.Context, key string, value float64) error
}

// Handler serves GET/PUT /api/v1/settings. A PUT invalidates the cached
// provider so the new rates take effect on the next recalculation.
type Handler struct {
	provider *CachedProvider
	writer   Writer
}

// NewHandler constructs a handler.
func NewHandler(provider *CachedProvider, writer Writer) (*Handler, error) {
	if provider == nil {
		return nil, errors.New("settings handler: nil provider")
	}
	if writer == nil {
		return nil, errors.New("settings handler: nil writer")
	}
	return &Handler{provider: provider, writer: writer}, nil
}

type ratesPayload struct {
	VideoFeeRate float64 `json:"video_fee_rate"`
	LateFeeRate  float64 `json:"late_fee_rate"`
}

// ServeHTTP handles settings reads and writes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	video, err := h.provider.VideoFeeRate(r.Context())
	if err != nil {
		http.Error(w, "load settings error", http.StatusInternalServerError)
		return
	}
	late, err := h.provider.LateFeeRate(r.Context())
	if err != nil {
		http.Error(w, "load settings error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ratesPayload{VideoFeeRate: video, LateFeeRate: late})
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req ratesPayload
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.VideoFeeRate < 0 || req.LateFeeRate < 0 ||
		math.IsNaN(req.VideoFeeRate) || math.IsInf(req.VideoFeeRate, 0) ||
		math.IsNaN(req.LateFeeRate) || math.IsInf(req.LateFeeRate, 0) {
		http.Error(w, "rates must be finite and non-negative", http.StatusBadRequest)
		return
	}

	if err := h.writer.Upsert(r.Context(), KeyVideoFeeRate, req.VideoFeeRate); err != nil {
		http.Error(w, "save settings error", http.StatusInternalServerError)
		return
	}
	if err := h.writer.Upsert(r.Context(), KeyLateFeeRate, req.LateFeeRate); err != nil {
		http.Error(w, "save settings error", http.StatusInternalServerError)
		return
	}
	h.provider.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
