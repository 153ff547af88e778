package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/internal/engine"
	"github.com/rxtech-lab/argo-structure/internal/export"
	"github.com/rxtech-lab/argo-structure/internal/indicator"
	"github.com/rxtech-lab/argo-structure/internal/recorder"
	"github.com/rxtech-lab/argo-structure/internal/service"
	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/internal/version"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

const maxAnalyzeBody = 8 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// StructureResponse is the body of the structure and analyze endpoints.
type StructureResponse struct {
	Ticker  string          `json:"ticker,omitempty"`
	Name    string          `json:"name,omitempty"`
	Period  string          `json:"period"`
	Cached  bool            `json:"cached"`
	Summary engine.Summary  `json:"summary"`
	Latest  *export.Record  `json:"latest,omitempty"`
	Rows    []export.Record `json:"rows"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze. A null close marks a
// missing value and is rejected by validation. Config overrides individual
// engine settings.
type AnalyzeRequest struct {
	Bars    []AnalyzeBar      `json:"bars"`
	Config  *indicator.Config `json:"config,omitempty"`
	Period  string            `json:"period,omitempty"`
	Compact bool              `json:"compact,omitempty"`
}

type AnalyzeBar struct {
	Date  string   `json:"date"`
	Close *float64 `json:"close"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.GetVersion(),
		"cache":   s.analyzer.CacheStats(),
	})
}

func (s *Server) handleIndices(w http.ResponseWriter, _ *http.Request) {
	indices := s.watchlist
	if indices == nil {
		indices = []config.Index{}
	}

	writeJSON(w, http.StatusOK, indices)
}

func (s *Server) lookup(ticker string) (config.Index, bool) {
	for _, idx := range s.watchlist {
		if idx.Ticker == ticker {
			return idx, true
		}
	}

	return config.Index{}, false
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	idx, ok := s.lookup(ticker)
	if !ok {
		writeError(w, errors.Newf(errors.ErrCodeUnknownTicker, "unknown index %q", ticker))

		return
	}

	period, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, err)

		return
	}

	analysis, err := s.analyzer.AnalyzeTicker(r.Context(), ticker)
	if err != nil {
		writeError(w, err)

		return
	}

	resp := buildResponse(analysis.Result, period, compact(r))
	resp.Ticker = idx.Ticker
	resp.Name = idx.Name
	resp.Cached = analysis.Cached

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := recorder.HistoryQuery{
		Ticker:      r.URL.Query().Get("ticker"),
		SignalsOnly: r.URL.Query().Get("signals") == "true",
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, errors.Newf(errors.ErrCodeInvalidParameter, "invalid limit %q", raw))

			return
		}

		q.Limit = limit
	}

	history, err := s.analyzer.History(r.Context(), q)
	if err != nil {
		writeError(w, err)

		return
	}

	if history == nil {
		history = []recorder.Snapshot{}
	}

	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	// fields left out of "config" keep the server defaults
	defaults := s.analyzer.Config()
	req := AnalyzeRequest{Config: &defaults}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBody))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	period, err := service.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, err)

		return
	}

	bars, err := req.toBars()
	if err != nil {
		writeError(w, err)

		return
	}

	var (
		result *engine.Result
		cached bool
	)

	if req.Config != nil && *req.Config != s.analyzer.Config() {
		result, cached, err = s.analyzer.AnalyzeBarsWithConfig(r.Context(), bars, *req.Config)
	} else {
		result, cached, err = s.analyzer.AnalyzeBars(r.Context(), bars)
	}

	if err != nil {
		writeError(w, err)

		return
	}

	resp := buildResponse(result, period, req.Compact)
	resp.Cached = cached

	writeJSON(w, http.StatusOK, resp)
}

func (req AnalyzeRequest) toBars() ([]types.Bar, error) {
	if len(req.Bars) == 0 {
		return nil, errors.New(errors.ErrCodeMissingParameter, "bars is required")
	}

	bars := make([]types.Bar, len(req.Bars))

	for i, b := range req.Bars {
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(b.Date))
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidParameter, i, "date", "expected YYYY-MM-DD")
		}

		bars[i].Date = date

		if b.Close != nil {
			bars[i].Close = decimal.NewNullDecimal(decimal.NewFromFloat(*b.Close))
		}
	}

	return bars, nil
}

func buildResponse(result *engine.Result, period service.Period, compact bool) StructureResponse {
	rows := period.Apply(result.Rows)
	records := export.NewRecords(rows, export.Options{Compact: compact, Round: true})

	resp := StructureResponse{
		Period:  period.String(),
		Summary: engine.Summarize(rows),
		Rows:    records,
	}

	if len(records) > 0 {
		resp.Latest = &records[len(records)-1]
	}

	return resp
}

func compact(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("compact"))

	return err == nil && v
}

func statusFor(err error) int {
	switch {
	case errors.IsValidationError(err):
		return http.StatusBadRequest
	case errors.IsInsufficientHistoryError(err):
		return http.StatusUnprocessableEntity
	case errors.IsDataUnavailableError(err):
		return http.StatusNotFound
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeMissingParameter, errors.ErrCodeInvalidPeriod, errors.ErrCodeInvalidConfiguration:
		return http.StatusBadRequest
	case errors.ErrCodeUnknownTicker:
		return http.StatusNotFound
	case errors.ErrCodeMarketDataFetchFailed, errors.ErrCodeDataSourceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Code: int(errors.GetCode(err))})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
