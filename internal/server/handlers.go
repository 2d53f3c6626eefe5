package server

import (
	"errors"
	"net/http"

	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/interfaces"
	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
	"github.com/MarcosLaine/Controle-se-sub003/internal/services/valuation"
)

// handleHealth returns basic service health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "controle-se",
	})
}

// handleVersion returns the version of the running binary.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// routeUsers dispatches /api/users/{id}/... paths.
//
//	GET /api/users/{id}/portfolio/series        valuation series JSON
//	GET /api/users/{id}/portfolio/series/chart  valuation series PNG chart
//	PUT /api/users/{id}/portfolio/transactions  replace contribution history
func (s *Server) routeUsers(w http.ResponseWriter, r *http.Request) {
	segments := PathSegments(r, "/api/users/")
	if len(segments) < 3 || segments[1] != "portfolio" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	userID := segments[0]
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "User id is required")
		return
	}

	switch {
	case len(segments) == 3 && segments[2] == "series":
		s.handleSeries(w, r, userID)
	case len(segments) == 4 && segments[2] == "series" && segments[3] == "chart":
		s.handleSeriesChart(w, r, userID)
	case len(segments) == 3 && segments[2] == "transactions":
		s.handleTransactionsSet(w, r, userID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// seriesOptions reads the series query parameters shared by the JSON and
// chart endpoints.
func seriesOptions(r *http.Request) interfaces.SeriesOptions {
	q := r.URL.Query()
	return interfaces.SeriesOptions{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Period:    q.Get("period"),
	}
}

// writeSeriesError maps valuation errors to HTTP status codes. Range and
// date validation problems are the caller's fault; everything else is a 500.
func (s *Server) writeSeriesError(w http.ResponseWriter, userID string, err error) {
	if errors.Is(err, valuation.ErrSpanTooLarge) || errors.Is(err, valuation.ErrInvalidDate) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to build valuation series")
	WriteError(w, http.StatusInternalServerError, "Failed to build valuation series")
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	series, err := s.app.Valuation.BuildSeries(r.Context(), userID, seriesOptions(r))
	if err != nil {
		s.writeSeriesError(w, userID, err)
		return
	}

	WriteJSON(w, http.StatusOK, series)
}

func (s *Server) handleSeriesChart(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	series, err := s.app.Valuation.BuildSeries(r.Context(), userID, seriesOptions(r))
	if err != nil {
		s.writeSeriesError(w, userID, err)
		return
	}

	png, err := valuation.RenderSeriesChart(series)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to render series chart")
		WriteError(w, http.StatusUnprocessableEntity, "Not enough data points to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// transactionsRequest is the PUT body for replacing a contribution history.
type transactionsRequest struct {
	Transactions []models.Transaction `json:"transactions"`
}

func (s *Server) handleTransactionsSet(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req transactionsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	for i := range req.Transactions {
		if !req.Transactions[i].Valid() {
			WriteError(w, http.StatusBadRequest, "Transaction quantity must be a non-zero finite number")
			return
		}
	}

	if err := s.app.Store.SetTransactions(r.Context(), userID, req.Transactions); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to store transactions")
		WriteError(w, http.StatusInternalServerError, "Failed to store transactions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "saved",
		"count":  len(req.Transactions),
	})
}
