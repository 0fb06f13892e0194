package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/checker"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/docstore"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/match"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/monitor"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/pkg/models"
)

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Documents []struct {
			Name string `json:"name"`
			Text string `json:"text"`
		} `json:"documents"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inputs := make([]checker.DocumentInput, len(req.Documents))
	for i, d := range req.Documents {
		inputs[i] = checker.DocumentInput{Name: d.Name, Text: d.Text}
	}

	result, err := s.engine.Analyze(r.Context(), inputs)
	if err != nil {
		switch {
		case errors.Is(err, checker.ErrInsufficientDocuments),
			errors.Is(err, checker.ErrTooManyDocuments),
			errors.Is(err, docstore.ErrEmptyDocument):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, match.ErrInputTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			s.logger.Error("analyze failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.GenerateReport(r.Context())
	if err != nil {
		if errors.Is(err, checker.ErrNoAnalysisYet) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("report generation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		*checker.ReportResult
		Report string `json:"report"`
	}{result, string(result.Artifact)})
}

func (s *Server) handleGetConflicts(w http.ResponseWriter, r *http.Request) {
	conflicts, err := s.engine.Conflicts()
	if err != nil {
		if errors.Is(err, checker.ErrNoAnalysisYet) {
			respondJSON(w, http.StatusOK, map[string][]models.Conflict{"conflicts": {}})
			return
		}
		s.logger.Error("list conflicts failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list conflicts")
		return
	}

	respondJSON(w, http.StatusOK, map[string][]models.Conflict{"conflicts": conflicts})
}

func (s *Server) handleGetDocuments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]models.Document{"documents": s.engine.Documents()})
}

func (s *Server) handleClearDocuments(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearDocuments()
	respondJSON(w, http.StatusOK, map[string]string{"message": "Documents cleared"})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.logger.Error("read stats failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMonitorURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.MonitorURL(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, monitor.ErrInvalidURL) {
			respondError(w, http.StatusBadRequest, "a valid http(s) url is required")
			return
		}
		s.logger.Error("monitor url failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to monitor url")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePollSource(w http.ResponseWriter, r *http.Request) {
	sourceID, err := uuid.Parse(chi.URLParam(r, "sourceID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid source id")
		return
	}

	var req struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.PollSource(r.Context(), sourceID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, monitor.ErrSourceNotFound):
			respondError(w, http.StatusNotFound, "monitored source not found")
		case errors.Is(err, docstore.ErrEmptyDocument):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, match.ErrInputTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			s.logger.Error("poll source failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to poll source")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleMarkReviewed(w http.ResponseWriter, r *http.Request) {
	sourceID, err := uuid.Parse(chi.URLParam(r, "sourceID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid source id")
		return
	}

	if err := s.engine.MarkReviewed(r.Context(), sourceID); err != nil {
		if errors.Is(err, monitor.ErrSourceNotFound) {
			respondError(w, http.StatusNotFound, "monitored source not found")
			return
		}
		s.logger.Error("mark reviewed failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to mark source reviewed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Source marked as reviewed"})
}
