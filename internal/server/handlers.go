package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/spigell/ats-screener/internal/logger"
	"github.com/spigell/ats-screener/internal/screening"
	"go.uber.org/zap"
)

type evaluateRequest struct {
	ResumeURLs []string `json:"resume_urls"`
}

type evaluateResponse struct {
	Results []screening.Result `json:"results"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, statusResponse{Status: "ok"})
}

func (s *Server) evaluateResumes(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(zap.String(logger.FieldRequestID, RequestIDFromContext(r.Context())))

	var req evaluateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.ResumeURLs == nil {
		writeError(w, r, http.StatusBadRequest, "resume_urls is required")
		return
	}

	log.Info("evaluating resumes", zap.Int("count", len(req.ResumeURLs)))

	results, err := s.evaluator.Evaluate(r.Context(), req.ResumeURLs)
	if err != nil {
		if errors.Is(err, screening.ErrNoRequest) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("evaluation failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Internal Server Error : "+err.Error())
		return
	}

	render.JSON(w, r, evaluateResponse{Results: results})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}
