package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/diagnostics"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// Default criteria of the upload endpoints.
const (
	defaultFileCriteria     = "Avaliação geral"
	defaultMultipleCriteria = "Avaliação comparativa"
)

// TextRequest is the body of POST /analyze/text.
type TextRequest struct {
	Text     string `json:"text" validate:"required"`
	Criteria string `json:"criteria"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Jurado IA - Sistema de Avaliação Inteligente",
		"status":  "Online",
		"version": s.config.Version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.health.Status())
}

type metricsResponse struct {
	service.MetricsSnapshot
	Host *diagnostics.HostMetrics `json:"sistema,omitempty"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp := metricsResponse{MetricsSnapshot: s.metrics.Snapshot()}
	if s.host != nil {
		host := s.host.Collect(r.Context())
		resp.Host = &host
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleDeepHealth(w http.ResponseWriter, r *http.Request) {
	results := s.health.Probe(r.Context(), s.config.ProbeTimeout)
	status := "healthy"
	for _, res := range results {
		if !res.Available {
			status = "degraded"
			break
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"checks": results,
	})
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondFailure(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}
	if req.Criteria == "" {
		req.Criteria = service.DefaultCriteria
	}

	v := s.judge.AnalyzeSingle(r.Context(), core.Item{
		Input: core.Input{Text: req.Text},
		Type:  core.ContentText,
	}, req.Criteria)
	respondVerdict(w, v)
}

// handleAnalyzeFile serves the single-file endpoints of one content type.
func (s *Server) handleAnalyzeFile(ct core.ContentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.parseForm(w, r); err != nil {
			s.respondFormError(w, err)
			return
		}

		_, fh, err := r.FormFile("file")
		if err != nil {
			respondFailure(w, http.StatusUnprocessableEntity, "campo 'file' obrigatório")
			return
		}
		if ok, msg := mimeAccepted(ct, fh.Header.Get("Content-Type")); !ok {
			respondFailure(w, http.StatusBadRequest, msg)
			return
		}

		ext := ""
		if ct == core.ContentDocument {
			ext = ".pdf"
		}
		up, err := saveUpload(fh, ext)
		if err != nil {
			s.logger.WithContext(r.Context()).Error("saving upload failed", "error", err)
			respondFailure(w, http.StatusInternalServerError, "falha ao salvar o arquivo")
			return
		}
		defer uploads{up}.cleanup()

		criteria := r.FormValue("criteria")
		if criteria == "" {
			criteria = defaultFileCriteria
		}

		v := s.judge.AnalyzeSingle(r.Context(), core.Item{
			Input: core.Input{Path: up.Path, Preset: r.FormValue("preset")},
			Type:  ct,
			Name:  up.Name,
		}, criteria)
		respondVerdict(w, v)
	}
}

func (s *Server) handleAnalyzeMultiple(w http.ResponseWriter, r *http.Request) {
	ups, criteria, ok := s.batchUploads(w, r)
	if !ok {
		return
	}
	defer ups.cleanup()

	result := s.judge.AnalyzeMultiple(r.Context(), ups.items(), criteria)
	if result.Synthesis.Error != "" {
		respondFailure(w, http.StatusOK, result.Synthesis.Error)
		return
	}
	respondOK(w, result)
}

func (s *Server) handleCompetition(w http.ResponseWriter, r *http.Request) {
	ups, criteria, ok := s.batchUploads(w, r)
	if !ok {
		return
	}
	defer ups.cleanup()

	result := s.judge.JudgeCompetition(r.Context(), ups.items(), criteria)
	if result.Synthesis.Error != "" {
		respondFailure(w, http.StatusOK, result.Synthesis.Error)
		return
	}
	respondOK(w, result)
}

// batchUploads reads the "files" field of a multi-item request. On failure
// the response has been written.
func (s *Server) batchUploads(w http.ResponseWriter, r *http.Request) (uploads, string, bool) {
	if err := s.parseForm(w, r); err != nil {
		s.respondFormError(w, err)
		return nil, "", false
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondFailure(w, http.StatusUnprocessableEntity, "nenhum arquivo enviado")
		return nil, "", false
	}

	ups, err := saveUploads(files)
	if err != nil {
		s.logger.WithContext(r.Context()).Error("saving uploads failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "falha ao salvar os arquivos")
		return nil, "", false
	}

	criteria := r.FormValue("criteria")
	if criteria == "" {
		criteria = defaultMultipleCriteria
	}
	return ups, criteria, true
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondFailure(w, http.StatusBadRequest, "limit inválido")
			return
		}
		limit = n
	}

	list, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.WithContext(r.Context()).Error("listing history failed", "error", err)
		respondDomainError(w, err)
		return
	}
	respondOK(w, list)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	entry, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondOK(w, entry)
}

func (s *Server) respondFormError(w http.ResponseWriter, err error) {
	if errors.Is(err, errTooLarge) {
		respondFailure(w, http.StatusRequestEntityTooLarge, "arquivo excede o tamanho máximo permitido")
		return
	}
	respondFailure(w, http.StatusBadRequest, "formulário multipart inválido")
}

// respondVerdict sends a verdict. A verdict carrying an error is reported as
// an unsuccessful envelope with status 200.
func respondVerdict(w http.ResponseWriter, v core.Verdict) {
	if v.Failed() {
		respondFailure(w, http.StatusOK, v.Error)
		return
	}
	respondOK(w, v)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return "campos inválidos: " + strings.Join(msgs, ", ")
}
