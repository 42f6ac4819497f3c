package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ptit-ai/unirag/internal/metrics"
	"github.com/ptit-ai/unirag/internal/types"
)

type queryRequest struct {
	Query          string  `json:"query"`
	Collection     string  `json:"collection,omitempty"`
	TopK           int     `json:"top_k,omitempty"`
	ScoreThreshold float64 `json:"score_threshold,omitempty"`
	UseRAG         *bool   `json:"use_rag,omitempty"`
	UseWebSearch   bool    `json:"use_web_search,omitempty"`
}

type queryResponse struct {
	Answer     string                   `json:"answer"`
	Source     types.AnswerSource       `json:"source"`
	KBSources  []types.RetrievedPassage `json:"kb_sources"`
	WebSources []types.WebSource        `json:"web_sources"`
	Metadata   types.ResultMetadata     `json:"metadata"`
}

type errorResponse struct {
	Error string          `json:"error"`
	Type  types.ErrorType `json:"type,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", types.ErrorTypeValidation)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required", types.ErrorTypeValidation)
		return
	}

	// RAG is on unless the request explicitly turns it off.
	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	query := types.Query{
		Text:           req.Query,
		Collection:     req.Collection,
		TopK:           req.TopK,
		ScoreThreshold: req.ScoreThreshold,
		UseRAG:         useRAG,
		UseWebSearch:   req.UseWebSearch,
	}

	result, err := s.answerer.Answer(r.Context(), query)
	if err != nil {
		var qerr *types.QueryError
		if errors.As(err, &qerr) && qerr.Type == types.ErrorTypeValidation {
			writeError(w, http.StatusBadRequest, qerr.Message, qerr.Type)
			return
		}
		s.logger.Printf("query failed: %v", err)
		writeError(w, http.StatusBadGateway, "failed to produce an answer", types.ErrorTypeGeneration)
		return
	}

	metrics.RecordInvocation(metrics.ModeServe)
	metrics.RecordAnswerSource(result.Source)

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:     result.Answer,
		Source:     result.Source,
		KBSources:  result.KBSources,
		WebSources: result.WebSources,
		Metadata:   result.Metadata,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	payload := map[string]interface{}{
		"invocations":    metrics.GetStats(),
		"answer_sources": metrics.GetAnswerSourceStats(),
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, errType types.ErrorType) {
	writeJSON(w, status, errorResponse{Error: message, Type: errType})
}
