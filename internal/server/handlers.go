package server

import (
	"encoding/json"
	"net/http"

	"github.com/hyperjump/sanad/internal/models"
	"go.uber.org/zap"
)

const msgEmptyQuestion = "Please enter a question."

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgEmptyQuestion)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, msgEmptyQuestion)
		return
	}
	s.logger.Debug("ask request", zap.String("question", req.Question))
	answer, err := s.asker.Ask(r.Context(), req.Question)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.AskResponse{Answer: answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{}
	if s.points != nil {
		n, err := s.points.Count(r.Context())
		if err != nil {
			s.logger.Error("status: count points failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["points"] = n
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"vector_store":    s.config.VectorStore.Type,
			"collection":      s.config.VectorStore.Collection,
			"embedding_model": s.config.OpenAI.EmbeddingModel,
			"chat_model":      s.config.OpenAI.ChatModel,
			"chunk_size":      s.config.Chunking.ChunkSize,
			"chunk_overlap":   s.config.Chunking.ChunkOverlap,
			"top_k":           s.config.Retrieval.TopK,
			"web_search":      s.config.WebSearch.APIKey != "",
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message})
}
