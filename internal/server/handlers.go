package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/models"
	"github.com/xaenox/aura/internal/pipeline"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// decode reports whether the body was decoded, writing the error response
// itself otherwise.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": Version})
}

// processRequest keeps message raw so a non-string value is a client error
// rather than a decoding failure.
type processRequest struct {
	Message     json.RawMessage `json:"message"`
	UserID      string          `json:"userId"`
	ImageBase64 string          `json:"imageBase64"`
	Confirmed   bool            `json:"confirmed"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var body processRequest
	if !decode(w, r, &body) {
		return
	}

	var message string
	if len(body.Message) == 0 || json.Unmarshal(body.Message, &message) != nil || message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	resp, err := s.pipeline.Process(r.Context(), models.Request{
		Message:     message,
		UserID:      body.UserID,
		ImageBase64: body.ImageBase64,
		Confirmed:   body.Confirmed,
	})
	switch {
	case errors.Is(err, pipeline.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, "Message is required")
	case err != nil:
		s.logger.Error("Process error",
			zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		writeJSON(w, http.StatusInternalServerError, models.Response{
			Success:        false,
			Message:        pipeline.InternalErrorMessage,
			ExecutionTrace: []models.ExecutionStep{},
			Error:          pipeline.InternalErrorMessage,
		})
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

type memoryResponse struct {
	Success bool           `json:"success"`
	Memory  *models.Memory `json:"memory"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	m, err := s.store.GetOrCreate(r.Context(), userID)
	if err != nil {
		s.logger.Error("Get memory error", zap.Error(err), zap.String("user_id", userID))
		writeError(w, http.StatusInternalServerError, "Failed to get memory")
		return
	}
	writeJSON(w, http.StatusOK, memoryResponse{Success: true, Memory: m})
}

type preferenceRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// handleUpdatePreference sets a preference; an empty value removes it.
func (s *Server) handleUpdatePreference(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var body preferenceRequest
	if !decode(w, r, &body) {
		return
	}
	if body.Key == "" {
		writeError(w, http.StatusBadRequest, "Key is required")
		return
	}

	var err error
	if body.Value == "" {
		err = s.store.DeletePreference(r.Context(), userID, body.Key)
	} else {
		err = s.store.UpdatePreference(r.Context(), userID, body.Key, body.Value)
	}
	if err != nil {
		s.logger.Error("Update preference error", zap.Error(err), zap.String("user_id", userID))
		writeError(w, http.StatusInternalServerError, "Failed to update preference")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDeletePreference(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := s.store.DeletePreference(r.Context(), userID, chi.URLParam(r, "key")); err != nil {
		s.logger.Error("Delete preference error", zap.Error(err), zap.String("user_id", userID))
		writeError(w, http.StatusInternalServerError, "Failed to delete preference")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleClearMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := s.store.Clear(r.Context(), userID); err != nil {
		s.logger.Error("Clear memory error", zap.Error(err), zap.String("user_id", userID))
		writeError(w, http.StatusInternalServerError, "Failed to clear memory")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
