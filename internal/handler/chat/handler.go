package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/shetkarimitra/advisor/internal/model/chat"
	chatService "github.com/shetkarimitra/advisor/internal/service/chat"
	"github.com/shetkarimitra/advisor/pkg/utils"
)

// Handler serves the advisory chat endpoints.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/send", h.handleSend)
		r.Get("/history/{sessionID}", h.handleHistory)
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload chat.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.Send(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		if errors.Is(err, chatService.ErrEmptyMessage) || errors.Is(err, chatService.ErrEmptySessionID) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("session_id", payload.SessionID).Msg("send message")
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, chat.SendResponse{
		ID:        reply.ID,
		Message:   reply.Text,
		Sources:   reply.Sources,
		Timestamp: reply.Timestamp,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatService.ErrEmptySessionID) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("load history")
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, chat.HistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}
