package history

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
	chatService "github.com/zhouzirui/assistentes/backend/internal/service/chat"
	"github.com/zhouzirui/assistentes/backend/pkg/utils"
)

// Handler serves session transcripts.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the history handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/historico/{sessionId}", h.handleList)
	r.Delete("/historico/{sessionId}", h.handleClear)
}

type listResponse struct {
	History []chat.Interaction `json:"historico"`
}

type clearResponse struct {
	Success bool   `json:"sucesso"`
	Message string `json:"mensagem"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.chatSvc.History(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to load history")
		utils.RespondError(w, http.StatusInternalServerError, "Erro ao carregar histórico.")
		return
	}
	if items == nil {
		items = []chat.Interaction{}
	}
	utils.RespondJSON(w, http.StatusOK, listResponse{History: items})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.ClearHistory(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to clear history")
		utils.RespondError(w, http.StatusInternalServerError, "Erro ao apagar histórico.")
		return
	}
	utils.RespondJSON(w, http.StatusOK, clearResponse{Success: true, Message: "Histórico apagado."})
}
