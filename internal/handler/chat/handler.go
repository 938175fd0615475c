package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/assistentes/backend/internal/service/ai"
	chatService "github.com/zhouzirui/assistentes/backend/internal/service/chat"
	"github.com/zhouzirui/assistentes/backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// User-facing error messages.
const (
	msgInvalidBody      = "Corpo da requisição inválido."
	msgRequiredFields   = "Mensagem e tipo de assistente são obrigatórios."
	msgInvalidAssistant = "Tipo de assistente inválido."
	msgSessionRequired  = "sessionId é obrigatório."
	msgEmptyUpstream    = "A API de geração não retornou nenhuma resposta válida. Tente novamente."
	msgUpstreamFailed   = "Erro ao chamar a API de geração."
	msgInternal         = "Erro interno do servidor."
)

// Handler serves the chat endpoints.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates the chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts POST /chat and GET /ws.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/ws", h.handleWebSocket)
}

// chatPayload is the body of POST /chat and of each websocket frame.
type chatPayload struct {
	Message       string `json:"mensagem"`
	AssistantType string `json:"tipoAssistente"`
	SessionID     string `json:"sessionId"`
}

func (p chatPayload) request() chatService.Request {
	return chatService.Request{
		Message:     p.Message,
		AssistantID: p.AssistantType,
		SessionID:   p.SessionID,
	}
}

// handleChat answers one question.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	reply, err := h.chatSvc.Ask(r.Context(), payload.request())
	if err != nil {
		status, message := describeError(err)
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// describeError maps service errors to a status code and a user message.
// Upstream details stay in the logs.
func describeError(err error) (int, string) {
	switch {
	case errors.Is(err, chatService.ErrMessageRequired), errors.Is(err, chatService.ErrAssistantRequired):
		return http.StatusBadRequest, msgRequiredFields
	case errors.Is(err, chatService.ErrUnknownAssistant):
		return http.StatusBadRequest, msgInvalidAssistant
	case errors.Is(err, chatService.ErrSessionRequired):
		return http.StatusBadRequest, msgSessionRequired
	case errors.Is(err, ai.ErrEmptyResponse):
		return http.StatusInternalServerError, msgEmptyUpstream
	case errors.Is(err, chatService.ErrUpstream):
		return http.StatusInternalServerError, msgUpstreamFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
