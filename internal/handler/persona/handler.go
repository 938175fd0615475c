package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/assistentes/backend/internal/model/persona"
	"github.com/zhouzirui/assistentes/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
}

// New 创建persona处理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/assistentes", h.handleListPersonas)
}

// handleListPersonas 列出所有助手，不包含系统提示词
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	items := h.personas.List()
	summaries := make([]persona.Summary, len(items))
	for i, item := range items {
		summaries[i] = item.Summary()
	}
	utils.RespondJSON(w, http.StatusOK, summaries)
}
