package recent

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anthonytapias/charmefy/internal/service/conversation"
	"github.com/anthonytapias/charmefy/pkg/utils"
)

// Handler 最近会话列表的HTTP处理器
type Handler struct {
	convSvc *conversation.Service
}

// New 创建recent处理器
func New(convSvc *conversation.Service) *Handler {
	return &Handler{
		convSvc: convSvc,
	}
}

// RegisterRoutes 注册最近会话路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chats/recent", h.handleRecent)
}

// handleRecent 返回会话ID对应的最近会话摘要
func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		if cookie, err := r.Cookie("session_id"); err == nil {
			sessionID = cookie.Value
		}
	}

	if sessionID == "" {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"chats": []conversation.Summary{}})
		return
	}

	chats := h.convSvc.Recent(r.Context(), sessionID)
	if chats == nil {
		chats = []conversation.Summary{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"chats": chats})
}
