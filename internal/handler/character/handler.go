package character

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anthonytapias/charmefy/internal/model/character"
	"github.com/anthonytapias/charmefy/pkg/utils"
)

// Handler 角色目录的HTTP处理器
type Handler struct {
	characters character.Store
}

// New 创建角色处理器
func New(characters character.Store) *Handler {
	return &Handler{
		characters: characters,
	}
}

// RegisterRoutes 注册角色相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/characters", h.handleList)
	r.Get("/characters/{characterID}", h.handleGet)
}

// handleList 列出所有角色
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.characters.List())
}

// handleGet 按ID返回单个角色
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "characterID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid character id")
		return
	}

	found, ok := h.characters.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "character not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, found)
}
