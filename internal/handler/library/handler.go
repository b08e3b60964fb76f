package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/poem-studio/backend/internal/model/poem"
	"github.com/zhouzirui/poem-studio/backend/pkg/utils"
)

// Handler 收藏诗歌列表的HTTP处理器
type Handler struct {
	store poem.Store
	log   *logrus.Entry
}

// New 创建收藏列表处理器
func New(store poem.Store) *Handler {
	return &Handler{
		store: store,
		log:   logrus.WithField("component", "library-handler"),
	}
}

// RegisterRoutes 注册收藏列表相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/poems", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleSave)
		r.Delete("/", h.handleClear)
		r.Get("/{id}", h.handleGet)
		r.Delete("/{id}", h.handleRemove)
		r.Post("/{id}/toggle", h.handleToggle)
		r.Get("/{id}/download", h.handleDownload)
		r.Get("/{id}/share", h.handleShare)
	})
}

type poemPayload struct {
	Poem poem.Poem `json:"poem"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"poems": h.store.List(r.Context())})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "poem not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"poem": p, "saved": true})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var payload poemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Save(r.Context(), payload.Poem); err != nil {
		h.respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"poems": h.store.List(r.Context())})
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload poemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Poem.ID == "" {
		payload.Poem.ID = id
	}
	if payload.Poem.ID != id {
		utils.RespondError(w, http.StatusBadRequest, "poem id does not match path")
		return
	}

	saved, err := poem.Toggle(r.Context(), h.store, payload.Poem)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "poem not found")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", poem.Filename(p)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(poem.Export(p))); err != nil {
		h.log.WithError(err).Warn("write poem download")
	}
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "poem not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"title": poem.ShareTitle(p),
		"text":  poem.ShareText(p),
	})
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, poem.ErrIDRequired) {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.WithError(err).Error("saved list update failed")
	utils.RespondError(w, http.StatusInternalServerError, "failed to update saved poems")
}
