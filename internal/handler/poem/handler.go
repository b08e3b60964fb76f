package poem

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/poem-studio/backend/internal/model/poem"
	poemService "github.com/zhouzirui/poem-studio/backend/internal/service/poem"
	"github.com/zhouzirui/poem-studio/backend/pkg/utils"
)

const (
	msgThemeRequired   = "Theme is required"
	msgGenerateFailed  = "Failed to generate poem. Please try again."
	msgInvalidResponse = "Invalid response from AI service"
	msgUnexpected      = "An unexpected error occurred. Please try again."
)

// Generator produces poems; *poemService.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, req poemService.Request) (poem.Poem, error)
}

// Handler 诗歌生成的HTTP处理器。generator 为 nil 时返回 503，收藏列表仍可使用。
type Handler struct {
	generator Generator
	catalog   *poemService.Catalog
	log       *logrus.Entry
}

// New 创建诗歌生成处理器
func New(generator Generator, catalog *poemService.Catalog) *Handler {
	if catalog == nil {
		catalog = poemService.DefaultCatalog()
	}
	return &Handler{
		generator: generator,
		catalog:   catalog,
		log:       logrus.WithField("component", "generate-handler"),
	}
}

// RegisterRoutes 注册诗歌生成相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate-poem", h.handleGenerate)
	r.Get("/styles", h.handleStyles)
}

type generateResponse struct {
	Poem poem.Poem `json:"poem"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "poem generation unavailable")
		return
	}

	var payload poemService.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.log.WithField("kind", "unexpected").WithError(err).Error("decode generate request")
		utils.RespondError(w, http.StatusInternalServerError, msgUnexpected)
		return
	}

	p, err := h.generator.Generate(r.Context(), payload)
	if err != nil {
		h.respondGenerateError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, generateResponse{Poem: p})
}

func (h *Handler) respondGenerateError(w http.ResponseWriter, err error) {
	var validationErr *poemService.ValidationError
	if errors.As(err, &validationErr) {
		utils.RespondError(w, http.StatusBadRequest, msgThemeRequired)
		return
	}

	var upstreamErr *poemService.UpstreamError
	if errors.As(err, &upstreamErr) {
		if upstreamErr.Reason == poemService.ReasonInvalidShape {
			utils.RespondErrorDetails(w, http.StatusInternalServerError, msgInvalidResponse, upstreamErr.Reason)
			return
		}
		utils.RespondErrorDetails(w, http.StatusInternalServerError, msgGenerateFailed, upstreamErr.Body)
		return
	}

	h.log.WithField("kind", "unexpected").WithError(err).Error("generate poem")
	utils.RespondError(w, http.StatusInternalServerError, msgUnexpected)
}

func (h *Handler) handleStyles(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.catalog)
}
