package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/poem-studio/backend/internal/handler/library"
	poemHandler "github.com/zhouzirui/poem-studio/backend/internal/handler/poem"
	middlewarePkg "github.com/zhouzirui/poem-studio/backend/internal/middleware"
	poemModel "github.com/zhouzirui/poem-studio/backend/internal/model/poem"
	poemService "github.com/zhouzirui/poem-studio/backend/internal/service/poem"
	"github.com/zhouzirui/poem-studio/backend/pkg/utils"
)

// NewRouter 将 HTTP 路由绑定到核心服务。未配置模型时 generator 可以为 nil。
func NewRouter(generator poemHandler.Generator, catalog *poemService.Catalog, saved poemModel.Store, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		poemHandler.New(generator, catalog).RegisterRoutes(api)
		library.New(saved).RegisterRoutes(api)
	})

	return r
}
