package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/poem-studio/backend/internal/config"
	"github.com/zhouzirui/poem-studio/backend/internal/handler"
	poemHandler "github.com/zhouzirui/poem-studio/backend/internal/handler/poem"
	poemModel "github.com/zhouzirui/poem-studio/backend/internal/model/poem"
	poemService "github.com/zhouzirui/poem-studio/backend/internal/service/poem"
	"github.com/zhouzirui/poem-studio/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("failed to load .env file, continuing with system environment variables only")
	}

	if err := run(ctx); err != nil {
		logrus.WithError(err).Error("poem studio backend stopped")
		stop()
		os.Exit(1)
	}
}

// run 组装依赖并阻塞直到 ctx 结束；所有资源在返回前释放。
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg.Log.Apply()

	blobs, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open poem storage: %w", err)
	}
	if closer, ok := blobs.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logrus.WithError(err).Warn("failed to close poem storage")
			}
		}()
	}
	library := poemModel.NewLibrary(blobs)
	logrus.WithFields(logrus.Fields{"driver": cfg.Storage.Driver, "path": cfg.Storage.Path}).Info("saved poem storage ready")

	var generator poemHandler.Generator
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			logrus.WithError(err).Warn("failed to initialize chat model, continuing without poem generation")
		} else if svc, err := poemService.NewService(chatModel, nil); err != nil {
			logrus.WithError(err).Warn("failed to initialize poem service")
		} else {
			generator = svc
			logrus.WithFields(logrus.Fields{"provider": cfg.AI.Provider, "model": cfg.AI.Model}).Info("poem service initialized")
		}
	} else {
		logrus.Warn("provider credentials not configured, poem generation disabled")
	}

	router := handler.NewRouter(generator, poemService.DefaultCatalog(), library, cfg.Server.AllowedOrigin)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logrus.Infof("poem studio backend listening on %s", srv.Addr)
	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
