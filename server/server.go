package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cutroom/cache"
	"cutroom/config"
	"cutroom/core/autocut"
	"cutroom/core/session"
	"cutroom/logger"
	"cutroom/model"
	"cutroom/storage"

	"github.com/gorilla/mux"
)

// Start wires the editing core to its HTTP and websocket surface and
// blocks until the process is told to stop.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})

	// Object storage and the range cache degrade gracefully: editing
	// works without them, uploads and cached detection do not.
	if err := storage.InitMinio(cfg); err != nil {
		logger.Warn("minio unavailable, media uploads disabled", logger.ErrorField(err))
	}
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("redis unavailable, highlight ranges will not be cached", logger.ErrorField(err))
	}
	defer cache.CloseRedis()

	hub := session.NewHub()
	go hub.Run()
	defer hub.Stop()

	manager := session.NewManager(cfg, hub, autocut.StubDetector{}, &cache.HighlightCache{})

	// Files dropped into the watch directory are uploaded and registered
	// like any other upload.
	if cfg.WatchDir != "" {
		watcher := storage.NewWatcher(cfg.WatchDir, func(name, objectName string, kind model.TrackKind) {
			manager.GetOrCreate(cfg.WatchProject).RegisterAsset(name, objectName, kind)
		})
		if err := watcher.Start(); err != nil {
			logger.Warn("media watcher failed to start",
				logger.String("dir", cfg.WatchDir),
				logger.ErrorField(err))
		} else {
			defer watcher.Close()
			logger.Info("watching for media drops",
				logger.String("dir", cfg.WatchDir),
				logger.String("project", cfg.WatchProject))
		}
	}

	apiHandler := NewAPIHandler(manager, cfg)

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)

	// Asset endpoints
	router.HandleFunc("/api/projects/{project_id}/assets", apiHandler.UploadAssetHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{project_id}/assets", apiHandler.ListAssetsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{project_id}/assets/{asset_id}/duration", apiHandler.ReportDurationHandler).Methods(http.MethodPost)

	// Timeline endpoints
	router.HandleFunc("/api/projects/{project_id}/tracks/{track}/segments", apiHandler.ListSegmentsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{project_id}/tracks/{track}/segments", apiHandler.AddSegmentHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{project_id}/segments/{segment_id}", apiHandler.UpdateSegmentHandler).Methods(http.MethodPatch)
	router.HandleFunc("/api/projects/{project_id}/segments/{segment_id}", apiHandler.DeleteSegmentHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/projects/{project_id}/tracks/{track}/selection", apiHandler.SelectSegmentHandler).Methods(http.MethodPut)

	// AutoCut endpoints
	router.HandleFunc("/api/projects/{project_id}/autocut", apiHandler.AutoCutAllHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{project_id}/assets/{asset_id}/autocut", apiHandler.AutoCutAssetHandler).Methods(http.MethodPost)

	// WebSocket attach
	router.HandleFunc("/ws/projects/{project_id}", apiHandler.WebSocketHandler)

	// Media is proxied straight out of MinIO with range support so the
	// browser players can scrub.
	router.PathPrefix(cfg.MediaBaseURL + "/").HandlerFunc(apiHandler.MediaHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("addr", server.Addr),
			logger.String("media", cfg.MediaBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}
