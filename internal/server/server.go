package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kapu/planning-center-groups-go/internal/constants"
	"github.com/kapu/planning-center-groups-go/internal/service/settings"
	"github.com/kapu/planning-center-groups-go/internal/shortcode"
)

// GroupsRenderer renders the groups grid for one request.
type GroupsRenderer interface {
	RenderGroups(ctx context.Context, groupTypeOverride string) string
}

type Config struct {
	Addr          string
	AdminUser     string
	AdminPassword string
}

type Dependencies struct {
	Groups     GroupsRenderer
	Shortcodes *shortcode.Registry
	Settings   settings.Store
	Logger     *zap.Logger
}

// Server hosts the embed endpoints and the admin settings page.
type Server struct {
	cfg        Config
	deps       Dependencies
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

func New(cfg Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/embed/groups", s.handleEmbedGroups)
	r.Post("/render", s.handleRender)

	if s.cfg.AdminUser != "" && s.cfg.AdminPassword != "" && s.deps.Settings != nil {
		r.Route(adminPrefix, func(r chi.Router) {
			r.Use(middleware.BasicAuth("Planning Center", map[string]string{
				s.cfg.AdminUser: s.cfg.AdminPassword,
			}))
			r.Get("/settings", s.handleSettingsForm)
			r.Post("/settings", s.handleSettingsSave)
		})
	}

	return r
}

// Router exposes the handler tree for tests and embedding hosts.
func (s *Server) Router() chi.Router { return s.router }

func (s *Server) handleEmbedGroups(w http.ResponseWriter, r *http.Request) {
	groupType := r.URL.Query().Get(constants.Shortcode.GroupTypeAttribute)
	writeHTML(w, http.StatusOK, s.deps.Groups.RenderGroups(r.Context(), groupType))
}

// handleRender expands directives in a posted page body.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.ServerConfig.MaxRenderBody))
	if err != nil {
		http.Error(w, "content too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}
	writeHTML(w, http.StatusOK, s.deps.Shortcodes.Expand(r.Context(), string(body)))
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: constants.ServerConfig.ReadHeaderTimeout,
		WriteTimeout:      constants.ServerConfig.WriteTimeout,
		IdleTimeout:       constants.ServerConfig.IdleTimeout,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func writeHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
