package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/tscat/internal/catalog"
	"horse.fit/tscat/internal/lookup"
)

const maxRequestBodyBytes = 64 << 10

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// CatalogPath is what POST /api/v1/reload loads.
	CatalogPath string
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string
}

type Server struct {
	service *lookup.Service
	db      Pinger
	logger  zerolog.Logger
	opts    Options
}

type contextSummary struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
}

type catalogInfo struct {
	Origin           string                   `json:"origin"`
	Language         string                   `json:"language"`
	SourceLanguage   string                   `json:"source_language,omitempty"`
	Version          string                   `json:"version"`
	LoadedAt         time.Time                `json:"loaded_at"`
	Ready            bool                     `json:"ready"`
	LocaleWarning    string                   `json:"locale_warning,omitempty"`
	Stats            catalog.Stats            `json:"stats"`
	ValidationErrors catalog.ValidationErrors `json:"validation_errors"`
	Contexts         []contextSummary         `json:"contexts"`
}

// NewServer builds the HTTP API. db may be nil when no database is configured.
func NewServer(service *lookup.Service, db Pinger, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		service: service,
		db:      db,
		logger:  logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			CatalogPath:     strings.TrimSpace(opts.CatalogPath),
			AllowedOrigins:  opts.AllowedOrigins,
		},
	}
}

// Handler returns the configured echo instance.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", maxRequestBodyBytes>>10)))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/catalog", s.handleCatalog)
	api.POST("/resolve", s.handleResolve)
	api.POST("/reload", s.handleReload)
	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.service == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("tscat api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("tscat api server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	database := "disabled"
	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("database ping failed")
			database = "unavailable"
		} else {
			database = "ok"
		}
	}

	snap := s.service.Snapshot()
	return success(c, map[string]any{
		"service":        "tscat",
		"time":           time.Now().UTC(),
		"catalog_loaded": snap != nil,
		"database":       database,
	})
}

func (s *Server) handleCatalog(c echo.Context) error {
	snap := s.service.Snapshot()
	if snap == nil {
		return fail(c, http.StatusServiceUnavailable, "No catalog loaded", nil)
	}
	return success(c, describeSnapshot(snap))
}

func (s *Server) handleResolve(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Failed to read request body", nil)
	}

	req, fieldErrors, err := decodeResolveRequest(body)
	if err != nil {
		s.logger.Error().Err(err).Msg("decode resolve request failed")
		return internalError(c, "Failed to decode request")
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	result, err := s.service.Resolve(req)
	if err != nil {
		return s.lookupFailure(c, err)
	}
	return success(c, result)
}

func (s *Server) lookupFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lookup.ErrNoCatalog):
		return fail(c, http.StatusServiceUnavailable, "No catalog loaded", nil)
	case errors.Is(err, lookup.ErrMessageNotFound):
		return fail(c, http.StatusNotFound, "Message not found", map[string]any{"kind": lookup.MessageNotFound})
	case errors.Is(err, lookup.ErrAmbiguousPluralRequest):
		return fail(c, http.StatusUnprocessableEntity, "Plural message requires a count", map[string]any{"kind": lookup.AmbiguousPluralRequest})
	case errors.Is(err, lookup.ErrMissingSubstitution):
		return fail(c, http.StatusUnprocessableEntity, err.Error(), map[string]any{"kind": lookup.MissingSubstitution})
	default:
		s.logger.Error().Err(err).Msg("resolve failed")
		return internalError(c, "Failed to resolve message")
	}
}

func (s *Server) handleReload(c echo.Context) error {
	if s.opts.CatalogPath == "" {
		return fail(c, http.StatusConflict, "No catalog path configured", nil)
	}

	snap, err := s.service.Reload(s.opts.CatalogPath)
	if err != nil {
		var parseErr *catalog.ParseError
		if errors.As(err, &parseErr) {
			return fail(c, http.StatusUnprocessableEntity, "Catalog could not be parsed", map[string]any{
				"kind":   parseErr.Kind,
				"line":   parseErr.Line,
				"detail": parseErr.Error(),
			})
		}
		if errors.Is(err, fs.ErrNotExist) {
			return fail(c, http.StatusNotFound, "Catalog file not found", nil)
		}
		s.logger.Error().Err(err).Str("path", s.opts.CatalogPath).Msg("catalog reload failed")
		return internalError(c, "Failed to reload catalog")
	}
	return success(c, describeSnapshot(snap))
}

func describeSnapshot(snap *lookup.Snapshot) catalogInfo {
	cat := snap.Catalog()
	info := catalogInfo{
		Origin:           snap.Origin(),
		Language:         cat.Language,
		SourceLanguage:   cat.SourceLanguage,
		Version:          cat.Version,
		LoadedAt:         snap.LoadedAt(),
		Ready:            snap.Ready(),
		Stats:            cat.Stats(),
		ValidationErrors: snap.Problems(),
		Contexts:         make([]contextSummary, 0, len(cat.Contexts)),
	}
	if info.ValidationErrors == nil {
		info.ValidationErrors = catalog.ValidationErrors{}
	}
	if warning := snap.LocaleWarning(); warning != nil {
		info.LocaleWarning = warning.Error()
	}
	for _, ctx := range cat.Contexts {
		info.Contexts = append(info.Contexts, contextSummary{Name: ctx.Name, Messages: len(ctx.Messages)})
	}
	return info
}
