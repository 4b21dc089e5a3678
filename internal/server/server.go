// Package server assembles the Echo application: middleware, services,
// controllers and routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/config"
	"github.com/sihur-medellin/sihur/internal/controllers"
	"github.com/sihur-medellin/sihur/internal/logging"
	"github.com/sihur-medellin/sihur/internal/metrics"
	"github.com/sihur-medellin/sihur/internal/middleware"
	"github.com/sihur-medellin/sihur/internal/services"
)

// apiPrefixes are the route prefixes of the protected API. The web client
// calls both.
var apiPrefixes = []string{"/api", "/api/v1"}

const shutdownTimeout = 10 * time.Second

// Options overrides collaborators that New would otherwise build from cfg.
type Options struct {
	Captcha  services.CaptchaVerifier
	Notifier services.Notifier
	Location *time.Location
	// BcryptCost is lowered by tests.
	BcryptCost int
}

// Server is the configured HTTP application.
type Server struct {
	echo    *echo.Echo
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New builds the Echo application on top of db.
func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger, opts Options) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	m, err := metrics.New()
	if err != nil {
		return nil, err
	}

	captcha := opts.Captcha
	if captcha == nil && cfg.RecaptchaEnabled {
		captcha = services.NewRecaptchaVerifier(cfg.RecaptchaSecret, cfg.RecaptchaEndpoint, logger.Named("captcha"))
	}

	// Services
	authSvc := services.NewAuthService(db, services.AuthConfig{
		Secret:      []byte(cfg.JWTSecret),
		SessionTTL:  cfg.JWTSessionTTL,
		RememberTTL: cfg.JWTRememberTTL,
		ResetTTL:    cfg.ResetTokenTTL,
		FrontendURL: cfg.FrontendURL,
		BcryptCost:  opts.BcryptCost,
	}, captcha, opts.Notifier, logger.Named("auth"))
	casoSvc := services.NewCasoService(db, loc)
	busquedaSvc := services.NewBusquedaService(db)
	estadisticaSvc := services.NewEstadisticaService(db, loc)
	personaSvc := services.NewPersonaService(db)
	catalogoSvc := services.NewCatalogoService(db)

	// Controllers
	httpLog := logger.Named("http")
	authCtrl := controllers.NewAuthController(authSvc, m, httpLog)
	casoCtrl := controllers.NewCasoController(casoSvc, busquedaSvc, m, loc, httpLog)
	estadisticaCtrl := controllers.NewEstadisticaController(estadisticaSvc, httpLog)
	personaCtrl := controllers.NewPersonaController(personaSvc, httpLog)
	catalogoCtrl := controllers.NewCatalogoController(catalogoSvc, httpLog)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = controllers.NewValidator()
	e.HTTPErrorHandler = errorHandler(httpLog)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.RequestLogger(httpLog))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(echomw.BodyLimit(cfg.HTTPBodyLimit))
	e.Use(m.Middleware())

	// Public routes
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", m.Handler())
	authCtrl.RegisterPublic(e, authRateLimiter(cfg.AuthRateLimit))

	// Protected routes
	auth := middleware.Auth(authSvc, logger.Named("auth"))
	authCtrl.RegisterProbe(e, auth)
	for _, prefix := range apiPrefixes {
		api := e.Group(prefix, auth)
		authCtrl.Register(api)
		casoCtrl.Register(api)
		personaCtrl.Register(api)
		estadisticaCtrl.Register(api)
		catalogoCtrl.Register(api)
	}

	return &Server{echo: e, cfg: cfg, logger: logger, metrics: m}, nil
}

// Handler exposes the application for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.HTTPAddr,
		Handler:      s.echo,
		ReadTimeout:  s.cfg.HTTPReadTimeout,
		WriteTimeout: s.cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
		if err := s.echo.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// authRateLimiter limits each client IP to perMinute requests per minute,
// with bursts of the same size.
func authRateLimiter(perMinute float64) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := int(perMinute)
	if burst < 1 {
		burst = 1
	}
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perMinute / 60),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "No se pudo identificar al cliente"})
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"message": "Demasiadas solicitudes. Intente de nuevo más tarde.",
			})
		},
	})
}

// errorHandler renders errors that escaped the controllers, such as unknown
// routes or oversized bodies, with the usual {"message"} body.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = http.StatusText(code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("unhandled error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, map[string]string{"message": msg})
		}
		if writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}
