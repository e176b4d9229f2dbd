// Package echoapi is the HTTP surface of the app, served with echo.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/tourney/core"
	"github.com/trezcool/tourney/core/devindex"
	"github.com/trezcool/tourney/core/feedback"
	"github.com/trezcool/tourney/core/tournament"
	"github.com/trezcool/tourney/core/user"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       user.ServiceInterface
		TournamentSvc tournament.ServiceInterface
		IndexSvc      *devindex.Service
		FeedbackSvc   *feedback.Service
		Validate      *validator.Validate
		Translator    ut.Translator
		Metrics       *Metrics // optional
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		sessions *sessionManager
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		sessions: newSessionManager(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Logger.SetLevel(log.INFO)
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Renderer = newPageRenderer(conf.AppName)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.middleware())
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: []string{"*"}}))
	s.app.Use(headersMiddleware)
	s.app.Use(s.sessions.middleware())

	auth := requireSessionMiddleware

	registerIndexRoutes(s.app, s.deps.IndexSvc, s.deps.Metrics)
	registerUserRoutes(s.app, s.deps.UserSvc, s.sessions, s.deps.Validate)
	registerTournamentRoutes(s.app, auth, s.deps.TournamentSvc, s.deps.Validate)
	registerFeedbackRoutes(s.app, s.deps.FeedbackSvc, s.deps.Validate)
}

// Start listens on the configured address; failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// headersMiddleware sets the headers every response carries, including requests without an Origin
// the CORS middleware skips.
func headersMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		h := ctx.Response().Header()
		h.Set(echo.HeaderAccessControlAllowOrigin, "*")
		h.Set("Cache-Control", "no-cache")
		return next(ctx)
	}
}
