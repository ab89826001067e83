package echoapi

import (
	"context"
	"net/http"

	en_locale "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/skillforge/gateway/core"
	"github.com/skillforge/gateway/core/approval"
	"github.com/skillforge/gateway/core/nav"
	"github.com/skillforge/gateway/core/session"
	"github.com/skillforge/gateway/core/tenant"
	"github.com/skillforge/gateway/services/upstream"
	"github.com/skillforge/gateway/storage/state"
)

var (
	validate   = validator.New()
	translator ut.Translator
)

func init() {
	en := en_locale.New()
	translator, _ = ut.New(en, en).GetTranslator("en")
	core.InitValidators(validate, translator)
}

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf      *core.Config
		Logger    core.Logger
		Verifier  *session.Verifier
		Resolver  *session.Resolver
		Upstream  *upstream.Client
		Tenants   *tenant.Registry
		Store     state.Store
		Approvals *approval.Service
		NavTree   []nav.Item

		// Shutdown is called when an unrecoverable error is caught.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts    *Options
		app     *echo.Echo
		metrics *metrics
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.NavTree == nil {
		opts.NavTree = nav.DefaultTree()
	}
	if opts.Shutdown == nil {
		opts.Shutdown = func() {}
	}
	s := &server{
		opts:    opts,
		app:     echo.New(),
		metrics: newMetrics(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.metrics.middleware())
	s.app.Use(requestGate(s.opts.Verifier))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Shutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/healthz", s.health)
	s.app.GET("/metrics", s.metrics.handler())

	api := s.app.Group("/api")
	api.GET("/session", s.sessionRetrieve)
	api.GET("/nav", s.navRetrieve)
	api.GET("/prefs/:name", s.prefRetrieve)
	api.PUT("/prefs/:name", s.prefUpdate)

	api.GET("/tenants", s.tenantList)
	api.POST("/tenants/select", s.tenantSelect)
	api.POST("/tenants/refresh", s.tenantRefresh)

	api.GET("/approvals", s.approvalQuery)
	api.POST("/approvals/:id/approve", s.approvalApprove)
	api.POST("/approvals/:id/reject", s.approvalReject)

	api.POST("/media/upload", s.mediaUpload)

	api.GET("/r/:kind", s.resourceList)
	api.POST("/r/:kind", s.resourceCreate)
	api.GET("/r/:kind/:id", s.resourceRetrieve)
	api.PATCH("/r/:kind/:id", s.resourceUpdate)
	api.DELETE("/r/:kind/:id", s.resourceDestroy)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "build": s.opts.Conf.Build})
}
