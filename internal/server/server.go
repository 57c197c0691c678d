// Package server exposes documents, citations and the APA engine over a
// JSON REST API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/textlab/textlab/internal/auth"
	"github.com/textlab/textlab/internal/config"
	"github.com/textlab/textlab/internal/document"
	"github.com/textlab/textlab/internal/logger"
	"github.com/textlab/textlab/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP API.
type Server struct {
	cfg     config.Config
	auth    *auth.Service
	docs    *document.Service
	metrics *metrics.Metrics
	log     *logger.Logger

	general *limiterStore
	login   *limiterStore
}

// New builds a server. A nil metrics or logger gets a fresh instance.
func New(cfg config.Config, authSvc *auth.Service, docs *document.Service, m *metrics.Metrics, log *logger.Logger) *Server {
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		auth:    authSvc,
		docs:    docs,
		metrics: m,
		log:     log.With("component", "server"),
	}
	if cfg.RateLimit.Enabled {
		s.general = newLimiterStore(cfg.RateLimit.GeneralPerMinute)
		s.login = newLimiterStore(cfg.RateLimit.LoginPerMinute)
	}
	return s
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// ClientIP is the socket peer; proxy headers are handled by clientKey.
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.Recovery(), requestLogger(s.log), instrument(s.metrics))
	if len(s.cfg.Server.CORSOrigins) > 0 {
		r.Use(corsMiddleware(s.cfg.Server.CORSOrigins))
	}

	r.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	trust := s.cfg.Server.TrustProxy
	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", rateLimit(s.general, trust), s.register)
	authGroup.POST("/login", rateLimit(s.login, trust), s.loginHandler)

	p := api.Group("", rateLimit(s.general, trust), s.requireAuth())
	p.GET("/users/me", s.me)

	p.POST("/documents", s.createDocument)
	p.GET("/documents", s.listDocuments)

	d := p.Group("/documents/:id", documentID())
	d.GET("", s.getDocument)
	d.PUT("", s.updateDocument)
	d.DELETE("", s.deleteDocument)
	d.POST("/share", s.shareDocument)
	d.GET("/versions", s.listVersions)

	d.POST("/citations", s.addCitation)
	d.GET("/citations", s.listCitations)
	d.DELETE("/citations/:cid", s.deleteCitation)

	d.POST("/references", s.addReference)
	d.GET("/references", s.listReferences)
	d.DELETE("/references/:rid", s.deleteReference)

	d.POST("/apa/generate-references", s.generateReferences)
	d.GET("/apa/validate", s.validateDocument)
	d.GET("/apa/reference-list", s.documentReferenceList)

	p.POST("/apa/parse-reference", s.parseReference)
	p.POST("/apa/citation", s.citation)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
