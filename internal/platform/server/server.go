package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	certapi "github.com/morganoide1/constructora-sub000/internal/certificates/api"
	expapi "github.com/morganoide1/constructora-sub000/internal/expenses/api"
	ledgerapi "github.com/morganoide1/constructora-sub000/internal/ledger/api"
	salesapi "github.com/morganoide1/constructora-sub000/internal/sales/api"
)

// Server wraps the HTTP surface consumed by the admin UI and client portal.
type Server struct {
	engine *gin.Engine
	logger *zap.Logger
	port   string
	server *http.Server
}

func NewServer(
	logger *zap.Logger,
	cfgPort string,
	cfgMode string,
	ledgerHandler *ledgerapi.LedgerHandler,
	saleHandler *salesapi.SaleHandler,
	certificateHandler *certapi.CertificateHandler,
	liquidationHandler *expapi.LiquidationHandler,
) *Server {
	if cfgMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// request logging through zap
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		cost := time.Since(start)
		logger.Info("http request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("cost", cost),
		)
	})

	// CORS for the admin UI and portal frontends
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// placeholder identity; authn/authz lives outside this core
	r.Use(func(c *gin.Context) {
		c.Set("x-user-id", "admin-001")
		c.Next()
	})

	v1 := r.Group("/api/v1")
	{
		ledgerHandler.RegisterRoutes(v1)
		saleHandler.RegisterRoutes(v1)
		certificateHandler.RegisterRoutes(v1)
		liquidationHandler.RegisterRoutes(v1)

		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "UP"})
		})
	}

	return &Server{
		engine: r,
		logger: logger,
		port:   cfgPort,
		server: &http.Server{
			Addr:    ":" + cfgPort,
			Handler: r,
		},
	}
}

func (s *Server) Run() error {
	s.logger.Info("server started", zap.String("port", s.port))
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
