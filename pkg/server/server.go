// Package server exposes a graph client over an HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/config"
	"github.com/soundprediction/grafo/pkg/server/handlers"
	"github.com/soundprediction/grafo/pkg/telemetry"
)

// Graph is the client surface the server serves.
type Graph interface {
	grafo.GraphQuerier
	grafo.DataLoader
	grafo.SchemaManager
	grafo.GraphPorter
	grafo.GraphAdmin
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	client Graph
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, client Graph, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()

	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.client)
	queryHandler := handlers.NewQueryHandler(s.client)
	loadHandler := handlers.NewLoadHandler(s.client)
	exportHandler := handlers.NewExportHandler(s.client)
	schemaHandler := handlers.NewSchemaHandler(s.client)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/query", queryHandler.Query)
		v1.POST("/load", loadHandler.Load)
		v1.GET("/export/json", exportHandler.ExportJSON)

		schema := v1.Group("/schema")
		{
			schema.GET("/indexes", schemaHandler.Indexes)
			schema.GET("/labels", schemaHandler.Labels)
		}
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping http server")
	return s.server.Shutdown(ctx)
}

// requestIDHeader is echoed on every response so clients can correlate
// server logs with their calls.
const requestIDHeader = "X-Request-ID"

// requestIDMiddleware assigns each request an id, keeping an inbound one
// when the caller supplied it. The id rides the request context so error
// telemetry can be correlated with the call.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(telemetry.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
