// Package server exposes the HTTP boundary: upload, job submission, status
// and result queries, spreadsheet export, and the websocket push channel.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"doc-llm-pipeline/internal/common"
	"doc-llm-pipeline/internal/export"
	"doc-llm-pipeline/internal/jobs"
)

// DocumentProcessor drives one job to a terminal state.
type DocumentProcessor interface {
	Process(ctx context.Context, jobID, filePath string)
}

type Server struct {
	cfg      *common.Config
	store    jobs.Store
	runner   *jobs.Runner
	proc     DocumentProcessor
	exporter *export.Service
	push     http.HandlerFunc
	logger   *slog.Logger
}

func New(cfg *common.Config, store jobs.Store, runner *jobs.Runner, proc DocumentProcessor, exporter *export.Service, push http.HandlerFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		runner:   runner,
		proc:     proc,
		exporter: exporter,
		push:     push,
		logger:   logger,
	}
}

// Routes builds the gin engine with all endpoints registered.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware(), requestIDMiddleware())

	r.POST("/upload", s.handleUpload)
	r.POST("/process", s.handleProcess)
	r.GET("/status/:job_id", s.handleStatus)
	r.GET("/extract", s.handleExtract)
	r.GET("/export/:job_id", s.handleExport)
	r.GET("/health", s.handleHealth)
	if s.push != nil {
		r.GET("/ws", gin.WrapF(s.push))
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestIDMiddleware assigns each request an id, echoed in the response
// headers and carried on the request context for downstream logging.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), reqID))
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// corsMiddleware leaves the API open to any origin, matching the push channel.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
