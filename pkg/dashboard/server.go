package dashboard

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed all:web
var webFS embed.FS

// Server hosts the live monitoring dashboard.
type Server struct {
	engine *gin.Engine
	hub    *Hub
	addr   string
}

// NewServer creates a dashboard server bound to addr (e.g. ":8080").
func NewServer(hub *Hub, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine: engine,
		hub:    hub,
		addr:   addr,
	}
	s.setupRoutes()
	return s
}

// serveEmbedded serves one embedded asset with its content type. Assets are
// read once at route setup.
func serveEmbedded(content fs.FS, name, contentType string) gin.HandlerFunc {
	data, err := fs.ReadFile(content, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) setupRoutes() {
	webContent, _ := fs.Sub(webFS, "web")

	s.engine.GET("/", serveEmbedded(webContent, "index.html", "text/html; charset=utf-8"))
	s.engine.GET("/style.css", serveEmbedded(webContent, "style.css", "text/css; charset=utf-8"))
	s.engine.GET("/app.js", serveEmbedded(webContent, "app.js", "application/javascript; charset=utf-8"))

	s.engine.GET("/healthz", func(c *gin.Context) {
		stats := s.hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  stats.Uptime,
			"entries": stats.Entries,
		})
	})

	s.engine.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.hub.Stats())
	})

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
