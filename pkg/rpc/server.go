// Package rpc serves Anna's request/response protocol over a local Unix
// domain socket: one JSON request in, one JSON response out, no network
// exposure. It never listens on TCP — every caller is a local process
// (annactl) that can reach the socket file.
package rpc

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jjgarcianorway/annad/pkg/ticket"
	"github.com/jjgarcianorway/annad/pkg/version"
)

// Server binds a gin engine to a Unix socket and serves Request/Response
// traffic until Shutdown is called.
type Server struct {
	handler    *Handler
	socketPath string
	socketMode os.FileMode

	engine   *gin.Engine
	listener net.Listener
	httpSrv  *http.Server
}

// NewServer builds a Server. socketMode defaults to 0750 if zero.
func NewServer(handler *Handler, socketPath string, socketMode os.FileMode) *Server {
	if socketMode == 0 {
		socketMode = 0o750
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{handler: handler, socketPath: socketPath, socketMode: socketMode, engine: engine}
	engine.POST("/v1/query", s.handleQuery)
	engine.GET("/v1/health", s.handleHealth)
	return s
}

// ListenAndServe creates the Unix socket (removing any stale file left by a
// prior crash), chmods it, and serves until the listener is closed. It
// blocks the calling goroutine; callers typically run it with `go`.
func (s *Server) ListenAndServe() error {
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("rpc: remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("rpc: listen on %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, s.socketMode); err != nil {
		ln.Close()
		return fmt.Errorf("rpc: chmod %s: %w", s.socketPath, err)
	}
	s.listener = ln
	s.httpSrv = &http.Server{Handler: s.engine}
	err = s.httpSrv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections and waits up to the given
// timeout for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleQuery(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	if req.Options.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.Options.TimeoutMS)*time.Millisecond)
		defer cancel()
	}
	if req.Options.ReliabilityThreshold != nil {
		ctx = ticket.WithThresholdOverride(ctx, uint8(*req.Options.ReliabilityThreshold))
	}

	resp := s.handler.Handle(ctx, req)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Full()})
}
