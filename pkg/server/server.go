// Package server exposes a running intersection over HTTP and a WebSocket
// snapshot stream for browser renderers
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anggasct/crossroad"
)

// Controller is the part of a simulation the server drives
type Controller interface {
	Start() bool
	TogglePause() bool
	Stop()
	Spawn(road crossroad.Road) (crossroad.VehicleID, error)
	Snapshot() crossroad.Snapshot
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger for requests and client events
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBroadcastInterval sets how often snapshots are pushed to WebSocket clients
func WithBroadcastInterval(interval time.Duration) Option {
	return func(s *Server) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// Server serves the simulation state and lifecycle commands
type Server struct {
	sim      Controller
	router   *gin.Engine
	hub      *Hub
	logger   logrus.FieldLogger
	interval time.Duration
}

// New creates a server around sim
func New(sim Controller, opts ...Option) *Server {
	s := &Server{
		sim:      sim,
		logger:   logrus.StandardLogger(),
		interval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.logger)
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with every route mounted
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket client registry
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.Use(cors.Default())

	api := router.Group("/api")
	api.GET("/state", s.handleState)
	api.GET("/queues", s.handleQueues)
	api.POST("/start", s.handleStart)
	api.POST("/pause", s.handlePause)
	api.POST("/stop", s.handleStop)
	api.POST("/spawn/:road", s.handleSpawn)

	router.GET("/ws", s.handleWs)
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("http request")
	}
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleQueues(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Snapshot().QueueLengths())
}

func (s *Server) handleStart(c *gin.Context) {
	started := s.sim.Start()
	c.JSON(http.StatusOK, gin.H{"started": started, "state": s.sim.Snapshot()})
}

func (s *Server) handlePause(c *gin.Context) {
	paused := s.sim.TogglePause()
	c.JSON(http.StatusOK, gin.H{"paused": paused})
}

func (s *Server) handleStop(c *gin.Context) {
	s.sim.Stop()
	c.JSON(http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleSpawn(c *gin.Context) {
	road, err := crossroad.ParseRoad(c.Param("road"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := s.sim.Spawn(road)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "road": road})
}

func (s *Server) handleWs(c *gin.Context) {
	client, err := s.hub.Accept(c.Writer, c.Request)
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	if msg, err := s.snapshotMessage(); err == nil {
		s.hub.Send(client, msg)
	}
}

// snapshotMessage encodes the current state in the stream envelope
func (s *Server) snapshotMessage() ([]byte, error) {
	return json.Marshal(Message{Type: MessageSnapshot, State: s.sim.Snapshot()})
}

// Broadcast pushes the current snapshot to every connected client
func (s *Server) Broadcast() {
	if s.hub.Len() == 0 {
		return
	}
	msg, err := s.snapshotMessage()
	if err != nil {
		s.logger.WithError(err).Error("encoding snapshot")
		return
	}
	s.hub.Broadcast(msg)
}

// StreamSnapshots broadcasts at the configured interval until ctx ends
func (s *Server) StreamSnapshots(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Broadcast()
		}
	}
}

// Run serves on addr and streams snapshots until ctx is cancelled, then
// shuts the listener down and disconnects every client
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.StreamSnapshots(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
