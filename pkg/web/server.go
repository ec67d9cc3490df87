// Package web provides a real-time telemetry dashboard for the autonomy
// runtime: controller phase, pose, advisory and bus health over HTTP and
// websocket.
package web

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/sohw400/OM1/internal/mqttc"
	"github.com/sohw400/OM1/pkg/aicontrol"
	"github.com/sohw400/OM1/pkg/hub"
	"github.com/sohw400/OM1/pkg/locomotion"
	"github.com/sohw400/OM1/pkg/odom"
	"github.com/sohw400/OM1/pkg/paths"
)

// snapshotInterval is how often telemetry is pushed to websocket clients.
const snapshotInterval = time.Second

// Sources are the runtime components the dashboard reads from.
type Sources struct {
	Controller *locomotion.Controller
	Odom       *odom.Provider
	Paths      *paths.Provider
	AI         *aicontrol.Status
	Bus        *mqttc.Client
}

// State is one telemetry snapshot.
type State struct {
	Time       string              `json:"time"`
	AIEnabled  bool                `json:"ai_enabled"`
	Controller locomotion.Status   `json:"controller"`
	Pose       *locomotion.Pose    `json:"pose,omitempty"`
	Advisory   locomotion.Advisory `json:"advisory"`
	Bus        mqttc.Stats         `json:"bus"`
}

// Server is the dashboard server.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	sources   Sources
	statusHub *hub.Hub
}

// NewServer builds the dashboard around the given sources.
func NewServer(port string, sources Sources, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		port:      port,
		logger:    logger.With("component", "web"),
		sources:   sources,
		statusHub: hub.New("status", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "OM1 Autonomy Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/abort", s.handleAbort)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// StartAsync starts the server and the telemetry push loop.
func (s *Server) StartAsync() {
	go s.statusHub.Run()
	go s.pushLoop()
	go func() {
		s.logger.Info("dashboard listening", "port", s.port)
		if err := s.app.Listen(":" + s.port); err != nil {
			s.logger.Error("dashboard server stopped", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) snapshot() State {
	st := State{
		Time:      time.Now().Format(time.RFC3339),
		Bus:       s.sources.Bus.Stats(),
		Advisory:  s.sources.Paths.Advisory(),
		AIEnabled: s.sources.AI.Enabled(),
	}
	st.Controller = s.sources.Controller.Status()
	if pose, ok := s.sources.Odom.Pose(); ok {
		st.Pose = &pose
	}
	return st
}

func (s *Server) pushLoop() {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()
	for range ticker.C {
		if s.statusHub.ClientCount() == 0 {
			continue
		}
		if err := s.statusHub.BroadcastJSON(s.snapshot()); err != nil {
			s.logger.Error("failed to broadcast telemetry", "error", err)
		}
	}
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.snapshot())
}

// handleAbort is the external "stop everything" control: it clears the
// pending command. Idempotent.
func (s *Server) handleAbort(c *fiber.Ctx) error {
	s.sources.Controller.CleanAbort()
	return c.JSON(fiber.Map{"aborted": true})
}

func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)
	client.Run()
}
