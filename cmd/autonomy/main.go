// Autonomy runs the Go2 closed-loop movement runtime: it ingests odometry,
// lidar path advisories and robot state from the bus, accepts AI movement
// commands, and drives the sport-mode actuator through the locomotion
// controller's fixed-rate tick loop.
package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sohw400/OM1/internal/config"
	"github.com/sohw400/OM1/internal/log"
	"github.com/sohw400/OM1/internal/mqttc"
	"github.com/sohw400/OM1/pkg/aicontrol"
	"github.com/sohw400/OM1/pkg/facepresence"
	"github.com/sohw400/OM1/pkg/go2"
	"github.com/sohw400/OM1/pkg/locomotion"
	"github.com/sohw400/OM1/pkg/odom"
	"github.com/sohw400/OM1/pkg/paths"
	"github.com/sohw400/OM1/pkg/web"
)

// moveMessage carries an AI movement command from the cortex.
type moveMessage struct {
	Action string `json:"action"`
}

func main() {
	cfg := config.Load()
	log.Init(cfg.LogLevel)
	logger := log.L()

	bus := connectBus(cfg, logger)
	defer bus.Close()

	prefix := cfg.TopicPrefix

	odomProv, err := odom.New(bus, prefix+"/odom", logger)
	if err != nil {
		logger.Error("failed to start odometry provider", "error", err)
		os.Exit(1)
	}
	pathsProv, err := paths.New(bus, prefix+"/paths", logger)
	if err != nil {
		logger.Error("failed to start paths provider", "error", err)
		os.Exit(1)
	}
	stateProv, err := go2.NewStateProvider(bus, prefix+"/go2/state", logger)
	if err != nil {
		logger.Error("failed to start state provider", "error", err)
		os.Exit(1)
	}
	faces, err := facepresence.New(bus, prefix+"/face/presence", logger)
	if err != nil {
		logger.Error("failed to start face presence provider", "error", err)
		os.Exit(1)
	}
	aiStatus, err := aicontrol.New(bus, prefix+"/ai/request", prefix+"/ai/response", logger)
	if err != nil {
		logger.Error("failed to start AI control status", "error", err)
		os.Exit(1)
	}

	sport := go2.NewSportClient(bus, prefix+"/sport/request", logger)
	// Settle any motion left over from a previous run.
	sport.Stop()

	locoCfg := locomotion.DefaultConfig()
	locoCfg.MoveSpeed = cfg.MoveSpeed
	locoCfg.TurnSpeed = cfg.TurnSpeed
	locoCfg.AttemptLimit = cfg.AttemptLimit
	locoCfg.TickInterval = cfg.TickInterval

	ctrl, err := locomotion.New(locoCfg, locomotion.Deps{
		Pose:     odomProv,
		Paths:    pathsProv,
		Actuator: sport,
		State:    stateProv,
		Enable:   aiStatus,
		Guard:    &facepresence.Guard{Mode: cfg.Mode, Faces: faces},
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to build locomotion controller", "error", err)
		os.Exit(1)
	}

	if err := bus.Subscribe(prefix+"/move", func(payload []byte) {
		var msg moveMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Error("bad move message", "error", err)
			return
		}
		ctrl.Submit(locomotion.Intent(msg.Action))
	}); err != nil {
		logger.Error("failed to subscribe to move commands", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(cfg.WebPort, web.Sources{
		Controller: ctrl,
		Odom:       odomProv,
		Paths:      pathsProv,
		AI:         aiStatus,
		Bus:        bus,
	}, logger)
	server.StartAsync()

	logger.Info("autonomy runtime started",
		"broker", cfg.Broker, "mode", cfg.Mode, "tick", cfg.TickInterval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctrl.Tick()
		case sig := <-stop:
			logger.Info("shutting down", "signal", sig.String())
			ctrl.CleanAbort()
			sport.Stop()
			if err := server.Shutdown(); err != nil {
				logger.Warn("dashboard shutdown", "error", err)
			}
			return
		}
	}
}

// connectBus retries until the broker accepts the connection; the robot
// often boots before the bus does.
func connectBus(cfg *config.Config, logger *slog.Logger) *mqttc.Client {
	opts := mqttc.Options{
		Broker:   cfg.Broker,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
	}
	for attempt := 1; ; attempt++ {
		bus, err := mqttc.New(opts, logger)
		if err == nil {
			return bus
		}
		if attempt >= 30 {
			logger.Error("giving up on MQTT broker", "error", err, "attempts", attempt)
			os.Exit(1)
		}
		logger.Warn("MQTT connect failed, retrying", "error", err, "attempt", attempt)
		time.Sleep(2 * time.Second)
	}
}
