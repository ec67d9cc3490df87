// Package config provides configuration for the autonomy runtime.
// Values come from the environment, with optional .env file support.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config bundles runtime settings for the autonomy binary.
type Config struct {
	// MQTT
	Broker   string
	ClientID string
	Username string
	Password string

	// Topics
	TopicPrefix string

	// Controller
	TickInterval time.Duration
	Mode         string // "" or "guard"
	MoveSpeed    float64
	TurnSpeed    float64
	AttemptLimit int

	// Dashboard
	WebPort string

	// Application
	LogLevel string
}

// Load reads configuration from the environment. A missing .env file is not
// an error; plain environment variables still apply.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment variables")
	}

	tickMs, _ := strconv.Atoi(getEnv("TICK_INTERVAL_MS", "100"))

	return &Config{
		Broker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		ClientID: getEnv("MQTT_CLIENT_ID", "om1-autonomy"),
		Username: getEnv("MQTT_USERNAME", ""),
		Password: getEnv("MQTT_PASSWORD", ""),

		TopicPrefix: getEnv("TOPIC_PREFIX", "om"),

		TickInterval: time.Duration(tickMs) * time.Millisecond,
		Mode:         getEnv("MODE", ""),
		MoveSpeed:    getEnvFloat("MOVE_SPEED", 0.5),
		TurnSpeed:    getEnvFloat("TURN_SPEED", 0.8),
		AttemptLimit: getEnvInt("ATTEMPT_LIMIT", 15),

		WebPort: getEnv("WEB_PORT", "8090"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
