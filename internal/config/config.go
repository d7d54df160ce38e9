package config

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config carries the process configuration. An empty MongoURI selects the
// in-memory stores; an empty MQTTBrokerURL disables the telemetry
// consumer.
type Config struct {
	ServerAddr    string
	MongoURI      string
	MongoDB       string
	MQTTBrokerURL string
}

// Load reads configuration from the environment, with a .env file as an
// optional source.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}
	return &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDB:       getEnv("MONGO_DB", "unipool"),
		MQTTBrokerURL: getEnv("MQTT_BROKER_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
