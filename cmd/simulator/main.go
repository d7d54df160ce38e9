package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// ProgressTick mirrors the payload the backend's telemetry consumer
// expects on rides/{id}/progress.
type ProgressTick struct {
	RideID    string    `json:"ride_id"`
	Progress  int       `json:"progress"`
	Timestamp time.Time `json:"timestamp"`
}

func progressTopic(rideID string) string {
	return fmt.Sprintf("rides/%s/progress", rideID)
}

// nextProgress advances by a jittered step and never passes 100 or moves
// backwards, matching the engine's monotonicity contract.
func nextProgress(current int) int {
	step := 5 + rand.Intn(11) // 5-15 percent per tick
	next := current + step
	if next > 100 {
		next = 100
	}
	return next
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	broker := getEnv("MQTT_BROKER_URL", "tcp://localhost:1883")
	rideID := os.Getenv("RIDE_ID")
	if rideID == "" {
		log.Fatal("RIDE_ID is required")
	}

	intervalSec, err := strconv.Atoi(getEnv("TICK_INTERVAL_SECONDS", "3"))
	if err != nil || intervalSec < 1 {
		intervalSec = 3
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("unipool-drive-simulator")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to broker: %v", token.Error())
	}
	defer client.Disconnect(250)

	log.WithFields(log.Fields{
		"broker":  broker,
		"ride_id": rideID,
	}).Info("Drive simulator started")

	progress := 0
	for {
		tick := ProgressTick{
			RideID:    rideID,
			Progress:  progress,
			Timestamp: time.Now(),
		}
		payload, err := json.Marshal(tick)
		if err != nil {
			log.Fatalf("Failed to marshal tick: %v", err)
		}

		token := client.Publish(progressTopic(rideID), 1, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.WithError(token.Error()).Error("Failed to publish progress tick")
		} else {
			log.WithFields(log.Fields{
				"ride_id":  rideID,
				"progress": progress,
			}).Info("Published progress tick")
		}

		if progress >= 100 {
			log.Info("Destination reached, simulator done")
			return
		}
		time.Sleep(time.Duration(intervalSec) * time.Second)
		progress = nextProgress(progress)
	}
}
